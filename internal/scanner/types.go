// Package scanner walks a project tree and classifies it by ecosystem and framework.
package scanner

import "errors"

// Scanner errors. Both are fatal for the analysis of that root.
var (
	ErrPathNotFound  = errors.New("project path does not exist")
	ErrNotADirectory = errors.New("project path is not a directory")
)

// Inventory is the result of one scan. It is built once by Scan and never
// modified afterwards; downstream stages copy what they keep.
type Inventory struct {
	// ProjectName is the base name of the scanned root.
	ProjectName string `json:"project_name"`

	// ProjectPath is the absolute path of the scanned root.
	ProjectPath string `json:"project_path"`

	// Files lists slash-separated paths relative to the root, in traversal order.
	Files []string `json:"files"`

	// Directories lists slash-separated paths relative to the root, in traversal order.
	Directories []string `json:"directories"`

	FileCount      int `json:"file_count"`
	DirectoryCount int `json:"directory_count"`

	// ProjectTypes holds ecosystem tags such as "node" or "python".
	ProjectTypes []string `json:"project_types"`

	// Frameworks holds framework tags such as "react" or "django".
	Frameworks []string `json:"frameworks"`

	HasGit   bool `json:"has_git"`
	HasCI    bool `json:"has_ci"`
	HasTests bool `json:"has_tests"`

	// Warnings records recoverable problems, e.g. an unparsable manifest.
	Warnings []string `json:"warnings,omitempty"`
}

// HasFile reports whether path is in the inventory's file set.
func (inv *Inventory) HasFile(path string) bool {
	for _, f := range inv.Files {
		if f == path {
			return true
		}
	}
	return false
}

// HasDirectory reports whether path is in the inventory's directory set.
func (inv *Inventory) HasDirectory(path string) bool {
	for _, d := range inv.Directories {
		if d == path {
			return true
		}
	}
	return false
}

// HasProjectType reports whether tag was detected as a project type.
func (inv *Inventory) HasProjectType(tag string) bool {
	return contains(inv.ProjectTypes, tag)
}

// HasFramework reports whether tag was detected as a framework.
func (inv *Inventory) HasFramework(tag string) bool {
	return contains(inv.Frameworks, tag)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
