package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Indicator is a marker that identifies an ecosystem. Three forms exist:
//
//	"package.json"  exact filename (also matched as the last path segment)
//	"node_modules/" directory-name prefix
//	"*.csproj"      filename suffix
type Indicator string

// Ecosystem maps a project-type tag to its ordered indicators.
type Ecosystem struct {
	Tag        string
	Indicators []Indicator
}

// Framework maps a framework tag to the dependency substrings that reveal it.
type Framework struct {
	Tag        string
	Indicators []string
}

// DefaultEcosystems is the ordered ecosystem table.
var DefaultEcosystems = []Ecosystem{
	{Tag: "node", Indicators: []Indicator{"package.json", "package-lock.json", "node_modules/"}},
	{Tag: "python", Indicators: []Indicator{"requirements.txt", "setup.py", "pyproject.toml", "__pycache__/"}},
	{Tag: "java", Indicators: []Indicator{"pom.xml", "build.gradle", "build.gradle.kts", "gradlew"}},
	{Tag: "rust", Indicators: []Indicator{"Cargo.toml", "Cargo.lock", "target/"}},
	{Tag: "go", Indicators: []Indicator{"go.mod", "go.sum"}},
	{Tag: "ruby", Indicators: []Indicator{"Gemfile", "Gemfile.lock"}},
	{Tag: "php", Indicators: []Indicator{"composer.json", "composer.lock"}},
	{Tag: "csharp", Indicators: []Indicator{"*.csproj", "*.sln"}},
}

// DefaultFrameworks is the ordered framework table.
var DefaultFrameworks = []Framework{
	{Tag: "react", Indicators: []string{"react", "@types/react"}},
	{Tag: "vue", Indicators: []string{"vue", "@vue/"}},
	{Tag: "angular", Indicators: []string{"@angular/"}},
	{Tag: "express", Indicators: []string{"express"}},
	{Tag: "django", Indicators: []string{"django", "Django"}},
	{Tag: "flask", Indicators: []string{"flask", "Flask"}},
	{Tag: "spring", Indicators: []string{"spring-boot", "org.springframework"}},
	{Tag: "laravel", Indicators: []string{"laravel/framework"}},
}

// DefaultCIMarkers detect a CI setup. Entries ending in ".yml" or "file" are
// file markers; the rest are directory prefixes.
var DefaultCIMarkers = []string{
	".github/workflows",
	".gitlab-ci.yml",
	".circleci/config.yml",
	"azure-pipelines.yml",
	"Jenkinsfile",
}

// DefaultTestKeywords mark test directories (case-insensitive substring).
var DefaultTestKeywords = []string{"test", "tests", "spec", "__tests__"}

// Manifest files read for framework detection, relative to the root.
const (
	packageManifest  = "package.json"
	requirementsList = "requirements.txt"
)

// matchIndicator reports whether ind matches the given file and directory sets.
func matchIndicator(ind Indicator, files, dirs []string) bool {
	s := string(ind)
	switch {
	case strings.HasSuffix(s, "/"):
		return anyPrefix(dirs, strings.TrimSuffix(s, "/"))
	case strings.HasPrefix(s, "*"):
		suffix := s[1:]
		for _, f := range files {
			if strings.HasSuffix(f, suffix) {
				return true
			}
		}
		return false
	default:
		return anyPathMatch(files, s)
	}
}

// detectProjectTypes returns every ecosystem with at least one matching
// indicator, in table order. Ecosystems are independent of each other.
func detectProjectTypes(ecosystems []Ecosystem, files, dirs []string) []string {
	types := []string{}
	for _, eco := range ecosystems {
		for _, ind := range eco.Indicators {
			if matchIndicator(ind, files, dirs) {
				types = append(types, eco.Tag)
				break
			}
		}
	}
	return types
}

// packageJSON holds the dependency sections of package.json.
type packageJSON struct {
	Dependencies    map[string]any `json:"dependencies"`
	DevDependencies map[string]any `json:"devDependencies"`
}

// detectFrameworks reads the root manifests and returns detected framework
// tags in table order. A missing manifest is skipped silently; an unreadable
// or malformed one is reported through warn and contributes nothing.
func detectFrameworks(frameworks []Framework, root string, warn func(string)) []string {
	found := make(map[string]bool)

	if names, err := readPackageDependencies(filepath.Join(root, packageManifest)); err != nil {
		if !os.IsNotExist(err) {
			warn(fmt.Sprintf("%s unreadable: %v", packageManifest, err))
		}
	} else {
		for _, fw := range frameworks {
			if anyDependency(names, fw.Indicators) {
				found[fw.Tag] = true
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, requirementsList)); err != nil {
		if !os.IsNotExist(err) {
			warn(fmt.Sprintf("%s unreadable: %v", requirementsList, err))
		}
	} else {
		content := string(data)
		for _, fw := range frameworks {
			for _, ind := range fw.Indicators {
				if strings.Contains(content, ind) {
					found[fw.Tag] = true
					break
				}
			}
		}
	}

	result := []string{}
	for _, fw := range frameworks {
		if found[fw.Tag] {
			result = append(result, fw.Tag)
		}
	}
	return result
}

// readPackageDependencies returns the declared dependency names of a
// package.json (dependencies and devDependencies).
func readPackageDependencies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	names := make([]string, 0, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	for name := range pkg.DevDependencies {
		names = append(names, name)
	}
	return names, nil
}

func anyDependency(names, indicators []string) bool {
	for _, ind := range indicators {
		for _, name := range names {
			if strings.Contains(name, ind) {
				return true
			}
		}
	}
	return false
}

// hasCI reports whether any CI marker is present.
func hasCI(markers, files, dirs []string) bool {
	for _, m := range markers {
		if strings.HasSuffix(m, ".yml") || strings.HasSuffix(m, "file") {
			if anyPathMatch(files, m) {
				return true
			}
			continue
		}
		if anyPrefix(dirs, m) {
			return true
		}
	}
	return false
}

// hasTests reports whether any directory path contains a test keyword.
func hasTests(keywords, dirs []string) bool {
	for _, d := range dirs {
		lower := strings.ToLower(d)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// anyPathMatch reports whether some path equals name or ends with "/"+name.
func anyPathMatch(paths []string, name string) bool {
	for _, p := range paths {
		if PathMatches(p, name) {
			return true
		}
	}
	return false
}

// PathMatches reports whether the relative path p is name itself or has name
// as its trailing path segments.
func PathMatches(p, name string) bool {
	return p == name || strings.HasSuffix(p, "/"+name)
}

func anyPrefix(paths []string, prefix string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
