package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfigurationInvalid is returned when a rule document cannot be used at
// all. Problems confined to a single rule skip that rule instead.
var ErrConfigurationInvalid = errors.New("rule configuration invalid")

//go:embed default_rules.yaml
var defaultRules []byte

// Document is a loaded rule set.
type Document struct {
	Rules   []Rule
	Skipped []SkippedRule

	// Warnings are configuration problems that did not skip a rule, such as
	// conditions outside the grammar.
	Warnings []string

	// ConfidenceWeights overrides the scorer's confidence table.
	ConfidenceWeights map[Level]float64

	// SeverityRanks orders severities from worst (highest) to mildest.
	SeverityRanks map[Level]int
}

// pathList accepts either a single path or a sequence of paths.
type pathList []string

func (p *pathList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = pathList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	return fmt.Errorf("line %d: check must be a path or a list of paths", value.Line)
}

type rawDocument struct {
	Patterns yaml.Node `yaml:"patterns"`
	Scoring  map[Level]struct {
		Weight *float64 `yaml:"weight"`
	} `yaml:"scoring"`
	Severity map[Level]struct {
		Priority int `yaml:"priority"`
	} `yaml:"severity"`
}

type rawRule struct {
	ID             string               `yaml:"id"`
	Type           Type                 `yaml:"type"`
	Check          pathList             `yaml:"check"`
	AppliesWhen    string               `yaml:"applies_when"`
	Confidence     Level                `yaml:"confidence"`
	Severity       Level                `yaml:"severity"`
	Criteria       map[string]yaml.Node `yaml:"criteria"`
	Recommendation *rawRecommendation   `yaml:"recommendation"`
}

type rawRecommendation struct {
	Template string `yaml:"template"`
	Reason   string `yaml:"reason"`
	Variants []struct {
		Condition string `yaml:"condition"`
		Template  string `yaml:"template"`
	} `yaml:"variants"`
}

// Loader decodes rule documents. Its criteria registry decides which
// file_quality criteria are accepted.
type Loader struct {
	Criteria map[string]CriterionFactory
	Logger   *slog.Logger
}

// NewLoader returns a Loader with the built-in criteria.
func NewLoader() *Loader {
	return &Loader{Criteria: DefaultCriteria()}
}

// RegisterCriterion adds or replaces a file_quality criterion.
func (l *Loader) RegisterCriterion(name string, factory CriterionFactory) {
	if l.Criteria == nil {
		l.Criteria = make(map[string]CriterionFactory)
	}
	l.Criteria[name] = factory
}

// Parse decodes a rule document with the built-in criteria.
func Parse(data []byte) (*Document, error) {
	return NewLoader().Parse(data)
}

// Load reads and decodes the rule document at path.
func Load(path string) (*Document, error) {
	return NewLoader().Load(path)
}

// Default returns the embedded rule set.
func Default() (*Document, error) {
	return NewLoader().Default()
}

// Default decodes the embedded rule set.
func (l *Loader) Default() (*Document, error) {
	return l.Parse(defaultRules)
}

// Load reads and decodes the rule document at path.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfigurationInvalid, path, err)
	}
	doc, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a rule document. The document itself must be well formed;
// individual rules that fail validation are recorded in Skipped.
func (l *Loader) Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrConfigurationInvalid)
	}

	var raw rawDocument
	if err := root.Content[0].Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}

	doc := &Document{
		ConfidenceWeights: make(map[Level]float64),
		SeverityRanks:     make(map[Level]int),
	}
	for level, s := range raw.Scoring {
		if s.Weight != nil {
			doc.ConfidenceWeights[level] = *s.Weight
		}
	}
	for level, s := range raw.Severity {
		doc.SeverityRanks[level] = s.Priority
	}

	switch {
	case raw.Patterns.Kind == 0, raw.Patterns.Tag == "!!null":
		// No patterns key: an empty rule set.
	case raw.Patterns.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("%w: patterns must be a list (line %d)", ErrConfigurationInvalid, raw.Patterns.Line)
	default:
		l.decodeRules(doc, raw.Patterns.Content)
	}
	return doc, nil
}

func (l *Loader) decodeRules(doc *Document, nodes []*yaml.Node) {
	seen := make(map[string]bool)
	for i, n := range nodes {
		id := scalarField(n, "id")
		rule, warnings, reason := l.decodeRule(n)
		if reason == "" && seen[rule.ID] {
			reason = "duplicate id"
		}
		if reason != "" {
			doc.Skipped = append(doc.Skipped, SkippedRule{Index: i, ID: id, Reason: reason})
			l.logger().Warn("rule skipped", "index", i, "id", id, "reason", reason)
			continue
		}
		seen[rule.ID] = true
		doc.Rules = append(doc.Rules, rule)
		doc.Warnings = append(doc.Warnings, warnings...)
	}
}

// decodeRule validates one pattern node. A non-empty reason means the rule
// must be skipped.
func (l *Loader) decodeRule(n *yaml.Node) (rule Rule, warnings []string, reason string) {
	if n.Kind != yaml.MappingNode {
		return Rule{}, nil, "not a mapping"
	}
	var raw rawRule
	if err := n.Decode(&raw); err != nil {
		return Rule{}, nil, "undecodable: " + err.Error()
	}
	switch {
	case raw.ID == "":
		return Rule{}, nil, "missing id"
	case raw.Type == "":
		return Rule{}, nil, "missing type"
	case len(raw.Check) == 0:
		return Rule{}, nil, "missing check"
	}
	if _, ok := evaluators[raw.Type]; !ok {
		return Rule{}, nil, fmt.Sprintf("unknown type %q", raw.Type)
	}

	rule = Rule{
		ID:         raw.ID,
		Type:       raw.Type,
		Check:      raw.Check,
		Confidence: orMedium(raw.Confidence),
		Severity:   orMedium(raw.Severity),
	}

	compile := func(where, expr string) Condition {
		c, ok := CompileCondition(expr)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("rule %s: %s %q is not a recognized condition; treated as always", raw.ID, where, expr))
		}
		return c
	}

	if raw.AppliesWhen != "" {
		rule.AppliesWhen = compile("applies_when", raw.AppliesWhen)
	}

	names := make([]string, 0, len(raw.Criteria))
	for name := range raw.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		factory, ok := l.Criteria[name]
		if !ok {
			return Rule{}, nil, fmt.Sprintf("unknown criterion %q", name)
		}
		value := raw.Criteria[name]
		c, err := factory(&value)
		if err != nil {
			return Rule{}, nil, "invalid criterion: " + err.Error()
		}
		rule.Criteria = append(rule.Criteria, c)
	}

	if rec := raw.Recommendation; rec != nil {
		if rec.Template == "" && len(rec.Variants) == 0 {
			return Rule{}, nil, "recommendation has no template"
		}
		spec := &RecommendationSpec{Template: rec.Template, Reason: rec.Reason}
		for _, v := range rec.Variants {
			if v.Template == "" {
				return Rule{}, nil, "recommendation variant has no template"
			}
			spec.Variants = append(spec.Variants, Variant{
				Condition: compile("variant condition", v.Condition),
				Template:  v.Template,
			})
		}
		rule.Recommendation = spec
	}
	return rule, warnings, ""
}

// scalarField returns the string value of key in a mapping node, or "".
func scalarField(n *yaml.Node, key string) string {
	if n.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key && n.Content[i+1].Kind == yaml.ScalarNode {
			return n.Content[i+1].Value
		}
	}
	return ""
}

func orMedium(l Level) Level {
	if l == "" {
		return LevelMedium
	}
	return l
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default().With("component", "rules")
}
