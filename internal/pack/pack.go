// Package pack defines the explanation pack model and the YAML loader that
// turns pack files into validated, regex-precompiled in-memory packs.
package pack

import "regexp"

// Metadata describes an explanation pack. It is purely descriptive; matching
// never consults it except Targets, which documents the categories a pack
// intends to cover.
type Metadata struct {
	Name          string   `yaml:"name"`
	Version       string   `yaml:"version"`
	Description   string   `yaml:"description"`
	Author        string   `yaml:"author"`
	License       string   `yaml:"license"`
	QinterVersion string   `yaml:"qinter_version"`
	Targets       []string `yaml:"targets"`
	Tags          []string `yaml:"tags"`
	Dependencies  []string `yaml:"dependencies"`
	Homepage      string   `yaml:"homepage"`
	Repository    string   `yaml:"repository"`
}

// Context condition kinds understood by the matcher. The set is closed:
// adding a kind means adding a variant here, a schema enum entry, and an
// evaluator branch in the analyzer.
const (
	CondVariableSimilarity = "variable_similarity"
	CondImportPattern      = "import_pattern"
	CondBuiltinTypo        = "builtin_typo"
)

// ContextCondition is one tagged predicate evaluated against the context
// analyzer's signals. Only the fields relevant to its Kind are set.
type ContextCondition struct {
	Kind       string   `yaml:"type"`
	Threshold  float64  `yaml:"threshold"`
	MinMatches int      `yaml:"min_matches"`
	Modules    []string `yaml:"modules"`
	Functions  []string `yaml:"functions"`
}

// MessagePattern pairs a pattern's source text with its compiled form.
// Patterns are compiled once at load time, case-insensitively.
type MessagePattern struct {
	Source string
	Regexp *regexp.Regexp
}

// Conditions decides whether a rule applies to an error: the category must
// match exactly, at least one message pattern must match, and every context
// condition must hold.
type Conditions struct {
	Category          string
	MessagePatterns   []MessagePattern
	ContextConditions []ContextCondition
}

// Suggestion is one conditional, prioritized suggestion template.
type Suggestion struct {
	Template  string `yaml:"template"`
	Condition string `yaml:"condition"`
	Priority  int    `yaml:"priority"`
}

// Example is one conditional code example.
type Example struct {
	ID          string `yaml:"id"`
	Condition   string `yaml:"condition"`
	Description string `yaml:"description"`
	Code        string `yaml:"code"`
}

// Content holds the renderable templates of a rule.
type Content struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Suggestions []Suggestion `yaml:"suggestions"`
	Examples    []Example    `yaml:"examples"`
}

// Rule maps one condition to one content template. IDs are unique within a
// pack but may collide across packs; nothing depends on global uniqueness.
type Rule struct {
	ID         string
	Priority   int
	Conditions Conditions
	Content    Content
}

// Pack is a loaded explanation pack. Immutable after load; a reload replaces
// the pack wholesale.
type Pack struct {
	Metadata Metadata
	Rules    []Rule
	Path     string
}

// Categories returns the distinct error categories the pack's rules target,
// in first-seen order.
func (p *Pack) Categories() []string {
	seen := make(map[string]bool, len(p.Rules))
	var out []string
	for _, r := range p.Rules {
		if !seen[r.Conditions.Category] {
			seen[r.Conditions.Category] = true
			out = append(out, r.Conditions.Category)
		}
	}
	return out
}
