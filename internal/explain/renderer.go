package explain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"qinter/internal/pack"
)

// ErrMissingBinding is returned when a template references a placeholder
// absent from the bindings. The engine converts it to an absent result; a
// partially broken explanation is worse than none.
var ErrMissingBinding = errors.New("missing template binding")

// RenderedExample is one substituted code example.
type RenderedExample struct {
	Description string
	Code        string
}

// Attribution identifies the pack an explanation came from.
type Attribution struct {
	PackName    string
	PackVersion string
	PackAuthor  string
}

// Explanation is the rendered payload returned to the caller. The engine
// does not retain it.
type Explanation struct {
	Title       string
	Description string
	Suggestions []string
	Examples    []RenderedExample
	Source      Attribution
}

// placeholderRE matches {name} and {name:spec} tokens.
var placeholderRE = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^{}]+))?\}`)

// Renderer substitutes bindings into a matched rule's templates.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// Render produces the final explanation for a match. Suggestions and
// examples whose applicability condition is not satisfied are dropped;
// survivors are ordered by ascending declared priority.
func (r *Renderer) Render(m *Match) (*Explanation, error) {
	content := m.Rule.Content

	title, err := substitute(content.Title, m.Bindings)
	if err != nil {
		return nil, fmt.Errorf("title of rule %q: %w", m.Rule.ID, err)
	}
	desc, err := substitute(content.Description, m.Bindings)
	if err != nil {
		return nil, fmt.Errorf("description of rule %q: %w", m.Rule.ID, err)
	}

	suggestions, err := r.renderSuggestions(content.Suggestions, m.Bindings)
	if err != nil {
		return nil, fmt.Errorf("suggestions of rule %q: %w", m.Rule.ID, err)
	}
	examples, err := r.renderExamples(content.Examples, m.Bindings)
	if err != nil {
		return nil, fmt.Errorf("examples of rule %q: %w", m.Rule.ID, err)
	}

	return &Explanation{
		Title:       title,
		Description: desc,
		Suggestions: suggestions,
		Examples:    examples,
		Source: Attribution{
			PackName:    m.Pack.Metadata.Name,
			PackVersion: m.Pack.Metadata.Version,
			PackAuthor:  m.Pack.Metadata.Author,
		},
	}, nil
}

func (r *Renderer) renderSuggestions(suggestions []pack.Suggestion, b Bindings) ([]string, error) {
	kept := make([]pack.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if applicable(s.Condition, b) {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Priority < kept[j].Priority })

	out := make([]string, 0, len(kept))
	for _, s := range kept {
		text, err := substitute(s.Template, b)
		if err != nil {
			return nil, err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func (r *Renderer) renderExamples(examples []pack.Example, b Bindings) ([]RenderedExample, error) {
	kept := make([]pack.Example, 0, len(examples))
	for _, e := range examples {
		if applicable(e.Condition, b) {
			kept = append(kept, e)
		}
	}

	out := make([]RenderedExample, 0, len(kept))
	for _, e := range kept {
		desc, err := substitute(e.Description, b)
		if err != nil {
			return nil, err
		}
		code, err := substituteCode(e.Code, b)
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedExample{Description: desc, Code: code})
	}
	return out, nil
}

// applicable decides whether a conditional entry is kept: "always" is kept
// unconditionally, any other value names a boolean binding that must exist
// and be true. Unknown or false flags drop the entry, they never error.
func applicable(condition string, b Bindings) bool {
	if condition == "" || condition == "always" {
		return true
	}
	flag, ok := b[condition].(bool)
	return ok && flag
}

// substitute replaces every {name} token with its binding. A token without a
// binding fails with ErrMissingBinding.
func substitute(template string, b Bindings) (string, error) {
	out, err := substituteRaw(template, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// substituteCode is substitute for code blocks: leading indentation is
// meaningful there, so only trailing whitespace is trimmed.
func substituteCode(template string, b Bindings) (string, error) {
	out, err := substituteRaw(template, b)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, " \t\n"), nil
}

func substituteRaw(template string, b Bindings) (string, error) {
	var missing string
	out := placeholderRE.ReplaceAllStringFunc(template, func(tok string) string {
		groups := placeholderRE.FindStringSubmatch(tok)
		name, spec := groups[1], groups[2]
		v, ok := b[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return tok
		}
		return formatValue(v, spec)
	})
	if missing != "" {
		return "", fmt.Errorf("%w: {%s}", ErrMissingBinding, missing)
	}
	return out, nil
}

// formatValue renders a binding, honoring the original pack format specs:
// ".0%" renders a fractional score as a whole percentage and ".Nf" renders
// fixed decimals.
func formatValue(v any, spec string) string {
	if spec != "" {
		if f, ok := toFloat(v); ok {
			if spec == ".0%" {
				return strconv.FormatFloat(f*100, 'f', 0, 64) + "%"
			}
			if strings.HasPrefix(spec, ".") && strings.HasSuffix(spec, "f") {
				if n, err := strconv.Atoi(spec[1 : len(spec)-1]); err == nil {
					return strconv.FormatFloat(f, 'f', n, 64)
				}
			}
		}
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
