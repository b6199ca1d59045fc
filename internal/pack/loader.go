package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// document mirrors the on-disk YAML shape of a pack file.
type document struct {
	Metadata     Metadata  `yaml:"metadata"`
	Explanations []ruleDoc `yaml:"explanations"`
}

type ruleDoc struct {
	ID          string        `yaml:"id"`
	Priority    int           `yaml:"priority"`
	Conditions  conditionsDoc `yaml:"conditions"`
	Explanation Content       `yaml:"explanation"`
}

type conditionsDoc struct {
	ExceptionType     string             `yaml:"exception_type"`
	MessagePatterns   []string           `yaml:"message_patterns"`
	ContextConditions []ContextCondition `yaml:"context_conditions"`
}

// Loader parses and validates YAML pack files. A pack either loads whole or
// not at all; every failure is recorded as one validation-error string so
// callers can keep going with whatever did load.
type Loader struct {
	logger         *zap.Logger
	validationErrs []string
}

// NewLoader returns a Loader. A nil logger is replaced with a no-op logger.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("pack")}
}

// Load reads and parses a single pack file.
func (l *Loader) Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("read pack %s: %w", path, err)
		l.record(err)
		return nil, err
	}
	p, err := l.Parse(data)
	if err != nil {
		err = fmt.Errorf("%s: %w", filepath.Base(path), err)
		l.record(err)
		return nil, err
	}
	p.Path = path
	return p, nil
}

// Parse validates pack bytes against the pack schema and compiles the result
// into an immutable Pack. Parse does not record validation errors; Load and
// LoadDirectory do.
func (l *Loader) Parse(data []byte) (*Pack, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Explanations))
	for _, rd := range doc.Explanations {
		rule, err := compileRule(rd)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rd.ID, err)
		}
		rules = append(rules, rule)
	}

	return &Pack{Metadata: doc.Metadata, Rules: rules}, nil
}

// LoadDirectory loads every *.yaml / *.yml file in dir, skipping packs that
// fail to load. A missing directory yields no packs and no error.
func (l *Loader) LoadDirectory(dir string) []*Pack {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.record(fmt.Errorf("read pack directory %s: %w", dir, err))
		}
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var packs []*Pack
	for _, name := range names {
		p, err := l.Load(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("skipping pack", zap.String("file", name), zap.Error(err))
			continue
		}
		packs = append(packs, p)
	}
	return packs
}

// ValidationErrors returns the accumulated load-failure messages.
func (l *Loader) ValidationErrors() []string {
	out := make([]string, len(l.validationErrs))
	copy(out, l.validationErrs)
	return out
}

// ClearValidationErrors drops accumulated messages, used before a reload.
func (l *Loader) ClearValidationErrors() {
	l.validationErrs = nil
}

func (l *Loader) record(err error) {
	l.validationErrs = append(l.validationErrs, err.Error())
}

func compileRule(rd ruleDoc) (Rule, error) {
	patterns := make([]MessagePattern, 0, len(rd.Conditions.MessagePatterns))
	for _, src := range rd.Conditions.MessagePatterns {
		// Message matching is case-insensitive, matching the original
		// qinter pack semantics.
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return Rule{}, fmt.Errorf("compile pattern %q: %w", src, err)
		}
		patterns = append(patterns, MessagePattern{Source: src, Regexp: re})
	}

	content := rd.Explanation
	for i := range content.Suggestions {
		if content.Suggestions[i].Condition == "" {
			content.Suggestions[i].Condition = "always"
		}
	}
	for i := range content.Examples {
		if content.Examples[i].Condition == "" {
			content.Examples[i].Condition = "always"
		}
	}

	return Rule{
		ID:       rd.ID,
		Priority: rd.Priority,
		Conditions: Conditions{
			Category:          rd.Conditions.ExceptionType,
			MessagePatterns:   patterns,
			ContextConditions: rd.Conditions.ContextConditions,
		},
		Content: content,
	}, nil
}
