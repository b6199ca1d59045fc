package explain

import (
	"qinter/internal/pack"

	"go.uber.org/zap"
)

// Bindings are the resolved placeholder values used during rendering: regex
// captures as strings plus typed values derived from signals.
type Bindings map[string]any

// Match is the transient result of a successful rule selection. It is never
// retained between calls.
type Match struct {
	Rule     *pack.Rule
	Pack     *pack.Pack
	Bindings Bindings
}

// Capture names that identify the error's subject, in preference order. If a
// pattern names none of these, the first capture group stands in.
var subjectCaptures = []string{"variable_name", "attribute", "missing_key"}

// Matcher selects the best rule for an error from the registry's rules.
type Matcher struct {
	registry *Registry
	analyzer *Analyzer
	logger   *zap.Logger
}

// NewMatcher returns a matcher over registry.
func NewMatcher(registry *Registry, analyzer *Analyzer, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{registry: registry, analyzer: analyzer, logger: logger.Named("matcher")}
}

// FindBest returns the highest-priority rule matching the error, with ties
// broken by pack registration order then rule declaration order. The second
// return is false when no rule matches; that is the expected "no explanation
// available" outcome, not an error.
func (m *Matcher) FindBest(category, message string, ctx ErrorContext) (*Match, bool) {
	var (
		best     *Match
		bestPrio int
	)
	// Signals depend only on the subject name within one call, so rules
	// extracting the same subject share one computation.
	signalsBySubject := make(map[string]Signals)

	for _, ref := range m.registry.AllRules() {
		rule := ref.Rule
		if rule.Conditions.Category != category {
			continue
		}

		captures, re, ok := firstPatternMatch(rule.Conditions.MessagePatterns, message)
		if !ok {
			continue
		}

		subject := resolveSubject(captures, re)
		sig, cached := signalsBySubject[subject]
		if !cached {
			sig = m.analyzer.Analyze(subject, ctx)
			signalsBySubject[subject] = sig
		}

		if !m.conditionsHold(rule.Conditions.ContextConditions, sig) {
			continue
		}

		if best == nil || rule.Priority > bestPrio {
			best = &Match{
				Rule:     rule,
				Pack:     ref.Pack,
				Bindings: mergeBindings(captures, subject, sig),
			}
			bestPrio = rule.Priority
		}
	}

	if best == nil {
		return nil, false
	}
	m.logger.Debug("matched rule",
		zap.String("pack", best.Pack.Metadata.Name),
		zap.String("rule", best.Rule.ID),
		zap.Int("priority", best.Rule.Priority))
	return best, true
}

func (m *Matcher) conditionsHold(conds []pack.ContextCondition, sig Signals) bool {
	for _, c := range conds {
		if !m.analyzer.Evaluate(c, sig) {
			return false
		}
	}
	return true
}

// firstPatternMatch tries the rule's patterns in declared order; the first
// one that matches supplies the captures and ends the scan.
func firstPatternMatch(patterns []pack.MessagePattern, message string) (map[string]string, *pack.MessagePattern, bool) {
	for i := range patterns {
		p := &patterns[i]
		groups := p.Regexp.FindStringSubmatch(message)
		if groups == nil {
			continue
		}
		captures := make(map[string]string)
		for gi, name := range p.Regexp.SubexpNames() {
			if gi == 0 || gi >= len(groups) {
				continue
			}
			if name != "" {
				captures[name] = groups[gi]
			}
		}
		// Keep the first unnamed group reachable for subject resolution
		// when the pattern names nothing.
		if len(captures) == 0 && len(groups) > 1 {
			captures[""] = groups[1]
		}
		return captures, p, true
	}
	return nil, nil, false
}

// resolveSubject picks the captured value that names the missing or relevant
// identifier.
func resolveSubject(captures map[string]string, re *pack.MessagePattern) string {
	for _, name := range subjectCaptures {
		if v, ok := captures[name]; ok {
			return v
		}
	}
	// Fall back to the first named group in pattern order.
	for _, name := range re.Regexp.SubexpNames() {
		if name == "" {
			continue
		}
		if v, ok := captures[name]; ok {
			return v
		}
	}
	return captures[""]
}

// mergeBindings combines regex captures with derived signal values. Captures
// win on name collisions; the subject is also exposed as variable_name so
// patterns with unnamed groups still feed the conventional placeholder.
func mergeBindings(captures map[string]string, subject string, sig Signals) Bindings {
	b := Bindings{
		"closest_variable":        sig.ClosestVariable,
		"similarity_score":        sig.SimilarityScore,
		"similar_variables_exist": len(sig.SimilarVariables) > 0,
		"looks_like_import":       sig.LooksLikeImport,
		"builtin_typo_detected":   sig.BuiltinTypo,
		"correct_builtin":         sig.CorrectBuiltin,
		"builtin_similarity":      sig.BuiltinScore,
	}
	if subject != "" {
		b["variable_name"] = subject
	}
	for name, v := range captures {
		if name == "" {
			continue
		}
		b[name] = v
	}
	return b
}
