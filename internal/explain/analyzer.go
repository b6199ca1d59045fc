package explain

import (
	"sort"
	"strings"

	"qinter/internal/pack"
)

// ErrorContext carries the ambient information captured alongside an error:
// the variables bound in the erroring scope and the modules imported there.
// How this is captured from a live program is the interceptor's business.
type ErrorContext struct {
	Variables map[string]string
	Modules   []string
}

// Signals are the derived facts the analyzer computes about an error's
// subject name. Context conditions are evaluated against Signals, never
// against the raw context.
type Signals struct {
	Subject string

	// Identifier similarity
	SimilarVariables []string
	ClosestVariable  string
	SimilarityScore  float64

	// Missing-import detection
	LooksLikeImport bool

	// Builtin typo detection
	BuiltinTypo    bool
	CorrectBuiltin string
	BuiltinScore   float64
}

// Base cutoffs below which candidates are not reported at all. Rules apply
// their own, usually stricter, thresholds on top.
const (
	similarityCutoff = 0.4
	builtinCutoff    = 0.5
	maxSimilar       = 5
)

// wellKnownModules are importable module names commonly used before their
// import statement exists.
var wellKnownModules = map[string]bool{
	"requests": true, "pandas": true, "numpy": true, "matplotlib": true,
	"json": true, "os": true, "sys": true, "datetime": true, "math": true,
	"random": true, "time": true, "urllib": true, "sqlite3": true,
	"csv": true, "pickle": true, "itertools": true, "collections": true,
	"functools": true, "operator": true, "re": true, "pathlib": true,
}

// coreBuiltins are the builtin function names checked for typos.
var coreBuiltins = []string{
	"abs", "dict", "enumerate", "filter", "float", "input", "int", "len",
	"list", "map", "max", "min", "open", "print", "range", "sorted", "str",
	"sum", "tuple", "type", "zip",
}

// Analyzer computes Signals for a subject name against an error context.
// It is pure: no I/O, no side effects, no caching across calls.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze derives all signals for subject within ctx. An empty subject
// yields empty signals.
func (a *Analyzer) Analyze(subject string, ctx ErrorContext) Signals {
	sig := Signals{Subject: subject}
	if subject == "" {
		return sig
	}

	a.analyzeSimilarity(&sig, availableVariables(ctx))
	sig.LooksLikeImport = wellKnownModules[strings.ToLower(subject)] || containsFold(ctx.Modules, subject)
	a.analyzeBuiltinTypo(&sig)
	return sig
}

// Evaluate applies one context condition to previously computed signals.
// The kind set is closed; the pack schema rejects anything else.
func (a *Analyzer) Evaluate(cond pack.ContextCondition, sig Signals) bool {
	switch cond.Kind {
	case pack.CondVariableSimilarity:
		threshold := cond.Threshold
		if threshold == 0 {
			threshold = 0.6
		}
		minMatches := cond.MinMatches
		if minMatches == 0 {
			minMatches = 1
		}
		return sig.SimilarityScore >= threshold && len(sig.SimilarVariables) >= minMatches

	case pack.CondImportPattern:
		if !sig.LooksLikeImport {
			return false
		}
		if len(cond.Modules) == 0 {
			return true
		}
		return containsFold(cond.Modules, sig.Subject)

	case pack.CondBuiltinTypo:
		threshold := cond.Threshold
		if threshold == 0 {
			threshold = 0.6
		}
		if !sig.BuiltinTypo || sig.BuiltinScore < threshold {
			return false
		}
		if len(cond.Functions) == 0 {
			return true
		}
		return containsFold(cond.Functions, sig.CorrectBuiltin)
	}
	return false
}

func (a *Analyzer) analyzeSimilarity(sig *Signals, candidates []string) {
	type scored struct {
		name  string
		score float64
		dist  int
	}
	var hits []scored
	for _, name := range candidates {
		if name == sig.Subject {
			continue
		}
		dist := levenshtein(sig.Subject, name)
		score := similarityScore(sig.Subject, name, dist)
		if score >= similarityCutoff {
			hits = append(hits, scored{name: name, score: score, dist: dist})
		}
	}
	// Deterministic ranking: higher score, then shorter edit distance,
	// then lexical order.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > maxSimilar {
		hits = hits[:maxSimilar]
	}
	for _, h := range hits {
		sig.SimilarVariables = append(sig.SimilarVariables, h.name)
	}
	if len(hits) > 0 {
		sig.ClosestVariable = hits[0].name
		sig.SimilarityScore = hits[0].score
	}
}

func (a *Analyzer) analyzeBuiltinTypo(sig *Signals) {
	best := ""
	bestScore := 0.0
	bestDist := 0
	for _, b := range coreBuiltins {
		dist := levenshtein(sig.Subject, b)
		score := similarityScore(sig.Subject, b, dist)
		better := score > bestScore ||
			(score == bestScore && dist < bestDist) ||
			(score == bestScore && dist == bestDist && b < best)
		if better {
			best, bestScore, bestDist = b, score, dist
		}
	}
	// An exact builtin name is not a typo.
	if best != "" && bestScore >= builtinCutoff && !strings.EqualFold(sig.Subject, best) {
		sig.BuiltinTypo = true
		sig.CorrectBuiltin = best
		sig.BuiltinScore = bestScore
	}
}

// availableVariables filters the context's variable names the way users name
// things: internal underscore-prefixed and single-letter names are ignored.
func availableVariables(ctx ErrorContext) []string {
	var out []string
	for name := range ctx.Variables {
		if strings.HasPrefix(name, "_") || len(name) <= 1 {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// levenshtein computes the edit distance between two strings, rune-aware and
// case-insensitive.
func levenshtein(a, b string) int {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := 0; j <= len(br); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}

// similarityScore normalizes an edit distance to [0,1], 1 meaning identical.
func similarityScore(a, b string, dist int) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
