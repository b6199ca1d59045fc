package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qinter/internal/pack"
)

func TestAnalyzeSimilarity(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name        string
		subject     string
		variables   map[string]string
		wantClosest string
		wantAbove   float64
	}{
		{
			name:        "close typo is found",
			subject:     "foo",
			variables:   map[string]string{"fooo": "int", "bar": "int"},
			wantClosest: "fooo",
			wantAbove:   0.6,
		},
		{
			name:        "no close match",
			subject:     "foo",
			variables:   map[string]string{"bar": "int", "baz": "int"},
			wantClosest: "",
		},
		{
			name:        "case insensitive",
			subject:     "response",
			variables:   map[string]string{"Respnse": "dict"},
			wantClosest: "Respnse",
			wantAbove:   0.6,
		},
		{
			name:        "underscore and single letter names ignored",
			subject:     "foo",
			variables:   map[string]string{"_foo": "int", "f": "int"},
			wantClosest: "",
		},
		{
			name:        "exact name is not a similarity candidate",
			subject:     "count",
			variables:   map[string]string{"count": "int"},
			wantClosest: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := a.Analyze(tt.subject, ErrorContext{Variables: tt.variables})
			assert.Equal(t, tt.wantClosest, sig.ClosestVariable)
			if tt.wantClosest != "" {
				assert.GreaterOrEqual(t, sig.SimilarityScore, tt.wantAbove)
				assert.NotEmpty(t, sig.SimilarVariables)
			} else {
				assert.Zero(t, sig.SimilarityScore)
				assert.Empty(t, sig.SimilarVariables)
			}
		})
	}
}

func TestAnalyzeSimilarityDeterministicTieBreak(t *testing.T) {
	a := NewAnalyzer()
	// Both candidates are one edit away from the subject with equal
	// length; lexical order must decide, independent of map iteration.
	ctx := ErrorContext{Variables: map[string]string{"datb": "int", "data": "int", "datc": "int"}}
	for range 20 {
		sig := a.Analyze("datz", ctx)
		require.Equal(t, "data", sig.ClosestVariable)
	}
}

func TestAnalyzeImportPattern(t *testing.T) {
	a := NewAnalyzer()

	sig := a.Analyze("requests", ErrorContext{})
	assert.True(t, sig.LooksLikeImport)

	sig = a.Analyze("definitely_not_a_module", ErrorContext{})
	assert.False(t, sig.LooksLikeImport)

	// Names the context reports as importable count too.
	sig = a.Analyze("mypkg", ErrorContext{Modules: []string{"mypkg"}})
	assert.True(t, sig.LooksLikeImport)
}

func TestAnalyzeBuiltinTypo(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		subject     string
		wantTypo    bool
		wantBuiltin string
	}{
		{subject: "prin", wantTypo: true, wantBuiltin: "print"},
		{subject: "flot", wantTypo: true, wantBuiltin: "float"},
		{subject: "lsit", wantTypo: true, wantBuiltin: "list"},
		{subject: "print", wantTypo: false}, // exact builtin is not a typo
		{subject: "xyzzy", wantTypo: false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			sig := a.Analyze(tt.subject, ErrorContext{})
			assert.Equal(t, tt.wantTypo, sig.BuiltinTypo)
			if tt.wantTypo {
				assert.Equal(t, tt.wantBuiltin, sig.CorrectBuiltin)
				assert.Greater(t, sig.BuiltinScore, 0.0)
			}
		})
	}
}

func TestEvaluateConditions(t *testing.T) {
	a := NewAnalyzer()

	similar := Signals{
		Subject:          "foo",
		SimilarVariables: []string{"fooo"},
		ClosestVariable:  "fooo",
		SimilarityScore:  0.75,
	}
	importish := Signals{Subject: "pandas", LooksLikeImport: true}
	typo := Signals{Subject: "prin", BuiltinTypo: true, CorrectBuiltin: "print", BuiltinScore: 0.8}

	tests := []struct {
		name string
		cond pack.ContextCondition
		sig  Signals
		want bool
	}{
		{
			name: "similarity above threshold",
			cond: pack.ContextCondition{Kind: pack.CondVariableSimilarity, Threshold: 0.6, MinMatches: 1},
			sig:  similar,
			want: true,
		},
		{
			name: "similarity below threshold",
			cond: pack.ContextCondition{Kind: pack.CondVariableSimilarity, Threshold: 0.9},
			sig:  similar,
			want: false,
		},
		{
			name: "similarity needs enough matches",
			cond: pack.ContextCondition{Kind: pack.CondVariableSimilarity, Threshold: 0.6, MinMatches: 2},
			sig:  similar,
			want: false,
		},
		{
			name: "import pattern unrestricted",
			cond: pack.ContextCondition{Kind: pack.CondImportPattern},
			sig:  importish,
			want: true,
		},
		{
			name: "import pattern restricted to matching subset",
			cond: pack.ContextCondition{Kind: pack.CondImportPattern, Modules: []string{"pandas", "numpy"}},
			sig:  importish,
			want: true,
		},
		{
			name: "import pattern restricted to non-matching subset",
			cond: pack.ContextCondition{Kind: pack.CondImportPattern, Modules: []string{"numpy"}},
			sig:  importish,
			want: false,
		},
		{
			name: "builtin typo above threshold",
			cond: pack.ContextCondition{Kind: pack.CondBuiltinTypo, Threshold: 0.6},
			sig:  typo,
			want: true,
		},
		{
			name: "builtin typo restricted to subset",
			cond: pack.ContextCondition{Kind: pack.CondBuiltinTypo, Threshold: 0.6, Functions: []string{"len"}},
			sig:  typo,
			want: false,
		},
		{
			name: "unknown kind never matches",
			cond: pack.ContextCondition{Kind: "file_extension"},
			sig:  similar,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Evaluate(tt.cond, tt.sig))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"foo", "fooo", 1},
		{"Foo", "foo", 0}, // case folded
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "levenshtein(%q, %q)", tt.a, tt.b)
	}
}
