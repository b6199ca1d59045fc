package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const singleRule = `  - id: r1
    priority: 10
    conditions:
      exception_type: NameError
      message_patterns:
        - "name '(?P<variable_name>[^']+)' is not defined"
    explanation:
      title: "t"
      description: "d"
`

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()
	r.Register(mustPack(t, "beta", singleRule))
	r.Register(mustPack(t, "alpha", singleRule))

	refs := r.AllRules()
	assert.Len(t, refs, 2)
	// Registration order, not lexical order.
	assert.Equal(t, "beta", refs[0].Pack.Metadata.Name)
	assert.Equal(t, "alpha", refs[1].Pack.Metadata.Name)
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register(mustPack(t, "beta", singleRule))
	r.Register(mustPack(t, "alpha", singleRule))

	replacement := mustPack(t, "beta", singleRule)
	replacement.Metadata.Version = "2.0.0"
	r.Register(replacement)

	assert.Equal(t, 2, r.Len())
	packs := r.Packs()
	assert.Equal(t, "beta", packs[0].Metadata.Name)
	assert.Equal(t, "2.0.0", packs[0].Metadata.Version)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Register(mustPack(t, "beta", singleRule))
	r.Clear()

	assert.Zero(t, r.Len())
	assert.Zero(t, r.RuleCount())
	assert.Empty(t, r.AllRules())
}

func TestRegistryCategories(t *testing.T) {
	r := NewRegistry()
	r.Register(mustPack(t, "p1", `  - id: a
    priority: 1
    conditions:
      exception_type: NameError
      message_patterns: [".*"]
    explanation:
      title: "t"
      description: "d"
  - id: b
    priority: 1
    conditions:
      exception_type: TypeError
      message_patterns: [".*"]
    explanation:
      title: "t"
      description: "d"
`))
	r.Register(mustPack(t, "p2", `  - id: c
    priority: 1
    conditions:
      exception_type: NameError
      message_patterns: [".*"]
    explanation:
      title: "t"
      description: "d"
`))

	assert.Equal(t, []string{"NameError", "TypeError"}, r.Categories())
	assert.Equal(t, 3, r.RuleCount())
}
