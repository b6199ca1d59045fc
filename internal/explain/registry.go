package explain

import "qinter/internal/pack"

// RuleRef is one rule together with the pack that declared it.
type RuleRef struct {
	Pack *pack.Pack
	Rule *pack.Rule
}

// Registry holds the registered packs in registration order. Registration is
// atomic per pack: the matcher never observes a partially registered pack.
// Registry is not safe for concurrent use; the engine serializes access.
type Registry struct {
	order []string
	packs map[string]*pack.Pack
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{packs: make(map[string]*pack.Pack)}
}

// Register adds a pack, replacing any pack of the same name. A replaced pack
// keeps its original position in registration order so re-registration is
// idempotent with respect to tie-breaking.
func (r *Registry) Register(p *pack.Pack) {
	name := p.Metadata.Name
	if _, ok := r.packs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.packs[name] = p
}

// Clear empties the registry. Used before a reload.
func (r *Registry) Clear() {
	r.order = nil
	r.packs = make(map[string]*pack.Pack)
}

// Packs returns the registered packs in registration order.
func (r *Registry) Packs() []*pack.Pack {
	out := make([]*pack.Pack, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.packs[name])
	}
	return out
}

// AllRules returns every (pack, rule) pair: packs in registration order,
// rules within a pack in declaration order.
func (r *Registry) AllRules() []RuleRef {
	var out []RuleRef
	for _, name := range r.order {
		p := r.packs[name]
		for i := range p.Rules {
			out = append(out, RuleRef{Pack: p, Rule: &p.Rules[i]})
		}
	}
	return out
}

// Len reports the number of registered packs.
func (r *Registry) Len() int { return len(r.order) }

// RuleCount reports the total number of rules across all packs.
func (r *Registry) RuleCount() int {
	n := 0
	for _, p := range r.packs {
		n += len(p.Rules)
	}
	return n
}

// Categories returns the distinct categories covered by registered rules,
// in first-seen order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.order {
		for _, c := range r.packs[name].Categories() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
