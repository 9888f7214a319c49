package ast

// DecisionModel is the complete in-memory representation of one decision
// method: its data attributes, rule sets, and services, indexed by
// qualified name. It is created once by the loader and never mutated
// afterwards, except for reference targets filled in by the resolver.
type DecisionModel struct {
	Name string // Decision model name (shared by its documents)

	RuleSets []*RuleSet // In document order
	Services []*Service

	// Attributes indexes every data attribute by qualified name.
	Attributes map[string]*DataAttribute
}

// NewDecisionModel creates an empty decision model.
func NewDecisionModel(name string) *DecisionModel {
	return &DecisionModel{
		Name:       name,
		Attributes: make(map[string]*DataAttribute),
	}
}

// Attribute returns the attribute with the given qualified name, or nil.
func (m *DecisionModel) Attribute(qname string) *DataAttribute {
	return m.Attributes[qname]
}

// RuleSet returns the rule set with the given name, or nil.
func (m *DecisionModel) RuleSet(name string) *RuleSet {
	for _, rs := range m.RuleSets {
		if rs.Name == name {
			return rs
		}
	}
	return nil
}

// Service returns the service with the given name, or nil.
func (m *DecisionModel) Service(name string) *Service {
	for _, s := range m.Services {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Rule resolves a "ruleset/name" qualified rule name, or returns nil.
func (m *DecisionModel) Rule(qname string) *Rule {
	for _, rs := range m.RuleSets {
		for _, r := range rs.Rules {
			if r.QualifiedName() == qname {
				return r
			}
		}
	}
	return nil
}

// Rules returns every rule across all rule sets, in rule set order then
// position order.
func (m *DecisionModel) Rules() []*Rule {
	var rules []*Rule
	for _, rs := range m.RuleSets {
		rules = append(rules, rs.Rules...)
	}
	return rules
}

// AttrRefs returns every attribute reference in the model, across rules
// and services, in source order.
func (m *DecisionModel) AttrRefs() []*AttrRef {
	var refs []*AttrRef
	for _, rs := range m.RuleSets {
		for _, r := range rs.Rules {
			refs = append(refs, r.AttrRefs()...)
		}
	}
	for _, s := range m.Services {
		refs = append(refs, s.AttrRefs()...)
	}
	return refs
}

// Resolved reports whether every reference in the model carries a target.
// A freshly loaded model with cross-document references is unresolved
// until the resolver has run.
func (m *DecisionModel) Resolved() bool {
	for _, ref := range m.AttrRefs() {
		if !ref.Resolved() {
			return false
		}
	}
	for _, rs := range m.RuleSets {
		for _, r := range rs.Rules {
			if r.Consequence == nil {
				continue
			}
			if r.Consequence.Rule != nil && !r.Consequence.Rule.Resolved() {
				return false
			}
			if r.Consequence.Service != nil && !r.Consequence.Service.Resolved() {
				return false
			}
		}
	}
	return true
}

// ProducersOf returns the rules whose consequence assigns the given
// attribute, in rule set order then position order.
func (m *DecisionModel) ProducersOf(qname string) []*Rule {
	var producers []*Rule
	for _, r := range m.Rules() {
		if r.Produces() == qname {
			producers = append(producers, r)
		}
	}
	return producers
}
