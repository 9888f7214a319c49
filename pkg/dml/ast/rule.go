package ast

// ConsequenceKind represents what a rule does when its conditions hold.
type ConsequenceKind string

const (
	ConsequenceAssign        ConsequenceKind = "assign"         // set an output attribute
	ConsequenceInvokeRule    ConsequenceKind = "invoke_rule"    // trigger another rule
	ConsequenceInvokeService ConsequenceKind = "invoke_service" // trigger a service
)

// RuleRef is a reference to a rule by qualified name ("ruleset/name").
type RuleRef struct {
	Name     string
	Target   *Rule
	Location Location
}

// Resolved returns true once the reference has been linked to its target.
func (r *RuleRef) Resolved() bool {
	return r != nil && r.Target != nil
}

// ServiceRef is a reference to a service by name.
type ServiceRef struct {
	Name     string
	Target   *Service
	Location Location
}

// Resolved returns true once the reference has been linked to its target.
func (r *ServiceRef) Resolved() bool {
	return r != nil && r.Target != nil
}

// Consequence is the effect of a rule: an assignment to an output
// attribute, or the invocation of a downstream rule or service.
type Consequence struct {
	Kind      ConsequenceKind
	Attribute *AttrRef    // assign only: output attribute
	Value     *ValueNode  // assign only: assigned value
	Rule      *RuleRef    // invoke_rule only
	Service   *ServiceRef // invoke_service only
	Location  Location
}

// Rule is an ordered list of conditions (conjunctive by default) and a
// consequence. Position is the rule's index within its owning rule set as
// written in the source document; it is a total order and establishes
// evaluation precedence: the first rule in position order whose conditions
// all hold determines the outcome, and later rules producing the same
// output are shadowed.
type Rule struct {
	Name        string
	RuleSet     string // Owning rule set name
	Position    int    // 0-based position within the rule set
	Conditions  []*Condition
	Consequence *Consequence
	Location    Location
}

// QualifiedName returns the "ruleset/name" identity of the rule.
func (r *Rule) QualifiedName() string {
	return r.RuleSet + "/" + r.Name
}

// Produces returns the qualified name of the output attribute when the
// rule's consequence is an assignment, or "" otherwise.
func (r *Rule) Produces() string {
	if r.Consequence == nil || r.Consequence.Kind != ConsequenceAssign || r.Consequence.Attribute == nil {
		return ""
	}
	return r.Consequence.Attribute.Name
}

// AttrRefs returns every attribute reference in the rule: condition
// references first, then the consequence output.
func (r *Rule) AttrRefs() []*AttrRef {
	var refs []*AttrRef
	for _, c := range r.Conditions {
		refs = append(refs, c.AttrRefs()...)
	}
	if r.Consequence != nil && r.Consequence.Attribute != nil {
		refs = append(refs, r.Consequence.Attribute)
	}
	return refs
}

// RuleSet is an ordered collection of rules sharing an evaluation scope,
// one per rules document. Position is the document order among rule sets.
type RuleSet struct {
	Name     string
	Model    string // Owning model name
	Position int
	Rules    []*Rule
	Location Location
}

// QualifiedName returns the "model/name" identity of the rule set.
func (s *RuleSet) QualifiedName() string {
	return s.Model + "/" + s.Name
}

// Rule returns the rule with the given name, or nil if not found.
func (s *RuleSet) Rule(name string) *Rule {
	for _, r := range s.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}
