package explain

import (
	"github.com/google/uuid"

	"causeway-hq/causeway/pkg/graph"
)

// Mode controls how the engine reconciles the graph with outcomes
// supplied on the case.
type Mode string

const (
	// ModeRecompute evaluates every condition from the case bindings
	// and ignores supplied outcomes. Default.
	ModeRecompute Mode = "recompute"

	// ModeTrust takes the supplied outcome as authoritative: the first
	// precedence-ordered rule whose consequence yields that outcome is
	// the justifying rule, and its conditions are annotated with bound
	// values without gating selection.
	ModeTrust Mode = "trust"

	// ModeVerify recomputes and compares against the supplied outcome,
	// recording a mismatch when they disagree.
	ModeVerify Mode = "verify"
)

// Authority decides which rule path a verify-mode trace follows when
// the recomputed and supplied outcomes disagree.
type Authority string

const (
	// AuthorityComputed follows the recomputed path. Default.
	AuthorityComputed Authority = "computed"

	// AuthoritySupplied follows the supplied outcome's path.
	AuthoritySupplied Authority = "supplied"
)

// Config holds explanation engine settings.
type Config struct {
	Mode      Mode
	Authority Authority
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:      ModeRecompute,
		Authority: AuthorityComputed,
	}
}

// Comparison is one evaluated leaf of a condition tree: the attribute,
// the declared operator and expected value, and what the case actually
// bound.
type Comparison struct {
	Attribute string      // qualified attribute name
	Operator  string      // declared operator
	Expected  interface{} // declared comparison value
	Actual    interface{} // bound value, nil when unbound
	Bound     bool        // a value was available
	Derived   bool        // the value came from a recursive explanation
	Satisfied bool
}

// ConditionFact is the evaluation record of one condition node.
// Comparisons holds the tree's leaves in source order.
type ConditionFact struct {
	Condition   string // condition node identity
	Kind        string // simple, all, any, not
	Satisfied   bool
	Comparisons []Comparison
}

// Step is one justifying rule in a trace: the rule, the attribute and
// value it produced, and the facts its conditions were judged on.
type Step struct {
	Rule       string // rule identity "ruleset/name"
	RuleSet    string
	Position   int
	Produces   string // qualified attribute name
	Value      interface{}
	Conditions []*ConditionFact
}

// ShadowedRule records a rule producing the same attribute as a
// justifying rule but at lower precedence. Shadowed rules are never
// evaluated.
type ShadowedRule struct {
	Rule     string
	Produces string
	Position int
}

// Mismatch records a verify-mode disagreement between the recomputed
// outcome and the supplied one.
type Mismatch struct {
	Computed interface{}
	Supplied interface{}
	Followed Authority // which path the trace steps follow
}

// Trace is the complete explanation of one target attribute for one
// case. Steps appear in derivation order: every step's dependencies
// precede it, and the step producing the target is last. An attribute
// explained once is never re-explained within the same trace.
type Trace struct {
	ID       uuid.UUID
	Target   string
	Mode     Mode
	Outcome  interface{}
	Supplied interface{} // trust and verify modes only
	Mismatch *Mismatch   // verify mode, on disagreement
	Steps    []*Step
	Shadowed []*ShadowedRule
}

// Step returns the trace step producing the given attribute, or nil.
func (t *Trace) Step(qname string) *Step {
	for _, s := range t.Steps {
		if s.Produces == qname {
			return s
		}
	}
	return nil
}

// exprOf is a small helper shared by the engine and renderer.
func exprOf(node *graph.Node) (*graph.ConditionExpr, error) {
	raw, _ := node.Properties[graph.PropExpr].(string)
	return graph.UnmarshalExpr(raw)
}
