package ast

// ConditionKind represents the shape of a condition expression.
type ConditionKind string

const (
	ConditionKindSimple ConditionKind = "simple" // attribute op value
	ConditionKindAll    ConditionKind = "all"    // AND of children
	ConditionKindAny    ConditionKind = "any"    // OR of children
	ConditionKindNot    ConditionKind = "not"    // NOT of a single child
)

// Operator represents a comparison operator in a simple condition.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorGreaterThan  Operator = ">"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterEqual Operator = ">="
	OperatorIn           Operator = "in"
	OperatorNotIn        Operator = "not_in"
)

// IsValidOperator returns true if op names a known comparison operator.
func IsValidOperator(op Operator) bool {
	switch op {
	case OperatorEqual, OperatorNotEqual, OperatorLessThan, OperatorGreaterThan,
		OperatorLessEqual, OperatorGreaterEqual, OperatorIn, OperatorNotIn:
		return true
	}
	return false
}

// Condition is a single condition expression owned by exactly one rule.
// Simple conditions compare an attribute against a literal value; the
// all/any/not kinds combine child conditions. A rule's top-level condition
// list is conjunctive by default.
type Condition struct {
	Kind      ConditionKind
	Attribute *AttrRef     // Simple only: attribute being tested
	Operator  Operator     // Simple only
	Value     *ValueNode   // Simple only: comparison value
	Children  []*Condition // all/any/not only
	Location  Location
}

// IsSimple returns true for an attribute-operator-value comparison.
func (c *Condition) IsSimple() bool {
	return c.Kind == ConditionKindSimple
}

// IsCombinator returns true for all/any/not conditions.
func (c *Condition) IsCombinator() bool {
	return c.Kind == ConditionKindAll || c.Kind == ConditionKindAny || c.Kind == ConditionKindNot
}

// AttrRefs returns every attribute reference in the condition tree,
// in source order. Used by the resolver and the graph builder.
func (c *Condition) AttrRefs() []*AttrRef {
	if c == nil {
		return nil
	}
	if c.Kind == ConditionKindSimple {
		if c.Attribute == nil {
			return nil
		}
		return []*AttrRef{c.Attribute}
	}
	var refs []*AttrRef
	for _, child := range c.Children {
		refs = append(refs, child.AttrRefs()...)
	}
	return refs
}
