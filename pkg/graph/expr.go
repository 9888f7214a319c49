package graph

import (
	"encoding/json"
	"fmt"

	"causeway-hq/causeway/pkg/dml/ast"
)

// ConditionExpr is the JSON shape of a condition tree stored on a
// Condition node's "expr" property. The builder writes it and the
// explanation engine reads it back, so explanations never need the
// source documents.
type ConditionExpr struct {
	Kind      string           `json:"kind"`
	Attribute string           `json:"attribute,omitempty"` // simple: qualified name
	Operator  string           `json:"operator,omitempty"`  // simple
	Value     interface{}      `json:"value,omitempty"`     // simple
	Children  []*ConditionExpr `json:"children,omitempty"`  // all/any/not
}

// EncodeCondition converts a condition tree to its storable form.
// Attribute references must be resolved so identities are canonical.
func EncodeCondition(c *ast.Condition) *ConditionExpr {
	if c == nil {
		return nil
	}
	expr := &ConditionExpr{Kind: string(c.Kind)}
	if c.Kind == ast.ConditionKindSimple {
		if c.Attribute != nil {
			if c.Attribute.Resolved() {
				expr.Attribute = c.Attribute.Target.QualifiedName()
			} else {
				expr.Attribute = c.Attribute.Name
			}
		}
		expr.Operator = string(c.Operator)
		if c.Value != nil {
			expr.Value = c.Value.Value
		}
		return expr
	}
	for _, child := range c.Children {
		expr.Children = append(expr.Children, EncodeCondition(child))
	}
	return expr
}

// MarshalExpr renders a condition expression as the JSON stored on the
// node property.
func MarshalExpr(expr *ConditionExpr) (string, error) {
	data, err := json.Marshal(expr)
	if err != nil {
		return "", fmt.Errorf("marshal condition expression: %w", err)
	}
	return string(data), nil
}

// UnmarshalExpr parses a stored condition expression property.
func UnmarshalExpr(data string) (*ConditionExpr, error) {
	var expr ConditionExpr
	if err := json.Unmarshal([]byte(data), &expr); err != nil {
		return nil, fmt.Errorf("unmarshal condition expression: %w", err)
	}
	return &expr, nil
}

// AttrRefs returns the qualified names of every attribute the
// expression tests, in tree order, without duplicates.
func (e *ConditionExpr) AttrRefs() []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	var walk func(expr *ConditionExpr)
	walk = func(expr *ConditionExpr) {
		if expr.Attribute != "" && !seen[expr.Attribute] {
			seen[expr.Attribute] = true
			names = append(names, expr.Attribute)
		}
		for _, child := range expr.Children {
			walk(child)
		}
	}
	walk(e)
	return names
}
