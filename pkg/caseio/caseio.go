package caseio

import (
	"fmt"
	"strconv"
	"strings"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/explain"
)

// row is one parsed table row before coercion.
type row struct {
	name  string
	value string
	line  int
}

// bindRows coerces rows into a case against the model's declared
// attribute types. Unknown attributes and uncoercible values are
// errors: a silently dropped binding would change explanation outcomes.
func bindRows(model *ast.DecisionModel, origin string, rows []row) (*explain.Case, error) {
	c := explain.NewCase()
	for _, r := range rows {
		name := strings.TrimSpace(r.name)
		if name == "" {
			continue
		}
		attr := model.Attribute(name)
		if attr == nil {
			return nil, fmt.Errorf("%s row %d: unknown attribute %q", origin, r.line, name)
		}
		value, err := coerce(attr, strings.TrimSpace(r.value))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", origin, r.line, err)
		}
		c.Inputs[name] = value
	}
	return c, nil
}

// coerce converts a textual value to the attribute's declared type.
func coerce(attr *ast.DataAttribute, value string) (interface{}, error) {
	switch attr.Type {
	case ast.AttributeTypeNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %q expects a number, got %q", attr.QualifiedName(), value)
		}
		return n, nil

	case ast.AttributeTypeBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q expects a boolean, got %q", attr.QualifiedName(), value)
		}
		return b, nil

	case ast.AttributeTypeEnumeration:
		if !attr.AllowsValue(value) {
			return nil, fmt.Errorf("attribute %q does not allow value %q (allowed: %s)",
				attr.QualifiedName(), value, strings.Join(attr.Enumeration, ", "))
		}
		return value, nil

	default:
		return value, nil
	}
}
