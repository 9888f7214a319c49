package ast

import "fmt"

// ValueType represents the type of a literal value in a condition or
// consequence. There is no automatic coercion between types; comparisons
// against an attribute use the attribute's declared type.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeList    ValueType = "list"
	ValueTypeNull    ValueType = "null"
)

// ValueNode is a literal value appearing in a condition or a consequence.
type ValueNode struct {
	Type     ValueType
	Value    interface{} // string, float64, bool, []interface{}, or nil
	Location Location
}

// String renders the value exactly as it would appear in an explanation.
// Enumeration members and thresholds are never truncated or approximated.
func (v *ValueNode) String() string {
	if v == nil || v.Type == ValueTypeNull {
		return "null"
	}
	switch val := v.Value.(type) {
	case string:
		return val
	case float64:
		// Render whole numbers without a trailing ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v.Value)
	}
}
