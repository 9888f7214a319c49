package explain

import (
	"fmt"
	"reflect"
)

// evaluateOperator evaluates an operator comparison between actual and
// expected values. Operators match the condition operators the model
// documents allow.
func evaluateOperator(op string, actual, expected interface{}) (bool, error) {
	switch op {
	case "==":
		return evaluateEqual(actual, expected)

	case "!=":
		equal, err := evaluateEqual(actual, expected)
		return !equal, err

	case "<":
		actualNum, expectedNum, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return actualNum < expectedNum, nil

	case ">":
		actualNum, expectedNum, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return actualNum > expectedNum, nil

	case "<=":
		actualNum, expectedNum, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return actualNum <= expectedNum, nil

	case ">=":
		actualNum, expectedNum, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return actualNum >= expectedNum, nil

	case "in":
		return evaluateIn(actual, expected)

	case "not_in":
		in, err := evaluateIn(actual, expected)
		return !in, err

	default:
		return false, fmt.Errorf("unknown operator: %q", op)
	}
}

// evaluateEqual checks if two values are equal, trying numeric
// comparison first so int and float64 renditions of the same number
// compare equal.
func evaluateEqual(actual, expected interface{}) (bool, error) {
	if actual == nil && expected == nil {
		return true, nil
	}
	if actual == nil || expected == nil {
		return false, nil
	}

	actualNum, actualErr := convertToFloat64(actual)
	expectedNum, expectedErr := convertToFloat64(expected)
	if actualErr == nil && expectedErr == nil {
		return actualNum == expectedNum, nil
	}

	return reflect.DeepEqual(actual, expected), nil
}

// evaluateIn checks if actual is a member of the expected list.
func evaluateIn(actual, expected interface{}) (bool, error) {
	expectedVal := reflect.ValueOf(expected)
	if expectedVal.Kind() != reflect.Slice && expectedVal.Kind() != reflect.Array {
		return false, fmt.Errorf("in operator requires a list, got %T", expected)
	}

	for i := 0; i < expectedVal.Len(); i++ {
		elem := expectedVal.Index(i).Interface()
		equal, err := evaluateEqual(actual, elem)
		if err != nil {
			return false, err
		}
		if equal {
			return true, nil
		}
	}
	return false, nil
}

// toNumeric converts both operands to float64 for ordering comparisons.
func toNumeric(actual, expected interface{}) (float64, float64, error) {
	actualNum, err := convertToFloat64(actual)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot convert actual value to number: %w", err)
	}

	expectedNum, err := convertToFloat64(expected)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot convert expected value to number: %w", err)
	}

	return actualNum, expectedNum, nil
}

// convertToFloat64 converts a value to float64.
func convertToFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}
