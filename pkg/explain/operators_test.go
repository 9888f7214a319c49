package explain

import "testing"

func TestEvaluateOperator(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		actual   interface{}
		expected interface{}
		want     bool
		wantErr  bool
	}{
		{name: "equal numbers", op: "==", actual: float64(18), expected: float64(18), want: true},
		{name: "equal mixed numeric types", op: "==", actual: 18, expected: float64(18), want: true},
		{name: "equal strings", op: "==", actual: "single", expected: "single", want: true},
		{name: "equal bools", op: "==", actual: true, expected: true, want: true},
		{name: "not equal", op: "!=", actual: "single", expected: "married", want: true},
		{name: "less than", op: "<", actual: float64(40000), expected: float64(50000), want: true},
		{name: "less than false", op: "<", actual: float64(50000), expected: float64(50000), want: false},
		{name: "less or equal boundary", op: "<=", actual: float64(18), expected: float64(18), want: true},
		{name: "greater than", op: ">", actual: float64(30), expected: float64(18), want: true},
		{name: "greater or equal boundary", op: ">=", actual: float64(18), expected: float64(18), want: true},
		{name: "in list", op: "in", actual: "married", expected: []interface{}{"single", "married"}, want: true},
		{name: "in list numeric coercion", op: "in", actual: 2, expected: []interface{}{float64(1), float64(2)}, want: true},
		{name: "not in list", op: "not_in", actual: "divorced", expected: []interface{}{"single", "married"}, want: true},
		{name: "ordering on strings fails", op: "<", actual: "a", expected: "b", wantErr: true},
		{name: "in without a list fails", op: "in", actual: 1, expected: "not-a-list", wantErr: true},
		{name: "unknown operator fails", op: "~=", actual: 1, expected: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluateOperator(tt.op, tt.actual, tt.expected)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("evaluateOperator(%q, %v, %v) = %v, want %v",
					tt.op, tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestEvaluateEqualNil(t *testing.T) {
	if ok, _ := evaluateEqual(nil, nil); !ok {
		t.Error("expected nil == nil")
	}
	if ok, _ := evaluateEqual(nil, float64(1)); ok {
		t.Error("expected nil != 1")
	}
}
