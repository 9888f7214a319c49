package explain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRenderTrace(t *testing.T) {
	trace := &Trace{
		ID:      uuid.New(),
		Target:  "applicant.eligible",
		Mode:    ModeRecompute,
		Outcome: true,
		Steps: []*Step{
			{
				Rule:     "eligibility/Eligible",
				RuleSet:  "eligibility",
				Position: 0,
				Produces: "applicant.eligible",
				Value:    true,
				Conditions: []*ConditionFact{
					{
						Condition: "eligibility/Eligible#0",
						Kind:      "simple",
						Satisfied: true,
						Comparisons: []Comparison{
							{Attribute: "applicant.age", Operator: ">=", Expected: float64(18), Actual: float64(30), Bound: true, Satisfied: true},
						},
					},
					{
						Condition: "eligibility/Eligible#1",
						Kind:      "simple",
						Satisfied: true,
						Comparisons: []Comparison{
							{Attribute: "applicant.income", Operator: "<", Expected: float64(50000), Actual: float64(40000), Bound: true, Satisfied: true},
						},
					},
				},
			},
		},
		Shadowed: []*ShadowedRule{
			{Rule: "eligibility/Fallback", Produces: "applicant.eligible", Position: 1},
		},
	}

	out := Render(trace)

	for _, want := range []string{
		"Why applicant.eligible = true",
		"applicant.eligible = true because rule eligibility/Eligible (position 0 in rule set eligibility) applied:",
		"  - applicant.age >= 18: satisfied (applicant.age = 30)",
		"  - applicant.income < 50000: satisfied (applicant.income = 40000)",
		"Not considered (shadowed by a higher-precedence rule):",
		"  - rule eligibility/Fallback (position 1) also produces applicant.eligible",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
	// Whole numbers never render with a decimal tail.
	if strings.Contains(out, "50000.0") || strings.Contains(out, "3e+04") {
		t.Errorf("numbers rendered unfaithfully:\n%s", out)
	}
}

func TestRenderDerivedAndUnbound(t *testing.T) {
	trace := &Trace{
		ID:      uuid.New(),
		Target:  "m.out",
		Outcome: nil,
		Steps: []*Step{
			{
				Rule:     "final/Out",
				RuleSet:  "final",
				Produces: "m.out",
				Conditions: []*ConditionFact{
					{
						Condition: "final/Out#0",
						Kind:      "simple",
						Comparisons: []Comparison{
							{Attribute: "m.mid", Operator: "==", Expected: true, Actual: true, Bound: true, Derived: true, Satisfied: true},
						},
					},
					{
						Condition: "final/Out#1",
						Kind:      "simple",
						Comparisons: []Comparison{
							{Attribute: "m.missing", Operator: ">", Expected: float64(1), Bound: false},
						},
					},
				},
			},
		},
	}

	out := Render(trace)
	for _, want := range []string{
		"Why m.out = null",
		"  - m.mid == true: satisfied (m.mid = true, derived)",
		"  - m.missing > 1: no value bound for m.missing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
}

func TestRenderMismatchNote(t *testing.T) {
	trace := &Trace{
		ID:       uuid.New(),
		Target:   "applicant.eligible",
		Mode:     ModeVerify,
		Outcome:  true,
		Supplied: false,
		Mismatch: &Mismatch{Computed: true, Supplied: false, Followed: AuthorityComputed},
	}

	out := Render(trace)
	want := "Note: recomputed outcome true disagrees with supplied outcome false; this explanation follows the computed outcome."
	if !strings.Contains(out, want) {
		t.Errorf("missing mismatch note in:\n%s", out)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{"single", "single"},
		{float64(18), "18"},
		{float64(0.35), "0.35"},
		{[]interface{}{"single", "married"}, "[single, married]"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
