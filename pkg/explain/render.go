package explain

import (
	"fmt"
	"strings"
)

// Render turns a trace into prose. It is pure: it reads neither the
// store nor the case, so a persisted trace renders identically later.
// Attribute names and bound values appear exactly as declared and
// bound, never truncated or approximated.
func Render(trace *Trace) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Why %s = %s\n", trace.Target, formatValue(trace.Outcome))

	if trace.Mismatch != nil {
		fmt.Fprintf(&b, "Note: recomputed outcome %s disagrees with supplied outcome %s; this explanation follows the %s outcome.\n",
			formatValue(trace.Mismatch.Computed),
			formatValue(trace.Mismatch.Supplied),
			trace.Mismatch.Followed)
	}

	for _, step := range trace.Steps {
		b.WriteString("\n")
		renderStep(&b, step)
	}

	if len(trace.Shadowed) > 0 {
		b.WriteString("\nNot considered (shadowed by a higher-precedence rule):\n")
		for _, s := range trace.Shadowed {
			fmt.Fprintf(&b, "  - rule %s (position %d) also produces %s\n", s.Rule, s.Position, s.Produces)
		}
	}

	return b.String()
}

func renderStep(b *strings.Builder, step *Step) {
	fmt.Fprintf(b, "%s = %s because rule %s (position %d in rule set %s) applied:\n",
		step.Produces, formatValue(step.Value), step.Rule, step.Position, step.RuleSet)

	for _, fact := range step.Conditions {
		for _, c := range fact.Comparisons {
			fmt.Fprintf(b, "  - %s %s %s: %s\n",
				c.Attribute, c.Operator, formatValue(c.Expected), renderComparison(c))
		}
	}
}

func renderComparison(c Comparison) string {
	if !c.Bound {
		return fmt.Sprintf("no value bound for %s", c.Attribute)
	}
	verdict := "not satisfied"
	if c.Satisfied {
		verdict = "satisfied"
	}
	source := ""
	if c.Derived {
		source = ", derived"
	}
	return fmt.Sprintf("%s (%s = %s%s)", verdict, c.Attribute, formatValue(c.Actual), source)
}

// formatValue renders a bound or declared value. Whole numbers print
// without a trailing ".0" so thresholds read the way they were written.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
