package explain

import (
	"fmt"
	"strings"
)

// CyclicDependencyError reports a dependency cycle among derived
// attributes encountered while explaining a case. Chain lists the
// qualified attribute names in the order they were entered, ending at
// the attribute that closed the cycle.
type CyclicDependencyError struct {
	Attribute string
	Chain     []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency on %q: %s",
		e.Attribute, strings.Join(e.Chain, " -> "))
}

// NoApplicableRuleError reports that no rule producing the target
// attribute had all of its conditions satisfied. NearestMiss is the
// qualified name of the rule with the most satisfied conditions, and
// RuleSet names the rule set it belongs to, so a caller can surface
// "2 of 3 satisfied in rule set X" rather than a bare failure. Both
// are empty when no rule produces the target at all.
type NoApplicableRuleError struct {
	Target      string
	RuleSet     string
	NearestMiss string
	Satisfied   int
	Total       int
}

func (e *NoApplicableRuleError) Error() string {
	if e.NearestMiss == "" {
		return fmt.Sprintf("no rule produces %q", e.Target)
	}
	return fmt.Sprintf("no applicable rule for %q in rule set %q: nearest miss %s had %d of %d conditions satisfied",
		e.Target, e.RuleSet, e.NearestMiss, e.Satisfied, e.Total)
}

// MissingOutcomeError reports that trust or verify mode was requested
// but the case carries no supplied outcome for the target.
type MissingOutcomeError struct {
	Target string
	Mode   Mode
}

func (e *MissingOutcomeError) Error() string {
	return fmt.Sprintf("mode %q requires a supplied outcome for %q", e.Mode, e.Target)
}
