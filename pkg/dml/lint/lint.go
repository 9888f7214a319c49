package lint

import (
	"fmt"
	"sort"

	"causeway-hq/causeway/pkg/dml/ast"
)

// Warning codes.
const (
	CodeUnassignedAttribute = "unassigned-attribute"
	CodeUnusedAttribute     = "unused-attribute"
	CodeInputNoPath         = "input-no-path"
	CodeUnreachableOutput   = "unreachable-output"
)

// Warning is one health check finding.
type Warning struct {
	Code     string
	Message  string
	Location ast.Location
}

func (w Warning) String() string {
	if w.Location.IsValid() {
		return fmt.Sprintf("%s: %s (%s)", w.Code, w.Message, w.Location)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Check runs every health check over the model and returns the findings
// sorted by attribute name, so output is stable across runs. The model
// should be resolved; dangling references are ignored rather than
// reported here (the resolver owns those).
func Check(model *ast.DecisionModel) []Warning {
	var warnings []Warning
	warnings = append(warnings, checkUsage(model)...)
	warnings = append(warnings, checkPaths(model)...)

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Code != warnings[j].Code {
			return warnings[i].Code < warnings[j].Code
		}
		return warnings[i].Message < warnings[j].Message
	})
	return warnings
}

// checkUsage flags attributes nothing assigns and attributes nothing
// reads.
func checkUsage(model *ast.DecisionModel) []Warning {
	assigned := make(map[string]bool) // rule output or service input
	used := make(map[string]bool)     // condition operand or service output

	for _, rule := range model.Rules() {
		for _, cond := range rule.Conditions {
			for _, ref := range cond.AttrRefs() {
				if ref.Resolved() {
					used[ref.Target.QualifiedName()] = true
				}
			}
		}
		if rule.Consequence != nil && rule.Consequence.Attribute != nil && rule.Consequence.Attribute.Resolved() {
			assigned[rule.Consequence.Attribute.Target.QualifiedName()] = true
		}
	}
	for _, svc := range model.Services {
		for _, in := range svc.Inputs {
			if in.Resolved() {
				assigned[in.Target.QualifiedName()] = true
			}
		}
		for _, out := range svc.Outputs {
			if out.Resolved() {
				used[out.Target.QualifiedName()] = true
			}
		}
	}

	var warnings []Warning
	for qname, attr := range model.Attributes {
		if !assigned[qname] {
			warnings = append(warnings, Warning{
				Code:     CodeUnassignedAttribute,
				Message:  fmt.Sprintf("attribute %q is never assigned: no rule produces it and no service declares it as an input", qname),
				Location: attr.Location,
			})
		}
		if !used[qname] {
			warnings = append(warnings, Warning{
				Code:     CodeUnusedAttribute,
				Message:  fmt.Sprintf("attribute %q is never used: no condition tests it and no service declares it as an output", qname),
				Location: attr.Location,
			})
		}
	}
	return warnings
}

// checkPaths flags service inputs with no rule path to any declared
// output, and outputs no declared input can reach.
func checkPaths(model *ast.DecisionModel) []Warning {
	forward := derivationEdges(model)

	var warnings []Warning
	for _, svc := range model.Services {
		outputs := make(map[string]bool)
		for _, out := range svc.Outputs {
			if out.Resolved() {
				outputs[out.Target.QualifiedName()] = true
			}
		}

		reachedOutputs := make(map[string]bool)
		for _, in := range svc.Inputs {
			if !in.Resolved() {
				continue
			}
			qname := in.Target.QualifiedName()
			reached := reach(forward, qname)

			found := false
			for out := range outputs {
				if reached[out] {
					found = true
					reachedOutputs[out] = true
				}
			}
			if !found {
				warnings = append(warnings, Warning{
					Code:     CodeInputNoPath,
					Message:  fmt.Sprintf("service %q input %q has no rule path to any declared output", svc.QualifiedName(), qname),
					Location: in.Location,
				})
			}
		}

		for _, out := range svc.Outputs {
			if !out.Resolved() {
				continue
			}
			qname := out.Target.QualifiedName()
			if !reachedOutputs[qname] {
				warnings = append(warnings, Warning{
					Code:     CodeUnreachableOutput,
					Message:  fmt.Sprintf("service %q output %q is not reachable from any declared input", svc.QualifiedName(), qname),
					Location: out.Location,
				})
			}
		}
	}
	return warnings
}

// derivationEdges maps each condition attribute to the outputs of the
// rules testing it.
func derivationEdges(model *ast.DecisionModel) map[string][]string {
	edges := make(map[string][]string)
	for _, rule := range model.Rules() {
		output := ""
		if rule.Consequence != nil && rule.Consequence.Attribute != nil && rule.Consequence.Attribute.Resolved() {
			output = rule.Consequence.Attribute.Target.QualifiedName()
		}
		if output == "" {
			continue
		}
		for _, cond := range rule.Conditions {
			for _, ref := range cond.AttrRefs() {
				if ref.Resolved() {
					from := ref.Target.QualifiedName()
					edges[from] = append(edges[from], output)
				}
			}
		}
	}
	return edges
}

// reach returns every attribute reachable from start, start included.
func reach(edges map[string][]string, start string) map[string]bool {
	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range edges[current] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reached
}
