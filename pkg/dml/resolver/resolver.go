package resolver

import (
	"fmt"
	"strings"

	"causeway-hq/causeway/pkg/dml/ast"
)

// UnresolvedReference identifies one reference that could not be matched
// by qualified name.
type UnresolvedReference struct {
	Kind     string // "attribute", "rule", or "service"
	Name     string // Qualified name as written in the source
	Location ast.Location
}

func (u UnresolvedReference) String() string {
	if u.Location.IsValid() {
		return fmt.Sprintf("%s %q (at %s)", u.Kind, u.Name, u.Location)
	}
	return fmt.Sprintf("%s %q", u.Kind, u.Name)
}

// UnresolvedReferenceError reports every reference in a model that could
// not be resolved. It is fatal to a graph build: a model with dangling
// references is never handed to the builder.
type UnresolvedReferenceError struct {
	Model      string
	References []UnresolvedReference
}

// Error implements the error interface, listing all offenders.
func (e *UnresolvedReferenceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "model %q has %d unresolved reference(s):", e.Model, len(e.References))
	for _, ref := range e.References {
		sb.WriteString("\n  - ")
		sb.WriteString(ref.String())
	}
	return sb.String()
}

// Resolve walks every dangling reference in the model and links it to
// its target by qualified name. All failures are accumulated and
// returned as one UnresolvedReferenceError rather than aborting on the
// first. Resolve is idempotent: already-linked references are left
// untouched, so calling it on a resolved model changes nothing.
func Resolve(model *ast.DecisionModel) error {
	var unresolved []UnresolvedReference

	resolveAttr := func(ref *ast.AttrRef) {
		if ref == nil || ref.Resolved() {
			return
		}
		if target, ok := model.Attributes[ref.Name]; ok {
			ref.Target = target
			return
		}
		unresolved = append(unresolved, UnresolvedReference{
			Kind: "attribute", Name: ref.Name, Location: ref.Location,
		})
	}

	for _, rs := range model.RuleSets {
		for _, rule := range rs.Rules {
			for _, cond := range rule.Conditions {
				for _, ref := range cond.AttrRefs() {
					resolveAttr(ref)
				}
			}
			if rule.Consequence == nil {
				continue
			}
			resolveAttr(rule.Consequence.Attribute)

			if ref := rule.Consequence.Rule; ref != nil && !ref.Resolved() {
				if target := model.Rule(ref.Name); target != nil {
					ref.Target = target
				} else {
					unresolved = append(unresolved, UnresolvedReference{
						Kind: "rule", Name: ref.Name, Location: ref.Location,
					})
				}
			}
			if ref := rule.Consequence.Service; ref != nil && !ref.Resolved() {
				if target := model.Service(ref.Name); target != nil {
					ref.Target = target
				} else {
					unresolved = append(unresolved, UnresolvedReference{
						Kind: "service", Name: ref.Name, Location: ref.Location,
					})
				}
			}
		}
	}

	for _, svc := range model.Services {
		for _, ref := range svc.Inputs {
			resolveAttr(ref)
		}
		for _, ref := range svc.Outputs {
			resolveAttr(ref)
		}
	}

	if len(unresolved) > 0 {
		return &UnresolvedReferenceError{Model: model.Name, References: unresolved}
	}
	return nil
}
