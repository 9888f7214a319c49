package resolver

import (
	"strings"
	"testing"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/dml/parser"
)

func loadModel(t *testing.T, docs string) *ast.DecisionModel {
	t.Helper()
	model, err := parser.NewLoader().Load("test", []parser.Document{
		{Name: "test.yaml", Data: []byte(docs)},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return model
}

const resolvableDocs = `
kind: data
model: m
attributes:
  - name: a
    type: number
  - name: out
    type: boolean
---
kind: rules
ruleset: r
rules:
  - name: R1
    when:
      - attribute: m.a
        op: ">"
        value: 1
    then:
      set: m.out
      value: true
  - name: R2
    when:
      - attribute: m.a
        op: "<="
        value: 1
    then:
      invoke-rule: r/R1
---
kind: service
model: m
services:
  - name: svc
    rulesets: [r]
    inputs: [m.a]
    outputs: [m.out]
`

func TestResolveLinksEveryReference(t *testing.T) {
	model := loadModel(t, resolvableDocs)
	if model.Resolved() {
		t.Fatal("expected a freshly loaded model to be unresolved")
	}

	if err := Resolve(model); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !model.Resolved() {
		t.Error("expected every reference to carry a target after Resolve")
	}

	r2 := model.Rule("r/R2")
	if r2 == nil || r2.Consequence.Rule == nil {
		t.Fatal("rule r/R2 with rule invocation not found")
	}
	if r2.Consequence.Rule.Target == nil || r2.Consequence.Rule.Target.Name != "R1" {
		t.Errorf("expected r/R2 to link to R1, got %+v", r2.Consequence.Rule.Target)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	model := loadModel(t, resolvableDocs)
	if err := Resolve(model); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	target := model.Rule("r/R1").Conditions[0].Attribute.Target
	if err := Resolve(model); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if model.Rule("r/R1").Conditions[0].Attribute.Target != target {
		t.Error("expected second Resolve to leave linked targets untouched")
	}
}

func TestResolveAccumulatesAllFailures(t *testing.T) {
	model := loadModel(t, `
kind: rules
ruleset: r
rules:
  - name: R1
    when:
      - attribute: nowhere.a
        op: "=="
        value: 1
    then:
      set: nowhere.out
      value: true
  - name: R2
    when:
      - attribute: nowhere.b
        op: "=="
        value: 2
    then:
      invoke-service: missing
`)

	err := Resolve(model)
	if err == nil {
		t.Fatal("expected unresolved references")
	}

	unresolved, ok := err.(*UnresolvedReferenceError)
	if !ok {
		t.Fatalf("expected *UnresolvedReferenceError, got %T", err)
	}
	// Every dangling reference is listed, not just the first:
	// nowhere.a, nowhere.out, nowhere.b, and the missing service.
	if len(unresolved.References) != 4 {
		t.Fatalf("expected 4 unresolved references, got %d: %v", len(unresolved.References), unresolved)
	}

	msg := unresolved.Error()
	for _, want := range []string{"nowhere.a", "nowhere.out", "nowhere.b", `service "missing"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error message to mention %s, got:\n%s", want, msg)
		}
	}
}
