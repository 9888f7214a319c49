package lint

import (
	"testing"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/dml/parser"
	"causeway-hq/causeway/pkg/dml/resolver"
)

func loadResolved(t *testing.T, docs string) *ast.DecisionModel {
	t.Helper()
	model, err := parser.NewLoader().Load("test", []parser.Document{
		{Name: "test.yaml", Data: []byte(docs)},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := resolver.Resolve(model); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return model
}

func codes(warnings []Warning) map[string]int {
	counts := make(map[string]int)
	for _, w := range warnings {
		counts[w.Code]++
	}
	return counts
}

func TestCheckCleanModel(t *testing.T) {
	model := loadResolved(t, `
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
---
kind: service
model: m
services:
  - name: svc
    rulesets: [r]
    inputs: [m.a]
    outputs: [m.out]
`)

	if warnings := Check(model); len(warnings) != 0 {
		t.Errorf("expected no warnings for a clean model, got %v", warnings)
	}
}

func TestCheckFlagsOrphanAttributes(t *testing.T) {
	model := loadResolved(t, `
kind: data
model: m
attributes:
  - name: a
    type: number
  - name: orphan
    type: string
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
---
kind: service
model: m
services:
  - name: svc
    rulesets: [r]
    inputs: [m.a]
    outputs: [m.out]
`)

	counts := codes(Check(model))
	// m.orphan is neither assigned nor used, so both checks flag it.
	if counts[CodeUnassignedAttribute] != 1 {
		t.Errorf("expected 1 unassigned-attribute warning, got %d", counts[CodeUnassignedAttribute])
	}
	if counts[CodeUnusedAttribute] != 1 {
		t.Errorf("expected 1 unused-attribute warning, got %d", counts[CodeUnusedAttribute])
	}
}

func TestCheckFlagsInputWithoutPath(t *testing.T) {
	model := loadResolved(t, `
kind: data
model: m
attributes:
  - name: a
    type: number
  - name: dead
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
  - name: Sink
    when:
      - attribute: m.dead
        op: ">"
        value: 0
    then:
      set: m.a
      value: 0
---
kind: service
model: m
services:
  - name: svc
    rulesets: [r]
    inputs: [m.a]
    outputs: [m.out]
---
kind: service
model: m
services:
  - name: stuck
    rulesets: [r]
    inputs: [m.dead]
    outputs: []
`)

	// m.dead reaches m.a and m.out, but service "stuck" declares no
	// outputs, so its input has no path to any declared output.
	counts := codes(Check(model))
	if counts[CodeInputNoPath] != 1 {
		t.Errorf("expected 1 input-no-path warning, got %d: %v", counts[CodeInputNoPath], Check(model))
	}
}

func TestCheckFlagsUnreachableOutput(t *testing.T) {
	model := loadResolved(t, `
kind: data
model: m
attributes:
  - name: a
    type: number
  - name: out
    type: boolean
  - name: isolated
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
  - name: Island
    when:
      - attribute: m.isolated
        op: "=="
        value: true
    then:
      set: m.isolated
      value: true
---
kind: service
model: m
services:
  - name: svc
    rulesets: [r]
    inputs: [m.a]
    outputs: [m.out, m.isolated]
`)

	counts := codes(Check(model))
	if counts[CodeUnreachableOutput] != 1 {
		t.Errorf("expected 1 unreachable-output warning, got %d", counts[CodeUnreachableOutput])
	}
}
