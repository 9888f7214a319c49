package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"causeway-hq/causeway/pkg/dml/parser"
	"causeway-hq/causeway/pkg/dml/resolver"
	"causeway-hq/causeway/pkg/graph"
)

const eligibilityDocs = `
kind: data
model: applicant
attributes:
  - name: age
    type: number
  - name: income
    type: number
  - name: eligible
    type: boolean
---
kind: rules
model: eligibility
ruleset: eligibility
rules:
  - name: Eligible
    when:
      - attribute: applicant.age
        op: ">="
        value: 18
      - attribute: applicant.income
        op: "<"
        value: 50000
    then:
      set: applicant.eligible
      value: true
  - name: Fallback
    when:
      - attribute: applicant.age
        op: "<"
        value: 18
    then:
      set: applicant.eligible
      value: false
`

// buildGraph loads, resolves, and maps a model into a fresh store.
func buildGraph(t *testing.T, docs string) graph.Store {
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
	store := graph.NewMemoryStore()
	if _, err := graph.NewBuilder().Build(context.Background(), model, store); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return store
}

func caseWith(inputs map[string]interface{}) *Case {
	c := NewCase()
	for k, v := range inputs {
		c.Inputs[k] = v
	}
	return c
}

func TestExplainRecomputeEligible(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, nil)

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if v, ok := trace.Outcome.(bool); !ok || !v {
		t.Errorf("expected outcome true, got %v", trace.Outcome)
	}
	if len(trace.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(trace.Steps))
	}
	step := trace.Steps[0]
	if step.Rule != "eligibility/Eligible" || step.Position != 0 {
		t.Errorf("unexpected justifying rule %q at position %d", step.Rule, step.Position)
	}
	if step.Produces != "applicant.eligible" {
		t.Errorf("unexpected produced attribute %q", step.Produces)
	}
	if len(step.Conditions) != 2 {
		t.Fatalf("expected 2 condition facts, got %d", len(step.Conditions))
	}
	for _, fact := range step.Conditions {
		if !fact.Satisfied {
			t.Errorf("expected condition %q satisfied", fact.Condition)
		}
	}

	// Fallback also produces applicant.eligible but ranks lower.
	if len(trace.Shadowed) != 1 || trace.Shadowed[0].Rule != "eligibility/Fallback" {
		t.Errorf("expected eligibility/Fallback shadowed, got %v", trace.Shadowed)
	}
}

func TestExplainPrecedenceFallsThrough(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, nil)

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(16),
		"applicant.income": float64(40000),
	})

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if v, ok := trace.Outcome.(bool); !ok || v {
		t.Errorf("expected outcome false, got %v", trace.Outcome)
	}
	if len(trace.Steps) != 1 || trace.Steps[0].Rule != "eligibility/Fallback" {
		t.Fatalf("expected eligibility/Fallback to justify, got %v", trace.Steps)
	}
	// Eligible precedes the justifying rule, so nothing is shadowed.
	if len(trace.Shadowed) != 0 {
		t.Errorf("expected no shadowed rules, got %v", trace.Shadowed)
	}
}

func TestExplainNearestMiss(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, nil)

	// Adult with too much income: Eligible misses on 1 of 2 conditions,
	// Fallback on its only one.
	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(90000),
	})

	_, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err == nil {
		t.Fatal("expected no applicable rule")
	}
	var noRule *NoApplicableRuleError
	if !errors.As(err, &noRule) {
		t.Fatalf("expected *NoApplicableRuleError, got %T: %v", err, err)
	}
	if noRule.NearestMiss != "eligibility/Eligible" {
		t.Errorf("expected nearest miss eligibility/Eligible, got %q", noRule.NearestMiss)
	}
	if noRule.RuleSet != "eligibility" {
		t.Errorf("expected rule set eligibility, got %q", noRule.RuleSet)
	}
	if noRule.Satisfied != 1 || noRule.Total != 2 {
		t.Errorf("expected 1 of 2 conditions satisfied, got %d of %d", noRule.Satisfied, noRule.Total)
	}
	if !strings.Contains(err.Error(), "1 of 2 conditions satisfied") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExplainNoProducer(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, nil)

	_, err := engine.Explain(context.Background(), NewCase(), "applicant.age")
	var noRule *NoApplicableRuleError
	if !errors.As(err, &noRule) {
		t.Fatalf("expected *NoApplicableRuleError, got %T: %v", err, err)
	}
	if noRule.NearestMiss != "" {
		t.Errorf("expected no nearest miss, got %q", noRule.NearestMiss)
	}
	if err.Error() != `no rule produces "applicant.age"` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExplainDerivedChain(t *testing.T) {
	store := buildGraph(t, `
kind: data
model: m
attributes:
  - name: a
    type: number
  - name: mid
    type: boolean
  - name: out
    type: boolean
---
kind: rules
ruleset: derive
rules:
  - name: Mid
    when:
      - attribute: m.a
        op: ">"
        value: 5
    then:
      set: m.mid
      value: true
---
kind: rules
ruleset: final
rules:
  - name: Out
    when:
      - attribute: m.mid
        op: "=="
        value: true
    then:
      set: m.out
      value: true
`)
	engine := NewEngine(store, nil)

	c := caseWith(map[string]interface{}{"m.a": float64(10)})
	trace, err := engine.Explain(context.Background(), c, "m.out")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if v, ok := trace.Outcome.(bool); !ok || !v {
		t.Errorf("expected outcome true, got %v", trace.Outcome)
	}
	// Dependencies come before the target.
	if len(trace.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(trace.Steps))
	}
	if trace.Steps[0].Produces != "m.mid" || trace.Steps[1].Produces != "m.out" {
		t.Errorf("expected derivation order mid then out, got %q then %q",
			trace.Steps[0].Produces, trace.Steps[1].Produces)
	}

	comp := trace.Steps[1].Conditions[0].Comparisons[0]
	if comp.Attribute != "m.mid" || !comp.Derived || !comp.Bound {
		t.Errorf("expected a derived bound comparison on m.mid, got %+v", comp)
	}
	if trace.Step("m.mid") != trace.Steps[0] {
		t.Error("expected Step lookup to find the mid step")
	}
}

func TestExplainCyclicDependency(t *testing.T) {
	store := buildGraph(t, `
kind: data
model: m
attributes:
  - name: a
    type: boolean
  - name: b
    type: boolean
---
kind: rules
ruleset: r
rules:
  - name: A
    when:
      - attribute: m.b
        op: "=="
        value: true
    then:
      set: m.a
      value: true
  - name: B
    when:
      - attribute: m.a
        op: "=="
        value: true
    then:
      set: m.b
      value: true
`)
	engine := NewEngine(store, nil)

	_, err := engine.Explain(context.Background(), NewCase(), "m.a")
	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected *CyclicDependencyError, got %T: %v", err, err)
	}
	if cyclic.Attribute != "m.a" {
		t.Errorf("expected the cycle to close on m.a, got %q", cyclic.Attribute)
	}
	want := []string{"m.a", "m.b", "m.a"}
	if len(cyclic.Chain) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, cyclic.Chain)
	}
	for i, q := range want {
		if cyclic.Chain[i] != q {
			t.Errorf("chain[%d]: expected %q, got %q", i, q, cyclic.Chain[i])
		}
	}
}

func TestExplainTrustMode(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, &Config{Mode: ModeTrust})

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})
	c.Outcomes["applicant.eligible"] = false

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	// The supplied outcome is authoritative: Fallback is the first rule
	// whose consequence yields false, even though its condition does not
	// hold for this case.
	if v, ok := trace.Outcome.(bool); !ok || v {
		t.Errorf("expected outcome false, got %v", trace.Outcome)
	}
	if len(trace.Steps) != 1 || trace.Steps[0].Rule != "eligibility/Fallback" {
		t.Fatalf("expected eligibility/Fallback to justify, got %v", trace.Steps)
	}
	fact := trace.Steps[0].Conditions[0]
	if fact.Satisfied {
		t.Error("expected the annotated condition to be unsatisfied for this case")
	}
}

func TestExplainTrustRequiresOutcome(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, &Config{Mode: ModeTrust})

	_, err := engine.Explain(context.Background(), NewCase(), "applicant.eligible")
	var missing *MissingOutcomeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingOutcomeError, got %T: %v", err, err)
	}
	if missing.Mode != ModeTrust {
		t.Errorf("unexpected mode %q", missing.Mode)
	}
}

func TestExplainVerifyAgreement(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, &Config{Mode: ModeVerify})

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})
	c.Outcomes["applicant.eligible"] = true

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if trace.Mismatch != nil {
		t.Errorf("expected no mismatch, got %+v", trace.Mismatch)
	}
	if v, ok := trace.Outcome.(bool); !ok || !v {
		t.Errorf("expected outcome true, got %v", trace.Outcome)
	}
}

func TestExplainVerifyMismatchComputedAuthority(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, &Config{Mode: ModeVerify, Authority: AuthorityComputed})

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})
	c.Outcomes["applicant.eligible"] = false

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if trace.Mismatch == nil {
		t.Fatal("expected a mismatch")
	}
	if trace.Mismatch.Followed != AuthorityComputed {
		t.Errorf("expected computed authority followed, got %q", trace.Mismatch.Followed)
	}
	if v, ok := trace.Outcome.(bool); !ok || !v {
		t.Errorf("expected the recomputed outcome true, got %v", trace.Outcome)
	}
	if trace.Steps[0].Rule != "eligibility/Eligible" {
		t.Errorf("expected the recomputed path, got %q", trace.Steps[0].Rule)
	}
}

func TestExplainVerifyMismatchSuppliedAuthority(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, &Config{Mode: ModeVerify, Authority: AuthoritySupplied})

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})
	c.Outcomes["applicant.eligible"] = false

	trace, err := engine.Explain(context.Background(), c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if trace.Mismatch == nil || trace.Mismatch.Followed != AuthoritySupplied {
		t.Fatalf("expected a mismatch following supplied authority, got %+v", trace.Mismatch)
	}
	if v, ok := trace.Mismatch.Computed.(bool); !ok || !v {
		t.Errorf("expected recorded computed outcome true, got %v", trace.Mismatch.Computed)
	}
	if v, ok := trace.Outcome.(bool); !ok || v {
		t.Errorf("expected the supplied outcome false, got %v", trace.Outcome)
	}
	if trace.Steps[0].Rule != "eligibility/Fallback" {
		t.Errorf("expected the supplied outcome's path, got %q", trace.Steps[0].Rule)
	}
}

func TestMaterializeRoundTrip(t *testing.T) {
	store := buildGraph(t, eligibilityDocs)
	engine := NewEngine(store, nil)
	ctx := context.Background()

	c := caseWith(map[string]interface{}{
		"applicant.age":    float64(30),
		"applicant.income": float64(40000),
	})
	trace, err := engine.Explain(ctx, c, "applicant.eligible")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if err := Materialize(ctx, trace, store); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	valueIdentity := "case/" + trace.ID.String() + "/applicant.age"
	node, err := store.Node(ctx, valueIdentity)
	if err != nil || node == nil {
		t.Fatalf("expected a materialized value node: %v", err)
	}
	if v, ok := node.Properties[graph.PropValue].(float64); !ok || v != 30 {
		t.Errorf("unexpected materialized value %v", node.Properties[graph.PropValue])
	}

	edges, err := store.Query(ctx, graph.Pattern{EdgeType: graph.EdgeSatisfiedBy, To: valueIdentity})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(edges) != 1 || edges[0].Edge.From != "eligibility/Eligible#0" {
		t.Errorf("expected a SATISFIED_BY edge from the age condition, got %v", edges)
	}

	if err := Dematerialize(ctx, trace, store); err != nil {
		t.Fatalf("Dematerialize failed: %v", err)
	}
	if node, _ := store.Node(ctx, valueIdentity); node != nil {
		t.Error("expected materialized values removed")
	}
	if rule, _ := store.Node(ctx, "eligibility/Eligible"); rule == nil {
		t.Error("dematerialize must not touch the model graph")
	}
}
