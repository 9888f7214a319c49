package graph

import (
	"context"
	"fmt"
	"log/slog"

	"causeway-hq/causeway/pkg/dml/ast"
)

// SkippedEntity records a model entity the builder left out of the
// graph, with the reason it could not be mapped.
type SkippedEntity struct {
	Identity string
	Reason   string
}

// BuildReport summarizes one build run. Created and updated counts are
// split so a rebuild over an unchanged model reads as all-updates.
type BuildReport struct {
	Model        string
	NodesCreated int
	NodesUpdated int
	EdgesCreated int
	EdgesUpdated int
	Skipped      []SkippedEntity
}

// Builder maps a resolved decision model into a property graph. Every
// entity is upserted under its deterministic identity, so building the
// same model repeatedly converges instead of accumulating duplicates.
// The builder never deletes; see Cleanup for stale-entity removal.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a graph builder.
func NewBuilder() *Builder {
	return &Builder{
		logger: slog.Default().With("component", "graph.builder"),
	}
}

// Build maps the model into the store. Entities with unresolved
// references are skipped and reported rather than failing the build;
// a store error aborts it.
func (b *Builder) Build(ctx context.Context, model *ast.DecisionModel, store Store) (*BuildReport, error) {
	report := &BuildReport{Model: model.Name}

	if err := b.buildAttributes(ctx, model, store, report); err != nil {
		return nil, err
	}
	if err := b.buildRuleSets(ctx, model, store, report); err != nil {
		return nil, err
	}
	if err := b.buildServices(ctx, model, store, report); err != nil {
		return nil, err
	}

	b.logger.Info("graph build complete",
		"model", model.Name,
		"nodes_created", report.NodesCreated,
		"nodes_updated", report.NodesUpdated,
		"edges_created", report.EdgesCreated,
		"edges_updated", report.EdgesUpdated,
		"skipped", len(report.Skipped),
	)

	return report, nil
}

func (b *Builder) buildAttributes(ctx context.Context, model *ast.DecisionModel, store Store, report *BuildReport) error {
	for _, attr := range model.Attributes {
		props := map[string]interface{}{
			PropName:  attr.Name,
			PropModel: attr.Model,
			PropType:  string(attr.Type),
		}
		if len(attr.Enumeration) > 0 {
			values := make([]interface{}, len(attr.Enumeration))
			for i, v := range attr.Enumeration {
				values[i] = v
			}
			props[PropEnumeration] = values
		}
		if err := b.upsertNode(ctx, store, report, attr.QualifiedName(), []string{LabelAttribute}, props); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildRuleSets(ctx context.Context, model *ast.DecisionModel, store Store, report *BuildReport) error {
	for _, rs := range model.RuleSets {
		props := map[string]interface{}{
			PropName:     rs.Name,
			PropModel:    rs.Model,
			PropPosition: rs.Position,
		}
		if err := b.upsertNode(ctx, store, report, rs.QualifiedName(), []string{LabelRuleSet}, props); err != nil {
			return err
		}
		for _, rule := range rs.Rules {
			if err := b.buildRule(ctx, rs, rule, store, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) buildRule(ctx context.Context, rs *ast.RuleSet, rule *ast.Rule, store Store, report *BuildReport) error {
	identity := rule.QualifiedName()

	if reason := unresolvedIn(rule); reason != "" {
		report.Skipped = append(report.Skipped, SkippedEntity{Identity: identity, Reason: reason})
		b.logger.Warn("skipping rule with unresolved reference",
			"rule", identity, "reason", reason)
		return nil
	}

	props := map[string]interface{}{
		PropName:     rule.Name,
		PropModel:    rs.Model,
		PropRuleSet:  rule.RuleSet,
		PropPosition: rule.Position,
	}
	if rule.Consequence != nil {
		props[PropConsequence] = string(rule.Consequence.Kind)
	}
	if output := rule.Produces(); output != "" {
		props[PropOutput] = rule.Consequence.Attribute.Target.QualifiedName()
		if rule.Consequence.Value != nil {
			props[PropOutputValue] = rule.Consequence.Value.Value
		}
	}
	if err := b.upsertNode(ctx, store, report, identity, []string{LabelRule}, props); err != nil {
		return err
	}

	if err := b.upsertEdge(ctx, store, report, rs.QualifiedName(), identity, EdgeContains, map[string]interface{}{
		PropPosition: rule.Position,
	}); err != nil {
		return err
	}

	for ordinal, cond := range rule.Conditions {
		if err := b.buildCondition(ctx, rs.Model, identity, ordinal, cond, store, report); err != nil {
			return err
		}
	}

	return b.buildConsequenceEdges(ctx, identity, rule, store, report)
}

// buildCondition emits a Condition node holding the serialized
// expression tree, an EVALUATES edge from the owning rule, and a
// DEPENDS_ON edge for every attribute the tree tests.
func (b *Builder) buildCondition(ctx context.Context, model, ruleIdentity string, ordinal int, cond *ast.Condition, store Store, report *BuildReport) error {
	identity := fmt.Sprintf("%s#%d", ruleIdentity, ordinal)

	expr := EncodeCondition(cond)
	exprJSON, err := MarshalExpr(expr)
	if err != nil {
		return fmt.Errorf("encode condition %s: %w", identity, err)
	}

	props := map[string]interface{}{
		PropModel:   model,
		PropOrdinal: ordinal,
		PropExpr:    exprJSON,
	}
	if err := b.upsertNode(ctx, store, report, identity, []string{LabelCondition}, props); err != nil {
		return err
	}
	if err := b.upsertEdge(ctx, store, report, ruleIdentity, identity, EdgeEvaluates, map[string]interface{}{
		PropOrdinal: ordinal,
	}); err != nil {
		return err
	}
	for _, attrName := range expr.AttrRefs() {
		if err := b.upsertEdge(ctx, store, report, identity, attrName, EdgeDependsOn, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildConsequenceEdges(ctx context.Context, identity string, rule *ast.Rule, store Store, report *BuildReport) error {
	cons := rule.Consequence
	if cons == nil {
		return nil
	}
	switch cons.Kind {
	case ast.ConsequenceAssign:
		return b.upsertEdge(ctx, store, report, identity, cons.Attribute.Target.QualifiedName(), EdgeProduces, nil)
	case ast.ConsequenceInvokeRule:
		return b.upsertEdge(ctx, store, report, identity, cons.Rule.Target.QualifiedName(), EdgeTriggers, nil)
	case ast.ConsequenceInvokeService:
		return b.upsertEdge(ctx, store, report, identity, cons.Service.Target.QualifiedName(), EdgeTriggers, nil)
	}
	return nil
}

func (b *Builder) buildServices(ctx context.Context, model *ast.DecisionModel, store Store, report *BuildReport) error {
	for _, svc := range model.Services {
		identity := svc.QualifiedName()

		if reason := unresolvedRefs(svc.AttrRefs()); reason != "" {
			report.Skipped = append(report.Skipped, SkippedEntity{Identity: identity, Reason: reason})
			b.logger.Warn("skipping service with unresolved reference",
				"service", identity, "reason", reason)
			continue
		}

		props := map[string]interface{}{
			PropName:  svc.Name,
			PropModel: svc.Model,
		}
		if err := b.upsertNode(ctx, store, report, identity, []string{LabelService}, props); err != nil {
			return err
		}
		for i, rsName := range svc.RuleSets {
			rs := model.RuleSet(rsName)
			if rs == nil {
				report.Skipped = append(report.Skipped, SkippedEntity{
					Identity: identity,
					Reason:   fmt.Sprintf("composes unknown rule set %q", rsName),
				})
				continue
			}
			if err := b.upsertEdge(ctx, store, report, identity, rs.QualifiedName(), EdgeContains, map[string]interface{}{
				PropPosition: i,
			}); err != nil {
				return err
			}
		}
		for _, in := range svc.Inputs {
			if err := b.upsertEdge(ctx, store, report, identity, in.Target.QualifiedName(), EdgeRequires, nil); err != nil {
				return err
			}
		}
		for _, out := range svc.Outputs {
			if err := b.upsertEdge(ctx, store, report, identity, out.Target.QualifiedName(), EdgeReturns, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) upsertNode(ctx context.Context, store Store, report *BuildReport, identity string, labels []string, props map[string]interface{}) error {
	created, err := store.UpsertNode(ctx, identity, labels, props)
	if err != nil {
		return fmt.Errorf("build node %q: %w", identity, err)
	}
	if created {
		report.NodesCreated++
	} else {
		report.NodesUpdated++
	}
	return nil
}

func (b *Builder) upsertEdge(ctx context.Context, store Store, report *BuildReport, from, to string, edgeType EdgeType, props map[string]interface{}) error {
	created, err := store.UpsertEdge(ctx, from, to, edgeType, props)
	if err != nil {
		return fmt.Errorf("build edge %s-[%s]->%s: %w", from, edgeType, to, err)
	}
	if created {
		report.EdgesCreated++
	} else {
		report.EdgesUpdated++
	}
	return nil
}

// unresolvedIn reports the first unresolved reference in a rule, or "".
func unresolvedIn(rule *ast.Rule) string {
	if reason := unresolvedRefs(rule.AttrRefs()); reason != "" {
		return reason
	}
	if cons := rule.Consequence; cons != nil {
		if cons.Rule != nil && !cons.Rule.Resolved() {
			return fmt.Sprintf("unresolved rule reference %q", cons.Rule.Name)
		}
		if cons.Service != nil && !cons.Service.Resolved() {
			return fmt.Sprintf("unresolved service reference %q", cons.Service.Name)
		}
	}
	return ""
}

func unresolvedRefs(refs []*ast.AttrRef) string {
	for _, ref := range refs {
		if !ref.Resolved() {
			return fmt.Sprintf("unresolved attribute reference %q", ref.Name)
		}
	}
	return ""
}
