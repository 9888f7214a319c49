package graph

import (
	"context"
	"fmt"
	"log/slog"

	"causeway-hq/causeway/pkg/dml/ast"
)

// CleanupReport summarizes one cleanup run.
type CleanupReport struct {
	Model   string
	Removed []string // identities deleted, in store order
}

// Cleanup removes graph nodes that belong to the model but no longer
// correspond to any entity in it. The builder never deletes, so renamed
// or dropped entities accumulate as stale nodes until a cleanup runs.
// Case-specific subgraphs (Value nodes, SATISFIED_BY edges) are never
// touched: they carry no model ownership.
func Cleanup(ctx context.Context, model *ast.DecisionModel, store Store) (*CleanupReport, error) {
	logger := slog.Default().With("component", "graph.cleanup")

	expected := expectedIdentities(model)
	owned := ownedModels(model)
	report := &CleanupReport{Model: model.Name}

	for _, label := range []string{LabelAttribute, LabelCondition, LabelRule, LabelRuleSet, LabelService} {
		matches, err := store.Query(ctx, Pattern{Label: label})
		if err != nil {
			return nil, fmt.Errorf("cleanup query %s nodes: %w", label, err)
		}
		for _, m := range matches {
			owner, _ := m.Node.Properties[PropModel].(string)
			if !owned[owner] {
				continue
			}
			if expected[m.Node.Identity] {
				continue
			}
			if err := store.DeleteNode(ctx, m.Node.Identity); err != nil {
				return nil, fmt.Errorf("cleanup delete %q: %w", m.Node.Identity, err)
			}
			report.Removed = append(report.Removed, m.Node.Identity)
		}
	}

	logger.Info("cleanup complete", "model", model.Name, "removed", len(report.Removed))
	return report, nil
}

// ownedModels collects the document-model names appearing anywhere in
// the decision model. A node whose "model" property names one of them
// belongs to this decision model and is subject to cleanup; nodes of
// other decision models sharing the store are left alone.
func ownedModels(model *ast.DecisionModel) map[string]bool {
	owned := make(map[string]bool)
	for _, attr := range model.Attributes {
		owned[attr.Model] = true
	}
	for _, rs := range model.RuleSets {
		owned[rs.Model] = true
	}
	for _, svc := range model.Services {
		owned[svc.Model] = true
	}
	return owned
}

// expectedIdentities collects every identity the model currently maps to.
func expectedIdentities(model *ast.DecisionModel) map[string]bool {
	expected := make(map[string]bool)
	for _, attr := range model.Attributes {
		expected[attr.QualifiedName()] = true
	}
	for _, rs := range model.RuleSets {
		expected[rs.QualifiedName()] = true
		for _, rule := range rs.Rules {
			expected[rule.QualifiedName()] = true
			for ordinal := range rule.Conditions {
				expected[fmt.Sprintf("%s#%d", rule.QualifiedName(), ordinal)] = true
			}
		}
	}
	for _, svc := range model.Services {
		expected[svc.QualifiedName()] = true
	}
	return expected
}
