package explain

import (
	"context"
	"fmt"

	"causeway-hq/causeway/pkg/graph"
)

// Materialize records a finished trace as a case-scoped subgraph:
// one Value node per bound attribute and a SATISFIED_BY edge from each
// satisfied condition to the value that satisfied it. Nodes and edges
// are namespaced by the trace ID so concurrent cases never collide, and
// nothing in the static model graph is touched.
func Materialize(ctx context.Context, trace *Trace, store graph.Store) error {
	prefix := "case/" + trace.ID.String() + "/"

	for _, step := range trace.Steps {
		for _, fact := range step.Conditions {
			if !fact.Satisfied {
				continue
			}
			for _, c := range fact.Comparisons {
				if !c.Bound || !c.Satisfied {
					continue
				}
				valueIdentity := prefix + c.Attribute
				_, err := store.UpsertNode(ctx, valueIdentity, []string{graph.LabelValue}, map[string]interface{}{
					graph.PropTrace: trace.ID.String(),
					graph.PropName:  c.Attribute,
					graph.PropValue: c.Actual,
				})
				if err != nil {
					return fmt.Errorf("materialize value for %q: %w", c.Attribute, err)
				}
				_, err = store.UpsertEdge(ctx, fact.Condition, valueIdentity, graph.EdgeSatisfiedBy, map[string]interface{}{
					graph.PropTrace: trace.ID.String(),
				})
				if err != nil {
					return fmt.Errorf("materialize edge for condition %q: %w", fact.Condition, err)
				}
			}
		}
	}
	return nil
}

// Dematerialize removes the case-scoped subgraph a trace materialized.
func Dematerialize(ctx context.Context, trace *Trace, store graph.Store) error {
	matches, err := store.Query(ctx, graph.Pattern{Label: graph.LabelValue})
	if err != nil {
		return fmt.Errorf("query materialized values: %w", err)
	}
	id := trace.ID.String()
	for _, m := range matches {
		if owner, _ := m.Node.Properties[graph.PropTrace].(string); owner != id {
			continue
		}
		if err := store.DeleteNode(ctx, m.Node.Identity); err != nil {
			return fmt.Errorf("remove materialized value %q: %w", m.Node.Identity, err)
		}
	}
	return nil
}
