package graph

import (
	"context"
	"testing"
)

func TestMemoryStoreUpsertNode(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.UpsertNode(ctx, "m.a", []string{LabelAttribute}, map[string]interface{}{PropName: "a"})
	if err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create")
	}

	created, err = store.UpsertNode(ctx, "m.a", []string{LabelAttribute}, map[string]interface{}{PropName: "a", PropType: "number"})
	if err != nil {
		t.Fatalf("second UpsertNode failed: %v", err)
	}
	if created {
		t.Error("expected second upsert to update, not create")
	}

	node, err := store.Node(ctx, "m.a")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if node == nil {
		t.Fatal("expected node to exist")
	}
	if node.Properties[PropType] != "number" {
		t.Errorf("expected properties to be overwritten, got %v", node.Properties)
	}

	missing, err := store.Node(ctx, "m.b")
	if err != nil {
		t.Fatalf("Node for absent identity failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for absent node, got %v", missing)
	}
}

func TestMemoryStoreQueryDeterministicOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"r/c", "r/a", "r/b"} {
		if _, err := store.UpsertNode(ctx, id, []string{LabelRule}, nil); err != nil {
			t.Fatalf("UpsertNode failed: %v", err)
		}
	}
	if _, err := store.UpsertNode(ctx, "m.x", []string{LabelAttribute}, nil); err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}

	matches, err := store.Query(ctx, Pattern{Label: LabelRule})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []string{"r/a", "r/b", "r/c"}
	if len(matches) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(matches))
	}
	for i, m := range matches {
		if m.Node.Identity != want[i] {
			t.Errorf("match %d: expected %q, got %q", i, want[i], m.Node.Identity)
		}
	}
}

func TestMemoryStoreEdges(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.UpsertEdge(ctx, "r/R1", "m.a", EdgeDependsOn, nil)
	if err != nil {
		t.Fatalf("UpsertEdge failed: %v", err)
	}
	if !created {
		t.Error("expected first edge upsert to create")
	}
	created, err = store.UpsertEdge(ctx, "r/R1", "m.a", EdgeDependsOn, map[string]interface{}{PropOrdinal: 0})
	if err != nil {
		t.Fatalf("second UpsertEdge failed: %v", err)
	}
	if created {
		t.Error("expected second edge upsert to update")
	}
	if _, err := store.UpsertEdge(ctx, "r/R1", "m.b", EdgeProduces, nil); err != nil {
		t.Fatalf("UpsertEdge failed: %v", err)
	}

	matches, err := store.Query(ctx, Pattern{EdgeType: EdgeDependsOn, From: "r/R1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 DEPENDS_ON edge, got %d", len(matches))
	}
	if matches[0].Edge.To != "m.a" {
		t.Errorf("unexpected edge target %q", matches[0].Edge.To)
	}
}

func TestMemoryStoreDeleteNodeRemovesIncidentEdges(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.UpsertNode(ctx, "r/R1", []string{LabelRule}, nil)
	store.UpsertNode(ctx, "m.a", []string{LabelAttribute}, nil)
	store.UpsertEdge(ctx, "r/R1", "m.a", EdgeProduces, nil)
	store.UpsertEdge(ctx, "r/R1#0", "m.a", EdgeDependsOn, nil)

	if err := store.DeleteNode(ctx, "m.a"); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}

	nodes, edges := store.Len()
	if nodes != 1 {
		t.Errorf("expected 1 remaining node, got %d", nodes)
	}
	if edges != 0 {
		t.Errorf("expected all incident edges removed, got %d", edges)
	}

	// Absent identity is a no-op.
	if err := store.DeleteNode(ctx, "m.gone"); err != nil {
		t.Errorf("deleting an absent node should be a no-op, got %v", err)
	}
}

func TestMemoryStoreDefensiveCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	props := map[string]interface{}{PropName: "a"}
	store.UpsertNode(ctx, "m.a", []string{LabelAttribute}, props)
	props[PropName] = "mutated"

	node, _ := store.Node(ctx, "m.a")
	if node.Properties[PropName] != "a" {
		t.Error("expected the store to copy properties on write")
	}

	node.Properties[PropName] = "mutated again"
	again, _ := store.Node(ctx, "m.a")
	if again.Properties[PropName] != "a" {
		t.Error("expected the store to copy properties on read")
	}
}
