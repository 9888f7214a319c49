package graph

import (
	"context"
	"testing"

	"causeway-hq/causeway/pkg/dml/ast"
)

func staticProvider(model *ast.DecisionModel) ModelProvider {
	return func(ctx context.Context) (*ast.DecisionModel, error) {
		return model, nil
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	model := resolvedModel(t, builderDocs)
	store := NewMemoryStore()

	s := NewScheduler(store, staticProvider(model), "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("expected scheduler to be running")
	}
	if s.NextRun() == nil {
		t.Error("expected a next run time")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("expected scheduler to be stopped")
	}
}

func TestSchedulerEmptyScheduleDisabled(t *testing.T) {
	s := NewScheduler(NewMemoryStore(), staticProvider(nil), "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty schedule failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("expected an empty schedule to leave the scheduler stopped")
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(NewMemoryStore(), staticProvider(nil), "whenever")
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestSchedulerRunCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	builder := NewBuilder()

	v1 := resolvedModel(t, builderDocs)
	if _, err := builder.Build(ctx, v1, store); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// A stale rule node belonging to this model.
	store.UpsertNode(ctx, "eligibility/Removed", []string{LabelRule}, map[string]interface{}{
		PropName: "Removed", PropModel: "eligibility", PropRuleSet: "eligibility",
	})

	s := NewScheduler(store, staticProvider(v1), "0 3 * * *")
	s.runCleanup(ctx)

	if node, _ := store.Node(ctx, "eligibility/Removed"); node != nil {
		t.Error("expected the stale rule removed by the scheduled cleanup")
	}
	if node, _ := store.Node(ctx, "eligibility/Eligible"); node == nil {
		t.Error("expected current entities untouched")
	}
}
