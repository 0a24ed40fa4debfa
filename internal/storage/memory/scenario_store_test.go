package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

func newScenario(id, name string, created time.Time) *domain.Scenario {
	return &domain.Scenario{
		ID:           id,
		Name:         name,
		Params:       domain.DefaultParams(),
		SummaryValue: 182000,
		CreatedAt:    created,
	}
}

func TestScenarioStore_SaveAndLoad(t *testing.T) {
	store := NewScenarioStore()
	ctx := context.Background()

	sc := newScenario("id-1", "retirement", time.Unix(1704067200, 0))
	if err := store.Save(ctx, sc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx, "id-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Name != "retirement" || got.SummaryValue != 182000 {
		t.Errorf("unexpected scenario %+v", got)
	}
	if got.Params != sc.Params {
		t.Errorf("params mismatch: got %+v, want %+v", got.Params, sc.Params)
	}

	// Mutating the returned copy must not affect the store
	got.Name = "changed"
	again, _ := store.Load(ctx, "id-1")
	if again.Name != "retirement" {
		t.Errorf("store returned shared pointer")
	}
}

func TestScenarioStore_Duplicates(t *testing.T) {
	store := NewScenarioStore()
	ctx := context.Background()

	if err := store.Save(ctx, newScenario("id-1", "a", time.Now())); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	err := store.Save(ctx, newScenario("id-1", "b", time.Now()))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for id, got %v", err)
	}
	err = store.Save(ctx, newScenario("id-2", "a", time.Now()))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for name, got %v", err)
	}
}

func TestScenarioStore_InvalidInput(t *testing.T) {
	store := NewScenarioStore()
	if err := store.Save(context.Background(), newScenario("", "x", time.Now())); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := store.Save(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
}

func TestScenarioStore_ListNewestFirst(t *testing.T) {
	store := NewScenarioStore()
	ctx := context.Background()
	base := time.Unix(1704067200, 0)

	for i, name := range []string{"old", "mid", "new"} {
		sc := newScenario("id-"+name, name, base.Add(time.Duration(i)*time.Hour))
		if err := store.Save(ctx, sc); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(list))
	}
	if list[0].Name != "new" || list[2].Name != "old" {
		t.Errorf("unexpected order: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestScenarioStore_Delete(t *testing.T) {
	store := NewScenarioStore()
	ctx := context.Background()

	if err := store.Save(ctx, newScenario("id-1", "a", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "id-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "id-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "id-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	// name is free again
	if err := store.Save(ctx, newScenario("id-2", "a", time.Now())); err != nil {
		t.Errorf("expected name reuse after delete, got %v", err)
	}
}
