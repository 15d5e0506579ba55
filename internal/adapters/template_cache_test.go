package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type countingStore struct {
	templates map[string]core.BudgetTemplate
	gets      int
	lists     int
}

func (s *countingStore) ListTemplates(context.Context) ([]core.BudgetTemplate, error) {
	s.lists++
	var out []core.BudgetTemplate
	for _, t := range s.templates {
		out = append(out, t)
	}
	return out, nil
}

func (s *countingStore) GetTemplate(_ context.Context, id string) (core.BudgetTemplate, error) {
	s.gets++
	t, ok := s.templates[id]
	if !ok {
		return core.BudgetTemplate{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *countingStore) SaveTemplate(_ context.Context, t core.BudgetTemplate) error {
	s.templates[t.ID] = t
	return nil
}

func (s *countingStore) DeleteTemplate(_ context.Context, id string) error {
	delete(s.templates, id)
	return nil
}

func newCached(next storage.TemplateStore) *CachedTemplateStore {
	return NewCachedTemplateStore(next,
		cache.NewLRUCache[core.BudgetTemplate](8, time.Minute),
		cache.NewLRUCache[[]core.BudgetTemplate](1, time.Minute))
}

func TestCachedTemplateStore_CachesReads(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{templates: map[string]core.BudgetTemplate{
		"t": {ID: "t", Name: "T", Lines: []core.TemplateLine{{Category: "A", Type: core.Income}}},
	}}
	s := newCached(inner)

	for i := 0; i < 3; i++ {
		if _, err := s.GetTemplate(ctx, "t"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.ListTemplates(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if inner.gets != 1 || inner.lists != 1 {
		t.Fatalf("expected one backend call each, got gets=%d lists=%d", inner.gets, inner.lists)
	}

	got, _ := s.GetTemplate(ctx, "t")
	got.Lines[0].Category = "mutated"
	again, _ := s.GetTemplate(ctx, "t")
	if again.Lines[0].Category != "A" {
		t.Fatal("cached template shared its lines with a caller")
	}
}

func TestCachedTemplateStore_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{templates: map[string]core.BudgetTemplate{"t": {ID: "t", Name: "Old"}}}
	s := newCached(inner)

	_, _ = s.GetTemplate(ctx, "t")
	if err := s.SaveTemplate(ctx, core.BudgetTemplate{ID: "t", Name: "New"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTemplate(ctx, "t")
	if got.Name != "New" {
		t.Fatalf("stale template after save: %q", got.Name)
	}

	if err := s.DeleteTemplate(ctx, "t"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTemplate(ctx, "t"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
