package adapters

import (
	"context"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

const listKey = "\x00all"

// CachedTemplateStore puts an LRU cache in front of a TemplateStore. Templates
// change rarely and are read on every apply, so reads are cached and every
// write drops the whole cache.
type CachedTemplateStore struct {
	next  storage.TemplateStore
	one   cache.Cache[core.BudgetTemplate]
	lists cache.Cache[[]core.BudgetTemplate]
}

var _ storage.TemplateStore = (*CachedTemplateStore)(nil)

func NewCachedTemplateStore(next storage.TemplateStore, one cache.Cache[core.BudgetTemplate], lists cache.Cache[[]core.BudgetTemplate]) *CachedTemplateStore {
	return &CachedTemplateStore{next: next, one: one, lists: lists}
}

func (s *CachedTemplateStore) ListTemplates(ctx context.Context) ([]core.BudgetTemplate, error) {
	if list, ok := s.lists.Get(listKey); ok {
		return cloneTemplates(list), nil
	}
	list, err := s.next.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	s.lists.Set(listKey, cloneTemplates(list))
	return list, nil
}

func (s *CachedTemplateStore) GetTemplate(ctx context.Context, id string) (core.BudgetTemplate, error) {
	if tpl, ok := s.one.Get(id); ok {
		return cloneTemplate(tpl), nil
	}
	tpl, err := s.next.GetTemplate(ctx, id)
	if err != nil {
		return core.BudgetTemplate{}, err
	}
	s.one.Set(id, cloneTemplate(tpl))
	return tpl, nil
}

func (s *CachedTemplateStore) SaveTemplate(ctx context.Context, tpl core.BudgetTemplate) error {
	defer s.invalidate()
	return s.next.SaveTemplate(ctx, tpl)
}

func (s *CachedTemplateStore) DeleteTemplate(ctx context.Context, id string) error {
	defer s.invalidate()
	return s.next.DeleteTemplate(ctx, id)
}

func (s *CachedTemplateStore) invalidate() {
	s.one.Clear()
	s.lists.Clear()
}

func cloneTemplate(t core.BudgetTemplate) core.BudgetTemplate {
	t.Lines = append([]core.TemplateLine(nil), t.Lines...)
	return t
}

func cloneTemplates(in []core.BudgetTemplate) []core.BudgetTemplate {
	out := make([]core.BudgetTemplate, len(in))
	for i, t := range in {
		out[i] = cloneTemplate(t)
	}
	return out
}
