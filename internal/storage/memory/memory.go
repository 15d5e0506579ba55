// Package memory is an in-process implementation of the storage ports, used
// by the memory backend and by service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type ledgerKey struct {
	ruleID string
	date   string
}

type Store struct {
	mu        sync.Mutex
	entities  map[string]core.Entity
	lines     map[string][]core.BudgetLine
	templates map[string]core.BudgetTemplate
	rules     map[string]core.RecurringRule
	entries   []core.LedgerEntry
	seen      map[ledgerKey]struct{}
}

var (
	_ storage.Store        = (*Store)(nil)
	_ storage.LineReplacer = (*Store)(nil)
)

func New() *Store {
	return &Store{
		entities:  map[string]core.Entity{},
		lines:     map[string][]core.BudgetLine{},
		templates: map[string]core.BudgetTemplate{},
		rules:     map[string]core.RecurringRule{},
		seen:      map[ledgerKey]struct{}{},
	}
}

func (s *Store) SaveEntity(_ context.Context, e core.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
	return nil
}

func (s *Store) GetEntity(_ context.Context, id string) (core.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return core.Entity{}, fmt.Errorf("entity %s: %w", id, storage.ErrNotFound)
	}
	return e, nil
}

// ListEntities orders like the SQL store: newest year first, then name.
func (s *Store) ListEntities(_ context.Context, f budget.EntityFilter) ([]core.Entity, error) {
	s.mu.Lock()
	all := make([]core.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		all = append(all, e)
	}
	s.mu.Unlock()

	out := budget.FilterEntities(all, f)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListLines(_ context.Context, entityID string) ([]core.BudgetLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines[entityID]), nil
}

func (s *Store) DeleteLines(_ context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, entityID)
	return nil
}

func (s *Store) InsertLines(_ context.Context, lines []core.BudgetLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(lines)
	return nil
}

func (s *Store) ReplaceLines(_ context.Context, entityID string, lines []core.BudgetLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, entityID)
	s.insertLocked(lines)
	return nil
}

func (s *Store) insertLocked(lines []core.BudgetLine) {
	for _, l := range cloneLines(lines) {
		s.lines[l.EntityID] = append(s.lines[l.EntityID], l)
	}
	for id := range s.lines {
		ls := s.lines[id]
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].SortOrder < ls[j].SortOrder })
	}
}

func (s *Store) ListTemplates(_ context.Context) ([]core.BudgetTemplate, error) {
	s.mu.Lock()
	out := make([]core.BudgetTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, cloneTemplate(t))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (core.BudgetTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return core.BudgetTemplate{}, fmt.Errorf("template %s: %w", id, storage.ErrNotFound)
	}
	return cloneTemplate(t), nil
}

func (s *Store) SaveTemplate(_ context.Context, tpl core.BudgetTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ID] = cloneTemplate(tpl)
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return fmt.Errorf("template %s: %w", id, storage.ErrNotFound)
	}
	if t.IsDefault {
		return fmt.Errorf("template %s: %w", id, storage.ErrDefaultTemplate)
	}
	delete(s.templates, id)
	return nil
}

func (s *Store) ListRules(_ context.Context) ([]core.RecurringRule, error) {
	s.mu.Lock()
	out := make([]core.RecurringRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextOccurrence.Equal(out[j].NextOccurrence.Time) {
			return out[i].NextOccurrence.Before(out[j].NextOccurrence.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetRule(_ context.Context, id string) (core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return core.RecurringRule{}, fmt.Errorf("rule %s: %w", id, storage.ErrNotFound)
	}
	return r, nil
}

func (s *Store) SaveRule(_ context.Context, r core.RecurringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	return nil
}

func (s *Store) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("rule %s: %w", id, storage.ErrNotFound)
	}
	r.IsActive = active
	s.rules[id] = r
	return nil
}

func (s *Store) UpdateNextOccurrence(_ context.Context, id string, next core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("rule %s: %w", id, storage.ErrNotFound)
	}
	if !next.After(r.NextOccurrence.Time) {
		return fmt.Errorf("rule %s to %s: %w", id, next, storage.ErrStaleOccurrence)
	}
	r.NextOccurrence = next
	s.rules[id] = r
	return nil
}

func (s *Store) AppendEntries(_ context.Context, entries []core.LedgerEntry) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stored []core.LedgerEntry
	for _, e := range entries {
		k := ledgerKey{ruleID: e.RuleID, date: e.Date.String()}
		if _, dup := s.seen[k]; dup {
			continue
		}
		s.seen[k] = struct{}{}
		s.entries = append(s.entries, e)
		stored = append(stored, e)
	}
	return stored, nil
}

func (s *Store) ListEntries(_ context.Context, f storage.LedgerFilter) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	var out []core.LedgerEntry
	for _, e := range s.entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out, nil
}

// cloneLines copies lines including the optional amounts, so callers never
// share pointers with the store.
func cloneLines(in []core.BudgetLine) []core.BudgetLine {
	if in == nil {
		return nil
	}
	out := make([]core.BudgetLine, len(in))
	for i, l := range in {
		l.AllocatedLow = clonePtr(l.AllocatedLow)
		l.AllocatedHigh = clonePtr(l.AllocatedHigh)
		l.Actual = clonePtr(l.Actual)
		out[i] = l
	}
	return out
}

func clonePtr(m *core.Money) *core.Money {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneTemplate(t core.BudgetTemplate) core.BudgetTemplate {
	t.Lines = append([]core.TemplateLine(nil), t.Lines...)
	return t
}
