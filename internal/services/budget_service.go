package services

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// BudgetService owns entity budgets: it loads lines, feeds them to the engine
// and replaces line sets as a whole.
type BudgetService struct {
	entities  storage.EntityStore
	lines     storage.LineStore
	templates storage.TemplateStore
	catalog   budget.Catalog
	newID     budget.IDFunc
	locks     keyedMutex
}

func NewBudgetService(entities storage.EntityStore, lines storage.LineStore, templates storage.TemplateStore) *BudgetService {
	return &BudgetService{
		entities:  entities,
		lines:     lines,
		templates: templates,
		newID:     budget.NewID,
	}
}

// CreateEntity validates e, assigns an id when missing and stores it.
func (s *BudgetService) CreateEntity(ctx context.Context, e core.Entity) (core.Entity, error) {
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Status == "" {
		e.Status = core.StatusDraft
	}
	if err := e.Validate(); err != nil {
		return core.Entity{}, fmt.Errorf("invalid entity: %w", err)
	}
	if err := s.entities.SaveEntity(ctx, e); err != nil {
		return core.Entity{}, fmt.Errorf("save entity: %w", err)
	}
	budgetLogger(ctx).
		WithFields(log.NewFields().WithOperation(log.OpCreate).WithEntity(e.ID, string(e.Kind), e.Year)).
		InfoContext(ctx, "Entity created")
	return e, nil
}

func (s *BudgetService) ListEntities(ctx context.Context, f budget.EntityFilter) ([]core.Entity, error) {
	entities, err := s.entities.ListEntities(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

// EntitySummary recomputes the summary of one entity from its stored lines.
func (s *BudgetService) EntitySummary(ctx context.Context, entityID string) (core.Entity, budget.EntityBudgetSummary, error) {
	e, err := s.entities.GetEntity(ctx, entityID)
	if err != nil {
		return core.Entity{}, budget.EntityBudgetSummary{}, fmt.Errorf("get entity %s: %w", entityID, err)
	}
	lines, err := s.lines.ListLines(ctx, entityID)
	if err != nil {
		return core.Entity{}, budget.EntityBudgetSummary{}, fmt.Errorf("list lines: %w", err)
	}
	return e, budget.Summarize(entityID, lines), nil
}

// LineReports classifies every line of the entity under sc.
func (s *BudgetService) LineReports(ctx context.Context, entityID string, sc budget.Scenario) ([]budget.LineReport, error) {
	lines, err := s.lines.ListLines(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	return budget.ClassifyLines(lines, sc), nil
}

// ReplaceLines swaps the entity's whole line set. Calls for the same entity
// are serialized in-process. The swap is atomic only when the store
// implements storage.LineReplacer; otherwise a failed insert leaves the
// entity without lines and the error says so.
func (s *BudgetService) ReplaceLines(ctx context.Context, entityID string, lines []core.BudgetLine) error {
	if _, err := s.entities.GetEntity(ctx, entityID); err != nil {
		return fmt.Errorf("get entity %s: %w", entityID, err)
	}

	prepared := make([]core.BudgetLine, len(lines))
	for i, l := range lines {
		l.EntityID = entityID
		if l.ID == "" {
			l.ID = s.newID()
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("line %d (%s): %w", i+1, l.Category, err)
		}
		prepared[i] = l
	}

	unlock := s.locks.Lock(entityID)
	defer unlock()

	if r, ok := s.lines.(storage.LineReplacer); ok {
		if err := r.ReplaceLines(ctx, entityID, prepared); err != nil {
			return fmt.Errorf("replace lines: %w", err)
		}
	} else {
		if err := s.lines.DeleteLines(ctx, entityID); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		if err := s.lines.InsertLines(ctx, prepared); err != nil {
			budgetLogger(ctx).ErrorContext(ctx, "Line insert failed after delete, entity has no lines",
				log.FieldOperation, log.OpReplace,
				log.FieldEntityID, entityID,
				log.FieldError, err)
			return fmt.Errorf("insert lines (previous lines already deleted): %w", err)
		}
	}

	budgetLogger(ctx).InfoContext(ctx, "Budget lines replaced",
		log.FieldOperation, log.OpReplace,
		log.FieldEntityID, entityID,
		log.FieldLineCount, len(prepared))
	return nil
}

// UseCatalog makes ApplyTemplate prefer the templates of c over stored ones.
func (s *BudgetService) UseCatalog(c budget.Catalog) {
	s.catalog = c
}

// ApplyTemplate expands the template for the entity and replaces its lines
// with the result. A template defined in the catalog wins over the stored copy.
func (s *BudgetService) ApplyTemplate(ctx context.Context, entityID, templateID string) ([]core.BudgetLine, error) {
	lines, err := budget.ExpandFromCatalog(s.catalog, templateID, entityID, s.newID)
	if errors.Is(err, budget.ErrTemplateNotFound) {
		tpl, gerr := s.templates.GetTemplate(ctx, templateID)
		if errors.Is(gerr, storage.ErrNotFound) {
			return nil, err
		}
		if gerr != nil {
			return nil, fmt.Errorf("get template: %w", gerr)
		}
		lines = budget.Expand(tpl, entityID, s.newID)
	} else if err != nil {
		return nil, err
	}

	if err := s.ReplaceLines(ctx, entityID, lines); err != nil {
		return nil, err
	}
	budgetLogger(ctx).InfoContext(ctx, "Template applied",
		log.FieldOperation, log.OpApply,
		log.FieldEntityID, entityID,
		log.FieldTemplateID, templateID)
	return lines, nil
}

func budgetLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentBudget)
}
