package services

import (
	"context"
	"fmt"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

type TemplateService struct {
	templates storage.TemplateStore
}

func NewTemplateService(templates storage.TemplateStore) *TemplateService {
	return &TemplateService{templates: templates}
}

func (s *TemplateService) List(ctx context.Context) ([]core.BudgetTemplate, error) {
	tpls, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// Save validates and upserts one template.
func (s *TemplateService) Save(ctx context.Context, tpl core.BudgetTemplate) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("save template %s: %w", tpl.ID, err)
	}
	templateLogger(ctx).InfoContext(ctx, "Template saved",
		log.FieldOperation, log.OpUpdate,
		log.FieldTemplateID, tpl.ID,
		log.FieldLineCount, len(tpl.Lines))
	return nil
}

// FromLines builds a baseline-only template out of an entity's lines.
// Variants and actuals are dropped.
func FromLines(id, name string, lines []core.BudgetLine) core.BudgetTemplate {
	tpl := core.BudgetTemplate{ID: id, Name: name}
	for i, l := range lines {
		tpl.Lines = append(tpl.Lines, core.TemplateLine{
			Category:  l.Category,
			Type:      l.Type,
			Allocated: l.Allocated,
			SortOrder: i,
		})
	}
	return tpl
}

// Seed upserts every template of the catalog and returns how many were saved.
// Invalid templates are logged and skipped.
func (s *TemplateService) Seed(ctx context.Context, catalog budget.Catalog) (int, error) {
	saved := 0
	for _, tpl := range catalog {
		if err := tpl.Validate(); err != nil {
			templateLogger(ctx).WithFields(log.NewFields().WithOperation(log.OpSeed).WithError(err)).
				WarnContext(ctx, "Skipping invalid template", log.FieldTemplateID, tpl.ID)
			continue
		}
		if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
			return saved, fmt.Errorf("save template %s: %w", tpl.ID, err)
		}
		saved++
	}
	templateLogger(ctx).WithFields(log.NewFields().WithOperation(log.OpSeed).WithCount(saved)).
		InfoContext(ctx, "Templates seeded", "total", len(catalog))
	return saved, nil
}

// Delete removes a template. Default templates are refused with
// storage.ErrDefaultTemplate.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	templateLogger(ctx).InfoContext(ctx, "Template deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTemplateID, id)
	return nil
}

func templateLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentTemplate)
}
