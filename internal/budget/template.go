package budget

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

var ErrTemplateNotFound = errors.New("template not found")

// IDFunc generates identifiers for expanded lines.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}

// Expand instantiates tpl as a fresh set of lines for entityID, ordered by the
// template's sort order. Actuals are left unset and variants are never
// copied. Expand never merges with existing lines: callers replace the entity's
// whole line set with the result.
func Expand(tpl core.BudgetTemplate, entityID string, newID IDFunc) []core.BudgetLine {
	if newID == nil {
		newID = NewID
	}

	src := make([]core.TemplateLine, len(tpl.Lines))
	copy(src, tpl.Lines)
	sort.SliceStable(src, func(i, j int) bool { return src[i].SortOrder < src[j].SortOrder })

	lines := make([]core.BudgetLine, 0, len(src))
	for i, tl := range src {
		lines = append(lines, core.BudgetLine{
			ID:        newID(),
			EntityID:  entityID,
			Category:  tl.Category,
			Type:      tl.Type,
			Allocated: tl.Allocated,
			SortOrder: i,
		})
	}
	return lines
}

// Catalog is an ordered set of named templates.
type Catalog []core.BudgetTemplate

// Lookup finds a template by id.
func (c Catalog) Lookup(id string) (core.BudgetTemplate, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return core.BudgetTemplate{}, false
}

// ExpandFromCatalog looks up templateID in c and expands it for entityID.
func ExpandFromCatalog(c Catalog, templateID, entityID string, newID IDFunc) ([]core.BudgetLine, error) {
	tpl, ok := c.Lookup(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	return Expand(tpl, entityID, newID), nil
}

// DefaultCatalog returns the built-in templates. They are marked default so
// stores refuse to delete them.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "default-event",
			Name:        "Evento",
			Icon:        "calendar",
			Description: "Budget tipo per un evento con biglietteria",
			IsDefault:   true,
			Lines: []core.TemplateLine{
				{Category: "Biglietteria", Type: core.Income, SortOrder: 0},
				{Category: "Sponsor", Type: core.Income, SortOrder: 1},
				{Category: "Location", Type: core.Expense, SortOrder: 2},
				{Category: "Catering", Type: core.Expense, SortOrder: 3},
				{Category: "Comunicazione", Type: core.Expense, SortOrder: 4},
				{Category: "Logistica", Type: core.Expense, SortOrder: 5},
			},
		},
		{
			ID:          "default-project",
			Name:        "Progetto",
			Icon:        "folder",
			Description: "Budget tipo per un progetto finanziato",
			IsDefault:   true,
			Lines: []core.TemplateLine{
				{Category: "Contributi", Type: core.Income, SortOrder: 0},
				{Category: "Donazioni", Type: core.Income, SortOrder: 1},
				{Category: "Personale", Type: core.Expense, SortOrder: 2},
				{Category: "Materiali", Type: core.Expense, SortOrder: 3},
				{Category: "Spese generali", Type: core.Expense, SortOrder: 4},
			},
		},
	}
}
