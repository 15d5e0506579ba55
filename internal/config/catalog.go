package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

const appName = "bilancio"

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultCatalogPath is where template catalogs are looked up when
// TEMPLATE_CATALOG_FILE is unset.
func DefaultCatalogPath() string {
	return filepath.Join(ConfigDir(), "templates.toml")
}

// catalogFile mirrors the on-disk TOML layout. Amounts are strings so that
// both "1250.50" and "1250,50" are accepted.
type catalogFile struct {
	Templates []templateEntry `toml:"template"`
}

type templateEntry struct {
	ID          string      `toml:"id"`
	Name        string      `toml:"name"`
	Icon        string      `toml:"icon,omitempty"`
	Description string      `toml:"description,omitempty"`
	Lines       []lineEntry `toml:"line"`
}

type lineEntry struct {
	Category  string `toml:"category"`
	Type      string `toml:"type"`
	Allocated string `toml:"allocated"`
	Low       string `toml:"low,omitempty"`
	High      string `toml:"high,omitempty"`
	Actual    string `toml:"actual,omitempty"`
	Notes     string `toml:"notes,omitempty"`
}

type linesFile struct {
	Lines []lineEntry `toml:"line"`
}

// LoadCatalog reads user templates from path. A missing file yields an empty
// catalog. Templates read from disk are never marked default.
func LoadCatalog(path string) (budget.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return budget.Catalog{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	catalog := make(budget.Catalog, 0, len(f.Templates))
	for i, t := range f.Templates {
		tpl := core.BudgetTemplate{
			ID:          strings.TrimSpace(t.ID),
			Name:        strings.TrimSpace(t.Name),
			Icon:        t.Icon,
			Description: t.Description,
		}
		for j, l := range t.Lines {
			amount, err := core.ParseAmount(l.Allocated)
			if err != nil {
				return nil, fmt.Errorf("template %d line %d: %w", i, j, err)
			}
			tpl.Lines = append(tpl.Lines, core.TemplateLine{
				Category:  strings.TrimSpace(l.Category),
				Type:      core.LineType(strings.ToLower(strings.TrimSpace(l.Type))),
				Allocated: amount,
				SortOrder: j,
			})
		}
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		catalog = append(catalog, tpl)
	}
	return catalog, nil
}

// SaveCatalog writes the non-default templates of c to path.
func SaveCatalog(path string, c budget.Catalog) error {
	var f catalogFile
	for _, t := range c {
		if t.IsDefault {
			continue
		}
		entry := templateEntry{ID: t.ID, Name: t.Name, Icon: t.Icon, Description: t.Description}
		for _, l := range t.Lines {
			entry.Lines = append(entry.Lines, lineEntry{
				Category:  l.Category,
				Type:      string(l.Type),
				Allocated: l.Allocated.String(),
			})
		}
		f.Templates = append(f.Templates, entry)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating catalog file: %w", err)
	}
	defer out.Close()

	return toml.NewEncoder(out).Encode(f)
}

// LoadLines reads a budget line set for one entity. Line ids are assigned
// with newID and sort order follows file order.
func LoadLines(path, entityID string, newID budget.IDFunc) ([]core.BudgetLine, error) {
	if newID == nil {
		newID = budget.NewID
	}

	var f linesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parsing lines file: %w", err)
	}

	lines := make([]core.BudgetLine, 0, len(f.Lines))
	for i, l := range f.Lines {
		line := core.BudgetLine{
			ID:        newID(),
			EntityID:  entityID,
			Category:  strings.TrimSpace(l.Category),
			Type:      core.LineType(strings.ToLower(strings.TrimSpace(l.Type))),
			Notes:     l.Notes,
			SortOrder: i,
		}

		var err error
		if line.Allocated, err = core.ParseAmount(l.Allocated); err != nil {
			return nil, fmt.Errorf("line %d allocated: %w", i, err)
		}
		if line.AllocatedLow, err = optionalAmount(l.Low); err != nil {
			return nil, fmt.Errorf("line %d low: %w", i, err)
		}
		if line.AllocatedHigh, err = optionalAmount(l.High); err != nil {
			return nil, fmt.Errorf("line %d high: %w", i, err)
		}
		if line.Actual, err = optionalAmount(l.Actual); err != nil {
			return nil, fmt.Errorf("line %d actual: %w", i, err)
		}

		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func optionalAmount(s string) (*core.Money, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := core.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
