package budget

import "bilancio/internal/core"

// EntityFilter narrows the entities that reach Rollup. Zero values match all.
type EntityFilter struct {
	Year   int
	Status core.EntityStatus
}

func (f EntityFilter) Match(e core.Entity) bool {
	if f.Year != 0 && e.Year != f.Year {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// FilterEntities keeps the entities matching f, preserving order.
func FilterEntities(entities []core.Entity, f EntityFilter) []core.Entity {
	out := make([]core.Entity, 0, len(entities))
	for _, e := range entities {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
