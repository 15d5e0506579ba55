// Package budget is the pure computation engine behind the budget screens:
// scenario resolution, line classification, entity summaries, organization
// rollups, template expansion and recurring entry projection.
//
// Nothing in this package performs I/O or keeps state between calls. Callers
// load records, pass them in, and persist whatever comes back.
package budget

import (
	"fmt"
	"strings"

	"bilancio/internal/core"
)

// Scenario selects which allocation variant of a line is in effect.
type Scenario int

const (
	Low    Scenario = iota // pessimistic
	Medium                 // baseline
	High                   // optimistic
)

// Scenarios lists every scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{Low, Medium, High}
}

func (s Scenario) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("scenario(%d)", int(s))
	}
}

// ParseScenario accepts the scenario names plus the pessimistic/realistic/
// optimistic aliases. An empty string means Medium.
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "pessimistic":
		return Low, nil
	case "", "medium", "realistic", "baseline":
		return Medium, nil
	case "high", "optimistic":
		return High, nil
	default:
		return Medium, fmt.Errorf("unknown scenario %q", s)
	}
}

// Resolve returns the allocation to use for line under scenario s. Low and
// High fall back to the baseline when their variant is unset.
func Resolve(line core.BudgetLine, s Scenario) core.Money {
	switch s {
	case Low:
		if line.AllocatedLow != nil {
			return *line.AllocatedLow
		}
	case High:
		if line.AllocatedHigh != nil {
			return *line.AllocatedHigh
		}
	case Medium:
	}
	return line.Allocated
}
