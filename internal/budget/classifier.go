package budget

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// LineStatus is the three-tier health of a line. Expense lines use ok,
// warning and over_budget; income lines use ok, warning and under_target.
type LineStatus string

const (
	StatusOK          LineStatus = "ok"
	StatusWarning     LineStatus = "warning"
	StatusOverBudget  LineStatus = "over_budget"
	StatusUnderTarget LineStatus = "under_target"
)

var (
	hundred     = decimal.NewFromInt(100)
	warnAtLeast = decimal.NewFromInt(80)
)

// LineReport is a line evaluated under one scenario.
type LineReport struct {
	Line       core.BudgetLine
	Scenario   Scenario
	Allocated  core.Money
	Actual     core.Money
	Percentage decimal.Decimal
	Status     LineStatus
}

// Percentage returns value/limit*100. Negative inputs are clamped to zero and
// a zero limit yields zero.
func Percentage(value, limit core.Money) decimal.Decimal {
	v, m := value.Cents, limit.Cents
	if v < 0 {
		v = 0
	}
	if m <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(v).Mul(hundred).Div(decimal.NewFromInt(m))
}

// Classify evaluates actual against allocated with the polarity of t.
// Spending more than planned is bad for expenses, earning less than planned
// is bad for income, so the thresholds are mirrored:
//
//	expense: > 100 over_budget, > 80 warning, else ok
//	income:  >= 100 ok, >= 80 warning, else under_target
func Classify(t core.LineType, allocated core.Money, actual *core.Money) LineStatus {
	pct := Percentage(core.OrZero(actual), allocated)
	if t == core.Income {
		switch {
		case pct.GreaterThanOrEqual(hundred):
			return StatusOK
		case pct.GreaterThanOrEqual(warnAtLeast):
			return StatusWarning
		default:
			return StatusUnderTarget
		}
	}
	switch {
	case pct.GreaterThan(hundred):
		return StatusOverBudget
	case pct.GreaterThan(warnAtLeast):
		return StatusWarning
	default:
		return StatusOK
	}
}

// ClassifyLine resolves the allocation for s and classifies the line.
func ClassifyLine(line core.BudgetLine, s Scenario) LineReport {
	allocated := Resolve(line, s)
	actual := core.OrZero(line.Actual)
	return LineReport{
		Line:       line,
		Scenario:   s,
		Allocated:  allocated,
		Actual:     actual,
		Percentage: Percentage(actual, allocated),
		Status:     Classify(line.Type, allocated, line.Actual),
	}
}

// ClassifyLines reports every line under s, preserving order.
func ClassifyLines(lines []core.BudgetLine, s Scenario) []LineReport {
	out := make([]LineReport, 0, len(lines))
	for _, l := range lines {
		out = append(out, ClassifyLine(l, s))
	}
	return out
}
