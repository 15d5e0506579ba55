package budget

import (
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
)

var (
	ErrUnknownFrequency  = errors.New("unknown frequency")
	ErrInvalidDayOfMonth = core.ErrInvalidDayOfMonth
	ErrMissingNextDate   = errors.New("next occurrence date not set")
)

// Advancer moves a rule's next occurrence forward by one period.
// Each frequency has its own implementation.
type Advancer interface {
	Advance(from core.Date, dayOfMonth int) core.Date
}

// MonthStep advances by a fixed number of calendar months, clamping the day
// to the end of shorter months.
type MonthStep int

func (m MonthStep) Advance(from core.Date, dayOfMonth int) core.Date {
	return addMonthsClamped(from, int(m), dayOfMonth)
}

var advancers = map[core.Frequency]Advancer{
	core.Monthly:   MonthStep(1),
	core.Quarterly: MonthStep(3),
	core.Annual:    MonthStep(12),
}

// GetAdvancer returns the advancer for a frequency.
func GetAdvancer(f core.Frequency) (Advancer, error) {
	a, ok := advancers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, string(f))
	}
	return a, nil
}

// Advance returns the occurrence one period after from.
func Advance(from core.Date, f core.Frequency, dayOfMonth int) (core.Date, error) {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return core.Date{}, ErrInvalidDayOfMonth
	}
	a, err := GetAdvancer(f)
	if err != nil {
		return core.Date{}, err
	}
	return a.Advance(from, dayOfMonth), nil
}

func addMonthsClamped(from core.Date, months, dayOfMonth int) core.Date {
	// Work from the first of the month so time.AddDate never normalizes into
	// the following month.
	first := time.Date(from.Year(), time.Month(from.Month()), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := lastDayOfMonth(first.Year(), first.Month())
	day := dayOfMonth
	if day > last {
		day = last
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RuleProjection is the outcome for one active, well-formed rule.
type RuleProjection struct {
	Rule    core.RecurringRule
	Entries []core.LedgerEntry
	Next    core.Date // new next occurrence; equals the old one when nothing is due
}

// Due reports whether the rule produced at least one entry.
func (p RuleProjection) Due() bool {
	return len(p.Entries) > 0
}

// SkippedRule is a malformed rule left untouched.
type SkippedRule struct {
	Rule core.RecurringRule
	Err  error
}

type Projection struct {
	Rules   []RuleProjection
	Skipped []SkippedRule
}

// Count is the number of entries emitted across all rules.
func (p Projection) Count() int {
	n := 0
	for _, r := range p.Rules {
		n += len(r.Entries)
	}
	return n
}

// Entries flattens the emitted entries in rule order.
func (p Projection) Entries() []core.LedgerEntry {
	out := make([]core.LedgerEntry, 0, p.Count())
	for _, r := range p.Rules {
		out = append(out, r.Entries...)
	}
	return out
}

// Project computes the entries due as of today. Each active rule emits one
// pending entry per period whose date is on or before today, so a rule that
// was dormant for several periods catches up one entry at a time. Inactive
// rules are ignored; malformed rules are reported in Skipped and never stop
// the other rules from being projected.
func Project(rules []core.RecurringRule, today time.Time, newID IDFunc) Projection {
	if newID == nil {
		newID = NewID
	}
	limit := core.DateOf(today)

	var out Projection
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		p, err := projectRule(r, limit, newID)
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedRule{Rule: r, Err: err})
			continue
		}
		out.Rules = append(out.Rules, p)
	}
	return out
}

func projectRule(r core.RecurringRule, limit core.Date, newID IDFunc) (RuleProjection, error) {
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return RuleProjection{}, fmt.Errorf("%w: %d", ErrInvalidDayOfMonth, r.DayOfMonth)
	}
	a, err := GetAdvancer(r.Frequency)
	if err != nil {
		return RuleProjection{}, err
	}
	if r.NextOccurrence.IsZero() {
		return RuleProjection{}, ErrMissingNextDate
	}

	typ := r.Type
	if typ == "" {
		typ = core.Expense
	}

	p := RuleProjection{Rule: r, Next: core.DateOf(r.NextOccurrence.Time)}
	for !p.Next.After(limit.Time) {
		p.Entries = append(p.Entries, core.LedgerEntry{
			ID:       newID(),
			RuleID:   r.ID,
			Type:     typ,
			Date:     p.Next,
			Label:    r.Label,
			Amount:   r.Amount,
			Category: r.Category,
			Status:   core.EntryPending,
		})
		p.Next = a.Advance(p.Next, r.DayOfMonth)
	}
	return p, nil
}
