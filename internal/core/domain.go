package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  LineType = "income"
	Expense LineType = "expense"
)

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

const (
	KindEvent   EntityKind = "event"
	KindProject EntityKind = "project"
)

const (
	StatusDraft     EntityStatus = "draft"
	StatusConfirmed EntityStatus = "confirmed"
	StatusCompleted EntityStatus = "completed"
	StatusCancelled EntityStatus = "cancelled"
)

// EntryPending is the only status the engine assigns to generated entries.
const EntryPending EntryStatus = "pending"

type (
	LineType     string
	Frequency    string
	EntityKind   string
	EntityStatus string
	EntryStatus  string

	Date struct {
		time.Time
	}

	// Entity is an event or a project a budget is attached to.
	Entity struct {
		ID     string
		Kind   EntityKind
		Name   string
		Year   int
		Status EntityStatus
	}

	// BudgetLine is one allocation row for an entity. The low/high variants and
	// the actual amount are optional; a nil pointer means "not set".
	BudgetLine struct {
		ID            string
		EntityID      string
		Category      string
		Type          LineType
		Allocated     Money
		AllocatedLow  *Money
		AllocatedHigh *Money
		Actual        *Money
		Notes         string
		SortOrder     int
	}

	// TemplateLine is a baseline-only prototype line.
	TemplateLine struct {
		Category  string
		Type      LineType
		Allocated Money
		SortOrder int
	}

	BudgetTemplate struct {
		ID          string
		Name        string
		Icon        string
		Description string
		IsDefault   bool // protected from deletion
		Lines       []TemplateLine
	}

	// RecurringRule generates ledger entries periodically. NextOccurrence is the
	// earliest date not yet materialized and only ever moves forward.
	RecurringRule struct {
		ID             string
		Label          string
		Type           LineType
		Amount         Money
		Category       string
		Frequency      Frequency
		DayOfMonth     int
		IsActive       bool
		NextOccurrence Date
	}

	LedgerEntry struct {
		ID       string
		RuleID   string
		Type     LineType
		Date     Date
		Label    string
		Amount   Money
		Category string
		Status   EntryStatus
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyLabel        = errors.New("empty label")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidLineType   = errors.New("invalid line type")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidKind       = errors.New("invalid entity kind")
	ErrInvalidStatus     = errors.New("invalid entity status")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (t LineType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLineType, string(t))
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Monthly, Quarterly, Annual:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, string(f))
	}
}

func (k EntityKind) Validate() error {
	switch k {
	case KindEvent, KindProject:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

func (s EntityStatus) Validate() error {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCompleted, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
}

func (e Entity) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("empty entity id")
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.Year < 1900 || e.Year > 9999 {
		return fmt.Errorf("invalid year %d", e.Year)
	}
	return e.Status.Validate()
}

// Validate is the contract check callers run before handing lines to the
// budget engine. The engine itself never rejects a line.
func (l BudgetLine) Validate() error {
	if strings.TrimSpace(l.Category) == "" {
		return ErrEmptyCategory
	}
	if err := l.Type.Validate(); err != nil {
		return err
	}
	for _, m := range []*Money{&l.Allocated, l.AllocatedLow, l.AllocatedHigh, l.Actual} {
		if m != nil && m.Cents < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

func (t BudgetTemplate) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty template id")
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	for i, l := range t.Lines {
		if strings.TrimSpace(l.Category) == "" {
			return fmt.Errorf("line %d: %w", i, ErrEmptyCategory)
		}
		if err := l.Type.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		if l.Allocated.Cents < 0 {
			return fmt.Errorf("line %d: %w", i, ErrNegativeAmount)
		}
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if len(r.Label) > 200 {
		return errors.New("label too long (max 200 characters)")
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	if err := r.NextOccurrence.Validate(); err != nil {
		return fmt.Errorf("invalid next occurrence: %w", err)
	}
	return nil
}
