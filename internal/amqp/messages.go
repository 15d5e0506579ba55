package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"bilancio/internal/core"
)

// LedgerEntryMessage carries one generated ledger entry to the back-office,
// which owns the ledger table and its review workflow.
type LedgerEntryMessage struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"rule_id"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewLedgerEntryMessage(e core.LedgerEntry, now time.Time) *LedgerEntryMessage {
	return &LedgerEntryMessage{
		ID:          e.ID,
		RuleID:      e.RuleID,
		Type:        string(e.Type),
		Date:        e.Date.String(),
		Label:       e.Label,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Status:      string(e.Status),
		Timestamp:   now,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEntryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Entry converts the message back into a ledger entry.
func (m *LedgerEntryMessage) Entry() (core.LedgerEntry, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	return core.LedgerEntry{
		ID:       m.ID,
		RuleID:   m.RuleID,
		Type:     core.LineType(m.Type),
		Date:     d,
		Label:    m.Label,
		Amount:   core.Cents(m.AmountCents),
		Category: m.Category,
		Status:   core.EntryStatus(m.Status),
	}, nil
}

func LedgerEntryMessageFromJSON(data []byte) (*LedgerEntryMessage, error) {
	var msg LedgerEntryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
