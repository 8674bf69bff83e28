package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names what changed in the ledger.
type EventType string

const (
	EventJournalChecked  EventType = "journal.checked"
	EventJournalsDeleted EventType = "journals.deleted"
	EventPayrollUpdated  EventType = "payroll.updated"
	EventJournalCreated  EventType = "journal.created"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventJournalChecked, EventJournalsDeleted, EventPayrollUpdated, EventJournalCreated:
		return true
	}
	return false
}

// LedgerEvent is a lightweight notification that a fiscal year changed.
// Consumers re-read whatever they need from the database.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	FiscalYear string    `json:"fiscalYear"`
	Month      int       `json:"month,omitempty"`
	JournalIDs []int64   `json:"journalIds,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType EventType, fiscalYear string) *LedgerEvent {
	return &LedgerEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		FiscalYear: fiscalYear,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.FiscalYear == "" {
		return nil, fmt.Errorf("event %s has no fiscal year", msg.ID)
	}
	return &msg, nil
}
