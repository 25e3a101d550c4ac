package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgeter/internal/core"
)

// Ledger event actions.
const (
	ActionAppended = "appended"
	ActionUndone   = "undone"
)

// LedgerEvent announces a committed change to the ledger.
type LedgerEvent struct {
	Action      string           `json:"action"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewLedgerEvent(action string, tx core.Transaction, at time.Time) *LedgerEvent {
	return &LedgerEvent{Action: action, Transaction: tx, Timestamp: at}
}

func (m *LedgerEvent) Validate() error {
	switch m.Action {
	case ActionAppended, ActionUndone:
	default:
		return fmt.Errorf("unknown ledger event action %q", m.Action)
	}
	if m.Transaction.Type == "" {
		return fmt.Errorf("ledger event without transaction type")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
