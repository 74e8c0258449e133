package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionRecorded = "transaction_recorded"
	EventTransactionDeleted  = "transaction_deleted"
	EventCheckpointWritten   = "checkpoint_written"
)

// LedgerEvent is a lightweight notification about a ledger mutation.
// Consumers fetch the full record from the database; the event only carries
// enough to identify it.
type LedgerEvent struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id,omitempty"`   // transaction ID, if any
	Date      string    `json:"date,omitempty"` // checkpoint date, if any
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(eventType string, id int64, date string) *LedgerEvent {
	return &LedgerEvent{
		Type:      eventType,
		ID:        id,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
