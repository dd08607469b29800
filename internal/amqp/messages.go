package amqp

import (
	"encoding/json"
	"time"
)

// Sync events published to the backup queue.
const (
	EventRecorded = "recorded"
	EventArchived = "archived"
)

// SyncMessage is a lightweight notification that a transaction changed.
// It carries only identifiers; the worker fetches the full record from
// the store before mirroring it.
type SyncMessage struct {
	OwnerID   string    `json:"owner_id"`
	RecordID  string    `json:"record_id"`
	Event     string    `json:"event"`
	MonthKey  string    `json:"month_key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage creates a sync message for a newly recorded transaction
func NewSyncMessage(ownerID, recordID, event string) *SyncMessage {
	return &SyncMessage{
		OwnerID:   ownerID,
		RecordID:  recordID,
		Event:     event,
		Timestamp: time.Now(),
	}
}

// NewArchiveMessage creates a sync message for a transaction moved to the archive
func NewArchiveMessage(ownerID, recordID, monthKey string) *SyncMessage {
	msg := NewSyncMessage(ownerID, recordID, EventArchived)
	msg.MonthKey = monthKey
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
