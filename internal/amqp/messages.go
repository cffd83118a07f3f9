package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Operations carried by an invalidation message.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// InvalidationMessage tells every instance which cache keys a write made stale.
type InvalidationMessage struct {
	Keys      []string  `json:"keys"`
	Operation string    `json:"operation"`
	EntityID  string    `json:"entityId,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvalidationMessage(source, operation, entityID string, keys ...string) *InvalidationMessage {
	return &InvalidationMessage{
		Keys:      keys,
		Operation: operation,
		EntityID:  entityID,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

func (m *InvalidationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvalidationMessageFromJSON(data []byte) (*InvalidationMessage, error) {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.Keys) == 0 {
		return nil, errors.New("invalidation message has no keys")
	}
	return &msg, nil
}
