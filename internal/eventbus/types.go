package eventbus

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Subject   string                 `json:"subject"` // collection the event is about; the message key
	Payload   map[string]interface{} `json:"payload"`
}

func NewEvent(eventType, subject string, payload map[string]interface{}) Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    Source,
		Subject:   subject,
		Payload:   payload,
	}
}
