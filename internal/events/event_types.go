package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventUserDataUpdated  EventType = "user_data_updated"
	EventUserDeleted      EventType = "user_deleted"
	EventContactSubmitted EventType = "contact_submitted"
	EventContactDeleted   EventType = "contact_deleted"
)

// AllEventTypes lists every type services publish.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserDataUpdated,
	EventUserDeleted,
	EventContactSubmitted,
	EventContactDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subjectId"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID, actor string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserDataUpdatedPayload payload.
type UserDataUpdatedPayload struct {
	Keys []string `json:"keys"`
}

// ContactSubmittedPayload payload. Message is truncated to a preview.
type ContactSubmittedPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	MessagePreview string `json:"messagePreview"`
	IP             string `json:"ip,omitempty"`
}
