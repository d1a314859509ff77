// Package events defines the notifications the client core publishes about
// sessions, redirects, toasts and finished wizards.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/decmed/pkg/models"
)

type EventType string

const Topic = "decmed.events"

const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	ToastRaisedEvent      EventType = "toast.raised"
	SessionSignedInEvent  EventType = "session.signed_in"
	SessionSignedOutEvent EventType = "session.signed_out"
	RedirectIssuedEvent   EventType = "redirect.issued"
	WizardCompletedEvent  EventType = "wizard.completed"
)

type BaseEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Client    models.ClientKind `json:"client,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event of type t.
func NewBaseEvent(t EventType, client models.ClientKind) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Client:    client,
	}
}

type ToastRaised struct {
	BaseEvent

	Level   string `json:"level"`
	Message string `json:"message"`
}

func (e ToastRaised) GetType() EventType {
	return ToastRaisedEvent
}

type SessionSignedIn struct {
	BaseEvent

	Role *models.Role `json:"role"`
}

func (e SessionSignedIn) GetType() EventType {
	return SessionSignedInEvent
}

type SessionSignedOut struct {
	BaseEvent
}

func (e SessionSignedOut) GetType() EventType {
	return SessionSignedOutEvent
}

// RedirectIssued records a gate decision that sent the user elsewhere.
type RedirectIssued struct {
	BaseEvent

	Path   string `json:"path"`
	Target string `json:"target"`
	State  string `json:"state"`
}

func (e RedirectIssued) GetType() EventType {
	return RedirectIssuedEvent
}

type WizardCompleted struct {
	BaseEvent

	Flow       string `json:"flow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func (e WizardCompleted) GetType() EventType {
	return WizardCompletedEvent
}
