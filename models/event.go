package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the local audit mirror of an event created upstream. AuthorID is
// the CRM's numeric id for the author; AuthorEmail is tracked locally only and
// never forwarded to the CRM.
type Event struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Slug             string          `json:"slug" db:"slug"`
	AuthorID         int64           `json:"author_id" db:"author_id"`
	AuthorEmail      string          `json:"author_email" db:"author_email"`
	ContactEmail     string          `json:"contact_email" db:"contact_email"`
	RawUpstreamEvent json.RawMessage `json:"raw_upstream_event" db:"raw_upstream_event"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// NewEvent builds the audit row for a successful upstream event create.
// rawEvent is the verbatim CRM response body.
func NewEvent(slug string, authorID int64, authorEmail, contactEmail string, rawEvent []byte) *Event {
	now := time.Now().UTC()
	return &Event{
		ID:               uuid.New(),
		Slug:             slug,
		AuthorID:         authorID,
		AuthorEmail:      authorEmail,
		ContactEmail:     contactEmail,
		RawUpstreamEvent: json.RawMessage(rawEvent),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
