package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContactRequest is the local audit mirror of a person create/update that
// succeeded upstream. A row exists only for verified-successful CRM writes;
// the only mutation after insert is the survey response follow-up.
type ContactRequest struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Slug                string          `json:"slug" db:"slug"`
	UpstreamPersonID    *int64          `json:"upstream_person_id" db:"upstream_person_id"`
	UpstreamPersonEmail string          `json:"upstream_person_email" db:"upstream_person_email"`
	RawUpstreamPerson   json.RawMessage `json:"raw_upstream_person" db:"raw_upstream_person"`
	SurveyResponse      json.RawMessage `json:"survey_response" db:"survey_response"`
	Notes               *string         `json:"notes" db:"notes"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// NewContactRequest builds the audit row for a successful upstream person write.
// rawPerson is the verbatim CRM response body.
func NewContactRequest(slug string, personID int64, personEmail string, rawPerson []byte, notes *string) *ContactRequest {
	now := time.Now().UTC()
	return &ContactRequest{
		ID:                  uuid.New(),
		Slug:                slug,
		UpstreamPersonID:    &personID,
		UpstreamPersonEmail: personEmail,
		RawUpstreamPerson:   json.RawMessage(rawPerson),
		Notes:               notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
