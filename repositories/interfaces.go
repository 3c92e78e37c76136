package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/outreachworks/crm-bridge/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// AccountRepository manages tenant accounts
type AccountRepository interface {
	// Create stores a freshly installed tenant account
	Create(ctx context.Context, account *models.Account) error

	// GetBySlug retrieves the account for a tenant slug.
	// Returns ErrNotFound when the slug is not recognized.
	GetBySlug(ctx context.Context, slug string) (*models.Account, error)
}

// ContactRequestRepository manages contact request audit records
type ContactRequestRepository interface {
	// Insert stores the audit row for a successful upstream person write
	Insert(ctx context.Context, record *models.ContactRequest) error

	// UpdateSurveyResponse records the survey response body on an existing
	// contact request. This is the single follow-up mutation a contact
	// request ever receives.
	UpdateSurveyResponse(ctx context.Context, id uuid.UUID, response json.RawMessage) error

	// GetByID retrieves a contact request by its local id
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContactRequest, error)
}

// EventRepository manages event audit records
type EventRepository interface {
	// Insert stores the audit row for a successful upstream event create
	Insert(ctx context.Context, record *models.Event) error

	// ListBySlug retrieves all stored events for a tenant, newest first
	ListBySlug(ctx context.Context, slug string) ([]*models.Event, error)
}
