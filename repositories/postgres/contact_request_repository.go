package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"go.uber.org/zap"
)

// ContactRequestRepository implements repositories.ContactRequestRepository
type ContactRequestRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContactRequestRepository creates a new contact request repository
func NewContactRequestRepository(db *DB, logger *zap.Logger) repositories.ContactRequestRepository {
	return &ContactRequestRepository{db: db, logger: logger}
}

// Insert stores the audit row for a successful upstream person write
func (r *ContactRequestRepository) Insert(ctx context.Context, record *models.ContactRequest) error {
	query := `
		INSERT INTO contact_requests (
			id, slug, upstream_person_id, upstream_person_email,
			raw_upstream_person, survey_response, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Slug,
		record.UpstreamPersonID,
		record.UpstreamPersonEmail,
		[]byte(record.RawUpstreamPerson),
		nullableRaw(record.SurveyResponse),
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact request: %w", err)
	}

	r.logger.Debug("contact request inserted",
		zap.String("id", record.ID.String()),
		zap.String("slug", record.Slug))
	return nil
}

// UpdateSurveyResponse records the survey response body on an existing contact request
func (r *ContactRequestRepository) UpdateSurveyResponse(ctx context.Context, id uuid.UUID, response json.RawMessage) error {
	query := `
		UPDATE contact_requests
		SET survey_response = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, nullableRaw(response), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update survey response: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// GetByID retrieves a contact request by its local id
func (r *ContactRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContactRequest, error) {
	query := `
		SELECT id, slug, upstream_person_id, upstream_person_email,
		       raw_upstream_person, survey_response, notes, created_at, updated_at
		FROM contact_requests
		WHERE id = $1
	`

	record := &models.ContactRequest{}
	var rawPerson []byte
	var surveyResponse []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Slug,
		&record.UpstreamPersonID,
		&record.UpstreamPersonEmail,
		&rawPerson,
		&surveyResponse,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact request: %w", err)
	}

	record.RawUpstreamPerson = json.RawMessage(rawPerson)
	if surveyResponse != nil {
		record.SurveyResponse = json.RawMessage(surveyResponse)
	}
	return record, nil
}

// nullableRaw maps an absent JSON document to SQL NULL
func nullableRaw(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
