package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"go.uber.org/zap"
)

// EventRepository implements repositories.EventRepository
type EventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB, logger *zap.Logger) repositories.EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// Insert stores the audit row for a successful upstream event create
func (r *EventRepository) Insert(ctx context.Context, record *models.Event) error {
	query := `
		INSERT INTO events (
			id, slug, author_id, author_email, contact_email,
			raw_upstream_event, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Slug,
		record.AuthorID,
		record.AuthorEmail,
		record.ContactEmail,
		[]byte(record.RawUpstreamEvent),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	r.logger.Debug("event inserted",
		zap.String("id", record.ID.String()),
		zap.String("slug", record.Slug))
	return nil
}

// ListBySlug retrieves all stored events for a tenant, newest first
func (r *EventRepository) ListBySlug(ctx context.Context, slug string) ([]*models.Event, error) {
	query := `
		SELECT id, slug, author_id, author_email, contact_email,
		       raw_upstream_event, created_at, updated_at
		FROM events
		WHERE slug = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		record := &models.Event{}
		var rawEvent []byte
		if err := rows.Scan(
			&record.ID,
			&record.Slug,
			&record.AuthorID,
			&record.AuthorEmail,
			&record.ContactEmail,
			&rawEvent,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		record.RawUpstreamEvent = json.RawMessage(rawEvent)
		events = append(events, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}
