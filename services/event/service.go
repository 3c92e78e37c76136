package event

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/outreachworks/crm-bridge/crm"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

const failureTitle = "Failed to create event"

// Settings are the values forced onto every outbound event
type Settings struct {
	CalendarID int64
}

// Payload is a submitted event. The event object is open-ended (name, intro,
// start/end times and whatever else the caller supplies are forwarded as-is)
// so it stays a map rather than a closed struct. author_id,
// author_email and contact.email are the fields this pipeline reads itself.
type Payload struct {
	Event map[string]any `json:"event"`
}

// Service is the event pipeline: rewrite the payload, forward the create and
// persist the audit record on success. There is no matching step.
type Service struct {
	events   repositories.EventRepository
	clients  crm.Factory
	settings Settings
	logger   *zap.Logger
}

// NewService creates the event pipeline
func NewService(events repositories.EventRepository, clients crm.Factory, settings Settings, logger *zap.Logger) *Service {
	return &Service{events: events, clients: clients, settings: settings, logger: logger}
}

// Handle runs the pipeline for one submitted event and returns the status
// code and response body for the HTTP layer to write.
func (s *Service) Handle(ctx context.Context, account *models.Account, payload Payload) (int, any) {
	if payload.Event == nil {
		return http.StatusUnprocessableEntity, utils.TitleErrors("missing event parameter")
	}

	rc := s.clients.ForTenant(account.Slug, account.AccessToken)

	// author_email is tracked locally only; it never reaches the CRM.
	authorEmail, _ := payload.Event["author_email"].(string)

	forwarded := make(map[string]any, len(payload.Event)+1)
	for key, value := range payload.Event {
		if key == "author_email" {
			continue
		}
		forwarded[key] = value
	}
	forwarded["status"] = "published"
	forwarded["calendar_id"] = s.settings.CalendarID

	resp, err := rc.Create(ctx, "events", map[string]any{"event": forwarded})
	if err != nil {
		s.logger.Error("event forwarding failed",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	if resp.Failed() {
		s.logger.Warn("event rejected by CRM",
			zap.String("slug", account.Slug),
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
		return resp.Status, utils.Errors(crm.NormalizeErrors(resp.Body, failureTitle)...)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &parsed); err != nil {
		s.logger.Warn("invalid JSON returned by CRM for event",
			zap.String("slug", account.Slug),
			zap.String("body", resp.Body))
		return http.StatusInternalServerError, utils.TitleErrors(failureTitle)
	}

	authorID, contactEmail, ok := localFields(payload.Event)
	if !ok {
		// The CRM write already happened; without the locally tracked
		// fields there is nothing valid to mirror.
		s.logger.Error("event payload missing author_id or contact email",
			zap.String("slug", account.Slug))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	record := models.NewEvent(account.Slug, authorID, authorEmail, contactEmail, []byte(resp.Body))
	if err := s.events.Insert(ctx, record); err != nil {
		s.logger.Error("failed to persist event",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	return http.StatusCreated, utils.Data(parsed)
}

// List returns the tenant's stored audit copies of created events
func (s *Service) List(ctx context.Context, account *models.Account) (int, any) {
	records, err := s.events.ListBySlug(ctx, account.Slug)
	if err != nil {
		s.logger.Error("failed to list events",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	data := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		data = append(data, record.RawUpstreamEvent)
	}
	return http.StatusOK, utils.Data(data)
}

// localFields pulls the caller-supplied fields this app tracks itself
func localFields(event map[string]any) (authorID int64, contactEmail string, ok bool) {
	id, ok := event["author_id"].(float64)
	if !ok {
		return 0, "", false
	}
	contact, ok := event["contact"].(map[string]any)
	if !ok {
		return 0, "", false
	}
	email, ok := contact["email"].(string)
	if !ok {
		return 0, "", false
	}
	return int64(id), email, true
}
