package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/outreachworks/crm-bridge/crm"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

const failureTitle = "Failed to create contact request"

// Settings are the fixed values stamped onto every outbound person write
type Settings struct {
	CampaignTag   string
	PointPersonID int64
}

// PersonMatcher resolves an email to an existing CRM person, nil when there
// is no usable match
type PersonMatcher interface {
	Match(ctx context.Context, rc crm.ResourceClient, email string) (*MatchedPerson, error)
}

// SurveyRecorder is the best-effort side effect invoked after a contact
// request is persisted. Its error is logged and discarded by this service.
type SurveyRecorder interface {
	Record(ctx context.Context, rc crm.ResourceClient, record *models.ContactRequest) error
}

// Service is the contact request pipeline: decide create vs. update, build
// the outbound payload, forward it, persist the audit record on success and
// fire the survey side effect.
type Service struct {
	contacts repositories.ContactRequestRepository
	clients  crm.Factory
	matcher  PersonMatcher
	survey   SurveyRecorder
	settings Settings
	logger   *zap.Logger
}

// NewService creates the contact request pipeline
func NewService(
	contacts repositories.ContactRequestRepository,
	clients crm.Factory,
	matcher PersonMatcher,
	survey SurveyRecorder,
	settings Settings,
	logger *zap.Logger,
) *Service {
	return &Service{
		contacts: contacts,
		clients:  clients,
		matcher:  matcher,
		survey:   survey,
		settings: settings,
		logger:   logger,
	}
}

// Handle runs the pipeline for one submitted contact request and returns the
// status code and response body for the HTTP layer to write.
func (s *Service) Handle(ctx context.Context, account *models.Account, payload Payload) (int, any) {
	rc := s.clients.ForTenant(account.Slug, account.AccessToken)

	personID, err := s.resolvePersonID(ctx, rc, payload)
	if err != nil {
		s.logger.Error("person match request failed",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	notes := normalizeNotes(payload.Notes)

	var resp *crm.Response
	if personID != nil {
		resp, err = rc.Update(ctx, "people", *personID,
			personUpdateEnvelope{Person: s.buildUpdate(payload.Person)})
	} else {
		resp, err = rc.Create(ctx, "people",
			personCreateEnvelope{Person: s.buildCreate(payload.Person)})
	}
	if err != nil {
		s.logger.Error("contact request forwarding failed",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	if resp.Failed() {
		s.logger.Warn("contact request rejected by CRM",
			zap.String("slug", account.Slug),
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
		return resp.Status, utils.Errors(crm.NormalizeErrors(resp.Body, failureTitle)...)
	}

	var person map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &person); err != nil {
		s.logger.Warn("invalid JSON returned by CRM for contact request",
			zap.String("slug", account.Slug),
			zap.String("body", resp.Body))
		return http.StatusInternalServerError, utils.TitleErrors(failureTitle)
	}

	upstreamID, ok := upstreamPersonID(person)
	if !ok {
		s.logger.Warn("CRM person response missing id",
			zap.String("slug", account.Slug),
			zap.String("body", resp.Body))
		return http.StatusInternalServerError, utils.TitleErrors(failureTitle)
	}

	// The record mirrors the submitted email, not the echoed one, and the
	// verbatim response body. Persisted only now that the upstream write is
	// verified successful.
	record := models.NewContactRequest(account.Slug, upstreamID, payload.Person.Email, []byte(resp.Body), notes)
	if err := s.contacts.Insert(ctx, record); err != nil {
		s.logger.Error("failed to persist contact request",
			zap.String("slug", account.Slug),
			zap.Error(err))
		return http.StatusInternalServerError, utils.TitleErrors(utils.UnexpectedErrorTitle)
	}

	// Best effort: a failed survey response must never change the primary
	// outcome, so the error is logged and dropped here.
	if err := s.survey.Record(ctx, rc, record); err != nil {
		s.logger.Warn("survey response recording failed",
			zap.String("slug", account.Slug),
			zap.Error(err))
	}

	return http.StatusCreated, utils.Data(person)
}

// resolvePersonID prefers the submitted id, then a match by email
func (s *Service) resolvePersonID(ctx context.Context, rc crm.ResourceClient, payload Payload) (*int64, error) {
	if payload.Person.ID != nil {
		return payload.Person.ID, nil
	}
	matched, err := s.matcher.Match(ctx, rc, payload.Person.Email)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		return nil, nil
	}
	return &matched.Person.ID, nil
}

func (s *Service) buildCreate(person PersonParams) personCreate {
	return personCreate{
		FirstName:       person.FirstName,
		LastName:        person.LastName,
		Email:           person.Email,
		Phone:           person.Phone,
		Mobile:          person.Mobile,
		WorkPhoneNumber: person.WorkPhoneNumber,
		Tags:            []string{s.settings.CampaignTag},
		ParentID:        s.settings.PointPersonID,
	}
}

func (s *Service) buildUpdate(person PersonParams) personUpdate {
	return personUpdate{
		Tags:            []string{s.settings.CampaignTag},
		ParentID:        s.settings.PointPersonID,
		Phone:           person.Phone,
		Mobile:          person.Mobile,
		WorkPhoneNumber: person.WorkPhoneNumber,
	}
}

// normalizeNotes maps blank notes to null; non-blank notes are kept verbatim
func normalizeNotes(notes string) *string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return &notes
}

// upstreamPersonID digs the numeric person id out of the parsed CRM response
func upstreamPersonID(parsed map[string]any) (int64, bool) {
	person, ok := parsed["person"].(map[string]any)
	if !ok {
		return 0, false
	}
	id, ok := person["id"].(float64)
	if !ok {
		return 0, false
	}
	return int64(id), true
}
