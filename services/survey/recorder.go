package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/outreachworks/crm-bridge/crm"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"go.uber.org/zap"
)

// Settings identify the CRM survey used to surface contact request notes in
// the CRM control panel
type Settings struct {
	SurveyID          int64
	CommentQuestionID int64
}

type questionResponse struct {
	QuestionID int64   `json:"question_id"`
	Response   *string `json:"response"`
}

type surveyResponse struct {
	SurveyID          int64              `json:"survey_id"`
	PersonID          int64              `json:"person_id"`
	IsPrivate         bool               `json:"is_private"`
	QuestionResponses []questionResponse `json:"question_responses"`
}

type surveyResponseEnvelope struct {
	SurveyResponse surveyResponse `json:"survey_response"`
}

// Recorder posts a survey response for a just-created contact request and
// writes the result back onto the record. Callers treat the whole thing as
// best effort: the returned error is for their logs, nothing else.
type Recorder struct {
	contacts repositories.ContactRequestRepository
	settings Settings
	logger   *zap.Logger
}

// NewRecorder creates the survey response recorder
func NewRecorder(contacts repositories.ContactRequestRepository, settings Settings, logger *zap.Logger) *Recorder {
	return &Recorder{contacts: contacts, settings: settings, logger: logger}
}

// Record posts the survey response and stores the CRM's answer on the contact
// request. Any failure, whether transport, non-2xx, unparseable body or
// persistence, comes back as an error the caller is expected to discard after
// logging.
func (r *Recorder) Record(ctx context.Context, rc crm.ResourceClient, record *models.ContactRequest) error {
	if record.UpstreamPersonID == nil {
		return fmt.Errorf("contact request %s has no upstream person id", record.ID)
	}

	payload := surveyResponseEnvelope{
		SurveyResponse: surveyResponse{
			SurveyID:  r.settings.SurveyID,
			PersonID:  *record.UpstreamPersonID,
			IsPrivate: true,
			QuestionResponses: []questionResponse{{
				QuestionID: r.settings.CommentQuestionID,
				Response:   record.Notes,
			}},
		},
	}

	resp, err := rc.Create(ctx, "survey_responses", payload)
	if err != nil {
		return fmt.Errorf("survey response request failed: %w", err)
	}
	if resp.Failed() {
		return fmt.Errorf("survey response rejected: status %d body %s", resp.Status, resp.Body)
	}

	compacted, err := compact(resp.Body)
	if err != nil {
		return fmt.Errorf("survey response body is not valid JSON: %w", err)
	}

	if err := r.contacts.UpdateSurveyResponse(ctx, record.ID, compacted); err != nil {
		return fmt.Errorf("failed to store survey response: %w", err)
	}
	record.SurveyResponse = compacted

	r.logger.Debug("survey response recorded",
		zap.String("contact_request_id", record.ID.String()))
	return nil
}

// compact re-serializes the body, which both validates it and strips noise
func compact(body string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
