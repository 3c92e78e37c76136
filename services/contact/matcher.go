package contact

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/outreachworks/crm-bridge/crm"
	"go.uber.org/zap"
)

// MatchedPerson is the CRM's answer to a successful person match
type MatchedPerson struct {
	Person struct {
		ID int64 `json:"id"`
	} `json:"person"`
}

// Matcher resolves an email to an existing CRM person
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a person matcher
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// Match asks the CRM for the person with the given email. Every non-success
// outcome collapses to nil: a 400 "no matches", a 401, a 500 and an
// unparseable 2xx body all read as "no match", which sends the caller down
// the create path. That conflation is long-standing behavior; the warn logs
// carry the status so an auth failure is at least visible.
//
// Only a transport-level failure is returned as an error.
func (m *Matcher) Match(ctx context.Context, rc crm.ResourceClient, email string) (*MatchedPerson, error) {
	params := url.Values{}
	params.Set("email", email)

	resp, err := rc.Match(ctx, "people", params)
	if err != nil {
		return nil, err
	}

	if resp.Failed() {
		m.logger.Info("person match returned no match",
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
		return nil, nil
	}

	var person MatchedPerson
	if err := json.Unmarshal([]byte(resp.Body), &person); err != nil {
		m.logger.Warn("person match returned invalid JSON",
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
		return nil, nil
	}

	return &person, nil
}
