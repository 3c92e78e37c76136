package contact

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/outreachworks/crm-bridge/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatcher_QueriesPeopleByEmail(t *testing.T) {
	client := &fakeResourceClient{matchResp: &crm.Response{
		Status: http.StatusOK,
		Body:   `{"person":{"id":42}}`,
	}}
	matcher := NewMatcher(zap.NewNop())

	matched, err := matcher.Match(context.Background(), client, "person@example.com")

	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, int64(42), matched.Person.ID)

	require.Len(t, client.matchCalls, 1)
	assert.Equal(t, "person@example.com", client.matchCalls[0].Get("email"))
}

func TestMatcher_NonSuccessReadsAsNoMatch(t *testing.T) {
	// a 400 "no matches", a 401 and a 500 all collapse to nil without error
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		client := &fakeResourceClient{matchResp: &crm.Response{
			Status: status,
			Body:   `{"code":"no_matches"}`,
		}}
		matcher := NewMatcher(zap.NewNop())

		matched, err := matcher.Match(context.Background(), client, "person@example.com")

		require.NoError(t, err, "status %d", status)
		assert.Nil(t, matched, "status %d", status)
	}
}

func TestMatcher_InvalidJSONReadsAsNoMatch(t *testing.T) {
	client := &fakeResourceClient{matchResp: &crm.Response{
		Status: http.StatusOK,
		Body:   "<html>oops</html>",
	}}
	matcher := NewMatcher(zap.NewNop())

	matched, err := matcher.Match(context.Background(), client, "person@example.com")

	require.NoError(t, err)
	assert.Nil(t, matched)
}

func TestMatcher_TransportFailureIsAnError(t *testing.T) {
	client := &fakeResourceClient{matchErr: errors.New("connection refused")}
	matcher := NewMatcher(zap.NewNop())

	matched, err := matcher.Match(context.Background(), client, "person@example.com")

	require.Error(t, err)
	assert.Nil(t, matched)
}
