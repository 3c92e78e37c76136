package crm

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeErrors_NotJSON(t *testing.T) {
	items := NormalizeErrors("<html><body>Service Unavailable</body></html>", "Failed to create event")

	require.Len(t, items, 1)
	require.NotNil(t, items[0].Title)
	assert.Equal(t, "Failed to create event", *items[0].Title)
	assert.Nil(t, items[0].Code)
	assert.Nil(t, items[0].Detail)
}

func TestNormalizeErrors_ValidationErrors(t *testing.T) {
	body := `{
		"code": "validation_failed",
		"validation_errors": ["first_name is required", "email is invalid"]
	}`

	items := NormalizeErrors(body, "Failed to create contact request")

	require.Len(t, items, 2)
	for i, expected := range []string{"first_name is required", "email is invalid"} {
		require.NotNil(t, items[i].Code)
		assert.Equal(t, "validation_failed", *items[i].Code)
		require.NotNil(t, items[i].Title)
		assert.Equal(t, expected, *items[i].Title)
		assert.Nil(t, items[i].Detail)
	}
}

func TestNormalizeErrors_ValidationErrorsCardinality(t *testing.T) {
	// one output item per validation error, each carrying the top-level code
	for _, count := range []int{1, 3, 7} {
		entries := make([]string, count)
		for i := range entries {
			entries[i] = fmt.Sprintf("field_%d is required", i)
		}
		raw, err := json.Marshal(map[string]any{
			"code":              "validation_failed",
			"validation_errors": entries,
		})
		require.NoError(t, err)

		items := NormalizeErrors(string(raw), "")
		require.Len(t, items, count)
		for _, item := range items {
			require.NotNil(t, item.Code)
			assert.Equal(t, "validation_failed", *item.Code)
		}
	}
}

func TestNormalizeErrors_Message(t *testing.T) {
	body := `{"code": "no_matches", "message": "No people matched the given criteria."}`

	items := NormalizeErrors(body, "Failed to create contact request")

	require.Len(t, items, 1)
	require.NotNil(t, items[0].Code)
	assert.Equal(t, "no_matches", *items[0].Code)
	require.NotNil(t, items[0].Detail)
	assert.Equal(t, "No people matched the given criteria.", *items[0].Detail)
	// the message branch sets no title of its own, so the caller title lands
	require.NotNil(t, items[0].Title)
	assert.Equal(t, "Failed to create contact request", *items[0].Title)
}

func TestNormalizeErrors_OpaqueBody(t *testing.T) {
	body := `{"something": "unexpected"}`

	items := NormalizeErrors(body, "Failed to create event")

	require.Len(t, items, 1)
	require.NotNil(t, items[0].Title)
	assert.Equal(t, "Failed to create event", *items[0].Title)
	require.NotNil(t, items[0].Detail)
	assert.JSONEq(t, body, *items[0].Detail)
}

func TestNormalizeErrors_KeepsMeaningfulTitles(t *testing.T) {
	body := `{"code": "validation_failed", "validation_errors": ["email is invalid"]}`

	items := NormalizeErrors(body, "Failed to create contact request")

	require.Len(t, items, 1)
	require.NotNil(t, items[0].Title)
	assert.Equal(t, "email is invalid", *items[0].Title)
}

func TestNormalizeErrors_StructuredItemsSerializeExplicitNulls(t *testing.T) {
	items := NormalizeErrors(
		`{"code":"validation_failed","validation_errors":["email is invalid"]}`,
		"Failed to create contact request")

	require.Len(t, items, 1)
	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"validation_failed","title":"email is invalid","detail":null}`, string(raw))
}

func TestNormalizeErrors_MessageItemSerializesAllFields(t *testing.T) {
	items := NormalizeErrors(
		`{"code":"no_matches","message":"No people matched the given criteria."}`,
		"Failed to create contact request")

	require.Len(t, items, 1)
	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": "no_matches",
		"title": "Failed to create contact request",
		"detail": "No people matched the given criteria."
	}`, string(raw))
}

func TestNormalizeErrors_GenericItemStaysTitleOnly(t *testing.T) {
	items := NormalizeErrors("not json", "Failed to create event")

	require.Len(t, items, 1)
	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Failed to create event"}`, string(raw))
}

func TestNormalizeErrors_NeverEmpty(t *testing.T) {
	for _, body := range []string{"", "null", "{}", "[]", "not json"} {
		items := NormalizeErrors(body, "Something failed")
		assert.NotEmpty(t, items, "body %q", body)
	}
}
