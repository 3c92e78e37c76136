package crm

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPaths() *TenantPaths {
	return NewTenantPaths("https", "example-crm.com", "test_slug", "test_token")
}

func TestTenantPaths_Index(t *testing.T) {
	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/people?access_token=test_token",
		newTestPaths().Index("people"))
}

func TestTenantPaths_Create(t *testing.T) {
	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/events?access_token=test_token",
		newTestPaths().Create("events"))
}

func TestTenantPaths_Update(t *testing.T) {
	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/people/123?access_token=test_token",
		newTestPaths().Update("people", 123))
}

func TestTenantPaths_Delete(t *testing.T) {
	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/people/9?access_token=test_token",
		newTestPaths().Delete("people", 9))
}

func TestTenantPaths_Match(t *testing.T) {
	params := url.Values{}
	params.Set("email", "person@example.com")

	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/people/match?access_token=test_token&email=person%40example.com",
		newTestPaths().Match("people", params))
}

func TestTenantPaths_DefaultProtocol(t *testing.T) {
	paths := NewTenantPaths("", "example-crm.com", "test_slug", "tok")
	assert.Equal(t,
		"https://test_slug.example-crm.com/api/v1/people?access_token=tok",
		paths.Index("people"))
}
