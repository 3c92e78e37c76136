package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/config"
	"github.com/outreachworks/crm-bridge/middleware"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"github.com/outreachworks/crm-bridge/services/contact"
	"github.com/outreachworks/crm-bridge/services/event"
	"github.com/outreachworks/crm-bridge/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAccountRepo struct {
	accounts map[string]*models.Account
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	f.accounts[account.Slug] = account
	return nil
}

func (f *fakeAccountRepo) GetBySlug(ctx context.Context, slug string) (*models.Account, error) {
	if account, ok := f.accounts[slug]; ok {
		return account, nil
	}
	return nil, repositories.ErrNotFound
}

type stubContactPipeline struct{}

func (s *stubContactPipeline) Handle(ctx context.Context, account *models.Account, payload contact.Payload) (int, any) {
	return http.StatusCreated, utils.Data(map[string]any{"person": map[string]any{"id": 45}})
}

type stubEventPipeline struct{}

func (s *stubEventPipeline) Handle(ctx context.Context, account *models.Account, payload event.Payload) (int, any) {
	return http.StatusCreated, utils.Data(map[string]any{"event": map[string]any{"id": 88}})
}

func (s *stubEventPipeline) List(ctx context.Context, account *models.Account) (int, any) {
	return http.StatusOK, utils.Data([]any{})
}

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	accounts := &fakeAccountRepo{accounts: map[string]*models.Account{
		"test_slug": models.NewAccount("test_slug", "test_token"),
	}}
	deps := &app.Dependencies{
		Config:                &config.Config{},
		Logger:                logger,
		Accounts:              accounts,
		ContactRequestService: &stubContactPipeline{},
		EventService:          &stubEventPipeline{},
		AccountMiddleware:     middleware.NewAccountMiddleware(accounts, logger),
	}
	return SetupRoutes(deps)
}

func TestRoutes_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutes_APIHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_TenantRoutesRequireSlug(t *testing.T) {
	router := newTestRouter()
	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/contact_requests"},
		{http.MethodPost, "/api/v1/events"},
		{http.MethodGet, "/api/v1/events"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(target.method, target.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "%s %s", target.method, target.path)
	}
}

func TestRoutes_TenantRouteWithRecognizedSlug(t *testing.T) {
	body := `{"data":{"person":{"first_name":"F","last_name":"L","email":"e@x.com"}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact_requests?slug=test_slug", strings.NewReader(body))

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"person":{"id":45}}}`, rec.Body.String())
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact_requests", nil)
	req.Header.Set("Origin", "https://some-tenant-page.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
