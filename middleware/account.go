package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/outreachworks/crm-bridge/repositories"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

// AccountMiddleware resolves the tenant account from the slug query parameter
type AccountMiddleware struct {
	accounts repositories.AccountRepository
	logger   *zap.Logger
}

// NewAccountMiddleware creates the tenant resolution middleware
func NewAccountMiddleware(accounts repositories.AccountRepository, logger *zap.Logger) *AccountMiddleware {
	return &AccountMiddleware{accounts: accounts, logger: logger}
}

// RequireAccount rejects requests without a recognized slug with 422 and puts
// the resolved account on the request context for handlers downstream. The
// slug comes from the query string or, for the embedded form's POSTs, from a
// top-level field of the JSON body.
func (m *AccountMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("slug")
		if slug == "" {
			slug = bodySlug(r)
		}
		if slug == "" {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing slug parameter")
			return
		}

		account, err := m.accounts.GetBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				utils.WriteTitleError(w, http.StatusUnprocessableEntity,
					fmt.Sprintf("account slug '%s' not recognized", slug))
				return
			}
			m.logger.Error("failed to resolve account",
				zap.String("slug", slug),
				zap.Error(err))
			utils.WriteTitleError(w, http.StatusInternalServerError, utils.UnexpectedErrorTitle)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

// bodySlug peeks a top-level slug field out of a JSON request body. The body
// is buffered and restored so the handler's own decode still sees all of it.
func bodySlug(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var body struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Slug
}
