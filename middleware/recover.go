package middleware

import (
	"net/http"

	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

// RecoverJSON is the pipeline boundary for anything unexpected: a panic below
// it is logged with its stack and surfaced as a generic 500 error envelope.
// No internal detail reaches the response body.
func RecoverJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while handling request",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.Stack("stack"))
					utils.WriteTitleError(w, http.StatusInternalServerError, utils.UnexpectedErrorTitle)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
