package handlers

import (
	"net/http"

	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck verifies the database connection is usable
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		if err := deps.DB.HealthCheck(r.Context()); err != nil {
			deps.Logger.Error("readiness check failed", zap.Error(err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// APIHealthHandler serves the health envelope the embedded client polls
func APIHealthHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.Data(map[string]any{
			"id":         1,
			"type":       "health_check",
			"attributes": map[string]string{"status": "OK"},
		}))
	}
}
