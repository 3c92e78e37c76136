package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/middleware"
	"github.com/outreachworks/crm-bridge/services/event"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

type eventBody struct {
	Data *event.Payload `json:"data"`
}

// CreateEventHandler handles POST /api/v1/events
func CreateEventHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := middleware.GetAccountFromContext(r.Context())
		if account == nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing slug parameter")
			return
		}

		var body eventBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		if body.Data == nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing data parameter")
			return
		}

		deps.Logger.Info("attempting to create event",
			zap.String("slug", account.Slug))

		status, respBody := deps.EventService.Handle(r.Context(), account, *body.Data)
		utils.WriteJSON(w, status, respBody)
	}
}

// ListEventsHandler handles GET /api/v1/events, serving the tenant's stored
// audit copies
func ListEventsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := middleware.GetAccountFromContext(r.Context())
		if account == nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing slug parameter")
			return
		}

		status, respBody := deps.EventService.List(r.Context(), account)
		utils.WriteJSON(w, status, respBody)
	}
}
