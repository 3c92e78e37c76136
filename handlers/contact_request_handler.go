package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/middleware"
	"github.com/outreachworks/crm-bridge/services/contact"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

type contactRequestBody struct {
	Data *contact.Payload `json:"data"`
}

// CreateContactRequestHandler handles POST /api/v1/contact_requests. The
// account middleware has already resolved the tenant; this layer only parses
// the body and hands off to the pipeline.
func CreateContactRequestHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := middleware.GetAccountFromContext(r.Context())
		if account == nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing slug parameter")
			return
		}

		var body contactRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		if body.Data == nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing data parameter")
			return
		}

		deps.Logger.Info("attempting to create contact request",
			zap.String("slug", account.Slug))

		status, respBody := deps.ContactRequestService.Handle(r.Context(), account, *body.Data)
		utils.WriteJSON(w, status, respBody)
	}
}
