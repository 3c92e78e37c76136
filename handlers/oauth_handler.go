package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/utils"
	"go.uber.org/zap"
)

const installFailedMessage = "An error occurred when attempting to install this app in your account. Please try again."

// InstallHandler handles POST /install: an administrator submits their
// account slug and gets redirected to the CRM's authorize page
func InstallHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		slug := r.FormValue("slug")
		if slug == "" {
			utils.WriteTitleError(w, http.StatusUnprocessableEntity, "missing slug parameter")
			return
		}

		http.Redirect(w, r, deps.OAuth.AuthorizeURL(slug), http.StatusFound)
	}
}

// OAuthCallbackHandler handles GET /oauth/callback: the CRM redirects here
// after the administrator authorizes (or declines) the install. On success
// the access token is exchanged and the tenant account stored.
func OAuthCallbackHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		slug := query.Get("slug")
		code := query.Get("code")
		providerError := query.Get("error")

		var failures []string
		if slug == "" {
			failures = append(failures, "Missing slug parameter")
		}
		if code == "" && providerError == "" {
			failures = append(failures, "Either code or error parameter must be given")
		}
		if providerError != "" {
			message := "App not installed."
			if description := query.Get("error_description"); description != "" {
				message = message + " " + description
			}
			failures = append(failures, message)
		}

		if len(failures) == 0 {
			failures = exchangeAndStore(deps, r, slug, code)
		}

		if len(failures) > 0 {
			deps.Logger.Warn("oauth callback failed",
				zap.String("slug", slug),
				zap.Strings("errors", failures))
		}

		// When a return page is configured the outcome travels as a flash
		// parameter; otherwise the caller gets the JSON envelope.
		if returnTo := deps.Config.CRM.InstallReturnTo; returnTo != "" {
			flashType := "notice"
			message := "Installation successful"
			if len(failures) > 0 {
				flashType = "error"
				message = strings.Join(failures, ", ")
			}
			target := fmt.Sprintf("%s?flash[%s]=%s", returnTo, flashType, url.QueryEscape(message))
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		if len(failures) > 0 {
			utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.TitleErrors(failures...))
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.Data(map[string]string{"message": "Installation successful"}))
	}
}

// exchangeAndStore trades the code for a token and stores the account,
// returning user-facing failure messages
func exchangeAndStore(deps *app.Dependencies, r *http.Request, slug, code string) []string {
	resp, err := deps.OAuth.ExchangeCode(r.Context(), slug, code)
	if err != nil {
		deps.Logger.Error("token exchange failed",
			zap.String("slug", slug),
			zap.Error(err))
		return []string{installFailedMessage}
	}
	if resp.Status != http.StatusOK {
		deps.Logger.Warn("token exchange rejected",
			zap.String("slug", slug),
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
		return []string{installFailedMessage}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &token); err != nil || token.AccessToken == "" {
		deps.Logger.Warn("token response unusable",
			zap.String("slug", slug),
			zap.String("body", resp.Body))
		return []string{installFailedMessage}
	}

	if err := deps.Accounts.Create(r.Context(), models.NewAccount(slug, token.AccessToken)); err != nil {
		deps.Logger.Error("failed to store account",
			zap.String("slug", slug),
			zap.Error(err))
		return []string{installFailedMessage}
	}
	return nil
}
