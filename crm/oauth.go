package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// OAuthConfig holds the app credentials for the CRM's authorization-code flow
type OAuthConfig struct {
	Protocol     string
	Domain       string
	ClientID     string
	ClientSecret string
	AppBaseURL   string
	Timeout      time.Duration
}

// OAuth performs the install-time authorization-code exchange against a
// tenant's CRM account. Token refresh is not handled; tokens are stored once
// at install time.
type OAuth struct {
	cfg        OAuthConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOAuth creates the OAuth helper
func NewOAuth(cfg OAuthConfig, logger *zap.Logger) *OAuth {
	if cfg.Protocol == "" {
		cfg.Protocol = "https"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OAuth{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// AuthorizeURL returns the CRM page an administrator visits to install the
// app in their account
func (o *OAuth) AuthorizeURL(slug string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", o.cfg.ClientID)
	query.Set("redirect_uri", o.redirectURI(slug))
	return fmt.Sprintf("%s://%s.%s/oauth/authorize?%s",
		o.cfg.Protocol, slug, o.cfg.Domain, query.Encode())
}

// ExchangeCode trades an authorization code for an access token. Like the
// resource client, a non-2xx answer comes back as a Response, not an error.
func (o *OAuth) ExchangeCode(ctx context.Context, slug, code string) (*Response, error) {
	payload := map[string]string{
		"client_id":     o.cfg.ClientID,
		"client_secret": o.cfg.ClientSecret,
		"redirect_uri":  o.redirectURI(slug),
		"grant_type":    "authorization_code",
		"code":          code,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	tokenURL := fmt.Sprintf("%s://%s.%s/oauth/token", o.cfg.Protocol, slug, o.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	o.logger.Debug("token exchange completed",
		zap.String("slug", slug),
		zap.Int("status", resp.StatusCode))

	return &Response{Status: resp.StatusCode, Body: string(raw)}, nil
}

func (o *OAuth) redirectURI(slug string) string {
	return fmt.Sprintf("%s/oauth/callback?slug=%s", o.cfg.AppBaseURL, url.QueryEscape(slug))
}
