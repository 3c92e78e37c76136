package middleware

import (
	"context"

	"github.com/outreachworks/crm-bridge/models"
)

// Context key type to avoid collisions
type contextKey string

// AccountKey is the context key for the resolved tenant account
const AccountKey contextKey = "account"

// GetAccountFromContext retrieves the tenant account from context
func GetAccountFromContext(ctx context.Context) *models.Account {
	if val := ctx.Value(AccountKey); val != nil {
		if account, ok := val.(*models.Account); ok {
			return account
		}
	}
	return nil
}

// WithAccount adds a tenant account to the context
func WithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}
