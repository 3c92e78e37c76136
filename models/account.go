package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a tenant identity: one installed CRM account, keyed by its slug.
// Created once when an administrator completes the OAuth install flow and
// read-only afterward.
type Account struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	AccessToken string    `json:"-" db:"access_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewAccount creates an account for a freshly installed tenant
func NewAccount(slug, accessToken string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:          uuid.New(),
		Slug:        slug,
		AccessToken: accessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
