package domain

import "time"

// Identity is a user's credential record. The console issues email/password
// credentials only; the provider column leaves room for an SSO integration
// without a schema change.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string // empty unless the provider is local
	CreatedAt    time.Time
}

type IdentityProvider string

// IdentityProviderLocal is the email/password provider.
const IdentityProviderLocal IdentityProvider = "local"
