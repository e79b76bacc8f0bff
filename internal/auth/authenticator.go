package auth

import (
	"context"

	"github.com/mmynk/splitlah/internal/models"
)

// Authenticator defines the account operations the auth service needs.
// This abstraction lets the RPC layer run against any account store
// implementation without knowing how records are persisted.
type Authenticator interface {
	// Create registers a new account with the given username and plaintext password.
	// The password is hashed before it reaches storage.
	Create(ctx context.Context, username, password string) error

	// Verify checks the credentials and returns the canonical stored username.
	Verify(ctx context.Context, username, password string) (string, error)

	// Get returns the stored record for username.
	Get(ctx context.Context, username string) (*models.User, error)
}
