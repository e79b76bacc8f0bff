// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitlah/internal/models"
)

// ErrCorrupt is returned when a backend cannot decode its stored records.
var ErrCorrupt = errors.New("stored records are corrupt")

// UserRepository defines the persistence operations for user records.
// This abstraction allows swapping storage backends (flat JSON file, SQLite)
// without changing the account store.
//
// Backends do not check record contents; the account store validates the
// full record set before calling Upsert or SaveAtomic.
type UserRepository interface {
	// Load returns every stored record in insertion order.
	// A backend with no data yet returns an empty slice, not an error.
	Load(ctx context.Context) ([]models.User, error)

	// Upsert writes one record, replacing any record whose username matches
	// case-insensitively and appending otherwise.
	Upsert(ctx context.Context, user *models.User) error

	// SaveAtomic replaces the entire record set. Readers observe either the
	// old set or the new one, never a partial write.
	SaveAtomic(ctx context.Context, users []models.User) error

	// Close releases any resources held by the repository.
	Close() error
}
