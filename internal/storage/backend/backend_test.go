package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitlah/internal/config"
	"github.com/mmynk/splitlah/internal/models"
)

func TestOpen(t *testing.T) {
	for _, b := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(b, func(t *testing.T) {
			repo, err := Open(config.Storage{Backend: b, Path: filepath.Join(t.TempDir(), "nested", "users.db")})
			require.NoError(t, err)
			defer repo.Close()

			ctx := context.Background()
			require.NoError(t, repo.Upsert(ctx, models.NewUser("alice", "$2a$10$abcdefghijklmnopqrstuv")))
			users, err := repo.Load(ctx)
			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, "alice", users[0].Username)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.Storage{Backend: "postgres", Path: "x"})
	assert.ErrorContains(t, err, "postgres")
}
