// Package backend opens the user repository named in the configuration.
package backend

import (
	"fmt"

	"github.com/mmynk/splitlah/internal/config"
	"github.com/mmynk/splitlah/internal/storage"
	"github.com/mmynk/splitlah/internal/storage/jsonfile"
	"github.com/mmynk/splitlah/internal/storage/sqlite"
)

// Open returns the repository for cfg.Backend rooted at cfg.Path.
func Open(cfg config.Storage) (storage.UserRepository, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return jsonfile.New(cfg.Path)
	case config.BackendSQLite:
		return sqlite.New(cfg.Path)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
