// Package jsonfile provides a flat-file implementation of storage.UserRepository.
//
// All records live in one JSON document of the form {"users": [...]}. Every
// mutation rewrites the whole document through a temporary file that is
// renamed over the original, so a crash mid-write never leaves a truncated file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/storage"
)

// Ensure Store implements storage.UserRepository
var _ storage.UserRepository = (*Store)(nil)

// document is the on-disk layout.
type document struct {
	Users []models.User `json:"users"`
}

// Store implements storage.UserRepository on top of a single JSON file.
type Store struct {
	path string

	// mu serialises access from this process. Other processes writing the
	// same file are not coordinated; the last rename wins.
	mu sync.RWMutex
}

// New creates a Store for the file at path.
// It creates the parent directories and an empty record file if none exists.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}

	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, fmt.Errorf("failed to create record file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat record file: %w", err)
	}

	return s, nil
}

// Close is a no-op; the file is only open during reads and writes.
func (s *Store) Close() error {
	return nil
}

// Load reads every record from the file.
func (s *Store) Load(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Upsert replaces the record matching user.Username or appends it.
func (s *Store) Upsert(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range users {
		if users[i].Matches(user.Username) {
			users[i] = *user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, *user)
	}

	return s.write(users)
}

// SaveAtomic rewrites the file with exactly the given records.
func (s *Store) SaveAtomic(ctx context.Context, users []models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(users)
}

func (s *Store) read() ([]models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, s.path, err)
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	for i := range doc.Users {
		if doc.Users[i].Groups == nil {
			doc.Users[i].Groups = make(map[string][]string)
		}
	}
	return doc.Users, nil
}

// write encodes users to a temp file in the same directory and renames it
// over the record file.
func (s *Store) write(users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	data, err := json.MarshalIndent(document{Users: users}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace record file: %w", err)
	}
	return nil
}
