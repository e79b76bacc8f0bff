// Package sqlite provides a SQLite-backed implementation of the storage.UserRepository interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/storage"
	"github.com/mmynk/splitlah/internal/storage/sqlite/migrations"
)

// Ensure SQLiteStore implements storage.UserRepository
var _ storage.UserRepository = (*SQLiteStore)(nil)

// SQLiteStore implements storage.UserRepository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are per connection, so request them in the DSN
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// applyMigrations applies any pending migrations from the embedded schema files.
func applyMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load retrieves every user with their groups, in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, password_hash, plan_type, plan_duration FROM users ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	index := make(map[int64]int)
	for rows.Next() {
		var id int64
		var user models.User
		if err := rows.Scan(&id, &user.Username, &user.PasswordHash, &user.PlanType, &user.PlanDuration); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Groups = make(map[string][]string)
		index[id] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	// Groups with no members still need an entry in the map
	groupRows, err := s.db.QueryContext(ctx, "SELECT user_id, name FROM user_groups")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer groupRows.Close()

	for groupRows.Next() {
		var userID int64
		var name string
		if err := groupRows.Scan(&userID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Groups[name] = []string{}
		}
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	memberRows, err := s.db.QueryContext(ctx,
		"SELECT user_id, group_name, name FROM group_members ORDER BY user_id, group_name, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var userID int64
		var group, name string
		if err := memberRows.Scan(&userID, &group, &name); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Groups[group] = append(users[i].Groups[group], name)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return users, nil
}

// Upsert updates the user matching user.Username (case-insensitive) or inserts a new row.
func (s *SQLiteStore) Upsert(ctx context.Context, user *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", user.Username).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id, err = insertUser(ctx, tx, user)
		if err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to look up user: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET username = ?, password_hash = ?, plan_type = ?, plan_duration = ? WHERE id = ?",
			user.Username, user.PasswordHash, user.PlanType, user.PlanDuration, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if err := deleteGroups(ctx, tx, id); err != nil {
			return err
		}
	}

	if err := insertGroups(ctx, tx, id, user.Groups); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveAtomic replaces all users and groups inside one transaction.
func (s *SQLiteStore) SaveAtomic(ctx context.Context, users []models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM group_members", "DELETE FROM user_groups", "DELETE FROM users"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
	}

	for i := range users {
		id, err := insertUser(ctx, tx, &users[i])
		if err != nil {
			return err
		}
		if err := insertGroups(ctx, tx, id, users[i].Groups); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, plan_type, plan_duration) VALUES (?, ?, ?, ?)",
		user.Username, user.PasswordHash, user.PlanType, user.PlanDuration,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}

func deleteGroups(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_groups WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete groups: %w", err)
	}
	return nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, userID int64, groups map[string][]string) error {
	for name, members := range groups {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_groups (user_id, name) VALUES (?, ?)",
			userID, name,
		); err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for pos, member := range members {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (user_id, group_name, position, name) VALUES (?, ?, ?, ?)",
				userID, name, pos, member,
			); err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
	}
	return nil
}
