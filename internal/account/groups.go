package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitlah/internal/models"
)

// SaveGroup stores a group under name, dropping empty member names.
// New names count against the plan's group limit; overwriting an existing
// group does not.
func (s *Store) SaveGroup(ctx context.Context, username, name string, members []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: group name is empty", ErrInvalidInput)
	}

	valid := make([]string, 0, len(members))
	for _, m := range members {
		if m != "" {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		return ErrEmptyGroup
	}

	return s.mutate(ctx, username, func(u *models.User) error {
		if u.Groups == nil {
			u.Groups = make(map[string][]string)
		}
		if _, exists := u.Groups[name]; !exists && len(u.Groups) >= u.PlanType.MaxGroups() {
			return ErrGroupLimit
		}
		u.Groups[name] = valid
		return nil
	})
}

// RenameGroup moves the members of group from to the name to.
func (s *Store) RenameGroup(ctx context.Context, username, from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("%w: new group name is empty", ErrInvalidInput)
	}

	return s.mutate(ctx, username, func(u *models.User) error {
		members, ok := u.Groups[from]
		if !ok {
			return ErrGroupNotFound
		}
		if to == from {
			return nil
		}
		if _, taken := u.Groups[to]; taken {
			return ErrGroupExists
		}
		delete(u.Groups, from)
		u.Groups[to] = members
		return nil
	})
}

// DeleteGroup removes name from the user's groups. Deleting a missing group is not an error.
func (s *Store) DeleteGroup(ctx context.Context, username, name string) error {
	return s.mutate(ctx, username, func(u *models.User) error {
		delete(u.Groups, name)
		return nil
	})
}
