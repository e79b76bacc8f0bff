package models

import "strings"

// User represents a registered account as stored in the record file.
// The JSON field names match the on-disk layout of users.json.
type User struct {
	// Username is the login name. Lookups are case-insensitive but the
	// original casing is preserved and returned on successful login.
	Username string `json:"username"`

	// PasswordHash is the bcrypt output for the user's password.
	// It must never hold a plaintext password.
	PasswordHash string `json:"password"`

	// Groups maps a saved group name to its ordered member list.
	Groups map[string][]string `json:"groups"`

	// PlanType is the selected plan, e.g. "Basic" or "Premium Duo".
	PlanType PlanType `json:"plan_type"`

	// PlanDuration is the billing cycle of the plan.
	PlanDuration PlanDuration `json:"plan_duration"`
}

// NewUser creates a user with default plan values and no groups.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Groups:       make(map[string][]string),
		PlanType:     DefaultPlanType,
		PlanDuration: DefaultPlanDuration,
	}
}

// Matches reports whether name refers to this user, ignoring case.
func (u *User) Matches(name string) bool {
	return strings.EqualFold(u.Username, name)
}

// Clone returns a deep copy of the user so callers can mutate groups freely.
func (u *User) Clone() *User {
	c := *u
	c.Groups = CloneGroups(u.Groups)
	return &c
}

// CloneGroups deep-copies a group mapping. A nil input yields an empty map.
func CloneGroups(groups map[string][]string) map[string][]string {
	out := make(map[string][]string, len(groups))
	for name, members := range groups {
		out[name] = append([]string(nil), members...)
	}
	return out
}
