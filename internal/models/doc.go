// Package models defines the core domain models for SplitLah.
//
// # Models
//
//   - User: a registered account with its hashed password, saved groups and plan
//   - Group: a flattened view of one saved participant list
//   - Plan: an entry of the plan catalogue with its prices and gated features
//
// Participants inside groups and splits are plain name strings; they are not
// linked to user accounts.
//
// # Design Principles
//
// 1. **Record file compatibility**: User JSON tags match users.json
// 2. **No pointers between models**: groups live on the user by name
// 3. **Plans are data**: feature gating reads the catalogue instead of string prefixes
package models
