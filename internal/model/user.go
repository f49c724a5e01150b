// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Two login paths feed this struct: email/password registration (PasswordHash
// is set, GitHubID is zero) and GitHub OAuth (GitHubID is set, PasswordHash
// is empty). Username is unique — it appears in public share URLs
// (/share/{username}/...), so it is part of the external contract, not just
// a display name.
//
// WHY GitHubID int64?
// GitHub user IDs are integers. Using int64 avoids overflow for large GitHub
// account numbers. A zero value means "no linked GitHub account".
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	GitHubID     int64     `json:"-"         db:"github_id"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
