package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackerc/linkhub/internal/apperror"
	"github.com/hackerc/linkhub/internal/model"
	"github.com/hackerc/linkhub/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo is the SQLite-backed user repository. The three repo types share
// one DB (one connection pool, one schema) but keep their method sets
// separate.
type UserRepo struct {
	db *DB
}

// Users returns the user repository view of this database.
func (db *DB) Users() *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. The UNIQUE constraints on username and email
// turn duplicate registrations into apperror.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, github_id, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already taken")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// UpsertGitHub inserts or updates a user based on their GitHub ID.
//
// First login → INSERT with a generated username derived from the GitHub
// login; subsequent logins → refresh email/avatar in case they changed on
// GitHub, keeping the existing internal id.
func (r *UserRepo) UpsertGitHub(ctx context.Context, user *model.User) error {
	var existingID string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ? AND github_id != 0`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = r.db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Email,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	if err := r.Create(ctx, user); err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// GetByID retrieves a user by their internal ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `id = ?`, id, id)
}

// GetByUsername retrieves a user by username — the sharing resolver's entry
// point for /share/{username} URLs.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, `username = ?`, username, username)
}

// GetByEmail retrieves a user by email, used by password login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `email = ?`, email, email)
}

func (r *UserRepo) getUser(ctx context.Context, where string, arg any, ref string) (*model.User, error) {
	var u model.User
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, github_id, avatar_url, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", ref)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", ref, err)
	}
	return &u, nil
}
