package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-pipeline/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, email, nickname, avatar, description string) (models.User, error)
	ListUsers(ctx context.Context, emails []string) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a user keyed by email. An existing email is returned
// as-is rather than overwritten.
func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (email, nickname, avatar, description, owner)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO NOTHING
        RETURNING email, nickname, avatar, description, owner, created_at, updated_at`,
		user.Email, user.Nickname, user.Avatar, user.Description, user.Owner).StructScan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return r.GetUser(ctx, user.Email)
	}
	return created, err
}

// GetUser fetches a user by email.
func (r *UserRepo) GetUser(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT email, nickname, avatar, description, owner, created_at, updated_at FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile mutates the profile fields of an existing user.
func (r *UserRepo) UpdateProfile(ctx context.Context, email, nickname, avatar, description string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET nickname=$2, avatar=$3, description=$4, updated_at=NOW()
        WHERE email=$1
        RETURNING email, nickname, avatar, description, owner, created_at, updated_at`,
		email, nickname, avatar, description).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListUsers resolves a set of emails in a single batch lookup. Emails with no
// record are simply absent from the result.
func (r *UserRepo) ListUsers(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT email, nickname, avatar, description, owner, created_at, updated_at
        FROM users WHERE email = ANY($1)`, pq.Array(emails))
	return users, err
}
