package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reservaja/internal/db"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*db.User, error)
	FindByID(ctx context.Context, id int64) (*db.User, error)
	Save(ctx context.Context, user *db.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{db: conn}
}

const userColumns = `id, name, email, password_hash, role, phone, created_at`

// FindByEmail returns nil, nil when no user has the email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// FindByID returns nil, nil when the id is unknown.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*db.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// Save inserts the user and fills in its ID. The password must already be hashed.
func (r *userRepository) Save(ctx context.Context, user *db.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	var phone sql.NullString
	if user.Phone != "" {
		phone = sql.NullString{String: user.Phone, Valid: true}
	}
	query := `INSERT INTO users (name, email, password_hash, role, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, phone, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*db.User, error) {
	var u db.User
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &phone, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Phone = phone.String
	return &u, nil
}
