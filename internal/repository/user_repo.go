package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bcard/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNotFound       = errors.New("record not found")
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the repositories need
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	// CompareAndSwapLoginState writes next only if the stored login state
	// still equals expected and the role is still expectedRole. It reports
	// false when the row changed or is gone.
	CompareAndSwapLoginState(ctx context.Context, id, expectedRole string, expected, next model.LoginState) (bool, error)
	// UpdateProfile replaces the profile document and password hash. Role
	// and login state are left untouched.
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateSuspension(ctx context.Context, id string, until *time.Time) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, phone, address, image, gender, role, failed_attempts, suspended_until, created_at, updated_at`

func scanUser(row pgx.Row, user *model.User) error {
	return row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone, &user.Address,
		&user.Image, &user.Gender, &user.Role, &user.FailedAttempts, &user.SuspendedUntil,
		&user.CreatedAt, &user.UpdatedAt,
	)
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.PasswordHash == "" {
		return fmt.Errorf("failed to create user: missing password hash")
	}
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, sql,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, user.Address,
		user.Image, user.Gender, user.Role, user.FailedAttempts, user.SuspendedUntil,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email, nil if there is none
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, model.NormalizeEmail(email)), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is decided by the service layer
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID, nil if there is none
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, id), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *userRepository) CompareAndSwapLoginState(ctx context.Context, id, expectedRole string, expected, next model.LoginState) (bool, error) {
	sql := `UPDATE users SET failed_attempts = $1, suspended_until = $2, updated_at = now()
            WHERE id = $3 AND failed_attempts = $4 AND suspended_until IS NOT DISTINCT FROM $5 AND role = $6`
	tag, err := r.db.Exec(ctx, sql, next.FailedAttempts, next.SuspendedUntil, id, expected.FailedAttempts, expected.SuspendedUntil, expectedRole)
	if err != nil {
		return false, fmt.Errorf("failed to update login state: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	if user.PasswordHash == "" {
		return fmt.Errorf("failed to update profile: missing password hash")
	}
	sql := `UPDATE users SET email = $1, password_hash = $2, name = $3, phone = $4, address = $5,
            image = $6, gender = $7, updated_at = $8 WHERE id = $9`
	tag, err := r.db.Exec(ctx, sql,
		model.NormalizeEmail(user.Email), user.PasswordHash, user.Name, user.Phone, user.Address,
		user.Image, user.Gender, user.UpdatedAt, user.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id, role string) error {
	sql := `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`
	tag, err := r.db.Exec(ctx, sql, role, id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSuspension overrides the suspension instant. Imposing a suspension
// also clears the failed attempt counter; lifting one (nil) leaves it alone.
func (r *userRepository) UpdateSuspension(ctx context.Context, id string, until *time.Time) error {
	sql := `UPDATE users SET suspended_until = $1,
            failed_attempts = CASE WHEN $1::timestamptz IS NULL THEN failed_attempts ELSE 0 END,
            updated_at = now() WHERE id = $2`
	tag, err := r.db.Exec(ctx, sql, until, id)
	if err != nil {
		return fmt.Errorf("failed to update suspension: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
