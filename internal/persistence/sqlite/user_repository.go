package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/room-reservation/internal/persistence"
)

// UserRepository implements persistence.UserRepository on SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository constructs a user repository over the shared handle.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user row.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.Role,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	return mapError(err)
}

// UpdateUser replaces an existing user row.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.db.sql.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, display_name = ?, password_hash = ?, role = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.DisplayName, user.PasswordHash, user.Role,
		formatTime(user.UpdatedAt), user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	return r.scanUser(r.db.sql.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, role, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a user by email. The column collates NOCASE, so
// lookups are case-insensitive.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return r.scanUser(r.db.sql.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, role, created_at, updated_at
		 FROM users WHERE email = ?`, email))
}

// ListUsers returns all users ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, email, display_name, password_hash, role, created_at, updated_at
		 FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user row by ID.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.sql.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row *sql.Row) (persistence.User, error) {
	return r.scanUserRow(row)
}

func (r *UserRepository) scanUserRow(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, mapError(err)
	}

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// requireRowAffected converts a zero-row write into ErrNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
