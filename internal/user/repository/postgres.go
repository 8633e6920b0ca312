package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/OmarHalima/workforce-console/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, role, status, department, position, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var name, department, position sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &u.Role, &u.Status, &department, &position, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Department = department.String
	u.Position = position.String
	return &u, nil
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// List returns all users ordered by creation time (oldest first).
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, status, department, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, nullString(u.Name), u.Role, u.Status,
		nullString(u.Department), nullString(u.Position), u.CreatedAt, u.UpdatedAt)
	return err
}

// Update updates the existing user record. No-op when the user does not exist.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4, status = $5, department = $6, position = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, nullString(u.Name), u.Role, u.Status,
		nullString(u.Department), nullString(u.Position), u.UpdatedAt)
	return err
}

// SetStatus updates only the user's status. No-op when the user does not exist.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
