package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `username, password_hash, email, name, organisation, capabilities,
		       archived, created_at, updated_at`

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.Username, &u.PasswordHash, &u.Email, &u.Name, &u.Organisation,
		&u.Capabilities, &u.Archived, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.Capabilities == nil {
		u.Capabilities = []Capability{}
	}
	return &u, nil
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	if u.Capabilities == nil {
		u.Capabilities = []Capability{}
	}

	query := `
		INSERT INTO users (username, password_hash, email, name, organisation, capabilities)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		u.Username,
		u.PasswordHash,
		u.Email,
		u.Name,
		u.Organisation,
		u.Capabilities,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByUsername retrieves a single user, archived or not.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return u, nil
}

// List retrieves all users ordered by username.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateCapabilities replaces a user's capability list.
func (r *PostgresRepository) UpdateCapabilities(ctx context.Context, username string, caps []Capability) (*User, error) {
	if caps == nil {
		caps = []Capability{}
	}

	query := `
		UPDATE users
		SET capabilities = $2, updated_at = NOW()
		WHERE username = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, username, caps))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating capabilities: %w", err)
	}

	return u, nil
}

// UpdatePassword stores a new password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, username, hash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE username = $1`

	result, err := r.pool.Exec(ctx, query, username, hash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Archive flags a user as archived. Archiving twice is not an error.
func (r *PostgresRepository) Archive(ctx context.Context, username string) error {
	query := `
		UPDATE users
		SET archived = TRUE, updated_at = NOW()
		WHERE username = $1`

	result, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("archiving user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
