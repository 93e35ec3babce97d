package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daap14/teamhub/internal/database"
)

// PostgresRepository implements UserRepository on top of database.DB.
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a new UserRepository backed by the given database.
func NewRepository(db *database.DB) UserRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, is_superuser, api_key_prefix, api_key_hash, created_at, revoked_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.IsSuperuser,
		&u.ApiKeyPrefix, &u.ApiKeyHash,
		&u.CreatedAt, &u.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user row: %w", err)
	}
	return &u, nil
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, is_superuser, api_key_prefix, api_key_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		u.Name,
		u.Email,
		u.IsSuperuser,
		u.ApiKeyPrefix,
		u.ApiKeyHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.Conn(ctx).QueryRow(ctx, query, id))
}

// FindByPrefix returns active (non-revoked) users matching the given API key prefix.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_key_prefix = $1 AND revoked_at IS NULL`
	return r.query(ctx, query, prefix)
}

// List retrieves all users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	return r.query(ctx, query)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// Revoke sets revoked_at on a user. Returns ErrUserNotFound if the user
// does not exist, and ErrUserRevoked if already revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`

	result, err := r.db.Conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoking user: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.db.Conn(ctx).QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking user existence: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrUserRevoked
	}

	return nil
}

// CountAll returns the total number of users in the table (including revoked).
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.Conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
