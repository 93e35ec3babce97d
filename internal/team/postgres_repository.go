package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daap14/teamhub/internal/database"
)

// PostgresRepository implements Repository on top of database.DB.
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a new Repository backed by the given database.
func NewRepository(db *database.DB) Repository {
	return &PostgresRepository{db: db}
}

const teamColumns = `id, name, slug, owner_user_id, suspended_at, suspended_to,
	created_at, updated_at, deleted_at`

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.OwnerUserID,
		&t.SuspendedAt, &t.SuspendedTo,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("scanning team row: %w", err)
	}
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (name, slug, owner_user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query, t.Name, t.Slug, t.OwnerUserID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a single live team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 AND deleted_at IS NULL`
	return scanTeam(r.db.Conn(ctx).QueryRow(ctx, query, id))
}

// GetBySlug retrieves a single live team by its slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE slug = $1 AND deleted_at IS NULL`
	return scanTeam(r.db.Conn(ctx).QueryRow(ctx, query, slug))
}

// SlugExists reports whether a live team holds the slug.
func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM teams WHERE slug = $1 AND deleted_at IS NULL)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return exists, nil
}

// Lock takes FOR UPDATE on the team row.
func (r *PostgresRepository) Lock(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT id FROM teams WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("locking team: %w", err)
	}
	return nil
}

// List retrieves a page of live teams ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, page database.Page) (*database.Result[Team], error) {
	return r.list(ctx, "deleted_at IS NULL", nil, page)
}

// ListForUser retrieves the live teams the user is a member of.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[Team], error) {
	where := `deleted_at IS NULL AND id IN (SELECT team_id FROM team_members WHERE user_id = $1)`
	return r.list(ctx, where, []any{userID}, page)
}

// Search matches id equality, owner id equality, or a case-insensitive
// substring of name or slug.
func (r *PostgresRepository) Search(ctx context.Context, query string, page database.Page) (*database.Result[Team], error) {
	where := `deleted_at IS NULL AND (
		id::text = $1 OR owner_user_id::text = $1
		OR name ILIKE $2 OR slug ILIKE $2)`
	pattern := "%" + escapeLike(query) + "%"
	return r.list(ctx, where, []any{strings.ToLower(query), pattern}, page)
}

func (r *PostgresRepository) list(ctx context.Context, where string, args []any, page database.Page) (*database.Result[Team], error) {
	page = page.Normalize()
	conn := r.db.Conn(ctx)

	var total int
	err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM teams WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting teams: %w", err)
	}

	argIdx := len(args) + 1
	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM teams
		WHERE %s
		ORDER BY created_at ASC, id ASC
		LIMIT $%d OFFSET $%d`, teamColumns, where, argIdx, argIdx+1)

	rows, err := conn.Query(ctx, dataQuery, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	return database.NewResult(teams, total, page), nil
}

// Rename updates the name and slug of a live team.
func (r *PostgresRepository) Rename(ctx context.Context, id uuid.UUID, name, slug string) (*Team, error) {
	query := `
		UPDATE teams
		SET name = $1, slug = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING ` + teamColumns

	t, err := scanTeam(r.db.Conn(ctx).QueryRow(ctx, query, name, slug, id))
	if err != nil && isUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	return t, err
}

// SetSuspension writes the suspension window. Passing nil for both clears it.
func (r *PostgresRepository) SetSuspension(ctx context.Context, id uuid.UUID, from, to *time.Time) (*Team, error) {
	query := `
		UPDATE teams
		SET suspended_at = $1, suspended_to = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING ` + teamColumns

	return scanTeam(r.db.Conn(ctx).QueryRow(ctx, query, from, to, id))
}

// SoftDelete marks a team as deleted. Its slug becomes available again.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE teams SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("soft deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
