package member

import (
	"context"
	"errors"
	"fmt"

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

const memberColumns = `id, team_id, user_id, "group", overwrites, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var group string
	err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &group, &m.Overwrites, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("scanning member row: %w", err)
	}
	m.Group = Group(group)
	return &m, nil
}

func nonNil(o Overwrites) Overwrites {
	if o == nil {
		return Overwrites{}
	}
	return o
}

// Create inserts a new membership.
func (r *PostgresRepository) Create(ctx context.Context, m *Member) error {
	m.Overwrites = nonNil(m.Overwrites)
	query := `
		INSERT INTO team_members (team_id, user_id, "group", overwrites)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query, m.TeamID, m.UserID, string(m.Group), m.Overwrites).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return ErrDuplicateMembership
		}
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

// GetByID retrieves a membership by id within a team.
func (r *PostgresRepository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 AND id = $2`
	return scanMember(r.db.Conn(ctx).QueryRow(ctx, query, teamID, id))
}

// GetByUser retrieves the user's membership in a team.
func (r *PostgresRepository) GetByUser(ctx context.Context, teamID, userID uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 AND user_id = $2`
	return scanMember(r.db.Conn(ctx).QueryRow(ctx, query, teamID, userID))
}

// List retrieves a page of a team's members in join order.
func (r *PostgresRepository) List(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[Member], error) {
	page = page.Normalize()

	total, err := r.Count(ctx, teamID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Conn(ctx).Query(ctx, query, teamID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	return database.NewResult(members, total, page), nil
}

// Count returns the number of members in a team.
func (r *PostgresRepository) Count(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

// UpdateGroup changes a member's group.
func (r *PostgresRepository) UpdateGroup(ctx context.Context, teamID, id uuid.UUID, group Group) (*Member, error) {
	query := `
		UPDATE team_members
		SET "group" = $1, updated_at = NOW()
		WHERE team_id = $2 AND id = $3
		RETURNING ` + memberColumns
	return scanMember(r.db.Conn(ctx).QueryRow(ctx, query, string(group), teamID, id))
}

// UpdateOverwrites replaces a member's permission overwrites.
func (r *PostgresRepository) UpdateOverwrites(ctx context.Context, teamID, id uuid.UUID, overwrites Overwrites) (*Member, error) {
	query := `
		UPDATE team_members
		SET overwrites = $1, updated_at = NOW()
		WHERE team_id = $2 AND id = $3
		RETURNING ` + memberColumns
	return scanMember(r.db.Conn(ctx).QueryRow(ctx, query, nonNil(overwrites), teamID, id))
}

// Delete removes a membership.
func (r *PostgresRepository) Delete(ctx context.Context, teamID, id uuid.UUID) error {
	result, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND id = $2`, teamID, id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
