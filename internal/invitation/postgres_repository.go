package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/member"
)

// PostgresRepository implements Repository on top of database.DB.
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a new Repository backed by the given database.
func NewRepository(db *database.DB) Repository {
	return &PostgresRepository{db: db}
}

const invitationColumns = `i.id, i.team_id, i.email, i."group", i.created_at, i.expires_at, t.name, t.slug`

// invitationSource hides invitations whose team has been soft-deleted.
const invitationSource = `team_invitations i JOIN teams t ON t.id = i.team_id AND t.deleted_at IS NULL`

const pending = `(i.expires_at IS NULL OR i.expires_at > $%d)`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	var group string
	err := row.Scan(&inv.ID, &inv.TeamID, &inv.Email, &group, &inv.CreatedAt, &inv.ExpiresAt, &inv.TeamName, &inv.TeamSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("scanning invitation row: %w", err)
	}
	inv.Group = member.Group(group)
	return &inv, nil
}

// Create inserts a new invitation.
func (r *PostgresRepository) Create(ctx context.Context, inv *Invitation) error {
	query := `
		INSERT INTO team_invitations (team_id, email, "group", expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query, inv.TeamID, inv.Email, string(inv.Group), inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return ErrDuplicateInvitation
		}
		return fmt.Errorf("inserting invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM ` + invitationSource + ` WHERE i.id = $1`
	return scanInvitation(r.db.Conn(ctx).QueryRow(ctx, query, id))
}

// GetForUpdate retrieves an invitation and locks its row until the
// surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM ` + invitationSource + ` WHERE i.id = $1 FOR UPDATE OF i`
	return scanInvitation(r.db.Conn(ctx).QueryRow(ctx, query, id))
}

// Delete removes an invitation.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM team_invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// DeleteExpiredFor removes an expired invitation that still occupies the
// (team, email) unique key.
func (r *PostgresRepository) DeleteExpiredFor(ctx context.Context, teamID uuid.UUID, email string, at time.Time) error {
	query := `
		DELETE FROM team_invitations
		WHERE team_id = $1 AND lower(email) = lower($2)
		  AND expires_at IS NOT NULL AND expires_at <= $3`
	if _, err := r.db.Conn(ctx).Exec(ctx, query, teamID, email, at); err != nil {
		return fmt.Errorf("deleting expired invitation: %w", err)
	}
	return nil
}

// DeleteExpired purges every invitation expired at the given time.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, at time.Time) (int64, error) {
	query := `DELETE FROM team_invitations WHERE expires_at IS NOT NULL AND expires_at <= $1`
	result, err := r.db.Conn(ctx).Exec(ctx, query, at)
	if err != nil {
		return 0, fmt.Errorf("purging expired invitations: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountPending returns the number of unexpired invitations to a team.
func (r *PostgresRepository) CountPending(ctx context.Context, teamID uuid.UUID, at time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM team_invitations i WHERE i.team_id = $1 AND ` + fmt.Sprintf(pending, 2)
	var count int
	if err := r.db.Conn(ctx).QueryRow(ctx, query, teamID, at).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending invitations: %w", err)
	}
	return count, nil
}

// ListForEmail retrieves the pending invitations addressed to email.
func (r *PostgresRepository) ListForEmail(ctx context.Context, email string, at time.Time, page database.Page) (*database.Result[Invitation], error) {
	where := `lower(i.email) = lower($1) AND ` + fmt.Sprintf(pending, 2)
	return r.list(ctx, where, []any{email, at}, page)
}

// ListForTeam retrieves the pending invitations of a team.
func (r *PostgresRepository) ListForTeam(ctx context.Context, teamID uuid.UUID, at time.Time, page database.Page) (*database.Result[Invitation], error) {
	where := `i.team_id = $1 AND ` + fmt.Sprintf(pending, 2)
	return r.list(ctx, where, []any{teamID, at}, page)
}

func (r *PostgresRepository) list(ctx context.Context, where string, args []any, page database.Page) (*database.Result[Invitation], error) {
	page = page.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM ` + invitationSource + ` WHERE ` + where
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting invitations: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY i.created_at DESC, i.id ASC
		LIMIT $%d OFFSET $%d`, invitationColumns, invitationSource, where, n+1, n+2)

	rows, err := r.db.Conn(ctx).Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitation rows: %w", err)
	}

	return database.NewResult(invitations, total, page), nil
}
