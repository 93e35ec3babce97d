package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

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

// Get retrieves the team's subscription, active or not.
func (r *PostgresRepository) Get(ctx context.Context, teamID uuid.UUID) (*Subscription, error) {
	query := `
		SELECT team_id, plan_id, ends_at, created_at, updated_at
		FROM subscriptions
		WHERE team_id = $1`

	var s Subscription
	err := r.db.Conn(ctx).QueryRow(ctx, query, teamID).
		Scan(&s.TeamID, &s.PlanID, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("querying subscription: %w", err)
	}
	return &s, nil
}

// Upsert inserts or replaces the team's subscription.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Subscription) error {
	query := `
		INSERT INTO subscriptions (team_id, plan_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id) DO UPDATE
		SET plan_id = EXCLUDED.plan_id, ends_at = NULL, updated_at = NOW()
		RETURNING ends_at, created_at, updated_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query, s.TeamID, s.PlanID).
		Scan(&s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}
	return nil
}

// End sets the subscription's end date.
func (r *PostgresRepository) End(ctx context.Context, teamID uuid.UUID, at time.Time) error {
	result, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE subscriptions SET ends_at = $1, updated_at = NOW() WHERE team_id = $2`, at, teamID,
	)
	if err != nil {
		return fmt.Errorf("ending subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
