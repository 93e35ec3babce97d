package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSubscriptionNotFound is returned when a team has no subscription record.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// Repository provides operations on the subscriptions table.
type Repository interface {
	Get(ctx context.Context, teamID uuid.UUID) (*Subscription, error)
	// Upsert stores s as the team's only subscription, clearing any end date.
	Upsert(ctx context.Context, s *Subscription) error
	End(ctx context.Context, teamID uuid.UUID, at time.Time) error
}
