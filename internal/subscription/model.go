package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents a row in the subscriptions table. A team has at
// most one.
type Subscription struct {
	TeamID    uuid.UUID
	PlanID    string
	EndsAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the subscription still grants its plan at the given time.
func (s *Subscription) Active(at time.Time) bool {
	return s.EndsAt == nil || s.EndsAt.After(at)
}
