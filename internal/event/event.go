// Package event defines the domain events emitted by the team core and the
// publishers that hand them to external consumers. Delivery is best effort:
// an event is published only after the mutation that caused it committed.
package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	TypeMemberRemoved       = "member.removed"
	TypeSubscriptionSwapped = "subscription.swapped"
)

// Payload is implemented by every domain event body.
type Payload interface {
	EventType() string
}

// MemberRemoved is emitted when a membership is deleted by a kick or a leave.
type MemberRemoved struct {
	TeamID   uuid.UUID `json:"teamId"`
	TeamSlug string    `json:"teamSlug"`
	MemberID uuid.UUID `json:"memberId"`
	UserID   uuid.UUID `json:"userId"`
	// Kicked is false when the user left on their own.
	Kicked bool `json:"kicked"`
}

func (MemberRemoved) EventType() string { return TypeMemberRemoved }

// Subscription is the subscription snapshot carried by SubscriptionSwapped.
type Subscription struct {
	PlanID     string     `json:"planId"`
	PreviousID string     `json:"previousPlanId,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
}

// SubscriptionSwapped is emitted when a team moves to another plan.
type SubscriptionSwapped struct {
	TeamID       uuid.UUID    `json:"teamId"`
	TeamSlug     string       `json:"teamSlug"`
	Subscription Subscription `json:"subscription"`
}

func (SubscriptionSwapped) EventType() string { return TypeSubscriptionSwapped }

// Envelope is the wire form shared by all publishers.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload with an id and timestamp.
func NewEnvelope(p Payload, at time.Time) (Envelope, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.New().String(),
		Type:       p.EventType(),
		OccurredAt: at.UTC(),
		Data:       data,
	}, nil
}

// Publisher hands events to an external transport.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// Emit publishes p and logs, rather than returns, any failure. Callers use it
// after their write has committed, when the outcome can no longer change.
func Emit(ctx context.Context, pub Publisher, p Payload) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, p); err != nil {
		slog.Error("failed to publish event", "type", p.EventType(), "error", err)
	}
}
