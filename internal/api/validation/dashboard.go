package validation

import (
	"strings"
	"time"
)

// SuspensionRequest mirrors the body of a suspension request. From defaults
// to now when empty; an empty Until leaves the suspension open-ended.
type SuspensionRequest struct {
	From  string
	Until string
}

// Suspension is a validated suspension window.
type Suspension struct {
	From  time.Time
	Until *time.Time
}

// ValidateSuspensionRequest parses and validates a suspension window.
func ValidateSuspensionRequest(req SuspensionRequest, now time.Time) (Suspension, []FieldError) {
	var errs []FieldError
	out := Suspension{From: now}

	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			errs = append(errs, FieldError{Field: "from", Message: "from must be an RFC 3339 timestamp"})
		} else {
			out.From = from
		}
	}

	if req.Until != "" {
		until, err := time.Parse(time.RFC3339, req.Until)
		if err != nil {
			errs = append(errs, FieldError{Field: "until", Message: "until must be an RFC 3339 timestamp"})
		} else {
			out.Until = &until
		}
	}

	if len(errs) == 0 && out.Until != nil && out.Until.Before(out.From) {
		errs = append(errs, FieldError{Field: "until", Message: "until must not be before from"})
	}

	return out, errs
}

// SubscriptionRequest mirrors the body of a plan swap.
type SubscriptionRequest struct {
	PlanID string
}

// ValidateSubscriptionRequest validates a plan swap.
func ValidateSubscriptionRequest(req SubscriptionRequest) []FieldError {
	if strings.TrimSpace(req.PlanID) == "" {
		return []FieldError{{Field: "planId", Message: "planId is required"}}
	}
	return nil
}
