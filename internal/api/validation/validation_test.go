package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/api/validation"
)

func assertFieldError(t *testing.T, errs []validation.FieldError, field, contains string) {
	t.Helper()
	for _, e := range errs {
		if e.Field == field {
			assert.Contains(t, e.Message, contains)
			return
		}
	}
	t.Errorf("expected field error on %q, got %+v", field, errs)
}

func strPtr(s string) *string { return &s }

func TestValidateTeamRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"simple", "Acme", true},
		{"padded", "  Acme  ", true},
		{"blank", "   ", false},
		{"255 chars", strings.Repeat("a", 255), true},
		{"256 chars", strings.Repeat("a", 256), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := validation.ValidateTeamRequest(validation.TeamRequest{Name: tt.value})
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
				assert.Equal(t, "name", errs[0].Field)
			}
		})
	}
}

func TestValidateUpdateMemberRequest(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{Group: strPtr("admin")}))
	assert.Empty(t, validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{
		Overwrites: map[string]bool{"members.manage": true},
	}))

	errs := validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{})
	assertFieldError(t, errs, "group", "at least one")

	errs = validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{Group: strPtr("root")})
	assertFieldError(t, errs, "group", "owner, admin, member")

	errs = validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{
		Overwrites: map[string]bool{"launch.rockets": true},
	})
	assertFieldError(t, errs, "overwrites.launch.rockets", "unknown permission")
}

func TestValidateCreateInvitationRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   validation.CreateInvitationRequest
		field string
	}{
		{"valid", validation.CreateInvitationRequest{Email: " Dana@Example.com ", Group: "member"}, ""},
		{"missing email", validation.CreateInvitationRequest{Group: "member"}, "email"},
		{"bad email", validation.CreateInvitationRequest{Email: "dana@", Group: "member"}, "email"},
		{"missing group", validation.CreateInvitationRequest{Email: "dana@example.com"}, "group"},
		{"owner group", validation.CreateInvitationRequest{Email: "dana@example.com", Group: "owner"}, "group"},
		{"unknown group", validation.CreateInvitationRequest{Email: "dana@example.com", Group: "guest"}, "group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := validation.ValidateCreateInvitationRequest(tt.req)
			if tt.field == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateCreateUserRequest(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validation.ValidateCreateUserRequest(validation.CreateUserRequest{Name: "dana", Email: "dana@example.com"}))

	errs := validation.ValidateCreateUserRequest(validation.CreateUserRequest{})
	assert.Len(t, errs, 2)
	assertFieldError(t, errs, "name", "required")
	assertFieldError(t, errs, "email", "required")
}

func TestValidateSuspensionRequest(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	s, errs := validation.ValidateSuspensionRequest(validation.SuspensionRequest{}, now)
	assert.Empty(t, errs)
	assert.Equal(t, now, s.From)
	assert.Nil(t, s.Until)

	s, errs = validation.ValidateSuspensionRequest(validation.SuspensionRequest{
		From:  "2026-06-01T00:00:00Z",
		Until: "2026-06-30T00:00:00Z",
	}, now)
	assert.Empty(t, errs)
	require.NotNil(t, s.Until)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), *s.Until)

	_, errs = validation.ValidateSuspensionRequest(validation.SuspensionRequest{From: "yesterday"}, now)
	assertFieldError(t, errs, "from", "RFC 3339")

	_, errs = validation.ValidateSuspensionRequest(validation.SuspensionRequest{
		From:  "2026-06-30T00:00:00Z",
		Until: "2026-06-01T00:00:00Z",
	}, now)
	assertFieldError(t, errs, "until", "before")
}

func TestValidateSubscriptionRequest(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validation.ValidateSubscriptionRequest(validation.SubscriptionRequest{PlanID: "pro"}))
	assertFieldError(t, validation.ValidateSubscriptionRequest(validation.SubscriptionRequest{PlanID: " "}), "planId", "required")
}
