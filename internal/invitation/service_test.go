package invitation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/database/dbtest"
	"github.com/daap14/teamhub/internal/event/eventtest"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/invitation/invitationtest"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/member/membertest"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/team"
	"github.com/daap14/teamhub/internal/team/teamtest"
)

type fixedPlan struct {
	plan plan.Plan
}

func (f fixedPlan) PlanFor(context.Context, uuid.UUID) (plan.Plan, error) {
	return f.plan, nil
}

const ttl = 24 * time.Hour

var start = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	workflow    *invitation.Workflow
	ledger      *member.Ledger
	invitations *invitationtest.Repository
	members     *membertest.Repository
	events      *eventtest.Recorder
	team        *team.Team
	now         *time.Time
}

func (f fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func setup(t *testing.T, capacity int, inviteTTL time.Duration) fixture {
	t.Helper()

	now := start
	clock := func() time.Time { return now }

	tx := &dbtest.Transactor{}
	f := fixture{
		invitations: invitationtest.NewRepository(),
		members:     membertest.NewRepository(),
		events:      &eventtest.Recorder{},
		now:         &now,
	}
	p := fixedPlan{plan: plan.Plan{ID: "capped", Name: "Capped", Members: capacity}}
	dir := team.NewDirectory(teamtest.NewRepository(), tx)
	f.ledger = member.NewLedger(f.members, dir, p, f.invitations, tx, f.events).WithClock(clock)
	f.workflow = invitation.NewWorkflow(f.invitations, f.ledger, tx, inviteTTL).WithClock(clock)

	tm, _, err := f.ledger.CreateTeam(context.Background(), "Acme", uuid.New())
	require.NoError(t, err)
	f.team = tm
	return f
}

func TestInvite_NormalizesEmailAndSetsExpiry(t *testing.T) {
	f := setup(t, 5, ttl)

	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "  Dana@Example.COM ", "admin")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", inv.Email)
	assert.Equal(t, member.GroupAdmin, inv.Group)
	require.NotNil(t, inv.ExpiresAt)
	assert.Equal(t, start.Add(ttl), *inv.ExpiresAt)
}

func TestInvite_NoTTLNeverExpires(t *testing.T) {
	f := setup(t, 5, 0)

	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)
	assert.Nil(t, inv.ExpiresAt)

	f.advance(365 * 24 * time.Hour)
	_, err = f.workflow.Get(context.Background(), inv.ID)
	assert.NoError(t, err)
}

func TestInvite_Validation(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		group   string
		wantErr error
	}{
		{"missing at sign", "dana.example.com", "member", invitation.ErrInvalidEmail},
		{"empty email", "   ", "member", invitation.ErrInvalidEmail},
		{"missing tld", "dana@example", "member", invitation.ErrInvalidEmail},
		{"unknown group", "dana@example.com", "guest", member.ErrInvalidGroup},
		{"empty group", "dana@example.com", "", member.ErrInvalidGroup},
		{"owner group", "dana@example.com", "owner", member.ErrOwnerMembership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, 5, ttl)
			_, err := f.workflow.Invite(context.Background(), f.team.ID, tt.email, tt.group)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.invitations.Len())
		})
	}
}

func TestInvite_DuplicatePending(t *testing.T) {
	f := setup(t, 5, ttl)

	_, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	_, err = f.workflow.Invite(context.Background(), f.team.ID, "DANA@example.com", "admin")
	assert.ErrorIs(t, err, invitation.ErrDuplicateInvitation)
}

func TestInvite_ReplacesExpiredInvitation(t *testing.T) {
	f := setup(t, 5, ttl)

	first, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	f.advance(ttl)
	second, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, f.invitations.Len())
}

func TestInvite_ReservesCapacity(t *testing.T) {
	// Plan allows 2: the owner plus one pending invitation fill the team.
	f := setup(t, 2, ttl)

	_, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	_, err = f.workflow.Invite(context.Background(), f.team.ID, "eli@example.com", "member")
	assert.ErrorIs(t, err, member.ErrCapacityExceeded)

	_, err = f.ledger.AddMember(context.Background(), f.team.ID, uuid.New(), member.GroupMember, nil)
	assert.ErrorIs(t, err, member.ErrCapacityExceeded)
}

func TestInvite_ExpiredInvitationsFreeCapacity(t *testing.T) {
	f := setup(t, 2, ttl)

	_, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	f.advance(ttl + time.Second)
	_, err = f.ledger.AddMember(context.Background(), f.team.ID, uuid.New(), member.GroupMember, nil)
	assert.NoError(t, err)
}

func TestInvite_UnknownTeam(t *testing.T) {
	f := setup(t, 5, ttl)

	_, err := f.workflow.Invite(context.Background(), uuid.New(), "dana@example.com", "member")
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestAccept_CreatesMembershipAtFullCapacity(t *testing.T) {
	f := setup(t, 2, ttl)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "admin")
	require.NoError(t, err)

	actor := invitation.Actor{UserID: uuid.New(), Email: "Dana@Example.com"}
	m, err := f.workflow.Accept(context.Background(), inv.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, m.UserID)
	assert.Equal(t, member.GroupAdmin, m.Group)
	assert.Equal(t, f.team.ID, m.TeamID)

	_, err = f.workflow.Get(context.Background(), inv.ID)
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)

	n, err := f.ledger.PotentialMemberCount(context.Background(), f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAccept_IdentityMismatchKeepsInvitation(t *testing.T) {
	f := setup(t, 5, ttl)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	_, err = f.workflow.Accept(context.Background(), inv.ID, invitation.Actor{UserID: uuid.New(), Email: "eli@example.com"})
	assert.ErrorIs(t, err, invitation.ErrIdentityMismatch)

	_, err = f.workflow.Get(context.Background(), inv.ID)
	assert.NoError(t, err)
}

func TestAccept_AlreadyMemberKeepsInvitation(t *testing.T) {
	f := setup(t, 5, ttl)
	userID := uuid.New()
	_, err := f.ledger.AddMember(context.Background(), f.team.ID, userID, member.GroupMember, nil)
	require.NoError(t, err)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	_, err = f.workflow.Accept(context.Background(), inv.ID, invitation.Actor{UserID: userID, Email: "dana@example.com"})
	assert.ErrorIs(t, err, member.ErrDuplicateMembership)

	_, err = f.workflow.Get(context.Background(), inv.ID)
	assert.NoError(t, err)
}

func TestAccept_Expired(t *testing.T) {
	f := setup(t, 5, ttl)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	f.advance(ttl)
	_, err = f.workflow.Accept(context.Background(), inv.ID, invitation.Actor{UserID: uuid.New(), Email: "dana@example.com"})
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)

	count, err := f.ledger.MemberCount(context.Background(), f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAccept_NotFound(t *testing.T) {
	f := setup(t, 5, ttl)

	_, err := f.workflow.Accept(context.Background(), uuid.New(), invitation.Actor{UserID: uuid.New(), Email: "dana@example.com"})
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)
}

func TestDecline(t *testing.T) {
	f := setup(t, 5, ttl)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	err = f.workflow.Decline(context.Background(), inv.ID, invitation.Actor{UserID: uuid.New(), Email: "eli@example.com"})
	assert.ErrorIs(t, err, invitation.ErrIdentityMismatch)

	require.NoError(t, f.workflow.Decline(context.Background(), inv.ID, invitation.Actor{UserID: uuid.New(), Email: "dana@example.com"}))
	assert.Zero(t, f.invitations.Len())

	count, err := f.ledger.MemberCount(context.Background(), f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, f.events.Events())
}

func TestRevoke(t *testing.T) {
	f := setup(t, 5, ttl)
	inv, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)

	err = f.workflow.Revoke(context.Background(), uuid.New(), inv.ID)
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)

	require.NoError(t, f.workflow.Revoke(context.Background(), f.team.ID, inv.ID))
	assert.Zero(t, f.invitations.Len())
}

func TestListForEmail_HidesExpired(t *testing.T) {
	f := setup(t, 10, ttl)
	other, _, err := f.ledger.CreateTeam(context.Background(), "Globex", uuid.New())
	require.NoError(t, err)

	_, err = f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.workflow.Invite(context.Background(), other.ID, "dana@example.com", "member")
	require.NoError(t, err)

	res, err := f.workflow.ListForEmail(context.Background(), "DANA@example.com", database.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	f.advance(ttl - time.Hour)
	res, err = f.workflow.ListForEmail(context.Background(), "dana@example.com", database.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, other.ID, res.Items[0].TeamID)

	teamRes, err := f.workflow.ListForTeam(context.Background(), f.team.ID, database.Page{})
	require.NoError(t, err)
	assert.Zero(t, teamRes.Total)
	assert.NotNil(t, teamRes.Items)
}

func TestPurgeExpired(t *testing.T) {
	f := setup(t, 10, ttl)
	_, err := f.workflow.Invite(context.Background(), f.team.ID, "dana@example.com", "member")
	require.NoError(t, err)
	f.advance(2 * time.Hour)
	_, err = f.workflow.Invite(context.Background(), f.team.ID, "eli@example.com", "member")
	require.NoError(t, err)

	f.advance(ttl - time.Hour)
	n, err := f.workflow.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, f.invitations.Len())
}
