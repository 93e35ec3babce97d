package handler

import (
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/subscription"
	"github.com/daap14/teamhub/internal/team"
)

type teamResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	OwnerUserID string  `json:"ownerUserId"`
	Suspended   bool    `json:"suspended"`
	SuspendedAt *string `json:"suspendedAt"`
	SuspendedTo *string `json:"suspendedTo"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTeamResponse(t *team.Team, suspended bool) teamResponse {
	return teamResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		OwnerUserID: t.OwnerUserID.String(),
		Suspended:   suspended,
		SuspendedAt: response.TimePtr(t.SuspendedAt),
		SuspendedTo: response.TimePtr(t.SuspendedTo),
		CreatedAt:   response.Time(t.CreatedAt),
		UpdatedAt:   response.Time(t.UpdatedAt),
	}
}

type planResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members int    `json:"members"`
}

func toPlanResponse(p plan.Plan) planResponse {
	return planResponse{ID: p.ID, Name: p.Name, Members: p.Members}
}

type subscriptionResponse struct {
	TeamID    string  `json:"teamId"`
	PlanID    string  `json:"planId"`
	EndsAt    *string `json:"endsAt"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toSubscriptionResponse(s *subscription.Subscription) *subscriptionResponse {
	if s == nil {
		return nil
	}
	return &subscriptionResponse{
		TeamID:    s.TeamID.String(),
		PlanID:    s.PlanID,
		EndsAt:    response.TimePtr(s.EndsAt),
		CreatedAt: response.Time(s.CreatedAt),
		UpdatedAt: response.Time(s.UpdatedAt),
	}
}

type memberResponse struct {
	ID         string          `json:"id"`
	TeamID     string          `json:"teamId"`
	UserID     string          `json:"userId"`
	Group      string          `json:"group"`
	Overwrites map[string]bool `json:"overwrites"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

func toMemberResponse(m *member.Member) memberResponse {
	overwrites := map[string]bool{}
	for k, v := range m.Overwrites {
		overwrites[k] = v
	}
	return memberResponse{
		ID:         m.ID.String(),
		TeamID:     m.TeamID.String(),
		UserID:     m.UserID.String(),
		Group:      string(m.Group),
		Overwrites: overwrites,
		CreatedAt:  response.Time(m.CreatedAt),
		UpdatedAt:  response.Time(m.UpdatedAt),
	}
}

type invitationTeamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type invitationResponse struct {
	ID        string                 `json:"id"`
	TeamID    string                 `json:"teamId"`
	Team      invitationTeamResponse `json:"team"`
	Email     string                 `json:"email"`
	Group     string                 `json:"group"`
	CreatedAt string                 `json:"createdAt"`
	ExpiresAt *string                `json:"expiresAt"`
}

func toInvitationResponse(inv *invitation.Invitation) invitationResponse {
	return invitationResponse{
		ID:     inv.ID.String(),
		TeamID: inv.TeamID.String(),
		Team: invitationTeamResponse{
			ID:   inv.TeamID.String(),
			Name: inv.TeamName,
			Slug: inv.TeamSlug,
		},
		Email:     inv.Email,
		Group:     string(inv.Group),
		CreatedAt: response.Time(inv.CreatedAt),
		ExpiresAt: response.TimePtr(inv.ExpiresAt),
	}
}

func toInvitationResponses(items []invitation.Invitation) []invitationResponse {
	out := make([]invitationResponse, 0, len(items))
	for i := range items {
		out = append(out, toInvitationResponse(&items[i]))
	}
	return out
}
