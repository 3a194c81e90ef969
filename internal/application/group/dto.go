package group

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateInput is the input for creating a group
type CreateInput struct {
	Name         string
	Description  string
	Type         group.Type
	Privacy      group.Privacy
	MaxMembers   int
	TotalGoal    decimal.Decimal
	Currency     valueobject.Currency
	GoalDeadline time.Time
	Rules        valueobject.ContributionRules
}

func (in CreateInput) details() group.Details {
	return group.Details{
		Name:         in.Name,
		Description:  in.Description,
		Type:         in.Type,
		Privacy:      in.Privacy,
		MaxMembers:   in.MaxMembers,
		TotalGoal:    in.TotalGoal,
		Currency:     in.Currency,
		GoalDeadline: in.GoalDeadline,
		Rules:        in.Rules,
	}
}

// UpdateInput is a partial update of the group details; nil fields keep their value
type UpdateInput struct {
	Name         *string
	Description  *string
	Type         *group.Type
	Privacy      *group.Privacy
	MaxMembers   *int
	TotalGoal    *decimal.Decimal
	Currency     *valueobject.Currency
	GoalDeadline *time.Time
	Rules        *valueobject.ContributionRules
}

func (in UpdateInput) apply(d group.Details) group.Details {
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.Type != nil {
		d.Type = *in.Type
	}
	if in.Privacy != nil {
		d.Privacy = *in.Privacy
	}
	if in.MaxMembers != nil {
		d.MaxMembers = *in.MaxMembers
	}
	if in.TotalGoal != nil {
		d.TotalGoal = *in.TotalGoal
	}
	if in.Currency != nil {
		d.Currency = *in.Currency
	}
	if in.GoalDeadline != nil {
		d.GoalDeadline = *in.GoalDeadline
	}
	if in.Rules != nil {
		d.Rules = *in.Rules
	}
	return d
}

// ListFilter filters group listings
type ListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   *group.Status
}

// MemberResponse is the API view of a membership
type MemberResponse struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Role             group.Role      `json:"role"`
	JoinedAt         time.Time       `json:"joined_at"`
	TotalContributed decimal.Decimal `json:"total_contributed"`
	LastContribution *time.Time      `json:"last_contribution,omitempty"`
	IsActive         bool            `json:"is_active"`
}

// InvitationResponse is the API view of an invitation
type InvitationResponse struct {
	ID          uuid.UUID              `json:"id"`
	GroupID     uuid.UUID              `json:"group_id"`
	GroupName   string                 `json:"group_name,omitempty"`
	Email       string                 `json:"email"`
	InvitedBy   uuid.UUID              `json:"invited_by"`
	InvitedAt   time.Time              `json:"invited_at"`
	ExpiresAt   time.Time              `json:"expires_at"`
	Status      group.InvitationStatus `json:"status"`
	RespondedAt *time.Time             `json:"responded_at,omitempty"`
}

// RulesResponse is the API view of contribution rules
type RulesResponse struct {
	MinimumAmount decimal.Decimal  `json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount,omitempty"`
	Frequency     string           `json:"frequency"`
	ReminderDays  []int            `json:"reminder_days"`
}

// GroupResponse is the API view of a group. Invitations are only included for admins.
type GroupResponse struct {
	ID                  uuid.UUID            `json:"id"`
	Name                string               `json:"name"`
	Description         string               `json:"description,omitempty"`
	Type                group.Type           `json:"type"`
	Privacy             group.Privacy        `json:"privacy"`
	MaxMembers          int                  `json:"max_members"`
	MemberCount         int                  `json:"member_count"`
	TotalGoal           decimal.Decimal      `json:"total_goal"`
	CurrentAmount       decimal.Decimal      `json:"current_amount"`
	ProgressPercentage  decimal.Decimal      `json:"progress_percentage"`
	Currency            string               `json:"currency"`
	GoalDeadline        time.Time            `json:"goal_deadline"`
	Rules               RulesResponse        `json:"contribution_rules"`
	Status              group.Status         `json:"status"`
	CompletedAt         *time.Time           `json:"completed_at,omitempty"`
	TotalContributions  int64                `json:"total_contributions"`
	AverageContribution decimal.Decimal      `json:"average_contribution"`
	CreatedBy           uuid.UUID            `json:"created_by"`
	Members             []MemberResponse     `json:"members"`
	Invitations         []InvitationResponse `json:"invitations,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Version             int                  `json:"version"`
}

// ToGroupResponse converts a domain Group; withInvitations includes the invitation list
func ToGroupResponse(g *group.Group, withInvitations bool) GroupResponse {
	resp := GroupResponse{
		ID:                  g.ID,
		Name:                g.Name,
		Description:         g.Description,
		Type:                g.Type,
		Privacy:             g.Privacy,
		MaxMembers:          g.MaxMembers,
		MemberCount:         g.ActiveMemberCount(),
		TotalGoal:           g.TotalGoal,
		CurrentAmount:       g.CurrentAmount,
		ProgressPercentage:  g.ProgressPercentage,
		Currency:            string(g.Currency),
		GoalDeadline:        g.GoalDeadline,
		Rules:               toRulesResponse(g.Rules),
		Status:              g.Status,
		CompletedAt:         g.CompletedAt,
		TotalContributions:  g.TotalContributions,
		AverageContribution: g.AverageContribution,
		CreatedBy:           g.CreatedBy,
		Members:             make([]MemberResponse, 0, len(g.Members)),
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
		Version:             g.Version,
	}
	for _, m := range g.Members {
		resp.Members = append(resp.Members, MemberResponse{
			ID:               m.ID,
			UserID:           m.UserID,
			Role:             m.Role,
			JoinedAt:         m.JoinedAt,
			TotalContributed: m.TotalContributed,
			LastContribution: m.LastContribution,
			IsActive:         m.IsActive,
		})
	}
	if withInvitations {
		for _, inv := range g.Invitations {
			resp.Invitations = append(resp.Invitations, toInvitationResponse(g, inv))
		}
	}
	return resp
}

// ToGroupResponses converts a slice of groups without invitations
func ToGroupResponses(items []*group.Group) []GroupResponse {
	out := make([]GroupResponse, len(items))
	for i, g := range items {
		out[i] = ToGroupResponse(g, false)
	}
	return out
}

func toInvitationResponse(g *group.Group, inv group.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          inv.ID,
		GroupID:     g.ID,
		GroupName:   g.Name,
		Email:       inv.Email,
		InvitedBy:   inv.InvitedBy,
		InvitedAt:   inv.InvitedAt,
		ExpiresAt:   inv.ExpiresAt,
		Status:      inv.Status,
		RespondedAt: inv.RespondedAt,
	}
}

func toRulesResponse(r valueobject.ContributionRules) RulesResponse {
	return RulesResponse{
		MinimumAmount: r.MinimumAmount,
		MaximumAmount: r.MaximumAmount,
		Frequency:     string(r.Frequency),
		ReminderDays:  r.ReminderDays,
	}
}

// StatsResponse is the progress read model of a group
type StatsResponse struct {
	TotalGoal           decimal.Decimal `json:"total_goal"`
	CurrentAmount       decimal.Decimal `json:"current_amount"`
	ProgressPercentage  decimal.Decimal `json:"progress_percentage"`
	MemberCount         int             `json:"member_count"`
	DaysRemaining       int             `json:"days_remaining"`
	IsCompleted         bool            `json:"is_completed"`
	IsOverdue           bool            `json:"is_overdue"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
	TotalContributions  int64           `json:"total_contributions"`
	AverageContribution decimal.Decimal `json:"average_contribution"`
	Status              group.Status    `json:"status"`
	GoalDeadline        time.Time       `json:"goal_deadline"`
	CreatedAt           time.Time       `json:"created_at"`
}

func toStatsResponse(s group.Stats) StatsResponse {
	return StatsResponse{
		TotalGoal:           s.TotalGoal,
		CurrentAmount:       s.CurrentAmount,
		ProgressPercentage:  s.ProgressPercentage,
		MemberCount:         s.MemberCount,
		DaysRemaining:       s.DaysRemaining,
		IsCompleted:         s.IsCompleted,
		IsOverdue:           s.IsOverdue,
		EstimatedCompletion: s.EstimatedCompletion,
		TotalContributions:  s.TotalContributions,
		AverageContribution: s.AverageContribution,
		Status:              s.Status,
		GoalDeadline:        s.GoalDeadline,
		CreatedAt:           s.CreatedAt,
	}
}
