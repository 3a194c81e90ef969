package handler

import (
	"time"

	groupapp "github.com/savings/backend/internal/application/group"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// RulesRequest describes contribution rules. Omitted fields take the defaults.
type RulesRequest struct {
	MinimumAmount *decimal.Decimal `json:"minimum_amount" binding:"omitempty,positive_amount" swaggertype:"string"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount" binding:"omitempty,positive_amount" swaggertype:"string"`
	Frequency     string           `json:"frequency" binding:"omitempty,frequency"`
	ReminderDays  []int            `json:"reminder_days" binding:"omitempty,max=7,dive,min=0,max=6"`
}

func (r *RulesRequest) toRules() valueobject.ContributionRules {
	if r == nil {
		return valueobject.ContributionRules{}
	}
	rules := valueobject.ContributionRules{
		MaximumAmount: r.MaximumAmount,
		Frequency:     valueobject.Frequency(r.Frequency),
		ReminderDays:  r.ReminderDays,
	}
	if r.MinimumAmount != nil {
		rules.MinimumAmount = *r.MinimumAmount
	}
	return rules
}

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name         string          `json:"name" binding:"required,max=50"`
	Description  string          `json:"description" binding:"omitempty,max=500"`
	Type         string          `json:"type" binding:"omitempty,oneof=friends family colleagues classmates community other"`
	Privacy      string          `json:"privacy" binding:"omitempty,oneof=public private invite-only"`
	MaxMembers   int             `json:"max_members" binding:"omitempty,min=2,max=50"`
	TotalGoal    decimal.Decimal `json:"total_goal" binding:"required,positive_amount" swaggertype:"string" example:"5000.00"`
	Currency     string          `json:"currency" binding:"omitempty,currency" example:"INR"`
	GoalDeadline time.Time       `json:"goal_deadline" binding:"required"`
	Rules        *RulesRequest   `json:"rules"`
}

// UpdateGroupRequest is a partial group update; omitted fields keep their value
type UpdateGroupRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=50"`
	Description  *string          `json:"description" binding:"omitempty,max=500"`
	Type         *string          `json:"type" binding:"omitempty,oneof=friends family colleagues classmates community other"`
	Privacy      *string          `json:"privacy" binding:"omitempty,oneof=public private invite-only"`
	MaxMembers   *int             `json:"max_members" binding:"omitempty,min=2,max=50"`
	TotalGoal    *decimal.Decimal `json:"total_goal" binding:"omitempty,positive_amount" swaggertype:"string"`
	Currency     *string          `json:"currency" binding:"omitempty,currency"`
	GoalDeadline *time.Time       `json:"goal_deadline"`
	Rules        *RulesRequest    `json:"rules"`
}

// InviteRequest invites a registered user by email
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PromoteRequest names the member to promote to admin
type PromoteRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// GroupListQuery filters group listings
type GroupListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active paused completed cancelled"`
}

func (r UpdateGroupRequest) toInput() groupapp.UpdateInput {
	in := groupapp.UpdateInput{
		Name:         r.Name,
		Description:  r.Description,
		MaxMembers:   r.MaxMembers,
		TotalGoal:    r.TotalGoal,
		GoalDeadline: r.GoalDeadline,
	}
	if r.Type != nil {
		t := group.Type(*r.Type)
		in.Type = &t
	}
	if r.Privacy != nil {
		p := group.Privacy(*r.Privacy)
		in.Privacy = &p
	}
	if r.Currency != nil {
		cur := valueobject.Currency(*r.Currency)
		in.Currency = &cur
	}
	if r.Rules != nil {
		rules := r.Rules.toRules()
		in.Rules = &rules
	}
	return in
}
