package handler

import (
	"time"

	"github.com/google/uuid"
	goalapp "github.com/savings/backend/internal/application/goal"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// CreateGoalRequest represents the request body for creating a goal
type CreateGoalRequest struct {
	GroupID      *string         `json:"group_id" binding:"omitempty,uuid"`
	Title        string          `json:"title" binding:"required,max=100"`
	Description  string          `json:"description" binding:"omitempty,max=500"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required,positive_amount" swaggertype:"string" example:"25000"`
	Currency     string          `json:"currency" binding:"omitempty,currency"`
	Type         string          `json:"type" binding:"omitempty,oneof=personal group emergency vacation education investment purchase debt_payment"`
	Category     string          `json:"category" binding:"omitempty,oneof=savings emergency vacation education gift investment debt other"`
	Priority     string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	StartDate    *time.Time      `json:"start_date"`
	TargetDate   time.Time       `json:"target_date" binding:"required"`
	Rules        *RulesRequest   `json:"rules"`
	IsPublic     bool            `json:"is_public"`
	Tags         []string        `json:"tags" binding:"omitempty,max=10,dive,max=20"`
}

func (r CreateGoalRequest) toInput() goalapp.CreateInput {
	in := goalapp.CreateInput{
		Details: goal.Details{
			Title:        r.Title,
			Description:  r.Description,
			TargetAmount: r.TargetAmount,
			Currency:     valueobject.Currency(r.Currency),
			Type:         goal.Type(r.Type),
			Category:     goal.Category(r.Category),
			Priority:     goal.Priority(r.Priority),
			TargetDate:   r.TargetDate,
			Rules:        r.Rules.toRules(),
			IsPublic:     r.IsPublic,
			Tags:         r.Tags,
		},
	}
	if r.StartDate != nil {
		in.Details.StartDate = *r.StartDate
	}
	if r.GroupID != nil {
		id := uuid.MustParse(*r.GroupID)
		in.GroupID = &id
	}
	return in
}

// UpdateGoalRequest is a partial goal update; omitted fields keep their value
type UpdateGoalRequest struct {
	Title        *string          `json:"title" binding:"omitempty,max=100"`
	Description  *string          `json:"description" binding:"omitempty,max=500"`
	TargetAmount *decimal.Decimal `json:"target_amount" binding:"omitempty,positive_amount" swaggertype:"string"`
	Currency     *string          `json:"currency" binding:"omitempty,currency"`
	Type         *string          `json:"type" binding:"omitempty,oneof=personal group emergency vacation education investment purchase debt_payment"`
	Category     *string          `json:"category" binding:"omitempty,oneof=savings emergency vacation education gift investment debt other"`
	Priority     *string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	TargetDate   *time.Time       `json:"target_date"`
	Rules        *RulesRequest    `json:"rules"`
	IsPublic     *bool            `json:"is_public"`
	Tags         []string         `json:"tags" binding:"omitempty,max=10,dive,max=20"`
}

func (r UpdateGoalRequest) toInput() goalapp.UpdateInput {
	in := goalapp.UpdateInput{
		Title:        r.Title,
		Description:  r.Description,
		TargetAmount: r.TargetAmount,
		TargetDate:   r.TargetDate,
		IsPublic:     r.IsPublic,
		Tags:         r.Tags,
	}
	if r.Currency != nil {
		cur := valueobject.Currency(*r.Currency)
		in.Currency = &cur
	}
	if r.Type != nil {
		t := goal.Type(*r.Type)
		in.Type = &t
	}
	if r.Category != nil {
		cat := goal.Category(*r.Category)
		in.Category = &cat
	}
	if r.Priority != nil {
		p := goal.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.Rules != nil {
		rules := r.Rules.toRules()
		in.Rules = &rules
	}
	return in
}

// AmountRequest carries a single positive amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,positive_amount" swaggertype:"string" example:"500"`
}

// AddMilestoneRequest adds a custom milestone to a goal
type AddMilestoneRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required,positive_amount" swaggertype:"string"`
	Reward       string          `json:"reward" binding:"omitempty,max=200"`
}

// GoalListQuery filters goal listings
type GoalListQuery struct {
	dto.ListRequest
	Status   string `form:"status" binding:"omitempty,oneof=active paused completed cancelled overdue"`
	Priority string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

func (q GoalListQuery) toFilter() goalapp.ListFilter {
	q.Normalize()
	filter := goalapp.ListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
	}
	if q.Status != "" {
		s := goal.Status(q.Status)
		filter.Status = &s
	}
	if q.Priority != "" {
		p := goal.Priority(q.Priority)
		filter.Priority = &p
	}
	return filter
}
