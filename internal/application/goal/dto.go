package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateInput is the input for creating a goal
type CreateInput struct {
	GroupID *uuid.UUID
	Details goal.Details
}

// UpdateInput is a partial update of the goal details; nil fields keep their value
type UpdateInput struct {
	Title        *string
	Description  *string
	TargetAmount *decimal.Decimal
	Currency     *valueobject.Currency
	Type         *goal.Type
	Category     *goal.Category
	TargetDate   *time.Time
	Rules        *valueobject.ContributionRules
	IsPublic     *bool
	Priority     *goal.Priority
	Tags         []string
}

func (in UpdateInput) apply(d goal.Details) goal.Details {
	if in.Title != nil {
		d.Title = *in.Title
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.TargetAmount != nil {
		d.TargetAmount = *in.TargetAmount
	}
	if in.Currency != nil {
		d.Currency = *in.Currency
	}
	if in.Type != nil {
		d.Type = *in.Type
	}
	if in.Category != nil {
		d.Category = *in.Category
	}
	if in.TargetDate != nil {
		d.TargetDate = *in.TargetDate
	}
	if in.Rules != nil {
		d.Rules = *in.Rules
	}
	if in.IsPublic != nil {
		d.IsPublic = *in.IsPublic
	}
	if in.Priority != nil {
		d.Priority = *in.Priority
	}
	if in.Tags != nil {
		d.Tags = in.Tags
	}
	return d
}

// ListFilter filters goal listings
type ListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   *goal.Status
	Priority *goal.Priority
}

// MilestoneResponse is the API view of a milestone
type MilestoneResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	IsAchieved   bool            `json:"is_achieved"`
	AchievedAt   *time.Time      `json:"achieved_at,omitempty"`
	Reward       string          `json:"reward,omitempty"`
}

// MilestonesResponse splits milestones by achievement
type MilestonesResponse struct {
	Achieved []MilestoneResponse `json:"achieved"`
	Pending  []MilestoneResponse `json:"pending"`
}

// GoalResponse is the API view of a goal
type GoalResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OwnerID             uuid.UUID           `json:"owner_id"`
	GroupID             *uuid.UUID          `json:"group_id,omitempty"`
	Title               string              `json:"title"`
	Description         string              `json:"description,omitempty"`
	TargetAmount        decimal.Decimal     `json:"target_amount"`
	CurrentAmount       decimal.Decimal     `json:"current_amount"`
	Currency            string              `json:"currency"`
	Type                goal.Type           `json:"type"`
	Category            goal.Category       `json:"category"`
	Priority            goal.Priority       `json:"priority"`
	Tags                []string            `json:"tags"`
	IsPublic            bool                `json:"is_public"`
	StartDate           time.Time           `json:"start_date"`
	TargetDate          time.Time           `json:"target_date"`
	Status              goal.Status         `json:"status"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	ProgressPercentage  decimal.Decimal     `json:"progress_percentage"`
	Milestones          []MilestoneResponse `json:"milestones"`
	Points              int64               `json:"points"`
	TotalContributions  int64               `json:"total_contributions"`
	AverageContribution decimal.Decimal     `json:"average_contribution"`
	LastContribution    *time.Time          `json:"last_contribution,omitempty"`
	DaysRemaining       int                 `json:"days_remaining"`
	DaysElapsed         int                 `json:"days_elapsed"`
	IsOverdue           bool                `json:"is_overdue"`
	EstimatedCompletion *time.Time          `json:"estimated_completion,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Version             int                 `json:"version"`
}

// ToGoalResponse converts a domain Goal with its derived values at now
func ToGoalResponse(g *goal.Goal, now time.Time) GoalResponse {
	summary := g.Summary(now)
	tags := g.Tags
	if tags == nil {
		tags = []string{}
	}
	return GoalResponse{
		ID:                  g.ID,
		OwnerID:             g.OwnerID,
		GroupID:             g.GroupID,
		Title:               g.Title,
		Description:         g.Description,
		TargetAmount:        g.TargetAmount,
		CurrentAmount:       g.CurrentAmount,
		Currency:            string(g.Currency),
		Type:                g.Type,
		Category:            g.Category,
		Priority:            g.Priority,
		Tags:                tags,
		IsPublic:            g.IsPublic,
		StartDate:           g.StartDate,
		TargetDate:          g.TargetDate,
		Status:              g.Status,
		CompletedAt:         g.CompletedAt,
		ProgressPercentage:  g.ProgressPercentage,
		Milestones:          toMilestoneResponses(g.Milestones),
		Points:              g.Points,
		TotalContributions:  g.TotalContributions,
		AverageContribution: g.AverageContribution,
		LastContribution:    g.LastContribution,
		DaysRemaining:       summary.DaysRemaining,
		DaysElapsed:         summary.DaysElapsed,
		IsOverdue:           summary.IsOverdue,
		EstimatedCompletion: summary.EstimatedCompletion,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
		Version:             g.Version,
	}
}

// ToGoalResponses converts a slice of goals
func ToGoalResponses(items []*goal.Goal, now time.Time) []GoalResponse {
	out := make([]GoalResponse, len(items))
	for i, g := range items {
		out[i] = ToGoalResponse(g, now)
	}
	return out
}

func toMilestoneResponses(ms []goal.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, len(ms))
	for i, m := range ms {
		out[i] = MilestoneResponse{
			ID:           m.ID,
			Name:         m.Name,
			TargetAmount: m.TargetAmount,
			IsAchieved:   m.IsAchieved,
			AchievedAt:   m.AchievedAt,
			Reward:       m.Reward,
		}
	}
	return out
}

// OverviewResponse summarizes the caller's goals
type OverviewResponse struct {
	TotalGoals         int64                 `json:"total_goals"`
	ActiveGoals        int64                 `json:"active_goals"`
	CompletedGoals     int64                 `json:"completed_goals"`
	TotalTargetAmount  decimal.Decimal       `json:"total_target_amount"`
	TotalCurrentAmount decimal.Decimal       `json:"total_current_amount"`
	AverageProgress    decimal.Decimal       `json:"average_progress"`
	ByStatus           map[goal.Status]int64 `json:"by_status"`
	ByType             map[goal.Type]int64   `json:"by_type"`
}
