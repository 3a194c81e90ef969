package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GoalModel is the persistence model for the Goal aggregate root.
type GoalModel struct {
	AggregateModel
	Title               string                                          `gorm:"type:varchar(100);not null"`
	Description         string                                          `gorm:"type:varchar(500)"`
	TargetAmount        decimal.Decimal                                 `gorm:"type:decimal(18,2);not null"`
	Currency            valueobject.Currency                            `gorm:"type:varchar(3);not null"`
	Type                goal.Type                                       `gorm:"type:varchar(20);not null;index"`
	Category            goal.Category                                   `gorm:"type:varchar(20);not null"`
	StartDate           time.Time                                       `gorm:"not null"`
	TargetDate          time.Time                                       `gorm:"not null"`
	Rules               datatypes.JSONType[valueobject.ContributionRules] `gorm:"not null"`
	IsPublic            bool                                            `gorm:"not null;default:false;index"`
	Priority            goal.Priority                                   `gorm:"type:varchar(10);not null"`
	Tags                datatypes.JSONSlice[string]                     `gorm:"not null"`
	OwnerID             uuid.UUID                                       `gorm:"type:uuid;not null;index"`
	GroupID             *uuid.UUID                                      `gorm:"type:uuid;index"`
	CurrentAmount       decimal.Decimal                                 `gorm:"type:decimal(18,2);not null;default:0"`
	ProgressPercentage  decimal.Decimal                                 `gorm:"type:decimal(5,2);not null;default:0"`
	Status              goal.Status                                     `gorm:"type:varchar(20);not null;index"`
	CompletedAt         *time.Time
	Points              int64           `gorm:"not null;default:0"`
	TotalContributions  int64           `gorm:"not null;default:0"`
	AverageContribution decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LastContribution    *time.Time
	Milestones          []GoalMilestoneModel `gorm:"foreignKey:GoalID"`
}

// TableName returns the table name for GORM
func (GoalModel) TableName() string {
	return "goals"
}

// ToDomain converts the persistence model to a domain Goal entity
func (m *GoalModel) ToDomain() *goal.Goal {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	g := &goal.Goal{
		BaseAggregateRoot: m.Root(),
		Details: goal.Details{
			Title:        m.Title,
			Description:  m.Description,
			TargetAmount: m.TargetAmount,
			Currency:     m.Currency,
			Type:         m.Type,
			Category:     m.Category,
			StartDate:    m.StartDate,
			TargetDate:   m.TargetDate,
			Rules:        m.Rules.Data(),
			IsPublic:     m.IsPublic,
			Priority:     m.Priority,
			Tags:         tags,
		},
		OwnerID:             m.OwnerID,
		GroupID:             m.GroupID,
		CurrentAmount:       m.CurrentAmount,
		ProgressPercentage:  m.ProgressPercentage,
		Status:              m.Status,
		CompletedAt:         m.CompletedAt,
		Milestones:          make([]goal.Milestone, 0, len(m.Milestones)),
		Points:              m.Points,
		TotalContributions:  m.TotalContributions,
		AverageContribution: m.AverageContribution,
		LastContribution:    m.LastContribution,
	}
	for i := range m.Milestones {
		g.Milestones = append(g.Milestones, m.Milestones[i].ToDomain())
	}
	return g
}

// FromDomain populates the persistence model from a domain Goal entity
func (m *GoalModel) FromDomain(g *goal.Goal) {
	m.AggregateModel = aggregateModel(g.BaseAggregateRoot)
	m.Title = g.Title
	m.Description = g.Description
	m.TargetAmount = g.TargetAmount
	m.Currency = g.Currency
	m.Type = g.Type
	m.Category = g.Category
	m.StartDate = g.StartDate
	m.TargetDate = g.TargetDate
	m.Rules = datatypes.NewJSONType(g.Rules)
	m.IsPublic = g.IsPublic
	m.Priority = g.Priority
	m.Tags = datatypes.NewJSONSlice(g.Tags)
	m.OwnerID = g.OwnerID
	m.GroupID = g.GroupID
	m.CurrentAmount = g.CurrentAmount
	m.ProgressPercentage = g.ProgressPercentage
	m.Status = g.Status
	m.CompletedAt = g.CompletedAt
	m.Points = g.Points
	m.TotalContributions = g.TotalContributions
	m.AverageContribution = g.AverageContribution
	m.LastContribution = g.LastContribution

	m.Milestones = make([]GoalMilestoneModel, len(g.Milestones))
	for i, ms := range g.Milestones {
		m.Milestones[i] = GoalMilestoneModel{
			ID:           ms.ID,
			GoalID:       g.ID,
			Position:     i,
			Name:         ms.Name,
			TargetAmount: ms.TargetAmount,
			IsAchieved:   ms.IsAchieved,
			AchievedAt:   ms.AchievedAt,
			Reward:       ms.Reward,
		}
	}
}

// GoalModelFromDomain creates a new persistence model from a domain Goal entity
func GoalModelFromDomain(g *goal.Goal) *GoalModel {
	m := &GoalModel{}
	m.FromDomain(g)
	return m
}

// GoalMilestoneModel persists a milestone; Position keeps the order they were added in
type GoalMilestoneModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	GoalID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null;default:0"`
	Name         string          `gorm:"type:varchar(100);not null"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsAchieved   bool            `gorm:"not null;default:false"`
	AchievedAt   *time.Time
	Reward       string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (GoalMilestoneModel) TableName() string {
	return "goal_milestones"
}

// ToDomain converts the persistence model to a domain Milestone
func (m *GoalMilestoneModel) ToDomain() goal.Milestone {
	return goal.Milestone{
		ID:           m.ID,
		Name:         m.Name,
		TargetAmount: m.TargetAmount,
		IsAchieved:   m.IsAchieved,
		AchievedAt:   m.AchievedAt,
		Reward:       m.Reward,
	}
}
