package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ContributionModel is the persistence model for the Contribution aggregate root.
// RequestKey is NULL when the client sent none, so the unique index only
// binds keyed requests.
type ContributionModel struct {
	AggregateModel
	UserID              uuid.UUID                  `gorm:"type:uuid;not null;index;uniqueIndex:idx_contributions_user_request,priority:1"`
	GroupID             uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Currency            valueobject.Currency       `gorm:"type:varchar(3);not null"`
	Type                contribution.Type          `gorm:"type:varchar(20);not null"`
	Category            contribution.Category      `gorm:"type:varchar(20);not null"`
	Status              contribution.Status        `gorm:"type:varchar(20);not null;index"`
	Description         string                     `gorm:"type:varchar(200)"`
	Notes               string                     `gorm:"type:varchar(500)"`
	PaymentMethod       contribution.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentReference    string                     `gorm:"type:varchar(100)"`
	ContributionDate    time.Time                  `gorm:"not null;index"`
	IsMilestone         bool                       `gorm:"not null;default:false"`
	MilestoneType       contribution.MilestoneType `gorm:"type:varchar(30)"`
	RequestKey          *string                    `gorm:"type:varchar(100);uniqueIndex:idx_contributions_user_request,priority:2"`
	PointsEarned        int64                      `gorm:"not null;default:0"`
	StreakCount         int                        `gorm:"not null;default:0"`
	GroupProgressBefore decimal.Decimal            `gorm:"type:decimal(5,2);not null;default:0"`
	GroupProgressAfter  decimal.Decimal            `gorm:"type:decimal(5,2);not null;default:0"`
	VerifiedBy          *uuid.UUID                 `gorm:"type:uuid"`
	VerifiedAt          *time.Time
}

// TableName returns the table name for GORM
func (ContributionModel) TableName() string {
	return "contributions"
}

// ToDomain converts the persistence model to a domain Contribution entity
func (m *ContributionModel) ToDomain() *contribution.Contribution {
	c := &contribution.Contribution{
		BaseAggregateRoot: m.Root(),
		Metadata: contribution.Metadata{
			Type:             m.Type,
			Category:         m.Category,
			Currency:         m.Currency,
			Description:      m.Description,
			Notes:            m.Notes,
			PaymentMethod:    m.PaymentMethod,
			PaymentReference: m.PaymentReference,
			ContributionDate: m.ContributionDate,
			IsMilestone:      m.IsMilestone,
			MilestoneType:    m.MilestoneType,
			Pending:          m.Status == contribution.StatusPending,
		},
		UserID:              m.UserID,
		GroupID:             m.GroupID,
		Amount:              m.Amount,
		Status:              m.Status,
		PointsEarned:        m.PointsEarned,
		StreakCount:         m.StreakCount,
		GroupProgressBefore: m.GroupProgressBefore,
		GroupProgressAfter:  m.GroupProgressAfter,
		VerifiedBy:          m.VerifiedBy,
		VerifiedAt:          m.VerifiedAt,
	}
	if m.RequestKey != nil {
		c.RequestKey = *m.RequestKey
	}
	return c
}

// FromDomain populates the persistence model from a domain Contribution entity
func (m *ContributionModel) FromDomain(c *contribution.Contribution) {
	m.AggregateModel = aggregateModel(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.GroupID = c.GroupID
	m.Amount = c.Amount
	m.Currency = c.Currency
	m.Type = c.Type
	m.Category = c.Category
	m.Status = c.Status
	m.Description = c.Description
	m.Notes = c.Notes
	m.PaymentMethod = c.PaymentMethod
	m.PaymentReference = c.PaymentReference
	m.ContributionDate = c.ContributionDate
	m.IsMilestone = c.IsMilestone
	m.MilestoneType = c.MilestoneType
	m.RequestKey = nil
	if c.RequestKey != "" {
		key := c.RequestKey
		m.RequestKey = &key
	}
	m.PointsEarned = c.PointsEarned
	m.StreakCount = c.StreakCount
	m.GroupProgressBefore = c.GroupProgressBefore
	m.GroupProgressAfter = c.GroupProgressAfter
	m.VerifiedBy = c.VerifiedBy
	m.VerifiedAt = c.VerifiedAt
}

// ContributionModelFromDomain creates a new persistence model from a domain Contribution entity
func ContributionModelFromDomain(c *contribution.Contribution) *ContributionModel {
	m := &ContributionModel{}
	m.FromDomain(c)
	return m
}
