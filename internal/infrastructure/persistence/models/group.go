package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GroupModel is the persistence model for the Group aggregate root.
type GroupModel struct {
	AggregateModel
	Name                string                                          `gorm:"type:varchar(50);not null"`
	Description         string                                          `gorm:"type:varchar(500)"`
	Type                group.Type                                      `gorm:"type:varchar(20);not null"`
	Privacy             group.Privacy                                   `gorm:"type:varchar(20);not null;index"`
	MaxMembers          int                                             `gorm:"not null"`
	TotalGoal           decimal.Decimal                                 `gorm:"type:decimal(18,2);not null"`
	Currency            valueobject.Currency                            `gorm:"type:varchar(3);not null"`
	GoalDeadline        time.Time                                       `gorm:"not null"`
	Rules               datatypes.JSONType[valueobject.ContributionRules] `gorm:"not null"`
	CreatedBy           uuid.UUID                                       `gorm:"type:uuid;not null;index"`
	CurrentAmount       decimal.Decimal                                 `gorm:"type:decimal(18,2);not null;default:0"`
	ProgressPercentage  decimal.Decimal                                 `gorm:"type:decimal(5,2);not null;default:0"`
	Status              group.Status                                    `gorm:"type:varchar(20);not null;index"`
	CompletedAt         *time.Time
	TotalContributions  int64                  `gorm:"not null;default:0"`
	AverageContribution decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Members             []GroupMemberModel     `gorm:"foreignKey:GroupID"`
	Invitations         []GroupInvitationModel `gorm:"foreignKey:GroupID"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string {
	return "groups"
}

// ToDomain converts the persistence model to a domain Group entity
func (m *GroupModel) ToDomain() *group.Group {
	g := &group.Group{
		BaseAggregateRoot: m.Root(),
		Details: group.Details{
			Name:         m.Name,
			Description:  m.Description,
			Type:         m.Type,
			Privacy:      m.Privacy,
			MaxMembers:   m.MaxMembers,
			TotalGoal:    m.TotalGoal,
			Currency:     m.Currency,
			GoalDeadline: m.GoalDeadline,
			Rules:        m.Rules.Data(),
		},
		CreatedBy:           m.CreatedBy,
		CurrentAmount:       m.CurrentAmount,
		ProgressPercentage:  m.ProgressPercentage,
		Members:             make([]group.Member, 0, len(m.Members)),
		Invitations:         make([]group.Invitation, 0, len(m.Invitations)),
		Status:              m.Status,
		CompletedAt:         m.CompletedAt,
		TotalContributions:  m.TotalContributions,
		AverageContribution: m.AverageContribution,
	}
	for i := range m.Members {
		g.Members = append(g.Members, m.Members[i].ToDomain())
	}
	for i := range m.Invitations {
		g.Invitations = append(g.Invitations, m.Invitations[i].ToDomain())
	}
	return g
}

// FromDomain populates the persistence model from a domain Group entity
func (m *GroupModel) FromDomain(g *group.Group) {
	m.AggregateModel = aggregateModel(g.BaseAggregateRoot)
	m.Name = g.Name
	m.Description = g.Description
	m.Type = g.Type
	m.Privacy = g.Privacy
	m.MaxMembers = g.MaxMembers
	m.TotalGoal = g.TotalGoal
	m.Currency = g.Currency
	m.GoalDeadline = g.GoalDeadline
	m.Rules = datatypes.NewJSONType(g.Rules)
	m.CreatedBy = g.CreatedBy
	m.CurrentAmount = g.CurrentAmount
	m.ProgressPercentage = g.ProgressPercentage
	m.Status = g.Status
	m.CompletedAt = g.CompletedAt
	m.TotalContributions = g.TotalContributions
	m.AverageContribution = g.AverageContribution

	m.Members = make([]GroupMemberModel, len(g.Members))
	for i, member := range g.Members {
		m.Members[i] = GroupMemberModelFromDomain(g.ID, member)
	}
	m.Invitations = make([]GroupInvitationModel, len(g.Invitations))
	for i, inv := range g.Invitations {
		m.Invitations[i] = GroupInvitationModelFromDomain(g.ID, inv)
	}
}

// GroupModelFromDomain creates a new persistence model from a domain Group entity
func GroupModelFromDomain(g *group.Group) *GroupModel {
	m := &GroupModel{}
	m.FromDomain(g)
	return m
}

// GroupMemberModel persists one membership record. Records are kept after
// the user leaves so contribution history survives.
type GroupMemberModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	GroupID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user,priority:1"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user,priority:2;index"`
	Role             group.Role      `gorm:"type:varchar(10);not null"`
	JoinedAt         time.Time       `gorm:"not null"`
	TotalContributed decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LastContribution *time.Time
	IsActive         bool `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GroupMemberModel) TableName() string {
	return "group_members"
}

// ToDomain converts the persistence model to a domain Member
func (m *GroupMemberModel) ToDomain() group.Member {
	return group.Member{
		ID:               m.ID,
		UserID:           m.UserID,
		Role:             m.Role,
		JoinedAt:         m.JoinedAt,
		TotalContributed: m.TotalContributed,
		LastContribution: m.LastContribution,
		IsActive:         m.IsActive,
	}
}

// GroupMemberModelFromDomain creates a member model owned by groupID
func GroupMemberModelFromDomain(groupID uuid.UUID, member group.Member) GroupMemberModel {
	return GroupMemberModel{
		ID:               member.ID,
		GroupID:          groupID,
		UserID:           member.UserID,
		Role:             member.Role,
		JoinedAt:         member.JoinedAt,
		TotalContributed: member.TotalContributed,
		LastContribution: member.LastContribution,
		IsActive:         member.IsActive,
	}
}

// GroupInvitationModel persists an email invitation to a group
type GroupInvitationModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	GroupID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Email       string                 `gorm:"type:varchar(255);not null;index"`
	InvitedBy   uuid.UUID              `gorm:"type:uuid;not null"`
	InvitedAt   time.Time              `gorm:"not null"`
	ExpiresAt   time.Time              `gorm:"not null"`
	Status      group.InvitationStatus `gorm:"type:varchar(20);not null"`
	RespondedAt *time.Time
}

// TableName returns the table name for GORM
func (GroupInvitationModel) TableName() string {
	return "group_invitations"
}

// ToDomain converts the persistence model to a domain Invitation
func (m *GroupInvitationModel) ToDomain() group.Invitation {
	return group.Invitation{
		ID:          m.ID,
		Email:       m.Email,
		InvitedBy:   m.InvitedBy,
		InvitedAt:   m.InvitedAt,
		ExpiresAt:   m.ExpiresAt,
		Status:      m.Status,
		RespondedAt: m.RespondedAt,
	}
}

// GroupInvitationModelFromDomain creates an invitation model owned by groupID
func GroupInvitationModelFromDomain(groupID uuid.UUID, inv group.Invitation) GroupInvitationModel {
	return GroupInvitationModel{
		ID:          inv.ID,
		GroupID:     groupID,
		Email:       inv.Email,
		InvitedBy:   inv.InvitedBy,
		InvitedAt:   inv.InvitedAt,
		ExpiresAt:   inv.ExpiresAt,
		Status:      inv.Status,
		RespondedAt: inv.RespondedAt,
	}
}
