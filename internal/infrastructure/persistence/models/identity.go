package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/gamification"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username      string                                  `gorm:"type:varchar(30);not null;uniqueIndex"`
	Email         string                                  `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash  string                                  `gorm:"type:varchar(255);not null"`
	FirstName     string                                  `gorm:"type:varchar(50);not null"`
	LastName      string                                  `gorm:"type:varchar(50);not null"`
	Avatar        string                                  `gorm:"type:varchar(500)"`
	Bio           string                                  `gorm:"type:varchar(500)"`
	Preferences   datatypes.JSONType[identity.Preferences] `gorm:"not null"`
	TotalSaved    decimal.Decimal                         `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentStreak int                                     `gorm:"not null;default:0"`
	LongestStreak int                                     `gorm:"not null;default:0"`
	Experience    int64                                   `gorm:"not null;default:0"`
	Level         int                                     `gorm:"not null;default:1"`
	Badges        datatypes.JSONSlice[gamification.Badge] `gorm:"not null"`
	IsActive      bool                                    `gorm:"not null;index"`
	LastLoginAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Note: GroupIDs must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	badges := gamification.BadgeSet(m.Badges)
	if badges == nil {
		badges = gamification.BadgeSet{}
	}
	return &identity.User{
		BaseAggregateRoot: m.Root(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Avatar:            m.Avatar,
		Bio:               m.Bio,
		Preferences:       m.Preferences.Data(),
		TotalSaved:        m.TotalSaved,
		CurrentStreak:     m.CurrentStreak,
		LongestStreak:     m.LongestStreak,
		Experience:        m.Experience,
		Level:             m.Level,
		Badges:            badges,
		GroupIDs:          make([]uuid.UUID, 0),
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.AggregateModel = aggregateModel(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Avatar = u.Avatar
	m.Bio = u.Bio
	m.Preferences = datatypes.NewJSONType(u.Preferences)
	m.TotalSaved = u.TotalSaved
	m.CurrentStreak = u.CurrentStreak
	m.LongestStreak = u.LongestStreak
	m.Experience = u.Experience
	m.Level = u.Level
	m.Badges = datatypes.NewJSONSlice([]gamification.Badge(u.Badges))
	m.IsActive = u.IsActive
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserGroupModel is the back-reference from a user to a group they joined.
// Rows are removed when the user leaves or the group is cancelled.
type UserGroupModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserGroupModel) TableName() string {
	return "user_groups"
}
