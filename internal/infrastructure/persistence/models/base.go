package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
)

// AggregateModel holds the columns shared by the users, groups, goals and
// contributions tables. Version is compared on every update.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func aggregateModel(root shared.BaseAggregateRoot) AggregateModel {
	return AggregateModel{
		ID:        root.ID,
		Version:   root.Version,
		CreatedAt: root.CreatedAt,
		UpdatedAt: root.UpdatedAt,
	}
}

// Root rebuilds the aggregate base. Pending events are never persisted, so
// a loaded aggregate starts with none.
func (m AggregateModel) Root() shared.BaseAggregateRoot {
	root := shared.BaseAggregateRoot{Version: m.Version}
	root.ID = m.ID
	root.CreatedAt = m.CreatedAt
	root.UpdatedAt = m.UpdatedAt
	return root
}

// NextVersion bumps the version for an update and returns the version the
// stored row must still have
func (m *AggregateModel) NextVersion() int {
	m.Version++
	return m.Version - 1
}
