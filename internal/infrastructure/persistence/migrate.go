package persistence

import (
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AllModels lists every table owned by the service, in dependency order
func AllModels() []any {
	return []any{
		&models.UserModel{},
		&models.UserGroupModel{},
		&models.GroupModel{},
		&models.GroupMemberModel{},
		&models.GroupInvitationModel{},
		&models.GoalModel{},
		&models.GoalMilestoneModel{},
		&models.ContributionModel{},
		&shared.OutboxEntry{},
	}
}

// AutoMigrate creates or updates the schema from the models. Production
// schemas are managed by the SQL migrations; this serves tests and local runs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
