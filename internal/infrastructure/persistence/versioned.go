package persistence

import (
	"fmt"

	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// updateVersioned overwrites an aggregate row if it still carries the version
// the aggregate was loaded with, and advances that version. Another
// transaction having saved first yields shared.ErrConcurrencyConflict. The
// id and created_at columns are never rewritten; omit names further columns
// or associations to leave alone.
func updateVersioned(tx *gorm.DB, kind string, row any, agg *models.AggregateModel, omit ...string) error {
	expected := agg.NextVersion()
	result := tx.Model(row).
		Where("id = ? AND version = ?", agg.ID, expected).
		Select("*").
		Omit(append([]string{"id", "created_at"}, omit...)...).
		Updates(row)
	if result.Error == nil && result.RowsAffected > 0 {
		return nil
	}

	agg.Version = expected
	if result.Error != nil {
		return fmt.Errorf("save %s %s: %w", kind, agg.ID, result.Error)
	}
	return shared.ErrConcurrencyConflict
}
