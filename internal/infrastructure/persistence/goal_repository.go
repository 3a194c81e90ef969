package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/goal"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGoalRepository implements goal.Repository using GORM
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGormGoalRepository creates a new GormGoalRepository
func NewGormGoalRepository(db *gorm.DB) *GormGoalRepository {
	return &GormGoalRepository{db: db}
}

// FindByID finds a goal with its milestones
func (r *GormGoalRepository) FindByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	var model models.GoalModel
	if err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goal.ErrGoalNotFound
		}
		return nil, fmt.Errorf("find goal %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindAll lists goals matching the filter with the total count before paging
func (r *GormGoalRepository) FindAll(ctx context.Context, filter goal.Filter) ([]*goal.Goal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GoalModel{})
	if pattern := filter.SearchPattern(); pattern != "" {
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.Public {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count goals: %w", err)
	}

	var rows []models.GoalModel
	if err := query.
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order(goalSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find goals: %w", err)
	}

	goals := make([]*goal.Goal, len(rows))
	for i := range rows {
		goals[i] = rows[i].ToDomain()
	}
	return goals, total, nil
}

// Create inserts a new goal with its milestones
func (r *GormGoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	model := models.GoalModelFromDomain(g)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("create goal: %w", err)
		}
		return saveMilestones(tx, model)
	})
}

// Save updates the goal with a version check, then syncs its milestones
func (r *GormGoalRepository) Save(ctx context.Context, g *goal.Goal) error {
	model := models.GoalModelFromDomain(g)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, "goal", model, &model.AggregateModel, clause.Associations); err != nil {
			return err
		}
		return saveMilestones(tx, model)
	})
	if err != nil {
		return err
	}
	g.IncrementVersion()
	return nil
}

func saveMilestones(tx *gorm.DB, model *models.GoalModel) error {
	for i := range model.Milestones {
		if err := tx.Save(&model.Milestones[i]).Error; err != nil {
			return fmt.Errorf("save goal milestone: %w", err)
		}
	}
	return nil
}

// Delete removes the goal and its milestones
func (r *GormGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalMilestoneModel{}).Error; err != nil {
			return fmt.Errorf("delete goal milestones: %w", err)
		}
		result := tx.Delete(&models.GoalModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete goal %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return goal.ErrGoalNotFound
		}
		return nil
	})
}

// goalOverviewRow is one (status, type) bucket of an owner's goals
type goalOverviewRow struct {
	Status        goal.Status
	Type          goal.Type
	Count         int64
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	ProgressSum   decimal.Decimal
}

// Overview aggregates the goals owned by ownerID
func (r *GormGoalRepository) Overview(ctx context.Context, ownerID uuid.UUID) (goal.Overview, error) {
	var rows []goalOverviewRow
	if err := r.db.WithContext(ctx).
		Model(&models.GoalModel{}).
		Select("status, type, COUNT(*) AS count, "+
			"COALESCE(SUM(target_amount), 0) AS target_amount, "+
			"COALESCE(SUM(current_amount), 0) AS current_amount, "+
			"COALESCE(SUM(progress_percentage), 0) AS progress_sum").
		Where("owner_id = ?", ownerID).
		Group("status, type").
		Scan(&rows).Error; err != nil {
		return goal.Overview{}, fmt.Errorf("goal overview for %s: %w", ownerID, err)
	}

	o := goal.Overview{
		TotalTargetAmount:  decimal.Zero,
		TotalCurrentAmount: decimal.Zero,
		AverageProgress:    decimal.Zero,
		ByStatus:           make(map[goal.Status]int64),
		ByType:             make(map[goal.Type]int64),
	}
	progressSum := decimal.Zero
	for _, row := range rows {
		o.TotalGoals += row.Count
		o.ByStatus[row.Status] += row.Count
		o.ByType[row.Type] += row.Count
		o.TotalTargetAmount = o.TotalTargetAmount.Add(row.TargetAmount)
		o.TotalCurrentAmount = o.TotalCurrentAmount.Add(row.CurrentAmount)
		progressSum = progressSum.Add(row.ProgressSum)
	}
	o.ActiveGoals = o.ByStatus[goal.StatusActive]
	o.CompletedGoals = o.ByStatus[goal.StatusCompleted]
	if o.TotalGoals > 0 {
		o.AverageProgress = progressSum.Div(decimal.NewFromInt(o.TotalGoals)).Round(2)
	}
	return o, nil
}

// Ensure GormGoalRepository implements goal.Repository
var _ goal.Repository = (*GormGoalRepository)(nil)
