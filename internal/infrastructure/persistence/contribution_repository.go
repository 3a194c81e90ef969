package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormContributionRepository implements contribution.Repository using GORM
type GormContributionRepository struct {
	db *gorm.DB
}

// NewGormContributionRepository creates a new GormContributionRepository
func NewGormContributionRepository(db *gorm.DB) *GormContributionRepository {
	return &GormContributionRepository{db: db}
}

// FindByID finds a contribution by ID
func (r *GormContributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	var model models.ContributionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contribution.ErrContributionNotFound
		}
		return nil, fmt.Errorf("find contribution %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindByRequestKey returns the contribution a user created with key
func (r *GormContributionRepository) FindByRequestKey(ctx context.Context, userID uuid.UUID, key string) (*contribution.Contribution, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, contribution.ErrContributionNotFound
	}
	var model models.ContributionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND request_key = ?", userID, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contribution.ErrContributionNotFound
		}
		return nil, fmt.Errorf("find contribution by request key: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll lists contributions matching the filter with the total count before paging
func (r *GormContributionRepository) FindAll(ctx context.Context, filter contribution.Filter) ([]*contribution.Contribution, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContributionModel{})
	if pattern := filter.SearchPattern(); pattern != "" {
		query = query.Where("LOWER(description) LIKE ?", pattern)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.DateFrom != nil {
		query = query.Where("contribution_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("contribution_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contributions: %w", err)
	}

	var rows []models.ContributionModel
	if err := query.
		Order(contributionSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find contributions: %w", err)
	}

	out := make([]*contribution.Contribution, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

type contributionStatsRow struct {
	TotalAmount decimal.Decimal
	Total       int64
	MaxAmount   decimal.NullDecimal
	MinAmount   decimal.NullDecimal
}

// Stats summarizes confirmed contributions, optionally narrowed to a user and/or group
func (r *GormContributionRepository) Stats(ctx context.Context, userID, groupID *uuid.UUID) (contribution.Stats, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ContributionModel{}).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS total, "+
			"MAX(amount) AS max_amount, MIN(amount) AS min_amount").
		Where("status = ?", contribution.StatusConfirmed)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var row contributionStatsRow
	if err := query.Scan(&row).Error; err != nil {
		return contribution.Stats{}, fmt.Errorf("contribution stats: %w", err)
	}

	stats := contribution.Stats{
		TotalAmount:        row.TotalAmount,
		TotalContributions: row.Total,
		AverageAmount:      decimal.Zero,
		MaxAmount:          decimal.Zero,
		MinAmount:          decimal.Zero,
	}
	if row.MaxAmount.Valid {
		stats.MaxAmount = row.MaxAmount.Decimal
	}
	if row.MinAmount.Valid {
		stats.MinAmount = row.MinAmount.Decimal
	}
	if row.Total > 0 {
		stats.AverageAmount = row.TotalAmount.Div(decimal.NewFromInt(row.Total)).Round(2)
	}
	return stats, nil
}

// Create inserts a new contribution. A reused request key surfaces as
// ErrDuplicateRequest so concurrent retries of one request create one row.
func (r *GormContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	model := models.ContributionModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contribution.ErrDuplicateRequest
		}
		return fmt.Errorf("create contribution: %w", err)
	}
	return nil
}

// Save updates the contribution if its version is unchanged since it was loaded
func (r *GormContributionRepository) Save(ctx context.Context, c *contribution.Contribution) error {
	model := models.ContributionModelFromDomain(c)
	if err := updateVersioned(r.db.WithContext(ctx), "contribution", model, &model.AggregateModel); err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

// Ensure GormContributionRepository implements contribution.Repository
var _ contribution.Repository = (*GormContributionRepository)(nil)
