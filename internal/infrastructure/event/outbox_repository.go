package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOutboxEntryNotFound = shared.NewNotFoundError("OUTBOX_ENTRY_NOT_FOUND", "Outbox entry not found")

// GormOutboxRepository stores outbox entries in the outbox_entries table
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) entries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&shared.OutboxEntry{})
}

func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindPending returns the oldest pending entries
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	err := r.entries(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindRetryable returns failed entries whose next attempt is due
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	err := r.entries(ctx).
		Where("status = ? AND next_retry_at <= ?", shared.OutboxStatusFailed, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkProcessing claims the given entries for this caller. Rows locked by
// another processor are skipped, so the result may be a subset of ids.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []*shared.OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id IN ? AND status IN ?", ids, []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusFailed}).
			Find(&claimed).Error
		if err != nil || len(claimed) == 0 {
			return err
		}

		owned := make([]uuid.UUID, 0, len(claimed))
		now := time.Now()
		for _, e := range claimed {
			owned = append(owned, e.ID)
			e.Status = shared.OutboxStatusProcessing
			e.UpdatedAt = now
		}
		return tx.Model(&shared.OutboxEntry{}).
			Where("id IN ?", owned).
			Updates(map[string]any{"status": shared.OutboxStatusProcessing, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(entry).Error
}

// DeleteOlderThan removes sent entries processed before the cutoff
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&shared.OutboxEntry{})
	return res.RowsAffected, res.Error
}

// FindDead returns a page of dead entries, most recently failed first
func (r *GormOutboxRepository) FindDead(ctx context.Context, filter shared.DeadLetterFilter) ([]*shared.OutboxEntry, int64, error) {
	filter = filter.Normalize()
	scoped := func() *gorm.DB {
		q := r.entries(ctx).Where("status = ?", shared.OutboxStatusDead)
		if filter.EventType != "" {
			q = q.Where("event_type = ?", filter.EventType)
		}
		if filter.AggregateType != "" {
			q = q.Where("aggregate_type = ?", filter.AggregateType)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*shared.OutboxEntry
	err := scoped().
		Order("updated_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var entry shared.OutboxEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutboxEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByAggregate loads the newest limit entries of one aggregate and returns
// them in the order they were raised
func (r *GormOutboxRepository) FindByAggregate(ctx context.Context, aggregateID uuid.UUID, limit int) ([]*shared.OutboxEntry, error) {
	var out []*shared.OutboxEntry
	err := r.entries(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		Count  int64
	}
	if err := r.entries(ctx).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// OldestPending looks at entries still waiting for a first or further attempt
func (r *GormOutboxRepository) OldestPending(ctx context.Context) (*time.Time, error) {
	var oldest []*shared.OutboxEntry
	err := r.entries(ctx).
		Select("created_at").
		Where("status IN ?", []shared.OutboxStatus{shared.OutboxStatusPending, shared.OutboxStatusFailed}).
		Order("created_at ASC").
		Limit(1).
		Find(&oldest).Error
	if err != nil || len(oldest) == 0 {
		return nil, err
	}
	at := oldest[0].CreatedAt
	return &at, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
