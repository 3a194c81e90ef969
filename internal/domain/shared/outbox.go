package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	// MaxBackoff caps the delay between two delivery attempts
	MaxBackoff = 5 * time.Minute
)

var (
	ErrNotDeadLetter  = NewInvalidStateError("EVENT_NOT_DEAD_LETTER", "Only dead letter events can be redelivered")
	ErrNotDeliverable = NewInvalidStateError("EVENT_NOT_DELIVERABLE", "Only pending or failed events can be claimed for delivery")
)

// OutboxEntry is a domain event committed with the aggregate change that
// raised it, waiting for delivery to the event bus
type OutboxEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	EventType     string    `gorm:"size:100;index"`
	AggregateID   uuid.UUID `gorm:"type:uuid;index"`
	AggregateType string    `gorm:"size:50"`
	Payload       []byte
	Status        OutboxStatus `gorm:"size:20;index"`
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OutboxEntry) TableName() string {
	return "outbox_entries"
}

// NewOutboxEntry wraps a serialized event for delivery
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RetryBackoff is the wait before attempt n+1 after n failures: 1s, 2s, 4s
// and so on up to MaxBackoff
func RetryBackoff(failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	if failures > 20 {
		return MaxBackoff
	}
	d := DefaultBaseBackoff << uint(failures-1)
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// MarkProcessing claims a pending or failed entry
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return ErrNotDeliverable
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a failed attempt. The entry is dead once its retries are
// used up; otherwise the next attempt is scheduled with RetryBackoff.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = now

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(RetryBackoff(e.RetryCount))
	e.NextRetryAt = &next
}

// Requeue gives a dead entry a fresh set of retries
func (e *OutboxEntry) Requeue() error {
	if !e.IsDead() {
		return ErrNotDeadLetter
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// DeadLetterFilter selects a page of dead entries. Empty strings match all.
type DeadLetterFilter struct {
	EventType     string
	AggregateType string
	Page          int
	PageSize      int
}

// Normalize clamps paging to 1..100 with a default page size of 20
func (f DeadLetterFilter) Normalize() DeadLetterFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize < 1:
		f.PageSize = 20
	case f.PageSize > 100:
		f.PageSize = 100
	}
	return f
}

// OutboxRepository persists outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, filter DeadLetterFilter) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// FindByAggregate returns the newest entries raised by one aggregate, oldest first
	FindByAggregate(ctx context.Context, aggregateID uuid.UUID, limit int) ([]*OutboxEntry, error)
	// MarkProcessing claims entries and returns the ones this caller now owns
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
	// OldestPending returns the creation time of the oldest undelivered entry, nil when none wait
	OldestPending(ctx context.Context) (*time.Time, error)
}
