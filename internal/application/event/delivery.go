// Package event lets operators follow domain events from the outbox to the
// bus: what is stuck, what a group or contribution raised, and redelivery of
// events whose retries ran out.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// trailLimit bounds how many events a trail returns
const trailLimit = 200

// redeliverBatch is how many dead entries are requeued per pass
const redeliverBatch = 100

// DeliveryService inspects and repairs outbox delivery
type DeliveryService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewDeliveryService(repo shared.OutboxRepository, logger *zap.Logger) *DeliveryService {
	return &DeliveryService{repo: repo, logger: logger, now: time.Now}
}

// DeadLetters returns a page of events that exhausted their retries
func (s *DeliveryService) DeadLetters(ctx context.Context, query DeadLetterQuery) (*DeadLetterPage, error) {
	filter := query.filter()
	entries, total, err := s.repo.FindDead(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	return &DeadLetterPage{
		Events:   toEventViews(entries, false),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Event returns one outbox entry with its payload
func (s *DeliveryService) Event(ctx context.Context, id uuid.UUID) (*EventView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toEventView(entry, true)
	return &view, nil
}

// Trail lists the events raised by one group, contribution, goal or user in
// the order they were committed
func (s *DeliveryService) Trail(ctx context.Context, aggregateID uuid.UUID) ([]EventView, error) {
	entries, err := s.repo.FindByAggregate(ctx, aggregateID, trailLimit)
	if err != nil {
		return nil, fmt.Errorf("load event trail for %s: %w", aggregateID, err)
	}
	return toEventViews(entries, true), nil
}

// Redeliver puts a dead event back in the queue with a fresh set of retries
func (s *DeliveryService) Redeliver(ctx context.Context, id uuid.UUID) (*EventView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Requeue(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("requeue event %s: %w", id, err)
	}

	s.logger.Info("Event requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
	)
	view := toEventView(entry, false)
	return &view, nil
}

// RedeliverDead requeues every dead event, or only those of eventType when it
// is set. Requeued entries leave the dead set, so the first page is read
// again until nothing more can be requeued.
func (s *DeliveryService) RedeliverDead(ctx context.Context, eventType string) (int64, error) {
	filter := shared.DeadLetterFilter{EventType: eventType, Page: 1, PageSize: redeliverBatch}
	var requeued int64

	for {
		entries, _, err := s.repo.FindDead(ctx, filter)
		if err != nil {
			return requeued, fmt.Errorf("list dead letters: %w", err)
		}

		progressed := false
		for _, entry := range entries {
			if entry.Requeue() != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Warn("Failed to requeue event", zap.Error(err), zap.String("id", entry.ID.String()))
				continue
			}
			progressed = true
			requeued++
		}
		if len(entries) < redeliverBatch || !progressed {
			break
		}
	}

	s.logger.Info("Dead events requeued", zap.Int64("count", requeued), zap.String("event_type", eventType))
	return requeued, nil
}

// Backlog summarizes delivery: counts per status and how long the oldest
// undelivered event has waited
func (s *DeliveryService) Backlog(ctx context.Context) (*Backlog, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outbox entries: %w", err)
	}
	oldest, err := s.repo.OldestPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("find oldest pending event: %w", err)
	}

	b := &Backlog{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		b.Total += n
	}
	if oldest != nil {
		b.OldestPendingAt = oldest
		b.OldestPendingAgeSeconds = int64(s.now().Sub(*oldest).Seconds())
	}
	return b, nil
}

func (s *DeliveryService) load(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("load event %s: %w", id, err)
	}
	if entry == nil {
		return nil, shared.NewNotFoundError("OUTBOX_ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	return entry, nil
}

// DeadLetterQuery pages dead letters, optionally narrowed to one event or aggregate type
type DeadLetterQuery struct {
	EventType     string `form:"event_type" binding:"omitempty,max=100"`
	AggregateType string `form:"aggregate_type" binding:"omitempty,max=50"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q DeadLetterQuery) filter() shared.DeadLetterFilter {
	return shared.DeadLetterFilter{
		EventType:     q.EventType,
		AggregateType: q.AggregateType,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}.Normalize()
}

// DeadLetterPage is one page of dead letters
type DeadLetterPage struct {
	Events   []EventView
	Total    int64
	Page     int
	PageSize int
}

// EventView is an outbox entry as operators see it
type EventView struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	Status        string          `json:"status"`
	Attempts      int             `json:"attempts"`
	MaxAttempts   int             `json:"max_attempts"`
	LastError     string          `json:"last_error,omitempty"`
	NextAttemptAt *time.Time      `json:"next_attempt_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Backlog is the delivery summary
type Backlog struct {
	Pending                 int64      `json:"pending"`
	Processing              int64      `json:"processing"`
	Sent                    int64      `json:"sent"`
	Failed                  int64      `json:"failed"`
	Dead                    int64      `json:"dead"`
	Total                   int64      `json:"total"`
	OldestPendingAt         *time.Time `json:"oldest_pending_at,omitempty"`
	OldestPendingAgeSeconds int64      `json:"oldest_pending_age_seconds"`
}

func toEventViews(entries []*shared.OutboxEntry, withPayload bool) []EventView {
	views := make([]EventView, len(entries))
	for i, e := range entries {
		views[i] = toEventView(e, withPayload)
	}
	return views
}

func toEventView(e *shared.OutboxEntry, withPayload bool) EventView {
	v := EventView{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Status:        string(e.Status),
		Attempts:      e.RetryCount,
		MaxAttempts:   e.MaxRetries,
		LastError:     e.LastError,
		NextAttemptAt: e.NextRetryAt,
		DeliveredAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if withPayload && json.Valid(e.Payload) {
		v.Payload = json.RawMessage(e.Payload)
	}
	return v
}
