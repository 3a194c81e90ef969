package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	event := &sampleEvent{BaseDomainEvent: NewBaseDomainEvent("SampleHappened", "Sample", aggID, uuid.New())}

	entry := NewOutboxEntry(event, []byte(`{"ok":true}`))

	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "SampleHappened", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Sample", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules exponential backoff", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 5}

		entry.MarkFailed("boom")
		require.NotNil(t, entry.NextRetryAt)
		first := time.Until(*entry.NextRetryAt)

		entry.MarkFailed("boom again")
		require.NotNil(t, entry.NextRetryAt)
		second := time.Until(*entry.NextRetryAt)

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 2, entry.RetryCount)
		assert.Equal(t, "boom again", entry.LastError)
		assert.Greater(t, second, first)
		assert.True(t, entry.CanRetry())
	})

	t.Run("moves to dead letter after max retries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 4, MaxRetries: 5}

		entry.MarkFailed("final")

		assert.True(t, entry.IsDead())
		assert.Nil(t, entry.NextRetryAt)
		assert.False(t, entry.CanRetry())
	})
}

func TestOutboxEntry_Requeue(t *testing.T) {
	t.Run("dead entry gets fresh retries", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "broker unreachable",
			UpdatedAt:  time.Now().Add(-time.Minute),
		}

		require.NoError(t, entry.Requeue())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Zero(t, entry.RetryCount)
		assert.Empty(t, entry.LastError)
	})

	t.Run("live entries are rejected", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			err := entry.Requeue()
			assert.ErrorIs(t, err, ErrNotDeadLetter, string(status))
			assert.Equal(t, KindInvalidState, KindOf(err))
		}
	})
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{9, 256 * time.Second},
		{10, MaxBackoff},
		{64, MaxBackoff},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RetryBackoff(tc.failures), "failures=%d", tc.failures)
	}
}

func TestDeadLetterFilter_Normalize(t *testing.T) {
	assert.Equal(t, DeadLetterFilter{Page: 1, PageSize: 20}, DeadLetterFilter{}.Normalize())
	assert.Equal(t, DeadLetterFilter{Page: 3, PageSize: 100, EventType: "ContributionRecorded"},
		DeadLetterFilter{Page: 3, PageSize: 500, EventType: "ContributionRecorded"}.Normalize())
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusPending}
	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	sent := &OutboxEntry{Status: OutboxStatusSent}
	assert.ErrorIs(t, sent.MarkProcessing(), ErrNotDeliverable)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindConflictingRequest, KindOf(ErrConcurrencyConflict))
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
