package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts contributions and reversals and records amount
// distributions. It satisfies the ledger service's Metrics interface.
type LedgerMetrics struct {
	contributions  metric.Int64Counter
	amount         metric.Float64Histogram
	reversals      metric.Int64Counter
	reversedAmount metric.Float64Histogram
	events         metric.Int64Counter
}

// NewLedgerMetrics registers the savings_* instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewLedgerMetrics: meter cannot be nil")
	}
	in := &instruments{meter: meter}
	m := &LedgerMetrics{
		contributions:  in.counter("savings_contributions_total", "Contributions recorded, by resulting status", "{contribution}"),
		amount:         in.histogram("savings_contribution_amount", "Amount of recorded contributions", "{currency}", amountBuckets),
		reversals:      in.counter("savings_reversals_total", "Contributions cancelled or refunded", "{contribution}"),
		reversedAmount: in.histogram("savings_reversal_amount", "Amount taken back out of group totals", "{currency}", amountBuckets),
		events:         in.counter("savings_events_published_total", "Domain events delivered from the outbox", "{event}"),
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordContribution counts one contribution with its status
func (m *LedgerMetrics) RecordContribution(ctx context.Context, status string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(AttrContributionStatus.String(status))
	m.contributions.Add(ctx, 1, attrs)
	m.amount.Record(ctx, amount.InexactFloat64(), attrs)
}

// RecordReversal counts a cancel or refund
func (m *LedgerMetrics) RecordReversal(ctx context.Context, reason string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(AttrReversalReason.String(reason))
	m.reversals.Add(ctx, 1, attrs)
	m.reversedAmount.Record(ctx, amount.InexactFloat64(), attrs)
}

// RecordEventPublished counts one delivered outbox event
func (m *LedgerMetrics) RecordEventPublished(ctx context.Context, eventType string) {
	m.events.Add(ctx, 1, metric.WithAttributes(AttrEventType.String(eventType)))
}
