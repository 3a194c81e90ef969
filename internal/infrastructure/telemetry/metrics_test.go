package telemetry_test

import (
	"context"
	"testing"

	"github.com/savings/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumBy returns counter totals keyed by the value of attr
func sumBy(t *testing.T, m metricdata.Metrics, attr attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attr)
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestLedgerMetrics(t *testing.T) {
	reader, mp := newManualMeter(t)
	m, err := telemetry.NewLedgerMetrics(mp.Meter("ledger"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordContribution(ctx, "CONFIRMED", decimal.NewFromInt(100))
	m.RecordContribution(ctx, "CONFIRMED", decimal.RequireFromString("25.50"))
	m.RecordContribution(ctx, "PENDING", decimal.NewFromInt(10))
	m.RecordReversal(ctx, "refund", decimal.NewFromInt(40))
	m.RecordEventPublished(ctx, "ContributionRecorded")

	got := collect(t, reader)

	assert.Equal(t, map[string]int64{"CONFIRMED": 2, "PENDING": 1},
		sumBy(t, got["savings_contributions_total"], telemetry.AttrContributionStatus))
	assert.Equal(t, map[string]int64{"refund": 1},
		sumBy(t, got["savings_reversals_total"], telemetry.AttrReversalReason))
	assert.Equal(t, map[string]int64{"ContributionRecorded": 1},
		sumBy(t, got["savings_events_published_total"], telemetry.AttrEventType))

	hist, ok := got["savings_contribution_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total float64
	var count uint64
	for _, dp := range hist.DataPoints {
		total += dp.Sum
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
	assert.InDelta(t, 135.5, total, 1e-9)
}
