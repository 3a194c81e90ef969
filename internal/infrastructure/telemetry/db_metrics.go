package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetrics is a gorm plugin counting statements and timing them. It also
// reports connection pool usage through observable gauges.
type DBMetrics struct {
	queries       metric.Int64Counter
	duration      metric.Float64Histogram
	slowQueries   metric.Int64Counter
	slowThreshold time.Duration
	registration  metric.Registration
	logger        *zap.Logger
}

// NewDBMetrics registers the db_* instruments. sqlDB may be nil, in which
// case no pool gauges are reported.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	in := &instruments{meter: meter}
	m := &DBMetrics{
		queries:       in.counter("db_query_total", "Database statements by operation", "{query}"),
		duration:      in.histogram("db_query_duration_seconds", "Database statement latency", "s", dbDurationBuckets),
		slowQueries:   in.counter("db_slow_query_total", "Statements slower than the threshold", "{query}"),
		slowThreshold: slowThreshold,
		logger:        logger,
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Pool size limit"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, conns, maxConns)
	return err
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string { return "db_metrics" }

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	key := startKey{plugin: "db_metrics"}
	record := func(db *gorm.DB) {
		if elapsed, ok := elapsedSince(db, key); ok {
			m.RecordQuery(db.Statement.Context, operationOf(db.Statement.SQL.String()), db.Statement.Table, elapsed)
		}
	}
	return registerAround(db, "db_metrics", markStart(key), record)
}

// RecordQuery records one statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	op := AttrDBOperation.String(operation)
	m.queries.Add(ctx, 1, metric.WithAttributes(op))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(op))
	if elapsed > m.slowThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueries.Add(ctx, 1, metric.WithAttributes(op, AttrDBTable.String(table)))
	}
}

// Stop unregisters the pool gauges
func (m *DBMetrics) Stop() {
	if m.registration == nil {
		return
	}
	if err := m.registration.Unregister(); err != nil {
		m.logger.Warn("Failed to unregister pool gauges", zap.Error(err))
	}
	m.registration = nil
}

// operationOf reads the statement verb
func operationOf(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch verb = strings.ToUpper(verb); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	case "":
		return "UNKNOWN"
	default:
		return "OTHER"
	}
}
