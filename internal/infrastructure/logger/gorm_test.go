package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)

	warn, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, warn.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx, _ := WithGroupID(context.Background(), zap.NewNop(), "group-1")

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", gormlogger.Error, time.Now(), errors.New("deadlock"), "SQL error", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL", zapcore.WarnLevel},
		{"normal", gormlogger.Info, time.Now(), nil, "SQL query", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, logs := newObservedGormLogger(tt.level)
			gl.Trace(ctx, tt.begin, sqlFunc("SELECT * FROM groups", 1), tt.err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, tt.wantLvl, entry.Level)
			assert.Equal(t, "group-1", entry.ContextMap()["group_id"])
			assert.Equal(t, "SELECT * FROM groups", entry.ContextMap()["sql"])
		})
	}
}

func TestGormLogger_TraceSuppressed(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)
	gl.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
	gl.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 1), nil)

	silent, silentLogs := newObservedGormLogger(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 0), errors.New("boom"))

	assert.Zero(t, logs.Len())
	assert.Zero(t, silentLogs.Len())
}

func TestGormLogger_Messages(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Warn)
	gl.Info(context.Background(), "hidden %d", 1)
	gl.Warn(context.Background(), "warned %d", 2)
	gl.Error(context.Background(), "failed %s", "x")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "warned 2", logs.All()[0].Message)
	assert.Equal(t, "failed x", logs.All()[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

var _ gormlogger.Interface = (*GormLogger)(nil)

func TestGormLogger_ParamsFilter(t *testing.T) {
	open, _ := newObservedGormLogger(gormlogger.Info)
	sql, params := open.ParamsFilter(context.Background(), "SELECT * FROM users WHERE email = ?", "a@b.c")
	assert.Equal(t, "SELECT * FROM users WHERE email = ?", sql)
	assert.Equal(t, []any{"a@b.c"}, params)

	redacted, _ := newObservedGormLogger(gormlogger.Info, WithRedactedParams(true))
	_, params = redacted.ParamsFilter(context.Background(), "SELECT * FROM users WHERE email = ?", "a@b.c")
	assert.Nil(t, params)
}
