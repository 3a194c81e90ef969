package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOperationOf(t *testing.T) {
	tests := map[string]string{
		`SELECT * FROM "goals"`:           "SELECT",
		"  insert into contributions ...": "INSERT",
		"UPDATE groups SET version = 2":   "UPDATE",
		"DELETE FROM goal_milestones":     "DELETE",
		"CREATE TABLE notes (id int)":     "OTHER",
		"":                                "UNKNOWN",
	}
	for sql, want := range tests {
		assert.Equal(t, want, operationOf(sql), sql)
	}
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Len(t, types, len(defaultProfileTypes))

	types, err = parseProfileTypes([]string{" CPU ", "mutex_count"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}, types)

	_, err = parseProfileTypes([]string{"heap"})
	assert.ErrorContains(t, err, `unknown profile type "heap"`)
}

func TestNewProfiler(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "savings"}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLabelPairs(t *testing.T) {
	long := strings.Repeat("r", maxLabelValueLength+10)
	pairs := labelPairs(map[string]string{
		ProfilingLabelRoute:  long,
		ProfilingLabelMethod: "POST",
		"user_id":            "u-1",
		"group_id":           "g-1",
		"empty":              "",
	})
	assert.Equal(t, []string{"method", "POST", "route", long[:maxLabelValueLength]}, pairs)
}

func TestWithProfilingLabels(t *testing.T) {
	var called bool
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelHandler: "contributions",
		"request_id":          "r-1",
	}, func(ctx context.Context) {
		called = true
		v, ok := pprof.Label(ctx, ProfilingLabelHandler)
		assert.True(t, ok)
		assert.Equal(t, "contributions", v)
		_, ok = pprof.Label(ctx, "request_id")
		assert.False(t, ok)
	})
	assert.True(t, called)

	called = false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}

func TestLevelFilterCore(t *testing.T) {
	core := &levelFilterCore{Core: zapcore.NewNopCore(), minLevel: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))

	with := core.With([]zapcore.Field{zap.String("k", "v")})
	filtered, ok := with.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, filtered.minLevel)
}

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{ServiceName: "savings"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Equal(t, zapcore.NewNopCore(), lp.Core(zapcore.InfoLevel))

	base := zap.NewExample()
	assert.Same(t, base, Bridge(base, lp, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}
