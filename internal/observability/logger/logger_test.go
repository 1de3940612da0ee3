package logger

import (
	"context"
	"testing"

	"github.com/smallbiznis/solarflow/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := Build(Config{Level: "loud"})
	require.Error(t, err)
}

func TestBuildHonoursLevel(t *testing.T) {
	log, err := Build(Config{Level: "warn", Format: "console"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestWithContextAddsCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")

	WithActor(WithContext(ctx, zap.New(core)), " Asha ", "u-1").Info("customer created")

	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "cid-1", fields["correlation_id"])
	assert.Equal(t, "Asha", fields["actor"])
	assert.Equal(t, "u-1", fields["actor_id"])
}

func TestWithContextWithoutCorrelation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	WithContext(context.Background(), zap.New(core)).Info("sweep")

	_, ok := logs.All()[0].ContextMap()["correlation_id"]
	assert.False(t, ok)
}
