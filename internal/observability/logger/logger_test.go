package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	ctx := ToContext(context.Background(), l.With(RunID("r-1")))
	From(ctx).Info("seed inserted", Collection("messages"), Count(3), Err(errors.New("x")))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	fields := e.ContextMap()
	assert.Equal(t, "r-1", fields["run_id"])
	assert.Equal(t, "messages", fields["collection"])
	assert.EqualValues(t, 3, fields["count"])
	assert.Equal(t, "x", fields["error"])
}

func TestFrom_FallsBackToSingleton(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	From(context.Background()).Info("hola")
	assert.Equal(t, 1, logs.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}
