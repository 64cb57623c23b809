package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingLogger struct {
	debugs int
	infos  int
	warns  int
	errors int
}

func (r *recordingLogger) Debug(string, ...Field) { r.debugs++ }
func (r *recordingLogger) Info(string, ...Field)  { r.infos++ }
func (r *recordingLogger) Warn(string, ...Field)  { r.warns++ }
func (r *recordingLogger) Error(string, ...Field) { r.errors++ }

func TestSetLoggerOverridesGlobal(t *testing.T) {
	recorder := new(recordingLogger)
	SetLogger(recorder)
	t.Cleanup(func() { SetLogger(nil) })

	Log().Debug("test")
	require.Equal(t, 1, recorder.debugs)

	SetLogger(nil)
	Log().Info("noop")
	require.Equal(t, 0, recorder.infos)
}

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := WrapZap(zap.New(core))

	logger.Warn("order rejected", F("order_id", int64(7)), F("error", errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "order rejected", entries[0].Message)
	ctx := entries[0].ContextMap()
	require.EqualValues(t, 7, ctx["order_id"])
	require.Equal(t, "boom", ctx["error"])
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	require.NotEmpty(t, RequestID(ctx))

	ctx = WithRequestID(context.Background(), "req-1")
	require.Equal(t, "req-1", RequestID(ctx))
	require.Empty(t, RequestID(context.Background()))
}

func TestEnsureRequestIDKeepsExisting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-2")
	require.Equal(t, "req-2", RequestID(EnsureRequestID(ctx)))
	require.NotEmpty(t, RequestID(EnsureRequestID(context.Background())))
}
