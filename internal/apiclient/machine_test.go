package apiclient

import (
	"context"
	"testing"

	"github.com/inovacc/labctl/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestMachineAllowsOneRetry(t *testing.T) {
	ctx := context.Background()
	m := newRequestMachine(log.NewNop())

	assert.Equal(t, stateInitial, m.state())
	assert.True(t, m.canRetry())
	assert.False(t, m.retried())

	require.NoError(t, m.fire(ctx, eventRetry))
	assert.True(t, m.retried())
	assert.False(t, m.canRetry())

	require.Error(t, m.fire(ctx, eventRetry))

	require.NoError(t, m.fire(ctx, eventFail))
	assert.Equal(t, stateFailed, m.state())
	assert.False(t, m.canRetry())
}

func TestRequestMachineTerminalStates(t *testing.T) {
	ctx := context.Background()

	m := newRequestMachine(log.NewNop())
	require.NoError(t, m.fire(ctx, eventSucceed))
	assert.Equal(t, stateSucceeded, m.state())
	require.Error(t, m.fire(ctx, eventFail))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	m = newRequestMachine(log.NewNop())
	require.NoError(t, m.fire(cancelled, eventFail))
	assert.Equal(t, stateFailed, m.state())
}

func TestSettleLogsRefusedTransition(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := newRequestMachine(log.FromZap(zap.New(core)))

	m.settle(context.Background(), eventSucceed)
	assert.Zero(t, logs.FilterMessage("request state transition failed").Len())

	m.settle(context.Background(), eventFail)
	assert.Equal(t, stateSucceeded, m.state())

	failed := logs.FilterMessage("request state transition failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.DebugLevel, failed[0].Level)
	assert.Equal(t, eventFail, failed[0].ContextMap()["event"])
}
