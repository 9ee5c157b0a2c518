package apiclient

import (
	"context"

	"github.com/inovacc/labctl/internal/log"
	"github.com/looplab/fsm"
)

const (
	stateInitial     = "initial"
	stateRetriedOnce = "retried_once"
	stateFailed      = "failed"
	stateSucceeded   = "succeeded"

	eventRetry   = "retry"
	eventFail    = "fail"
	eventSucceed = "succeed"
)

// requestMachine tracks one logical request across its attempts.
type requestMachine struct {
	fsm *fsm.FSM
	log log.Logger
}

func newRequestMachine(logger log.Logger) *requestMachine {
	events := fsm.Events{
		{Name: eventRetry, Src: []string{stateInitial}, Dst: stateRetriedOnce},
		{Name: eventFail, Src: []string{stateInitial, stateRetriedOnce}, Dst: stateFailed},
		{Name: eventSucceed, Src: []string{stateInitial, stateRetriedOnce}, Dst: stateSucceeded},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			logger.Debug("request state changed", "from", e.Src, "to", e.Dst)
		},
	}

	return &requestMachine{fsm: fsm.NewFSM(stateInitial, events, callbacks), log: logger}
}

// canRetry reports whether a retry is still allowed.
func (m *requestMachine) canRetry() bool {
	return m.fsm.Can(eventRetry)
}

// retried reports whether the request has already been re-issued.
func (m *requestMachine) retried() bool {
	return m.fsm.Is(stateRetriedOnce)
}

func (m *requestMachine) state() string {
	return m.fsm.Current()
}

func (m *requestMachine) fire(ctx context.Context, event string) error {
	// the machine's own context is independent of request cancellation
	return m.fsm.Event(context.WithoutCancel(ctx), event)
}

// settle moves the machine to a terminal state. The request outcome is
// already decided, so a refused transition is only logged.
func (m *requestMachine) settle(ctx context.Context, event string) {
	if err := m.fire(ctx, event); err != nil {
		m.log.Debug("request state transition failed", "event", event, "state", m.state(), "error", err)
	}
}
