package dispatch

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// States of a single Invoke.
const (
	stateAttempting     = "attempting"
	stateRetryBackoff   = "retry_backoff"
	stateRetryImmediate = "retry_immediate"
	stateEscalate       = "escalate"
	stateSuccess        = "success"
	stateAbort          = "abort"
)

// Events that move an Invoke between states.
const (
	eventSucceed     = "succeed"
	eventRateLimited = "rate_limited"
	eventMalformed   = "malformed"
	eventEscalate    = "escalate"
	eventResume      = "resume"
	eventDecline     = "decline"
)

// invokeContext carries data for the machine.
type invokeContext struct {
	Purpose string
}

// invokeMachine wraps the statekit interpreter for one Invoke.
type invokeMachine struct {
	interpreter *statekit.Interpreter[invokeContext]
}

func newInvokeMachine(purpose string) (*invokeMachine, error) {
	builder := statekit.NewMachine[invokeContext]("invoke-machine").
		WithInitial(statekit.StateID(stateAttempting)).
		WithContext(invokeContext{Purpose: purpose})

	builder.State(stateAttempting).
		On(eventSucceed).Target(stateSuccess).
		On(eventRateLimited).Target(stateRetryBackoff).
		On(eventMalformed).Target(stateRetryImmediate).
		On(eventEscalate).Target(stateEscalate).
		Done()

	builder.State(stateRetryBackoff).
		On(eventResume).Target(stateAttempting).
		On(eventEscalate).Target(stateEscalate).
		Done()

	builder.State(stateRetryImmediate).
		On(eventResume).Target(stateAttempting).
		Done()

	builder.State(stateEscalate).
		On(eventResume).Target(stateAttempting).
		On(eventDecline).Target(stateAbort).
		Done()

	builder.State(stateSuccess).Final().Done()
	builder.State(stateAbort).Final().Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build invoke state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &invokeMachine{interpreter: interpreter}, nil
}

// Fire sends event and fails if the current state does not accept it.
func (m *invokeMachine) Fire(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() == before {
		return fmt.Errorf("event %q is not allowed in state %q", event, before)
	}
	return nil
}

func (m *invokeMachine) Current() string {
	return string(m.interpreter.State().Value)
}
