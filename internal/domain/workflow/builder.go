package workflow

import (
	"context"
	"fmt"
	"time"
)

// StateMachineBuilder collects the permitted transitions of a lifecycle
type StateMachineBuilder interface {
	// Configure returns the transition table of the given state
	Configure(state State) StateConfiguration

	// WithClock sets the time source used to stamp transitions
	WithClock(now func() time.Time) StateMachineBuilder

	// Build creates a machine positioned at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration declares where triggers lead from one state
type StateConfiguration interface {
	// Permit lets trigger move the machine to toState. A trigger has one target.
	Permit(trigger Trigger, toState State) StateConfiguration
}

type transitionTable map[State]map[Trigger]State

type stateMachineBuilder struct {
	table transitionTable
	now   func() time.Time
}

type stateConfig struct {
	from  State
	table transitionTable
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		table: make(transitionTable),
		now:   time.Now,
	}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if state.IsTerminal() {
		panic(fmt.Sprintf("terminal state %s cannot have transitions", state))
	}
	if _, ok := b.table[state]; !ok {
		b.table[state] = make(map[Trigger]State)
	}
	return &stateConfig{from: state, table: b.table}
}

func (b *stateMachineBuilder) WithClock(now func() time.Time) StateMachineBuilder {
	if now != nil {
		b.now = now
	}
	return b
}

// Build snapshots the table, so later Configure calls do not reach built machines
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	table := make(transitionTable, len(b.table))
	for from, targets := range b.table {
		copied := make(map[Trigger]State, len(targets))
		for trigger, to := range targets {
			copied[trigger] = to
		}
		table[from] = copied
	}

	return &stateMachine{
		current: initialState,
		table:   table,
		now:     b.now,
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	if existing, ok := c.table[c.from][trigger]; ok && existing != toState {
		panic(fmt.Sprintf("trigger %s from %s already leads to %s", trigger, c.from, existing))
	}
	c.table[c.from][trigger] = toState
	return c
}

type stateMachine struct {
	current State
	table   transitionTable
	now     func() time.Time
	history []Transition
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	_, ok := m.table[m.current][trigger]
	return ok
}

// Fire moves the machine along trigger or leaves it untouched on error
func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.current.IsTerminal() {
		return fmt.Errorf("%w: %w: %s after %s", ErrInvalidTransition, ErrTerminalState, trigger, m.current)
	}

	to, ok := m.table[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	m.history = append(m.history, Transition{
		From:    m.current,
		To:      to,
		Trigger: trigger,
		At:      m.now(),
	})
	m.current = to
	return nil
}

func (m *stateMachine) History() []Transition {
	return append([]Transition{}, m.history...)
}
