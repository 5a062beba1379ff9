package workflow

import "context"

// State represents a lifecycle status of a domain entity. State values mirror
// the persisted status strings.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Trigger represents an action that can cause a state transition.
type Trigger string

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

// StateMachine tracks a current state and validates transitions against a
// configured lifecycle.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger is permitted in the current state.
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state.
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

// State returns the current state.
func (m *stateMachine) State() State {
	return m.currentState
}

// CanFire returns true if the trigger is permitted in the current state.
// Guard conditions are not evaluated here; a guarded transition counts as
// permitted until Fire evaluates it.
func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}
	transitions, exists := config.transitions[trigger]
	return exists && len(transitions) > 0
}

// Fire attempts to execute the trigger, transitioning to the new state if allowed.
func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return &TransitionError{From: m.currentState, Trigger: trigger, Err: ErrInvalidTransition}
	}

	transitions, exists := config.transitions[trigger]
	if !exists || len(transitions) == 0 {
		return &TransitionError{From: m.currentState, Trigger: trigger, Err: ErrInvalidTransition}
	}

	// Try each transition in order until one's guard passes.
	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.currentState = t.toState
			return nil
		}
	}

	return &TransitionError{From: m.currentState, Trigger: trigger, Err: ErrGuardFailed}
}

// PermittedTriggers returns all triggers that can be fired in the current state.
func (m *stateMachine) PermittedTriggers() []Trigger {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	return triggers
}
