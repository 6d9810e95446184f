package lifecycle

import (
	"fmt"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

// GuardFunc evaluates whether a candidate transition is allowed for the
// given request. Guards read the request's latest persisted snapshot; the
// caller is responsible for evaluating them inside a write transaction.
type GuardFunc func(req *entity.AidRequest) bool

// Machine is an immutable transition table for the aid-request lifecycle.
// It is stateless: the current state lives on the request, and Fire computes
// the resulting state without mutating anything.
type Machine struct {
	transitions map[State]map[Action][]transition
}

type transition struct {
	toState State
	guard   GuardFunc
}

// Builder configures a Machine.
type Builder struct {
	transitions map[State]map[Action][]transition
}

// NewBuilder creates an empty lifecycle machine builder.
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Action][]transition)}
}

// Permit allows an action to transition from one state to another.
func (b *Builder) Permit(from State, action Action, to State) *Builder {
	return b.PermitIf(from, action, to, nil)
}

// PermitIf allows an action to transition if the guard condition passes.
// Candidates registered for the same (state, action) pair are tried in order.
func (b *Builder) PermitIf(from State, action Action, to State, guard GuardFunc) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	actions, ok := b.transitions[from]
	if !ok {
		actions = make(map[Action][]transition)
		b.transitions[from] = actions
	}
	actions[action] = append(actions[action], transition{toState: to, guard: guard})
	return b
}

// Build freezes the configuration into a Machine.
func (b *Builder) Build() *Machine {
	frozen := make(map[State]map[Action][]transition, len(b.transitions))
	for state, actions := range b.transitions {
		actionsCopy := make(map[Action][]transition, len(actions))
		for action, ts := range actions {
			actionsCopy[action] = append([]transition{}, ts...)
		}
		frozen[state] = actionsCopy
	}
	return &Machine{transitions: frozen}
}

// CanFire returns true if at least one transition is registered for the
// action in the request's current state. Guards are not evaluated here.
func (m *Machine) CanFire(req *entity.AidRequest, action Action) bool {
	actions, ok := m.transitions[State(req.Status)]
	if !ok {
		return false
	}
	return len(actions[action]) > 0
}

// Fire resolves the action against the request's current state and returns
// the resulting state. The first candidate whose guard passes wins. The
// request itself is not mutated.
func (m *Machine) Fire(req *entity.AidRequest, action Action) (State, error) {
	current := State(req.Status)
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidState, req.Status)
	}

	actions, ok := m.transitions[current]
	if !ok {
		return "", fmt.Errorf("%w: action %s from state %s", ErrInvalidTransition, action, current)
	}
	candidates := actions[action]
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: action %s from state %s", ErrInvalidTransition, action, current)
	}

	for _, t := range candidates {
		if t.guard == nil || t.guard(req) {
			return t.toState, nil
		}
	}
	return "", fmt.Errorf("%w: action %s from state %s", ErrGuardFailed, action, current)
}

// PermittedActions returns the actions registered in the request's current
// state, regardless of guards.
func (m *Machine) PermittedActions(req *entity.AidRequest) []Action {
	actions, ok := m.transitions[State(req.Status)]
	if !ok {
		return []Action{}
	}
	out := make([]Action, 0, len(actions))
	for action := range actions {
		out = append(out, action)
	}
	return out
}

// NewMachine builds the aid-request lifecycle table. Committee approvals
// stay in PendingApproval until both flags are set on the request; the
// caller sets the flag before firing so the guard reads the final values.
func NewMachine() *Machine {
	bothApproved := func(req *entity.AidRequest) bool { return req.BothApproved() }
	hasPackage := func(req *entity.AidRequest) bool { return len(req.AccountabilityDocuments) > 0 }

	return NewBuilder().
		PermitIf(StatePendingApproval, ActionApproveScientific, StateApproved, bothApproved).
		Permit(StatePendingApproval, ActionApproveScientific, StatePendingApproval).
		PermitIf(StatePendingApproval, ActionApproveAdministrative, StateApproved, bothApproved).
		Permit(StatePendingApproval, ActionApproveAdministrative, StatePendingApproval).
		Permit(StatePendingApproval, ActionReject, StateRejected).
		PermitIf(StateApproved, ActionSubmitAccountability, StateAccountabilityReview, hasPackage).
		PermitIf(StatePendingAccountability, ActionSubmitAccountability, StateAccountabilityReview, hasPackage).
		Permit(StateAccountabilityReview, ActionApproveAccountability, StateWaitingReimbursement).
		Permit(StateWaitingReimbursement, ActionConfirmPayment, StateCompleted).
		Build()
}
