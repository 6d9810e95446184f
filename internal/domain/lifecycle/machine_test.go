package lifecycle

import (
	"errors"
	"testing"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingApproval, false},
		{StateApproved, false},
		{StatePendingAccountability, false},
		{StateAccountabilityReview, false},
		{StateWaitingReimbursement, false},
		{StateRejected, true},
		{StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StatePendingApproval, true},
		{"valid state", StateCompleted, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Label(t *testing.T) {
	if got := StateCompleted.Label(); got != "Finalizado" {
		t.Errorf("State.Label() = %v, want %v", got, "Finalizado")
	}
}

func pendingRequest() *entity.AidRequest {
	return &entity.AidRequest{ID: "req-1", Status: string(StatePendingApproval)}
}

func TestMachine_SingleApprovalStaysPending(t *testing.T) {
	m := NewMachine()

	req := pendingRequest()
	req.ScientificApproved = true

	to, err := m.Fire(req, ActionApproveScientific)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StatePendingApproval {
		t.Errorf("Fire() = %v, want %v", to, StatePendingApproval)
	}
}

func TestMachine_BothApprovalsTransition(t *testing.T) {
	m := NewMachine()

	// Order of the two committee sign-offs must not matter.
	orders := []struct {
		name    string
		actions []Action
	}{
		{"scientific first", []Action{ActionApproveScientific, ActionApproveAdministrative}},
		{"administrative first", []Action{ActionApproveAdministrative, ActionApproveScientific}},
	}

	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			req := pendingRequest()

			for i, action := range order.actions {
				switch action {
				case ActionApproveScientific:
					req.ScientificApproved = true
				case ActionApproveAdministrative:
					req.AdminApproved = true
				}

				to, err := m.Fire(req, action)
				if err != nil {
					t.Fatalf("Fire(%s) error = %v", action, err)
				}

				if i == 0 && to != StatePendingApproval {
					t.Errorf("first approval moved state to %v, want %v", to, StatePendingApproval)
				}
				if i == 1 && to != StateApproved {
					t.Errorf("second approval moved state to %v, want %v", to, StateApproved)
				}
				req.Status = string(to)
			}
		})
	}
}

func TestMachine_RejectFromPending(t *testing.T) {
	m := NewMachine()

	to, err := m.Fire(pendingRequest(), ActionReject)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StateRejected {
		t.Errorf("Fire() = %v, want %v", to, StateRejected)
	}
}

func TestMachine_AccountabilityGuard(t *testing.T) {
	m := NewMachine()

	req := &entity.AidRequest{ID: "req-1", Status: string(StateApproved)}

	// Empty package blocked by guard.
	if _, err := m.Fire(req, ActionSubmitAccountability); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}

	req.AccountabilityDocuments = []*entity.Attachment{{Slot: entity.SlotEventPhoto}}
	to, err := m.Fire(req, ActionSubmitAccountability)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StateAccountabilityReview {
		t.Errorf("Fire() = %v, want %v", to, StateAccountabilityReview)
	}
}

func TestMachine_SubmitFromPendingAccountability(t *testing.T) {
	m := NewMachine()

	req := &entity.AidRequest{
		ID:                      "req-1",
		Status:                  string(StatePendingAccountability),
		AccountabilityDocuments: []*entity.Attachment{{Slot: entity.SlotReceipt}},
	}

	to, err := m.Fire(req, ActionSubmitAccountability)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StateAccountabilityReview {
		t.Errorf("Fire() = %v, want %v", to, StateAccountabilityReview)
	}
}

func TestMachine_ReimbursementPath(t *testing.T) {
	m := NewMachine()

	req := &entity.AidRequest{ID: "req-1", Status: string(StateAccountabilityReview)}

	to, err := m.Fire(req, ActionApproveAccountability)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StateWaitingReimbursement {
		t.Errorf("Fire() = %v, want %v", to, StateWaitingReimbursement)
	}

	req.Status = string(to)
	to, err = m.Fire(req, ActionConfirmPayment)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if to != StateCompleted {
		t.Errorf("Fire() = %v, want %v", to, StateCompleted)
	}
}

func TestMachine_TerminalStatesRejectEverything(t *testing.T) {
	m := NewMachine()

	actions := []Action{
		ActionApproveScientific,
		ActionApproveAdministrative,
		ActionReject,
		ActionSubmitAccountability,
		ActionApproveAccountability,
		ActionConfirmPayment,
	}

	for _, state := range []State{StateRejected, StateCompleted} {
		for _, action := range actions {
			req := &entity.AidRequest{ID: "req-1", Status: string(state)}
			if _, err := m.Fire(req, action); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s, %s) error = %v, want ErrInvalidTransition", state, action, err)
			}
		}
	}
}

func TestMachine_InvalidStoredState(t *testing.T) {
	m := NewMachine()

	req := &entity.AidRequest{ID: "req-1", Status: "GARBAGE"}
	if _, err := m.Fire(req, ActionReject); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Fire() error = %v, want ErrInvalidState", err)
	}
}

func TestMachine_CanFire(t *testing.T) {
	m := NewMachine()

	req := pendingRequest()
	if !m.CanFire(req, ActionReject) {
		t.Error("CanFire() should return true for permitted action")
	}
	if m.CanFire(req, ActionConfirmPayment) {
		t.Error("CanFire() should return false for unregistered action")
	}
}

func TestBuilder_PanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("PermitIf() should panic on invalid state")
		}
	}()

	NewBuilder().Permit(State("INVALID"), ActionReject, StateRejected)
}
