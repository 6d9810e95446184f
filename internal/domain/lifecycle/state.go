package lifecycle

// State represents a request status in the aid lifecycle.
type State string

const (
	StatePendingApproval       State = "PENDING_APPROVAL"
	StateApproved              State = "APPROVED"
	StateRejected              State = "REJECTED"
	StatePendingAccountability State = "PENDING_ACCOUNTABILITY"
	StateAccountabilityReview  State = "ACCOUNTABILITY_REVIEW"
	StateWaitingReimbursement  State = "WAITING_REIMBURSEMENT"
	StateCompleted             State = "COMPLETED"
)

var validStates = map[State]bool{
	StatePendingApproval:       true,
	StateApproved:              true,
	StateRejected:              true,
	StatePendingAccountability: true,
	StateAccountabilityReview:  true,
	StateWaitingReimbursement:  true,
	StateCompleted:             true,
}

var terminalStates = map[State]bool{
	StateRejected:  true,
	StateCompleted: true,
}

// displayLabels maps machine states to the labels shown to users. Kept
// separate from the state values so the transition table stays type-checked.
var displayLabels = map[State]string{
	StatePendingApproval:       "Pendente Aprovação",
	StateApproved:              "Aprovado",
	StateRejected:              "Recusado",
	StatePendingAccountability: "Aguardando Prestação de Contas",
	StateAccountabilityReview:  "Análise de Contas",
	StateWaitingReimbursement:  "Aguardando Reembolso",
	StateCompleted:             "Finalizado",
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state belongs to the closed state set.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Label returns the user-facing label for the state.
func (s State) Label() string {
	return displayLabels[s]
}
