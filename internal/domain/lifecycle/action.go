package lifecycle

// Action represents an operation that can drive a state transition.
type Action string

const (
	ActionApproveScientific     Action = "APPROVE_SCIENTIFIC"
	ActionApproveAdministrative Action = "APPROVE_ADMINISTRATIVE"
	ActionReject                Action = "REJECT"
	ActionSubmitAccountability  Action = "SUBMIT_ACCOUNTABILITY"
	ActionApproveAccountability Action = "APPROVE_ACCOUNTABILITY"
	ActionConfirmPayment        Action = "CONFIRM_PAYMENT"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}
