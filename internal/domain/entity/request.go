package entity

import "time"

// Modality identifies the aid track of a request. Modality II covers work
// with publication intent and requires an ethics committee proof.
type Modality string

const (
	ModalityI  Modality = "Modalidade I"
	ModalityII Modality = "Modalidade II"
)

// IsValid returns true if the modality is one of the two defined tracks.
func (m Modality) IsValid() bool {
	return m == ModalityI || m == ModalityII
}

// String returns the string representation of the modality.
func (m Modality) String() string {
	return string(m)
}

// AidRequest represents a financial-aid request for attending a scientific event.
type AidRequest struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	EmployeeInputName  string     `json:"employee_input_name"`
	JobRole            string     `json:"job_role"`
	EventName          string     `json:"event_name"`
	EventLocation      string     `json:"event_location"`
	EventDate          time.Time  `json:"event_date"`
	RegistrationValue  string     `json:"registration_value"`
	EventParamsText    string     `json:"event_params_text,omitempty"`
	Modality           Modality   `json:"modality"`
	Status             string     `json:"status"`
	SubmissionDate     time.Time  `json:"submission_date"`
	ScientificApproved bool       `json:"scientific_approved"`
	AdminApproved      bool       `json:"admin_approved"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	ApprovalTime       *time.Time `json:"approval_time,omitempty"`

	// Documents holds the submission-time attachments (work summary, ethics
	// proof for Modality II, optional event-parameters file).
	Documents []*Attachment `json:"documents"`

	// AccountabilityDocuments stays empty until the employee submits the
	// post-event proof-of-expense package, then is populated in one update.
	AccountabilityDocuments []*Attachment `json:"accountability_documents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BothApproved reports whether both committees have signed off.
func (r *AidRequest) BothApproved() bool {
	return r.ScientificApproved && r.AdminApproved
}

// Document returns the first submission document in the given slot, or nil.
func (r *AidRequest) Document(slot string) *Attachment {
	for _, d := range r.Documents {
		if d.Slot == slot {
			return d
		}
	}
	return nil
}

// AllAttachments returns submission and accountability attachments together.
func (r *AidRequest) AllAttachments() []*Attachment {
	all := make([]*Attachment, 0, len(r.Documents)+len(r.AccountabilityDocuments))
	all = append(all, r.Documents...)
	all = append(all, r.AccountabilityDocuments...)
	return all
}
