package entity

import "time"

// Attachment slot constants. Submission-time slots first, then the slots
// that make up the accountability package.
const (
	SlotSummary     = "summary"
	SlotEthicsProof = "ethics_proof"
	SlotEventParams = "event_params"

	SlotAttendanceCertificate   = "attendance_certificate"
	SlotPresentationCertificate = "presentation_certificate"
	SlotEventPhoto              = "event_photo"
	SlotReceipt                 = "receipt"
)

// Attachment represents stored file metadata. Locator is an opaque handle
// resolved by the storage collaborator; the core never interprets it.
type Attachment struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Slot       string    `json:"slot"`
	Name       string    `json:"name"`
	SizeLabel  string    `json:"size_label"`
	Locator    string    `json:"locator"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// IsAccountability returns true if the attachment belongs to the
// proof-of-expense package rather than the submission form.
func (a *Attachment) IsAccountability() bool {
	switch a.Slot {
	case SlotAttendanceCertificate, SlotPresentationCertificate, SlotEventPhoto, SlotReceipt:
		return true
	}
	return false
}
