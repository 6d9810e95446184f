package eligibility

import (
	"fmt"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

// InsufficientLeadTimeError reports a proposed event date closer than the
// minimum lead time. Days is the actual whole-day count; Shortfall is how
// many days short of the minimum the proposal is.
type InsufficientLeadTimeError struct {
	Days      int
	Shortfall int
}

func (e *InsufficientLeadTimeError) Error() string {
	return fmt.Sprintf("event is %d days away, %d days short of the %d-day minimum",
		e.Days, e.Shortfall, MinLeadTimeDays)
}

// AnnualLimitError reports that the employee already holds a non-rejected
// request of the same modality in the submission year.
type AnnualLimitError struct {
	Modality entity.Modality
	Year     int
}

func (e *AnnualLimitError) Error() string {
	return fmt.Sprintf("annual limit reached for %s in %d", e.Modality, e.Year)
}

// MissingAttachmentError reports mandatory submission attachments that were
// not supplied. This is a form-level failure: no request is constructed.
type MissingAttachmentError struct {
	Slots []string
}

func (e *MissingAttachmentError) Error() string {
	return fmt.Sprintf("missing required attachments: %v", e.Slots)
}
