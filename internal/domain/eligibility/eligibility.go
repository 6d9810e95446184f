// Package eligibility holds the pure submission-time rules that decide
// whether a new aid request may be accepted. Nothing here has side effects;
// every check can be re-evaluated as the form changes.
package eligibility

import (
	"errors"
	"time"

	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
)

// MinLeadTimeDays is the minimum number of whole days between submission and
// the event date.
const MinLeadTimeDays = 15

// ErrEventParamsRequired is returned when neither the descriptive text nor an
// event-parameters file was supplied.
var ErrEventParamsRequired = errors.New("event submission parameters are required: supply text or a file")

// Submission carries the form fields the evaluator needs.
type Submission struct {
	Modality        entity.Modality
	EventDate       time.Time
	EventParamsText string
	Summary         *entity.Attachment
	EthicsProof     *entity.Attachment
	EventParamsFile *entity.Attachment
}

// LeadTimeDays returns the number of whole days between today and the event
// date. Both timestamps are truncated to their calendar day first.
func LeadTimeDays(today, eventDate time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// CheckLeadTime enforces the minimum lead time. It is a pure predicate so the
// form can re-run it whenever the proposed event date changes.
func CheckLeadTime(today, eventDate time.Time) error {
	days := LeadTimeDays(today, eventDate)
	if days < MinLeadTimeDays {
		return &InsufficientLeadTimeError{Days: days, Shortfall: MinLeadTimeDays - days}
	}
	return nil
}

// CheckAnnualCap enforces one request per modality per calendar year.
// Rejected requests never count against the cap: an employee may resubmit
// freely after rejection.
func CheckAnnualCap(history []*entity.AidRequest, modality entity.Modality, today time.Time) error {
	year := today.Year()
	for _, prior := range history {
		if prior.Modality != modality {
			continue
		}
		if prior.SubmissionDate.Year() != year {
			continue
		}
		if lifecycle.State(prior.Status) == lifecycle.StateRejected {
			continue
		}
		return &AnnualLimitError{Modality: modality, Year: year}
	}
	return nil
}

// CheckAttachments enforces the mandatory submission attachments: the work
// summary always, the ethics committee proof only for Modality II.
func CheckAttachments(sub Submission) error {
	var missing []string
	if sub.Summary == nil {
		missing = append(missing, entity.SlotSummary)
	}
	if sub.Modality == entity.ModalityII && sub.EthicsProof == nil {
		missing = append(missing, entity.SlotEthicsProof)
	}
	if len(missing) > 0 {
		return &MissingAttachmentError{Slots: missing}
	}
	return nil
}

// CheckEventParams requires that the chosen parameters mode is non-empty:
// either descriptive text or an uploaded file.
func CheckEventParams(sub Submission) error {
	if sub.EventParamsText == "" && sub.EventParamsFile == nil {
		return ErrEventParamsRequired
	}
	return nil
}

// Evaluate runs every submission rule in order and returns the first
// violation. A nil result means the request may be created.
func Evaluate(history []*entity.AidRequest, sub Submission, today time.Time) error {
	if err := CheckAttachments(sub); err != nil {
		return err
	}
	if err := CheckEventParams(sub); err != nil {
		return err
	}
	if err := CheckLeadTime(today, sub.EventDate); err != nil {
		return err
	}
	return CheckAnnualCap(history, sub.Modality, today)
}
