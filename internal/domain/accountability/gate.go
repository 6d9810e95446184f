// Package accountability validates the post-event proof-of-expense package
// before the lifecycle accepts it.
package accountability

import (
	"fmt"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

// Package is a proposed accountability submission. Receipts keeps the order
// in which the employee attached them.
type Package struct {
	AttendanceCertificate   *entity.Attachment
	PresentationCertificate *entity.Attachment
	EventPhoto              *entity.Attachment
	Receipts                []*entity.Attachment
}

// IncompleteError enumerates the slots still missing from a package.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("accountability package incomplete, missing: %v", e.Missing)
}

// Validate checks that every required slot is filled: attendance certificate,
// presentation certificate, event photo, and at least one receipt.
func Validate(pkg Package) error {
	var missing []string
	if pkg.AttendanceCertificate == nil {
		missing = append(missing, entity.SlotAttendanceCertificate)
	}
	if pkg.PresentationCertificate == nil {
		missing = append(missing, entity.SlotPresentationCertificate)
	}
	if pkg.EventPhoto == nil {
		missing = append(missing, entity.SlotEventPhoto)
	}
	if len(pkg.Receipts) == 0 {
		missing = append(missing, entity.SlotReceipt)
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// Finalize validates the package and returns the ordered attachment list to
// store: certificates, photo, then receipts in submission order. Slots are
// stamped on the returned attachments.
func Finalize(pkg Package) ([]*entity.Attachment, error) {
	if err := Validate(pkg); err != nil {
		return nil, err
	}

	pkg.AttendanceCertificate.Slot = entity.SlotAttendanceCertificate
	pkg.PresentationCertificate.Slot = entity.SlotPresentationCertificate
	pkg.EventPhoto.Slot = entity.SlotEventPhoto

	docs := make([]*entity.Attachment, 0, 3+len(pkg.Receipts))
	docs = append(docs, pkg.AttendanceCertificate, pkg.PresentationCertificate, pkg.EventPhoto)
	for _, receipt := range pkg.Receipts {
		receipt.Slot = entity.SlotReceipt
		docs = append(docs, receipt)
	}
	return docs, nil
}
