package service

import (
	"context"
	"errors"
	"testing"

	"github.com/citimr/aid-portal/internal/domain/accountability"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

func TestAccountabilityService_Submit(t *testing.T) {
	f := newReviewFixture()
	f.seedRequest(t, lifecycle.StateApproved)

	req, err := f.accountability.Submit(context.Background(), "req-1", completePackage())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.Status != lifecycle.StateAccountabilityReview.String() {
		t.Errorf("Submit() status = %v, want ACCOUNTABILITY_REVIEW", req.Status)
	}

	wantSlots := []string{
		entity.SlotAttendanceCertificate,
		entity.SlotPresentationCertificate,
		entity.SlotEventPhoto,
		entity.SlotReceipt,
		entity.SlotReceipt,
	}
	if len(req.AccountabilityDocuments) != len(wantSlots) {
		t.Fatalf("Submit() documents = %d, want %d", len(req.AccountabilityDocuments), len(wantSlots))
	}
	for i, doc := range req.AccountabilityDocuments {
		if doc.Slot != wantSlots[i] {
			t.Errorf("document %d slot = %v, want %v", i, doc.Slot, wantSlots[i])
		}
		if doc.RequestID != "req-1" || doc.ID == "" {
			t.Errorf("document %d not stamped: %+v", i, doc)
		}
	}

	kinds := f.notifRepo.kinds()
	if len(kinds) != 1 || kinds[0] != notice.KindAccountabilityReceived.String() {
		t.Errorf("notifications = %v, want one accountability_received", kinds)
	}
}

func TestAccountabilityService_Submit_Incomplete(t *testing.T) {
	f := newReviewFixture()
	f.seedRequest(t, lifecycle.StateApproved)

	pkg := completePackage()
	pkg.EventPhoto = nil

	_, err := f.accountability.Submit(context.Background(), "req-1", pkg)
	var incomplete *accountability.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Submit() error = %v, want IncompleteError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != entity.SlotEventPhoto {
		t.Errorf("missing slots = %v, want [event_photo]", incomplete.Missing)
	}

	// Nothing changed: same state, no documents, no mail.
	stored, err := f.requestRepo.GetByID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != lifecycle.StateApproved.String() {
		t.Errorf("status after failed submit = %v, want APPROVED", stored.Status)
	}
	if len(stored.AccountabilityDocuments) != 0 {
		t.Errorf("documents stored on failed submit: %d", len(stored.AccountabilityDocuments))
	}
	if len(f.notifRepo.kinds()) != 0 {
		t.Errorf("notifications enqueued on failed submit: %v", f.notifRepo.kinds())
	}
}

func TestAccountabilityService_Submit_WrongState(t *testing.T) {
	f := newReviewFixture()
	f.seedRequest(t, lifecycle.StatePendingApproval)

	_, err := f.accountability.Submit(context.Background(), "req-1", completePackage())
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("Submit() error = %v, want ErrInvalidTransition", err)
	}
}

func TestAccountabilityService_Submit_FromPendingAccountability(t *testing.T) {
	f := newReviewFixture()
	f.seedRequest(t, lifecycle.StatePendingAccountability)

	req, err := f.accountability.Submit(context.Background(), "req-1", completePackage())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.Status != lifecycle.StateAccountabilityReview.String() {
		t.Errorf("Submit() status = %v, want ACCOUNTABILITY_REVIEW", req.Status)
	}
}
