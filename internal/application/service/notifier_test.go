package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

func TestNotifier_Deliver(t *testing.T) {
	repo := newMemNotificationRepo()
	sender := &mockSender{}
	notifier := NewNotifier(repo, sender, "", &mockLogger{})

	ids, err := notifier.Enqueue(context.Background(), notice.Intent{
		RequestID:    "req-1",
		Recipient:    "ana@citi.org",
		Kind:         notice.KindApproved,
		EmployeeName: "Ana Souza",
		EventName:    "Congresso",
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Enqueue() rows = %d, want 1", len(ids))
	}
	id := ids[0]

	notifier.deliver(id)

	row, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if row.Status != entity.NotificationStatusSent {
		t.Errorf("status = %v, want SENT", row.Status)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sends = %d, want 1", len(sender.sent))
	}

	// A delivered row is not sent again.
	notifier.deliver(id)
	if len(sender.sent) != 1 {
		t.Errorf("redelivered an already sent row")
	}
}

func TestNotifier_AdminCopy(t *testing.T) {
	repo := newMemNotificationRepo()
	sender := &mockSender{}
	notifier := NewNotifier(repo, sender, "secretaria@citi.org", &mockLogger{})

	ids, err := notifier.Enqueue(context.Background(), notice.Intent{
		RequestID:    "req-1",
		Recipient:    "ana@citi.org",
		Kind:         notice.KindSubmissionReceived,
		EmployeeName: "Ana Souza",
		EventName:    "Congresso",
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Enqueue() rows = %d, want 2", len(ids))
	}

	copyRow, err := repo.GetByID(context.Background(), ids[1])
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if copyRow.Recipient != "secretaria@citi.org" {
		t.Errorf("copy recipient = %q", copyRow.Recipient)
	}

	// The copy is suppressed when the employee is the copy address.
	ids, err = notifier.Enqueue(context.Background(), notice.Intent{
		RequestID: "req-2",
		Recipient: "secretaria@citi.org",
		Kind:      notice.KindApproved,
		EventName: "Congresso",
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("Enqueue() rows = %d, want 1", len(ids))
	}
}

func TestNotifier_DeliverFailure(t *testing.T) {
	repo := newMemNotificationRepo()
	sender := &mockSender{err: errors.New("relay down")}
	notifier := NewNotifier(repo, sender, "", &mockLogger{})

	ids, err := notifier.Enqueue(context.Background(), notice.Intent{
		RequestID: "req-1",
		Recipient: "ana@citi.org",
		Kind:      notice.KindRejected,
		EventName: "Congresso",
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	id := ids[0]

	notifier.deliver(id)

	row, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if row.Status != entity.NotificationStatusFailed {
		t.Errorf("status = %v, want FAILED", row.Status)
	}
	if row.ErrorMessage != "relay down" {
		t.Errorf("error message = %q", row.ErrorMessage)
	}
}

func TestNotifier_StartRecoversPending(t *testing.T) {
	repo := newMemNotificationRepo()
	sender := &mockSender{}
	notifier := NewNotifier(repo, sender, "", &mockLogger{})

	if _, err := notifier.Enqueue(context.Background(), notice.Intent{
		RequestID: "req-1",
		Recipient: "ana@citi.org",
		Kind:      notice.KindSubmissionReceived,
		EventName: "Congresso",
	}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := notifier.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer notifier.Stop()

	deadline := time.After(2 * time.Second)
	for sender.sentCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("recovered row was never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
