package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 15 * time.Second

// Notifier implements the notification outbox. Enqueue writes the row inside
// the caller's transaction; Dispatch hands the committed row to a background
// worker for delivery. A failed delivery marks the row FAILED and nothing
// else: the lifecycle change that produced it stays committed.
type Notifier struct {
	notificationRepo port.NotificationRepository
	sender           port.MailSender
	adminCopy        string
	logger           Logger

	queue chan string
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewNotifier creates a notifier with a bounded dispatch queue. When
// adminCopy is set, every enqueued notice also produces a row addressed to
// that mailbox.
func NewNotifier(notificationRepo port.NotificationRepository, sender port.MailSender, adminCopy string, logger Logger) *Notifier {
	return &Notifier{
		notificationRepo: notificationRepo,
		sender:           sender,
		adminCopy:        adminCopy,
		logger:           logger,
		queue:            make(chan string, 256),
		stop:             make(chan struct{}),
	}
}

// Enqueue renders the intent and writes the PENDING outbox rows, one for the
// employee and one for the administration copy when configured. The rows
// join the transaction carried by ctx, so they only exist if the caller
// commits.
func (n *Notifier) Enqueue(ctx context.Context, intent notice.Intent) ([]string, error) {
	subject, body := intent.Render()

	recipients := []string{intent.Recipient}
	if n.adminCopy != "" && n.adminCopy != intent.Recipient {
		recipients = append(recipients, n.adminCopy)
	}

	ids := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		row := &entity.Notification{
			ID:           uuid.NewString(),
			RequestID:    intent.RequestID,
			Recipient:    recipient,
			TemplateKind: intent.Kind.String(),
			Subject:      subject,
			Body:         body,
			Status:       entity.NotificationStatusPending,
		}
		if err := n.notificationRepo.Create(ctx, row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// Dispatch queues committed rows for delivery. It never blocks: a full queue
// leaves the row PENDING, to be picked up on the next start.
func (n *Notifier) Dispatch(ids ...string) {
	for _, id := range ids {
		select {
		case n.queue <- id:
		default:
			n.logger.Error("Notification queue full, row left pending", "notification_id", id)
		}
	}
}

// Start launches the delivery worker and re-queues rows left PENDING by a
// previous run.
func (n *Notifier) Start(ctx context.Context) error {
	pending, err := n.notificationRepo.ListPending(ctx, cap(n.queue))
	if err != nil {
		return err
	}
	for _, row := range pending {
		n.Dispatch(row.ID)
	}

	n.wg.Add(1)
	go n.run()

	n.logger.Info("Notification dispatcher started", "recovered", len(pending))
	return nil
}

// Stop drains nothing: queued rows stay PENDING in the outbox and are
// recovered on the next start.
func (n *Notifier) Stop() {
	close(n.stop)
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.stop:
			return
		case id := <-n.queue:
			n.deliver(id)
		}
	}
}

func (n *Notifier) deliver(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	row, err := n.notificationRepo.GetByID(ctx, id)
	if err != nil {
		n.logger.Error("Failed to load notification", "notification_id", id, "error", err)
		return
	}
	if row.Status != entity.NotificationStatusPending {
		return
	}

	if err := n.sender.Send(ctx, row.Recipient, row.Subject, row.Body); err != nil {
		n.logger.Error("Notification delivery failed",
			"notification_id", id,
			"recipient", row.Recipient,
			"error", err)
		if markErr := n.notificationRepo.MarkFailed(ctx, id, err.Error()); markErr != nil {
			n.logger.Error("Failed to mark notification failed", "notification_id", id, "error", markErr)
		}
		return
	}

	if err := n.notificationRepo.MarkSent(ctx, id); err != nil {
		n.logger.Error("Failed to mark notification sent", "notification_id", id, "error", err)
		return
	}
	n.logger.Info("Notification delivered",
		"notification_id", id,
		"kind", row.TemplateKind,
		"recipient", row.Recipient)
}
