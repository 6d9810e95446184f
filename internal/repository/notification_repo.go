package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/pkg/database"
)

// NotificationRepository handles the notification outbox table.
type NotificationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *database.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create inserts an outbox row in PENDING status.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	ex := execFrom(ctx, r.db)

	if n.Status == "" {
		n.Status = entity.NotificationStatusPending
	}
	n.CreatedAt = time.Now()

	_, err := ex.ExecContext(ctx, `
		INSERT INTO notifications (id, request_id, recipient, template_kind, subject, body, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RequestID, n.Recipient, n.TemplateKind, n.Subject, n.Body, n.Status, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("request_id", n.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by id.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	ex := execFrom(ctx, r.db)

	row := ex.QueryRowContext(ctx, `
		SELECT id, request_id, recipient, template_kind, subject, body, status, error_message, sent_at, created_at
		FROM notifications WHERE id = ?`, id)

	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListPending returns up to limit undelivered notifications, oldest first.
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]*entity.Notification, error) {
	ex := execFrom(ctx, r.db)

	rows, err := ex.QueryContext(ctx, `
		SELECT id, request_id, recipient, template_kind, subject, body, status, error_message, sent_at, created_at
		FROM notifications WHERE status = ? ORDER BY created_at LIMIT ?`,
		entity.NotificationStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	var pending []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		pending = append(pending, n)
	}
	return pending, rows.Err()
}

// MarkSent records successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	ex := execFrom(ctx, r.db)
	_, err := ex.ExecContext(ctx,
		`UPDATE notifications SET status = ?, sent_at = ?, error_message = '' WHERE id = ?`,
		entity.NotificationStatusSent, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure. The lifecycle change that produced
// the row is already committed and stays committed.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, errorMsg string) error {
	ex := execFrom(ctx, r.db)
	_, err := ex.ExecContext(ctx,
		`UPDATE notifications SET status = ?, error_message = ? WHERE id = ?`,
		entity.NotificationStatusFailed, errorMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var sentAt sql.NullTime

	err := row.Scan(&n.ID, &n.RequestID, &n.Recipient, &n.TemplateKind,
		&n.Subject, &n.Body, &n.Status, &n.ErrorMessage, &sentAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	return &n, nil
}
