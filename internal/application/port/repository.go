package port

import (
	"context"

	"github.com/citimr/aid-portal/internal/domain/entity"
)

// RequestRepository defines persistence operations for AidRequest. The
// aggregate is loaded and stored with its attachments.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.AidRequest) error
	GetByID(ctx context.Context, id string) (*entity.AidRequest, error)
	List(ctx context.Context) ([]*entity.AidRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*entity.AidRequest, error)

	// Update persists status, approval flags, rejection reason and approval
	// time. Descriptive fields are immutable after creation.
	Update(ctx context.Context, req *entity.AidRequest) error

	// AddAccountabilityDocuments appends the proof-of-expense attachments.
	// Callers run it in the same transaction as the status change so the
	// package lands atomically.
	AddAccountabilityDocuments(ctx context.Context, requestID string, docs []*entity.Attachment) error

	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence operations for User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SetResetRequested(ctx context.Context, id string, requested bool) error
}

// NotificationRepository defines persistence operations for the notification
// outbox.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListPending(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errorMsg string) error
}

// TransactionManager runs fn atomically. Repository calls made with the
// context passed to fn join the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
