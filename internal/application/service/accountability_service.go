package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/domain/accountability"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

// AccountabilityService accepts the post-event proof-of-expense package.
type AccountabilityService interface {
	Submit(ctx context.Context, requestID string, pkg accountability.Package) (*entity.AidRequest, error)
}

type accountabilityServiceImpl struct {
	requestRepo port.RequestRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	machine     *lifecycle.Machine
	notifier    *Notifier
	logger      Logger
}

// NewAccountabilityService creates a new AccountabilityService
func NewAccountabilityService(
	requestRepo port.RequestRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	machine *lifecycle.Machine,
	notifier *Notifier,
	logger Logger,
) AccountabilityService {
	return &accountabilityServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		machine:     machine,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit validates the package and, in one transaction, appends the
// documents and moves the request into ACCOUNTABILITY_REVIEW. An incomplete
// package fails before anything is written.
func (s *accountabilityServiceImpl) Submit(ctx context.Context, requestID string, pkg accountability.Package) (*entity.AidRequest, error) {
	docs, err := accountability.Finalize(pkg)
	if err != nil {
		return nil, err
	}

	var (
		req      *entity.AidRequest
		notifIDs []string
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, doc := range docs {
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}
			doc.RequestID = req.ID
			if doc.UploadedAt.IsZero() {
				doc.UploadedAt = now
			}
		}
		req.AccountabilityDocuments = docs

		next, err := s.machine.Fire(req, lifecycle.ActionSubmitAccountability)
		if err != nil {
			return err
		}
		req.Status = next.String()

		if err := s.requestRepo.AddAccountabilityDocuments(txCtx, req.ID, docs); err != nil {
			return fmt.Errorf("add accountability documents: %w", err)
		}

		employee, err := s.userRepo.GetByID(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("get employee: %w", err)
		}
		notifIDs, err = s.notifier.Enqueue(txCtx, notice.Intent{
			RequestID:    req.ID,
			Recipient:    employee.Email,
			Kind:         notice.KindAccountabilityReceived,
			EmployeeName: employee.Name,
			EventName:    req.EventName,
		})
		if err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}

		return s.requestRepo.Update(txCtx, req)
	})
	if err != nil {
		s.logger.Error("Failed to submit accountability package",
			"error", err,
			"request_id", requestID)
		return nil, err
	}

	s.notifier.Dispatch(notifIDs...)
	s.logger.Info("Accountability package submitted",
		"request_id", requestID,
		"documents", len(docs))
	return req, nil
}
