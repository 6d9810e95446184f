package service

import (
	"context"
	"fmt"
	"time"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

// Committee identifies which review board is acting.
type Committee string

const (
	CommitteeScientific     Committee = "scientific"
	CommitteeAdministrative Committee = "administrative"
)

// ReviewService drives the administrative side of the lifecycle: committee
// approvals, rejection, accountability review and payment confirmation.
type ReviewService interface {
	ApproveCommittee(ctx context.Context, requestID string, committee Committee) (*entity.AidRequest, error)
	Reject(ctx context.Context, requestID, reason string) (*entity.AidRequest, error)
	ApproveAccountability(ctx context.Context, requestID string) (*entity.AidRequest, error)
	ConfirmPayment(ctx context.Context, requestID string) (*entity.AidRequest, error)
}

type reviewServiceImpl struct {
	requestRepo port.RequestRepository
	userRepo    port.UserRepository
	txManager   port.TransactionManager
	machine     *lifecycle.Machine
	notifier    *Notifier
	logger      Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	requestRepo port.RequestRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	machine *lifecycle.Machine,
	notifier *Notifier,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		machine:     machine,
		notifier:    notifier,
		logger:      logger,
	}
}

// ApproveCommittee records one committee's sign-off. The request leaves
// PENDING_APPROVAL only when both committees have approved, and the approval
// mail is enqueued exactly once, by whichever call completes the pair. A
// repeated approval from the same committee is a no-op.
func (s *reviewServiceImpl) ApproveCommittee(ctx context.Context, requestID string, committee Committee) (*entity.AidRequest, error) {
	action, err := committeeAction(committee)
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

		// Idempotency: a committee that already approved changes nothing,
		// whatever state the request has since reached.
		if committeeApproved(req, committee) {
			return nil
		}

		setCommitteeFlag(req, committee)

		next, err := s.machine.Fire(req, action)
		if err != nil {
			return err
		}
		req.Status = next.String()

		if next == lifecycle.StateApproved {
			now := time.Now()
			req.ApprovalTime = &now

			employee, err := s.userRepo.GetByID(txCtx, req.EmployeeID)
			if err != nil {
				return fmt.Errorf("get employee: %w", err)
			}
			notifIDs, err = s.notifier.Enqueue(txCtx, notice.Intent{
				RequestID:    req.ID,
				Recipient:    employee.Email,
				Kind:         notice.KindApproved,
				EmployeeName: employee.Name,
				EventName:    req.EventName,
			})
			if err != nil {
				return fmt.Errorf("enqueue notification: %w", err)
			}
		}

		return s.requestRepo.Update(txCtx, req)
	})
	if err != nil {
		s.logger.Error("Failed to record committee approval",
			"error", err,
			"request_id", requestID,
			"committee", string(committee))
		return nil, err
	}

	s.notifier.Dispatch(notifIDs...)
	s.logger.Info("Committee approval recorded",
		"request_id", requestID,
		"committee", string(committee),
		"status", req.Status)
	return req, nil
}

// Reject moves a pending request to the terminal REJECTED state. The reason
// is optional and is included in the rejection mail when present.
func (s *reviewServiceImpl) Reject(ctx context.Context, requestID, reason string) (*entity.AidRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionReject, func(req *entity.AidRequest) notice.Kind {
		req.RejectionReason = reason
		return notice.KindRejected
	})
}

// ApproveAccountability accepts the reviewed proof-of-expense package and
// queues the request for reimbursement.
func (s *reviewServiceImpl) ApproveAccountability(ctx context.Context, requestID string) (*entity.AidRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionApproveAccountability, func(req *entity.AidRequest) notice.Kind {
		return notice.KindAccountabilityApproved
	})
}

// ConfirmPayment records the reimbursement payment and completes the
// lifecycle.
func (s *reviewServiceImpl) ConfirmPayment(ctx context.Context, requestID string) (*entity.AidRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionConfirmPayment, func(req *entity.AidRequest) notice.Kind {
		return notice.KindReimbursementCompleted
	})
}

// transition fires a single unguarded action and enqueues its mail in the
// same transaction. mutate adjusts the request before the write and names
// the template to use.
func (s *reviewServiceImpl) transition(ctx context.Context, requestID string, action lifecycle.Action, mutate func(req *entity.AidRequest) notice.Kind) (*entity.AidRequest, error) {
	var (
		req      *entity.AidRequest
		notifIDs []string
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}

		kind := mutate(req)

		next, err := s.machine.Fire(req, action)
		if err != nil {
			return err
		}
		req.Status = next.String()

		employee, err := s.userRepo.GetByID(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("get employee: %w", err)
		}
		notifIDs, err = s.notifier.Enqueue(txCtx, notice.Intent{
			RequestID:    req.ID,
			Recipient:    employee.Email,
			Kind:         kind,
			EmployeeName: employee.Name,
			EventName:    req.EventName,
			Reason:       req.RejectionReason,
		})
		if err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}

		return s.requestRepo.Update(txCtx, req)
	})
	if err != nil {
		s.logger.Error("Failed to apply transition",
			"error", err,
			"request_id", requestID,
			"action", action.String())
		return nil, err
	}

	s.notifier.Dispatch(notifIDs...)
	s.logger.Info("Transition applied",
		"request_id", requestID,
		"action", action.String(),
		"status", req.Status)
	return req, nil
}

func committeeAction(committee Committee) (lifecycle.Action, error) {
	switch committee {
	case CommitteeScientific:
		return lifecycle.ActionApproveScientific, nil
	case CommitteeAdministrative:
		return lifecycle.ActionApproveAdministrative, nil
	}
	return "", fmt.Errorf("unknown committee: %s", committee)
}

func committeeApproved(req *entity.AidRequest, committee Committee) bool {
	if committee == CommitteeScientific {
		return req.ScientificApproved
	}
	return req.AdminApproved
}

func setCommitteeFlag(req *entity.AidRequest, committee Committee) {
	if committee == CommitteeScientific {
		req.ScientificApproved = true
		return
	}
	req.AdminApproved = true
}
