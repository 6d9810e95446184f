package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/domain/eligibility"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	"github.com/citimr/aid-portal/internal/domain/notice"
)

// CreateRequestInput carries the submission form fields. Attachments arrive
// already stored; only their metadata travels here.
type CreateRequestInput struct {
	EmployeeID        string
	EmployeeInputName string
	JobRole           string
	EventName         string
	EventLocation     string
	EventDate         time.Time
	RegistrationValue string
	EventParamsText   string
	Modality          entity.Modality

	Summary         *entity.Attachment
	EthicsProof     *entity.Attachment
	EventParamsFile *entity.Attachment
}

// RequestService manages aid-request submission and retrieval.
type RequestService interface {
	Create(ctx context.Context, input CreateRequestInput) (*entity.AidRequest, error)
	Get(ctx context.Context, id string) (*entity.AidRequest, error)
	List(ctx context.Context) ([]*entity.AidRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*entity.AidRequest, error)
	Delete(ctx context.Context, id string) error
}

type requestServiceImpl struct {
	requestRepo port.RequestRepository
	userRepo    port.UserRepository
	fileStore   port.FileStore
	txManager   port.TransactionManager
	notifier    *Notifier
	logger      Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.RequestRepository,
	userRepo port.UserRepository,
	fileStore port.FileStore,
	txManager port.TransactionManager,
	notifier *Notifier,
	logger Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		fileStore:   fileStore,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create runs the submission rules and persists a new request in
// PENDING_APPROVAL. The confirmation mail row commits with the request.
func (s *requestServiceImpl) Create(ctx context.Context, input CreateRequestInput) (*entity.AidRequest, error) {
	if !input.Modality.IsValid() {
		return nil, fmt.Errorf("unknown modality: %s", input.Modality)
	}

	user, err := s.userRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		s.logger.Error("Failed to load employee", "error", err, "employee_id", input.EmployeeID)
		return nil, fmt.Errorf("get employee: %w", err)
	}

	history, err := s.requestRepo.ListByEmployee(ctx, input.EmployeeID)
	if err != nil {
		s.logger.Error("Failed to load request history", "error", err, "employee_id", input.EmployeeID)
		return nil, fmt.Errorf("list history: %w", err)
	}

	now := time.Now()
	sub := eligibility.Submission{
		Modality:        input.Modality,
		EventDate:       input.EventDate,
		EventParamsText: input.EventParamsText,
		Summary:         input.Summary,
		EthicsProof:     input.EthicsProof,
		EventParamsFile: input.EventParamsFile,
	}
	if err := eligibility.Evaluate(history, sub, now); err != nil {
		return nil, err
	}

	req := &entity.AidRequest{
		ID:                uuid.NewString(),
		EmployeeID:        input.EmployeeID,
		EmployeeInputName: input.EmployeeInputName,
		JobRole:           input.JobRole,
		EventName:         input.EventName,
		EventLocation:     input.EventLocation,
		EventDate:         input.EventDate,
		RegistrationValue: input.RegistrationValue,
		EventParamsText:   input.EventParamsText,
		Modality:          input.Modality,
		Status:            lifecycle.StatePendingApproval.String(),
		SubmissionDate:    now,
	}
	req.Documents = buildSubmissionDocuments(req.ID, input, now)

	var notifIDs []string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		notifIDs, err = s.notifier.Enqueue(txCtx, notice.Intent{
			RequestID:    req.ID,
			Recipient:    user.Email,
			Kind:         notice.KindSubmissionReceived,
			EmployeeName: user.Name,
			EventName:    req.EventName,
		})
		if err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create request", "error", err, "employee_id", input.EmployeeID)
		return nil, err
	}

	s.notifier.Dispatch(notifIDs...)
	s.logger.Info("Request created",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"modality", req.Modality.String())
	return req, nil
}

// Get retrieves a request with its attachments.
func (s *requestServiceImpl) Get(ctx context.Context, id string) (*entity.AidRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get request", "error", err, "request_id", id)
		return nil, err
	}
	return req, nil
}

// List retrieves every request, newest first.
func (s *requestServiceImpl) List(ctx context.Context) ([]*entity.AidRequest, error) {
	requests, err := s.requestRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list requests", "error", err)
		return nil, err
	}
	return requests, nil
}

// ListByEmployee retrieves an employee's requests, newest first.
func (s *requestServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.AidRequest, error) {
	requests, err := s.requestRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("Failed to list requests", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return requests, nil
}

// Delete removes a request and its stored files. File removal is best
// effort after the row is gone; an orphaned file is preferable to a request
// pointing at a deleted one.
func (s *requestServiceImpl) Delete(ctx context.Context, id string) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if lifecycle.State(req.Status).IsTerminal() {
		return fmt.Errorf("%w: cannot delete request in state %s", lifecycle.ErrInvalidTransition, req.Status)
	}

	if err := s.requestRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete request", "error", err, "request_id", id)
		return err
	}

	for _, doc := range req.AllAttachments() {
		if err := s.fileStore.Remove(doc.Locator); err != nil {
			s.logger.Error("Failed to remove stored file",
				"request_id", id,
				"locator", doc.Locator,
				"error", err)
		}
	}

	s.logger.Info("Request deleted", "request_id", id)
	return nil
}

func buildSubmissionDocuments(requestID string, input CreateRequestInput, now time.Time) []*entity.Attachment {
	stamp := func(a *entity.Attachment, slot string) *entity.Attachment {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.RequestID = requestID
		a.Slot = slot
		if a.UploadedAt.IsZero() {
			a.UploadedAt = now
		}
		return a
	}

	docs := []*entity.Attachment{stamp(input.Summary, entity.SlotSummary)}
	if input.EthicsProof != nil {
		docs = append(docs, stamp(input.EthicsProof, entity.SlotEthicsProof))
	}
	if input.EventParamsFile != nil {
		docs = append(docs, stamp(input.EventParamsFile, entity.SlotEventParams))
	}
	return docs
}
