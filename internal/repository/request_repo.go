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

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// RequestRepository handles AidRequest database operations.
type RequestRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestRepository creates a request repository.
func NewRequestRepository(db *database.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{db: db, logger: logger}
}

const requestColumns = `id, employee_id, employee_input_name, job_role, event_name,
	event_location, event_date, registration_value, event_params_text, modality,
	status, submission_date, scientific_approved, admin_approved, rejection_reason,
	approval_time, created_at, updated_at`

// Create inserts the request and its submission documents.
func (r *RequestRepository) Create(ctx context.Context, req *entity.AidRequest) error {
	ex := execFrom(ctx, r.db)

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := ex.ExecContext(ctx, `
		INSERT INTO requests (
			id, employee_id, employee_input_name, job_role, event_name,
			event_location, event_date, registration_value, event_params_text,
			modality, status, submission_date, scientific_approved,
			admin_approved, rejection_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.EmployeeID, req.EmployeeInputName, req.JobRole, req.EventName,
		req.EventLocation, req.EventDate, req.RegistrationValue, req.EventParamsText,
		string(req.Modality), req.Status, req.SubmissionDate,
		req.ScientificApproved, req.AdminApproved, req.RejectionReason,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	for _, doc := range req.Documents {
		if err := r.insertAttachment(ctx, ex, req.ID, doc); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a request with all its attachments.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.AidRequest, error) {
	ex := execFrom(ctx, r.db)

	row := ex.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if err := r.loadAttachments(ctx, ex, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns every request, newest first.
func (r *RequestRepository) List(ctx context.Context) ([]*entity.AidRequest, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY created_at DESC`)
}

// ListByEmployee returns an employee's requests, newest first.
func (r *RequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.AidRequest, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE employee_id = ? ORDER BY created_at DESC`,
		employeeID)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]*entity.AidRequest, error) {
	ex := execFrom(ctx, r.db)

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.AidRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, req := range requests {
		if err := r.loadAttachments(ctx, ex, req); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// Update persists the lifecycle fields of the request.
func (r *RequestRepository) Update(ctx context.Context, req *entity.AidRequest) error {
	ex := execFrom(ctx, r.db)

	req.UpdatedAt = time.Now()
	result, err := ex.ExecContext(ctx, `
		UPDATE requests SET
			status = ?, scientific_approved = ?, admin_approved = ?,
			rejection_reason = ?, approval_time = ?, updated_at = ?
		WHERE id = ?`,
		req.Status, req.ScientificApproved, req.AdminApproved,
		req.RejectionReason, req.ApprovalTime, req.UpdatedAt, req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s: %w", req.ID, ErrNotFound)
	}
	return nil
}

// AddAccountabilityDocuments appends the proof-of-expense attachments.
func (r *RequestRepository) AddAccountabilityDocuments(ctx context.Context, requestID string, docs []*entity.Attachment) error {
	ex := execFrom(ctx, r.db)
	for _, doc := range docs {
		if err := r.insertAttachment(ctx, ex, requestID, doc); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the request; attachments go with it via the cascade.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	ex := execFrom(ctx, r.db)

	result, err := ex.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *RequestRepository) insertAttachment(ctx context.Context, ex executor, requestID string, doc *entity.Attachment) error {
	doc.RequestID = requestID
	_, err := ex.ExecContext(ctx, `
		INSERT INTO attachments (id, request_id, slot, name, size_label, locator, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, requestID, doc.Slot, doc.Name, doc.SizeLabel, doc.Locator, doc.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert attachment",
			zap.String("request_id", requestID),
			zap.String("name", doc.Name),
			zap.Error(err))
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

func (r *RequestRepository) loadAttachments(ctx context.Context, ex executor, req *entity.AidRequest) error {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, request_id, slot, name, size_label, locator, uploaded_at
		FROM attachments WHERE request_id = ? ORDER BY uploaded_at, id`, req.ID)
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	defer rows.Close()

	req.Documents = nil
	req.AccountabilityDocuments = nil
	for rows.Next() {
		var a entity.Attachment
		if err := rows.Scan(&a.ID, &a.RequestID, &a.Slot, &a.Name, &a.SizeLabel, &a.Locator, &a.UploadedAt); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		if a.IsAccountability() {
			req.AccountabilityDocuments = append(req.AccountabilityDocuments, &a)
		} else {
			req.Documents = append(req.Documents, &a)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*entity.AidRequest, error) {
	var req entity.AidRequest
	var modality string
	var approvalTime sql.NullTime

	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeInputName, &req.JobRole, &req.EventName,
		&req.EventLocation, &req.EventDate, &req.RegistrationValue, &req.EventParamsText,
		&modality, &req.Status, &req.SubmissionDate, &req.ScientificApproved,
		&req.AdminApproved, &req.RejectionReason, &approvalTime,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Modality = entity.Modality(modality)
	if approvalTime.Valid {
		req.ApprovalTime = &approvalTime.Time
	}
	return &req, nil
}
