package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/application/service"
	"github.com/citimr/aid-portal/internal/domain/accountability"
	"github.com/citimr/aid-portal/internal/domain/eligibility"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/domain/lifecycle"
	"github.com/citimr/aid-portal/internal/repository"
)

// maxUploadBytes caps a single attachment upload.
const maxUploadBytes = 10 << 20

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService           service.AuthService
	requestService        service.RequestService
	reviewService         service.ReviewService
	accountabilityService service.AccountabilityService
	fileStore             port.FileStore
	logger                Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authService service.AuthService,
	requestService service.RequestService,
	reviewService service.ReviewService,
	accountabilityService service.AccountabilityService,
	fileStore port.FileStore,
	logger Logger,
) *Handlers {
	return &Handlers{
		authService:           authService,
		requestService:        requestService,
		reviewService:         reviewService,
		accountabilityService: accountabilityService,
		fileStore:             fileStore,
		logger:                logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// attachmentPayload carries previously uploaded attachment metadata.
type attachmentPayload struct {
	Name      string `json:"name" binding:"required"`
	SizeLabel string `json:"size_label"`
	Locator   string `json:"locator" binding:"required"`
}

func (p *attachmentPayload) toAttachment() *entity.Attachment {
	if p == nil {
		return nil
	}
	return &entity.Attachment{
		Name:      p.Name,
		SizeLabel: p.SizeLabel,
		Locator:   p.Locator,
	}
}

// RequestResponse represents an aid request in API responses.
type RequestResponse struct {
	*entity.AidRequest
	StatusLabel string `json:"status_label"`
}

func toRequestResponse(req *entity.AidRequest) RequestResponse {
	return RequestResponse{
		AidRequest:  req,
		StatusLabel: lifecycle.State(req.Status).Label(),
	}
}

func toRequestResponses(reqs []*entity.AidRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toRequestResponse(req))
	}
	return out
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"token": token,
		"user":  user,
	}})
}

// AdminAccess handles POST /api/auth/admin
func (h *Handlers) AdminAccess(c *gin.Context) {
	var body struct {
		AccessCode string `json:"access_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	token, err := h.authService.AdminAccess(c.Request.Context(), body.AccessCode)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"token": token}})
}

// RequestPasswordReset handles POST /api/auth/reset
func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), body.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// Upload handles POST /api/uploads. Files are stored first; the returned
// locator is then referenced by the submission or accountability payload.
func (h *Handlers) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, Response{
			Success: false,
			Error:   "file exceeds the upload limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.respondError(c, err)
		return
	}

	locator, err := h.fileStore.Save(fileHeader.Filename, content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: entity.Attachment{
		ID:         uuid.NewString(),
		Name:       fileHeader.Filename,
		SizeLabel:  formatSize(fileHeader.Size),
		Locator:    locator,
		UploadedAt: time.Now(),
	}})
}

type createRequestBody struct {
	EmployeeInputName string             `json:"employee_input_name" binding:"required"`
	JobRole           string             `json:"job_role" binding:"required"`
	EventName         string             `json:"event_name" binding:"required"`
	EventLocation     string             `json:"event_location"`
	EventDate         string             `json:"event_date" binding:"required"`
	RegistrationValue string             `json:"registration_value" binding:"required"`
	EventParamsText   string             `json:"event_params_text"`
	Modality          string             `json:"modality" binding:"required"`
	Summary           *attachmentPayload `json:"summary"`
	EthicsProof       *attachmentPayload `json:"ethics_proof"`
	EventParamsFile   *attachmentPayload `json:"event_params_file"`
}

// CreateRequest handles POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	eventDate, err := parseDate(body.EventDate)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	req, err := h.requestService.Create(c.Request.Context(), service.CreateRequestInput{
		EmployeeID:        claimsFrom(c).UserID,
		EmployeeInputName: body.EmployeeInputName,
		JobRole:           body.JobRole,
		EventName:         body.EventName,
		EventLocation:     body.EventLocation,
		EventDate:         eventDate,
		RegistrationValue: body.RegistrationValue,
		EventParamsText:   body.EventParamsText,
		Modality:          entity.Modality(body.Modality),
		Summary:           body.Summary.toAttachment(),
		EthicsProof:       body.EthicsProof.toAttachment(),
		EventParamsFile:   body.EventParamsFile.toAttachment(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toRequestResponse(req)})
}

// ListRequests handles GET /api/requests. Administrators see every request;
// employees see their own.
func (h *Handlers) ListRequests(c *gin.Context) {
	claims := claimsFrom(c)

	var (
		requests []*entity.AidRequest
		err      error
	)
	if claims.Role == entity.RoleAdmin {
		requests, err = h.requestService.List(c.Request.Context())
	} else {
		requests, err = h.requestService.ListByEmployee(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponses(requests)})
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	req, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// DeleteRequest handles DELETE /api/requests/:id
func (h *Handlers) DeleteRequest(c *gin.Context) {
	req, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.requestService.Delete(c.Request.Context(), req.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

type accountabilityBody struct {
	AttendanceCertificate   *attachmentPayload   `json:"attendance_certificate"`
	PresentationCertificate *attachmentPayload   `json:"presentation_certificate"`
	EventPhoto              *attachmentPayload   `json:"event_photo"`
	Receipts                []*attachmentPayload `json:"receipts"`
}

// SubmitAccountability handles POST /api/requests/:id/accountability
func (h *Handlers) SubmitAccountability(c *gin.Context) {
	req, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body accountabilityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	pkg := accountability.Package{
		AttendanceCertificate:   body.AttendanceCertificate.toAttachment(),
		PresentationCertificate: body.PresentationCertificate.toAttachment(),
		EventPhoto:              body.EventPhoto.toAttachment(),
	}
	for _, receipt := range body.Receipts {
		pkg.Receipts = append(pkg.Receipts, receipt.toAttachment())
	}

	updated, err := h.accountabilityService.Submit(c.Request.Context(), req.ID, pkg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(updated)})
}

// ApproveRequest handles POST /api/requests/:id/approve
func (h *Handlers) ApproveRequest(c *gin.Context) {
	var body struct {
		Committee string `json:"committee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	committee := service.Committee(body.Committee)
	if committee != service.CommitteeScientific && committee != service.CommitteeAdministrative {
		h.badRequest(c, fmt.Errorf("unknown committee %q", body.Committee))
		return
	}

	req, err := h.reviewService.ApproveCommittee(c.Request.Context(), c.Param("id"), committee)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// RejectRequest handles POST /api/requests/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	req, err := h.reviewService.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// ApproveAccountability handles POST /api/requests/:id/accountability/approve
func (h *Handlers) ApproveAccountability(c *gin.Context) {
	req, err := h.reviewService.ApproveAccountability(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// ConfirmPayment handles POST /api/requests/:id/payment
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	req, err := h.reviewService.ConfirmPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// loadOwned fetches the request and enforces that employees only reach
// their own. Administrators reach any request.
func (h *Handlers) loadOwned(c *gin.Context) (*entity.AidRequest, bool) {
	req, err := h.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}

	claims := claimsFrom(c)
	if claims.Role != entity.RoleAdmin && req.EmployeeID != claims.UserID {
		c.JSON(http.StatusForbidden, Response{
			Success: false,
			Error:   "request belongs to another employee",
		})
		return nil, false
	}
	return req, true
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.logger.Error("Invalid request payload", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

// respondError maps domain and service errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var (
		leadErr    *eligibility.InsufficientLeadTimeError
		capErr     *eligibility.AnnualLimitError
		missingErr *eligibility.MissingAttachmentError
		incomplete *accountability.IncompleteError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrGuardFailed),
		errors.Is(err, lifecycle.ErrInvalidState),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
	case errors.As(err, &leadErr),
		errors.As(err, &capErr),
		errors.As(err, &missingErr),
		errors.As(err, &incomplete),
		errors.Is(err, eligibility.ErrEventParamsRequired),
		errors.Is(err, service.ErrWeakPassword):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidAccessCode):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrPasswordResetPending):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// parseDate accepts a plain calendar date or a full RFC3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
