package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/repository"
)

// In-memory repositories for service tests. They mimic the SQL repositories'
// contracts: GetByID hands out copies, Update only writes lifecycle fields.

type memRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.AidRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[string]*entity.AidRequest)}
}

func cloneRequest(r *entity.AidRequest) *entity.AidRequest {
	c := *r
	c.Documents = append([]*entity.Attachment{}, r.Documents...)
	c.AccountabilityDocuments = append([]*entity.Attachment{}, r.AccountabilityDocuments...)
	if r.ApprovalTime != nil {
		t := *r.ApprovalTime
		c.ApprovalTime = &t
	}
	return &c
}

func (m *memRequestRepo) Create(_ context.Context, req *entity.AidRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *memRequestRepo) GetByID(_ context.Context, id string) (*entity.AidRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, repository.ErrNotFound)
	}
	return cloneRequest(req), nil
}

func (m *memRequestRepo) List(_ context.Context) ([]*entity.AidRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.AidRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, cloneRequest(req))
	}
	return out, nil
}

func (m *memRequestRepo) ListByEmployee(_ context.Context, employeeID string) ([]*entity.AidRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.AidRequest
	for _, req := range m.requests {
		if req.EmployeeID == employeeID {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

func (m *memRequestRepo) Update(_ context.Context, req *entity.AidRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok {
		return fmt.Errorf("request %s: %w", req.ID, repository.ErrNotFound)
	}
	stored.Status = req.Status
	stored.ScientificApproved = req.ScientificApproved
	stored.AdminApproved = req.AdminApproved
	stored.RejectionReason = req.RejectionReason
	if req.ApprovalTime != nil {
		t := *req.ApprovalTime
		stored.ApprovalTime = &t
	}
	return nil
}

func (m *memRequestRepo) AddAccountabilityDocuments(_ context.Context, requestID string, docs []*entity.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, repository.ErrNotFound)
	}
	stored.AccountabilityDocuments = append(stored.AccountabilityDocuments, docs...)
	return nil
}

func (m *memRequestRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return fmt.Errorf("request %s: %w", id, repository.ErrNotFound)
	}
	delete(m.requests, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	m := &memUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserRepo) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	u := *user
	return &u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (m *memUserRepo) SetResetRequested(_ context.Context, id string, requested bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	user.ResetRequested = requested
	return nil
}

type memNotificationRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.Notification
	ids  []string
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{rows: make(map[string]*entity.Notification)}
}

func (m *memNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *n
	m.rows[n.ID] = &row
	m.ids = append(m.ids, n.ID)
	return nil
}

func (m *memNotificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
	}
	n := *row
	return &n, nil
}

func (m *memNotificationRepo) ListPending(_ context.Context, limit int) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, id := range m.ids {
		if len(out) == limit {
			break
		}
		if m.rows[id].Status == entity.NotificationStatusPending {
			n := *m.rows[id]
			out = append(out, &n)
		}
	}
	return out, nil
}

func (m *memNotificationRepo) MarkSent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Status = entity.NotificationStatusSent
	return nil
}

func (m *memNotificationRepo) MarkFailed(_ context.Context, id string, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Status = entity.NotificationStatusFailed
	m.rows[id].ErrorMessage = errorMsg
	return nil
}

// kinds returns the template kinds of all rows in creation order.
func (m *memNotificationRepo) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.rows[id].TemplateKind)
	}
	return out
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockSender) Send(_ context.Context, recipient, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, recipient+": "+subject)
	return nil
}

func (m *mockSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockFileStore struct {
	mu      sync.Mutex
	removed []string
}

func (m *mockFileStore) Save(name string, _ []byte) (string, error) {
	return "loc-" + name, nil
}

func (m *mockFileStore) Remove(locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, locator)
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestNotifier(repo *memNotificationRepo) *Notifier {
	return NewNotifier(repo, &mockSender{}, "", &mockLogger{})
}
