package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/middleware/requestid"
)

type mockAuditRepo struct {
	mu       sync.Mutex
	entries  []models.AuditLog
	failures int
	filter   models.AuditFilter
	total    int
	listErr  error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("db unavailable")
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error) {
	m.filter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.entries, m.total, nil
}

func (m *mockAuditRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestAuditServiceWritesNotificationsInBackground(t *testing.T) {
	repo := &mockAuditRepo{failures: 1}
	svc := NewAuditService(repo, NewMetricsService(), AuditConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond}, nil)
	svc.Start(context.Background())

	ctx := requestid.WithValue(context.Background(), "req-42")
	svc.Notify(ctx, dispatch.Notification{
		Level:     dispatch.LevelSuccess,
		Message:   "Profile updated",
		ActorID:   plainUser.ID,
		Timestamp: time.Now(),
		Action: dispatch.Action{
			Kind:     dispatch.KindUpdateProfile,
			Entity:   models.EntityUser,
			TargetID: plainUser.ID,
			Payload:  dispatch.Payload{Fields: map[string]interface{}{"bio": "secret bio"}},
		},
	})

	require.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
	svc.Stop()

	entry := repo.entries[0]
	assert.Equal(t, "updateProfile", entry.Action)
	assert.Equal(t, "users", entry.Entity)
	assert.Equal(t, models.AuditOutcomeSuccess, entry.Outcome)
	assert.Equal(t, "req-42", entry.RequestID)
	assert.Contains(t, string(entry.Payload), "bio")
	assert.NotContains(t, string(entry.Payload), "secret bio")
}

func TestAuditServiceRecordsFailures(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, nil, AuditConfig{}, nil)
	svc.Start(context.Background())

	svc.Notify(context.Background(), dispatch.Notification{
		Level:  dispatch.LevelError,
		Action: dispatch.Action{Kind: dispatch.KindDelete, Entity: models.EntityUser, TargetID: "u-9"},
	})
	svc.Stop()

	require.Equal(t, 1, repo.count())
	assert.Equal(t, models.AuditOutcomeFailure, repo.entries[0].Outcome)
}

func TestAuditServiceList(t *testing.T) {
	repo := &mockAuditRepo{total: 45, entries: []models.AuditLog{{ID: "a1"}}}
	svc := NewAuditService(repo, nil, AuditConfig{}, nil)

	entries, pagination, err := svc.List(context.Background(), sessionFor(adminUser), models.AuditFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, repo.filter.Page)
	assert.Equal(t, 20, repo.filter.PageSize)
	assert.Equal(t, 3, pagination.TotalPages)

	_, _, err = svc.List(context.Background(), sessionFor(plainUser), models.AuditFilter{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	repo.listErr = errors.New("boom")
	_, _, err = svc.List(context.Background(), sessionFor(adminUser), models.AuditFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
