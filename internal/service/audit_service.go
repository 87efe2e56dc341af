package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/jobs"
	"github.com/noah-isme/alumni-portal/pkg/middleware/requestid"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditConfig tunes the background writer.
type AuditConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// AuditService records dispatched mutations. It is a dispatch.Notifier:
// entries are queued and written by background workers, so a slow database
// never delays the response to the user.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue[models.AuditLog]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService constructs the service and its queue. Call Start before use.
func NewAuditService(repo auditRepository, metrics *MetricsService, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue[models.AuditLog]("audit", s.write, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the writers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains queued entries and stops the writers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Notify implements dispatch.Notifier.
func (s *AuditService) Notify(ctx context.Context, n dispatch.Notification) {
	entry := models.AuditLog{
		ID:        uuid.NewString(),
		ActorID:   n.ActorID,
		Action:    string(n.Action.Kind),
		Entity:    string(n.Action.Entity),
		TargetID:  n.Action.TargetID,
		Outcome:   models.AuditOutcomeSuccess,
		Message:   n.Message,
		RequestID: requestid.FromContext(ctx),
		CreatedAt: n.Timestamp,
	}
	if n.Level == dispatch.LevelError {
		entry.Outcome = models.AuditOutcomeFailure
	}
	if payload, err := json.Marshal(redactPayload(n.Action.Payload)); err == nil {
		entry.Payload = payload
	}

	if err := s.queue.Enqueue(jobs.Job[models.AuditLog]{ID: entry.ID, Payload: entry}); err != nil {
		s.metrics.RecordAuditDropped()
		s.logger.Warn("audit entry dropped", zap.String("id", entry.ID), zap.Error(err))
	}
}

// List returns audit entries for administrators.
func (s *AuditService) List(ctx context.Context, sess *models.Session, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	if err := requirePermission(sess, permission.ManageUsers); err != nil {
		return nil, nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	start := time.Now()
	entries, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("audit_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.PageSize - 1) / filter.PageSize
	}
	return entries, &models.Pagination{
		CurrentPage:  filter.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: filter.PageSize,
	}, nil
}

func (s *AuditService) write(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	entry := job.Payload
	start := time.Now()
	err := s.repo.Create(ctx, &entry)
	s.metrics.ObserveDBQuery("audit_insert", time.Since(start))
	return err
}

// redactPayload keeps profile field names but not their values.
func redactPayload(p dispatch.Payload) dispatch.Payload {
	if len(p.Fields) == 0 {
		return p
	}
	fields := make(map[string]interface{}, len(p.Fields))
	for k := range p.Fields {
		fields[k] = "[changed]"
	}
	p.Fields = fields
	return p
}
