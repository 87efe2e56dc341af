package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type directoryLister interface {
	ListUsers(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.User], error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	MaxPages int
	PageSize int
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Truncated   bool
}

// ExportService renders the filtered user directory as CSV or PDF.
type ExportService struct {
	remote directoryLister
	csv    renderer
	pdf    renderer
	logger *zap.Logger
	cfg    ExportConfig
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(remote directoryLister, cfg ExportConfig, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{remote: remote, csv: csv, pdf: pdf, logger: logger, cfg: cfg, now: time.Now}
}

// Directory walks the filtered directory page by page and renders it.
func (s *ExportService) Directory(ctx context.Context, sess *models.Session, d listing.Descriptor, format string) (*ExportFile, error) {
	if err := requirePermission(sess, permission.ManageUsers); err != nil {
		return nil, err
	}
	var r renderer
	switch strings.ToLower(format) {
	case "", ExportFormatCSV:
		r = s.csv
	case ExportFormatPDF:
		r = s.pdf
	default:
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"), map[string]string{"format": "Format must be csv or pdf"})
	}

	d.Limit = s.cfg.PageSize
	var users []models.User
	truncated := false
	for page := 1; ; page++ {
		if page > s.cfg.MaxPages {
			truncated = true
			break
		}
		result, err := s.remote.ListUsers(ctx, sess.Token, d.WithPage(page))
		if err != nil {
			return nil, err
		}
		users = append(users, result.Items...)
		if page >= result.TotalPages || len(result.Items) == 0 {
			break
		}
	}

	data := directoryDataset(users, s.now())
	payload, err := r.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	if truncated {
		s.logger.Warn("directory export truncated", zap.Int("max_pages", s.cfg.MaxPages), zap.String("actor_id", sess.ActorID()))
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("alumni_directory_%s.%s", s.now().UTC().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Data:        payload,
		Rows:        len(users),
		Truncated:   truncated,
	}, nil
}

func directoryDataset(users []models.User, generated time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, map[string]string{
			"name":       u.FullName(),
			"email":      u.Email,
			"batch":      u.Batch,
			"type":       string(u.AlumniType),
			"year":       yearLabel(u),
			"profession": u.Profession,
			"roles":      joinRoles(u.Roles),
			"status":     string(u.Status),
		})
	}
	return export.Dataset{
		Title:       "Alumni Directory",
		GeneratedAt: generated,
		Columns: []export.Column{
			{Key: "name", Title: "Name", Width: 45},
			{Key: "email", Title: "Email", Width: 55},
			{Key: "batch", Title: "Batch", Width: 20},
			{Key: "type", Title: "Type", Width: 20},
			{Key: "year", Title: "Year", Width: 30},
			{Key: "profession", Title: "Profession", Width: 40},
			{Key: "roles", Title: "Roles", Width: 35},
			{Key: "status", Title: "Status", Width: 22},
		},
		Rows: rows,
	}
}

func yearLabel(u models.User) string {
	switch {
	case u.IsGraduated && u.GraduationYear != nil:
		return "Graduated " + strconv.Itoa(*u.GraduationYear)
	case !u.IsGraduated && u.LeftAt != nil:
		return "Left " + strconv.Itoa(*u.LeftAt)
	}
	return ""
}

func joinRoles(roles []models.Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
