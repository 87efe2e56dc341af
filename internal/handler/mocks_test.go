package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/service"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

var (
	testLimits = listing.Limits{Default: 10, Max: 100}

	adminUser = models.User{ID: "admin-1", FirstName: "Ada", Roles: []models.Role{models.RoleAdmin}, Status: models.StatusActive}
	plainUser = models.User{ID: "user-1", FirstName: "Rin", Roles: []models.Role{models.RoleUser}, Status: models.StatusActive}
)

type resolverMock struct {
	sessions map[string]*models.Session
}

func newResolver(users ...models.User) *resolverMock {
	r := &resolverMock{sessions: map[string]*models.Session{}}
	for _, u := range users {
		r.sessions["token-"+u.ID] = &models.Session{Token: "token-" + u.ID, User: u}
	}
	return r
}

func (r *resolverMock) Resolve(ctx context.Context, token string) (*models.Session, error) {
	sess, ok := r.sessions[token]
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return sess, nil
}

type directoryMock struct {
	page       *view.ListView[view.UserRow]
	detail     *dto.UserDetail
	actionResp *dto.ActionResponse
	actionErr  error
	lastQuery  listing.Descriptor
	lastAction dto.ActionRequest
}

func (m *directoryMock) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[view.UserRow], error) {
	m.lastQuery = d
	return m.page, nil
}

func (m *directoryMock) Detail(ctx context.Context, sess *models.Session, id string) (*dto.UserDetail, error) {
	return m.detail, nil
}

func (m *directoryMock) Perform(ctx context.Context, sess *models.Session, targetID string, req dto.ActionRequest, d listing.Descriptor) (*dto.ActionResponse, error) {
	m.lastAction = req
	return m.actionResp, m.actionErr
}

type exporterMock struct {
	file   *service.ExportFile
	format string
}

func (m *exporterMock) Directory(ctx context.Context, sess *models.Session, d listing.Descriptor, format string) (*service.ExportFile, error) {
	m.format = format
	return m.file, nil
}

type registrationMock struct {
	draft   *dto.RegistrationDraft
	result  *dto.RegistrationResult
	err     error
	stepOne *dto.RegistrationStepOne
	stepTwo *dto.RegistrationStepTwo
}

func (m *registrationMock) StartDraft(ctx context.Context, req dto.RegistrationStepOne) (*dto.RegistrationDraft, error) {
	m.stepOne = &req
	return m.draft, m.err
}

func (m *registrationMock) Complete(ctx context.Context, req dto.RegistrationStepTwo) (*dto.RegistrationResult, error) {
	m.stepTwo = &req
	return m.result, m.err
}

type mediaMock struct {
	maxBytes int64
	image    *dto.UploadedImage
	upload   *service.ImageUpload
	content  []byte
}

func (m *mediaMock) MaxBytes() int64 { return m.maxBytes }

func (m *mediaMock) Upload(ctx context.Context, sess *models.Session, upload service.ImageUpload) (*dto.UploadedImage, error) {
	m.content, _ = io.ReadAll(upload.Content)
	m.upload = &upload
	return m.image, nil
}

type profileMock struct {
	page      *dto.ProfilePage
	pageErr   error
	updated   *models.User
	updateErr error
	updates   int
}

func (m *profileMock) Page(ctx context.Context, sess *models.Session, userID string) (*dto.ProfilePage, error) {
	return m.page, m.pageErr
}

func (m *profileMock) Update(ctx context.Context, sess *models.Session, req dto.ProfileUpdateRequest) (*models.User, string, error) {
	m.updates++
	return m.updated, "Profile updated", m.updateErr
}

type galleryMock struct {
	page    *view.ListView[models.GalleryItem]
	detail  *dto.GalleryDetail
	created *models.GalleryItem
}

func (m *galleryMock) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[models.GalleryItem], error) {
	return m.page, nil
}

func (m *galleryMock) Detail(ctx context.Context, sess *models.Session, id string) (*dto.GalleryDetail, error) {
	return m.detail, nil
}

func (m *galleryMock) Create(ctx context.Context, sess *models.Session, req dto.GalleryCreateRequest) (*models.GalleryItem, string, error) {
	return m.created, "Gallery item published", nil
}

type auditMock struct {
	filter models.AuditFilter
}

func (m *auditMock) List(ctx context.Context, sess *models.Session, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	m.filter = filter
	return []models.AuditLog{{ID: "a-1"}}, &models.Pagination{CurrentPage: filter.Page, TotalPages: 1, TotalItems: 1, ItemsPerPage: filter.PageSize}, nil
}

type liveUsersMock struct {
	mu    sync.Mutex
	users []models.User
	acts  []permission.Action
}

func (m *liveUsersMock) Fetcher(sess *models.Session) listing.Fetcher[models.User] {
	return func(ctx context.Context, d listing.Descriptor) (models.Page[models.User], error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		return models.Page[models.User]{Items: m.users, CurrentPage: 1, TotalPages: 1, TotalItems: len(m.users), ItemsPerPage: d.Limit}, nil
	}
}

func (m *liveUsersMock) Compose(sess *models.Session) func([]models.User) []view.UserRow {
	return func(users []models.User) []view.UserRow {
		return view.ComposeUserRows(sess.User, users)
	}
}

func (m *liveUsersMock) Act(ctx context.Context, sess *models.Session, targetID string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
	m.mu.Lock()
	m.acts = append(m.acts, a)
	m.mu.Unlock()
	refetch()
	return dispatch.Result{OK: true, Message: "User approved"}, nil
}

func newRouter(routes Routes) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.Register(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	if user != nil {
		req.Header.Set("Authorization", "Bearer token-"+user.ID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func readyPage[R any](rows []R) *view.ListView[R] {
	return &view.ListView[R]{
		Phase:      view.PhaseReady,
		Rows:       rows,
		Pagination: &models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: len(rows), ItemsPerPage: 10},
	}
}

func newRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
