package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/repository"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

var (
	adminUser = models.User{ID: "admin-1", FirstName: "Ada", LastName: "Admin", Roles: []models.Role{models.RoleAdmin}, Status: models.StatusActive}
	modUser   = models.User{ID: "mod-1", FirstName: "Mo", LastName: "Derator", Roles: []models.Role{models.RoleModerator}, Status: models.StatusActive}
	plainUser = models.User{ID: "user-1", FirstName: "Rin", LastName: "Alumna", Roles: []models.Role{models.RoleUser}, Status: models.StatusActive}
)

func sessionFor(u models.User) *models.Session {
	return &models.Session{Token: "token-" + u.ID, User: u}
}

func newMemoryCache() *CacheService {
	return NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, nil, true)
}

type mockRemote struct {
	mu sync.Mutex

	users      map[string]models.User
	listUsers  func(d listing.Descriptor) (models.Page[models.User], error)
	userCalls  []listing.Descriptor
	getUserErr error

	posts      map[string]models.Post
	listPosts  func(d listing.Descriptor) (models.Page[models.Post], error)
	gallery    map[string]models.GalleryItem
	listGal    func(d listing.Descriptor) (models.Page[models.GalleryItem], error)
	events     models.Page[models.Event]
	createdGal []models.NewGalleryItem

	current      *models.User
	currentErr   error
	currentCalls int

	accounts  []models.NewAccount
	createErr error

	mutations []string
	mutateErr error
}

func (m *mockRemote) ListUsers(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.User], error) {
	m.mu.Lock()
	m.userCalls = append(m.userCalls, d)
	fn := m.listUsers
	m.mu.Unlock()
	if fn == nil {
		return models.Page[models.User]{CurrentPage: d.Page, ItemsPerPage: d.Limit}, nil
	}
	return fn(d)
}

func (m *mockRemote) GetUser(ctx context.Context, token, id string, includeDetails bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
	}
	return &u, nil
}

func (m *mockRemote) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCalls++
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	u := *m.current
	return &u, nil
}

func (m *mockRemote) CreateAccount(ctx context.Context, account models.NewAccount) (*models.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append(m.accounts, account)
	if m.createErr != nil {
		return nil, "", m.createErr
	}
	return &models.User{ID: "new-user", FirstName: account.FirstName, LastName: account.LastName, Email: account.Email, Status: models.StatusPending}, "", nil
}

func (m *mockRemote) ListPosts(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Post], error) {
	if m.listPosts == nil {
		return models.Page[models.Post]{CurrentPage: d.Page, ItemsPerPage: d.Limit}, nil
	}
	return m.listPosts(d)
}

func (m *mockRemote) GetPost(ctx context.Context, token, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Post not found")
	}
	return &p, nil
}

func (m *mockRemote) ListGallery(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.GalleryItem], error) {
	if m.listGal == nil {
		return models.Page[models.GalleryItem]{CurrentPage: d.Page, ItemsPerPage: d.Limit}, nil
	}
	return m.listGal(d)
}

func (m *mockRemote) GetGalleryItem(ctx context.Context, token, id string) (*models.GalleryItem, error) {
	item, ok := m.gallery[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Gallery item not found")
	}
	return &item, nil
}

func (m *mockRemote) CreateGalleryItem(ctx context.Context, token string, item models.NewGalleryItem) (*models.GalleryItem, string, error) {
	m.createdGal = append(m.createdGal, item)
	return &models.GalleryItem{ID: "gal-new", Title: item.Title, Images: item.Images, Year: item.Year}, "", nil
}

func (m *mockRemote) ListEvents(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Event], error) {
	return m.events, nil
}

func (m *mockRemote) record(op string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations = append(m.mutations, op)
	return "", m.mutateErr
}

func (m *mockRemote) UpdateStatus(ctx context.Context, token string, entity models.Entity, id, status string) (string, error) {
	return m.record("status:" + string(entity) + ":" + id + ":" + status)
}

func (m *mockRemote) UpdateRole(ctx context.Context, token, id string, role models.Role) (string, error) {
	return m.record("role:" + id + ":" + string(role))
}

func (m *mockRemote) RemoveRole(ctx context.Context, token, id string, role models.Role) (string, error) {
	return m.record("unrole:" + id + ":" + string(role))
}

func (m *mockRemote) Delete(ctx context.Context, token string, entity models.Entity, id string) (string, error) {
	return m.record("delete:" + string(entity) + ":" + id)
}

func (m *mockRemote) UpdateProfile(ctx context.Context, token, id string, fields map[string]interface{}) (string, error) {
	return m.record("profile:" + id)
}

func (m *mockRemote) userCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userCalls)
}

type mockSessions struct {
	invalidated []string
}

func (m *mockSessions) Invalidate(ctx context.Context, token string) {
	m.invalidated = append(m.invalidated, token)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []dispatch.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n dispatch.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func pageOf[T any](items []T, page, perPage, total int) models.Page[T] {
	return models.Page[T]{
		Items:        items,
		CurrentPage:  page,
		TotalPages:   listing.TotalPages(total, perPage),
		TotalItems:   total,
		ItemsPerPage: perPage,
	}
}
