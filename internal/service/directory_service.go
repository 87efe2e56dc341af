package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// DirectoryBackLink is where the user detail not-found view points.
const DirectoryBackLink = "/admin/users"

type directoryRemote interface {
	ListUsers(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.User], error)
	GetUser(ctx context.Context, token, id string, includeDetails bool) (*models.User, error)
}

type actionDispatcher interface {
	Perform(ctx context.Context, sess *models.Session, action dispatch.Action, refetch func()) (dispatch.Result, error)
}

// DirectoryService is the single user-management implementation. The
// actor's roles decide which actions each row offers.
type DirectoryService struct {
	remote     directoryRemote
	dispatcher actionDispatcher
	logger     *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(remote directoryRemote, dispatcher actionDispatcher, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{remote: remote, dispatcher: dispatcher, logger: logger}
}

// Fetcher binds the caller's token for a live list session.
func (s *DirectoryService) Fetcher(sess *models.Session) listing.Fetcher[models.User] {
	return func(ctx context.Context, d listing.Descriptor) (models.Page[models.User], error) {
		return s.remote.ListUsers(ctx, sess.Token, d)
	}
}

// Compose renders rows for the session's actor.
func (s *DirectoryService) Compose(sess *models.Session) func([]models.User) []view.UserRow {
	return func(users []models.User) []view.UserRow {
		return view.ComposeUserRows(sess.User, users)
	}
}

// Page fetches one directory page. A page past the end is clamped to the
// last page and fetched again.
func (s *DirectoryService) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[view.UserRow], error) {
	if err := requirePermission(sess, permission.ManageUsers); err != nil {
		return nil, err
	}
	page, err := s.remote.ListUsers(ctx, sess.Token, d)
	if err != nil {
		return nil, err
	}
	if clamped := listing.Clamp(d.Page, page.TotalPages); page.TotalPages > 0 && clamped != d.Page {
		d = d.WithPage(clamped)
		if page, err = s.remote.ListUsers(ctx, sess.Token, d); err != nil {
			return nil, err
		}
	}
	v := view.FromPage(d, page, s.Compose(sess))
	return &v, nil
}

// Detail loads one user with its action menu. A missing user yields the
// not-found view rather than an error.
func (s *DirectoryService) Detail(ctx context.Context, sess *models.Session, id string) (*dto.UserDetail, error) {
	if err := requirePermission(sess, permission.ManageUsers); err != nil {
		return nil, err
	}
	user, err := s.remote.GetUser(ctx, sess.Token, id, true)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			nf := view.NewNotFound("User", DirectoryBackLink)
			return &dto.UserDetail{NotFound: &nf}, nil
		}
		return nil, err
	}
	row := view.ComposeUserRows(sess.User, []models.User{*user})[0]
	return &dto.UserDetail{User: user, Actions: row.Actions, Placeholder: row.Placeholder}, nil
}

// Act re-checks that the action is on the target's menu, requires
// confirmation for destructive actions and dispatches it. refetch runs only
// after a successful mutation.
func (s *DirectoryService) Act(ctx context.Context, sess *models.Session, targetID string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
	if err := requirePermission(sess, permission.ManageUsers); err != nil {
		return dispatch.Result{}, err
	}
	target, err := s.remote.GetUser(ctx, sess.Token, targetID, false)
	if err != nil {
		return dispatch.Result{Message: appErrors.UserMessage(err)}, err
	}
	if !permission.Allows(permission.ActionsFor(sess.User, *target), a) {
		return dispatch.Result{}, appErrors.Clone(appErrors.ErrForbidden, "this action is not available for this user")
	}
	if a.Destructive() && !confirmed {
		return dispatch.Result{}, appErrors.ErrConfirmationNeeded
	}
	action, err := dispatch.ForUser(a, targetID)
	if err != nil {
		return dispatch.Result{}, err
	}
	return s.dispatcher.Perform(ctx, sess, action, refetch)
}

// Perform is Act for request/response callers: on success the page the
// caller was viewing is refetched and returned.
func (s *DirectoryService) Perform(ctx context.Context, sess *models.Session, targetID string, req dto.ActionRequest, d listing.Descriptor) (*dto.ActionResponse, error) {
	var refreshed *view.ListView[view.UserRow]
	result, err := s.Act(ctx, sess, targetID, req.Action, req.Confirmed, func() {
		page, pageErr := s.Page(ctx, sess, d)
		if pageErr != nil {
			s.logger.Warn("refetch after action failed", zap.String("target_id", targetID), zap.Error(pageErr))
			return
		}
		refreshed = page
	})
	return &dto.ActionResponse{OK: result.OK, Message: result.Message, Page: refreshed}, err
}

func requirePermission(sess *models.Session, p permission.Permission) error {
	if sess == nil {
		return appErrors.ErrUnauthorized
	}
	if !permission.Can(sess.User, p) {
		return appErrors.ErrForbidden
	}
	return nil
}
