package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

type postRemote interface {
	ListPosts(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Post], error)
	GetPost(ctx context.Context, token, id string) (*models.Post, error)
}

// PostService lists posts and runs moderation actions.
type PostService struct {
	remote     postRemote
	dispatcher actionDispatcher
	logger     *zap.Logger
}

// NewPostService constructs a PostService.
func NewPostService(remote postRemote, dispatcher actionDispatcher, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{remote: remote, dispatcher: dispatcher, logger: logger}
}

func (s *PostService) Fetcher(sess *models.Session) listing.Fetcher[models.Post] {
	return func(ctx context.Context, d listing.Descriptor) (models.Page[models.Post], error) {
		return s.remote.ListPosts(ctx, sess.Token, d)
	}
}

func (s *PostService) Compose(sess *models.Session) func([]models.Post) []view.PostRow {
	return func(posts []models.Post) []view.PostRow {
		return view.ComposePostRows(sess.User, posts)
	}
}

// Page fetches one page of posts with moderation menus for the actor.
func (s *PostService) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[view.PostRow], error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}
	page, err := s.remote.ListPosts(ctx, sess.Token, d)
	if err != nil {
		return nil, err
	}
	if clamped := listing.Clamp(d.Page, page.TotalPages); page.TotalPages > 0 && clamped != d.Page {
		d = d.WithPage(clamped)
		if page, err = s.remote.ListPosts(ctx, sess.Token, d); err != nil {
			return nil, err
		}
	}
	v := view.FromPage(d, page, s.Compose(sess))
	return &v, nil
}

// Act runs a moderation action on a post.
func (s *PostService) Act(ctx context.Context, sess *models.Session, postID string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
	if err := requirePermission(sess, permission.ModeratePosts); err != nil {
		return dispatch.Result{}, err
	}
	post, err := s.remote.GetPost(ctx, sess.Token, postID)
	if err != nil {
		return dispatch.Result{Message: appErrors.UserMessage(err)}, err
	}
	if !permission.Allows(permission.PostActionsFor(sess.User, *post), a) {
		return dispatch.Result{}, appErrors.Clone(appErrors.ErrForbidden, "this action is not available for this post")
	}
	if a.Destructive() && !confirmed {
		return dispatch.Result{}, appErrors.ErrConfirmationNeeded
	}
	action, err := dispatch.ForPost(a, postID)
	if err != nil {
		return dispatch.Result{}, err
	}
	return s.dispatcher.Perform(ctx, sess, action, refetch)
}

// Perform is Act returning the refetched page.
func (s *PostService) Perform(ctx context.Context, sess *models.Session, postID string, req dto.ActionRequest, d listing.Descriptor) (*dto.PostActionResponse, error) {
	var refreshed *view.ListView[view.PostRow]
	result, err := s.Act(ctx, sess, postID, req.Action, req.Confirmed, func() {
		page, pageErr := s.Page(ctx, sess, d)
		if pageErr != nil {
			s.logger.Warn("refetch after moderation failed", zap.String("post_id", postID), zap.Error(pageErr))
			return
		}
		refreshed = page
	})
	return &dto.PostActionResponse{OK: result.OK, Message: result.Message, Page: refreshed}, err
}
