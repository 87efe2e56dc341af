package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/validation"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const profileSectionLimit = 6

type profileRemote interface {
	GetUser(ctx context.Context, token, id string, includeDetails bool) (*models.User, error)
	ListPosts(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Post], error)
	ListGallery(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.GalleryItem], error)
}

type sessionInvalidator interface {
	Invalidate(ctx context.Context, token string)
}

// ProfileService composes profile pages and applies self-edits.
type ProfileService struct {
	remote     profileRemote
	dispatcher actionDispatcher
	sessions   sessionInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(remote profileRemote, dispatcher actionDispatcher, sessions sessionInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ProfileService{remote: remote, dispatcher: dispatcher, sessions: sessions, validator: validate, logger: logger}
}

// Page loads the user and their latest posts and gallery items
// concurrently. Only a failure to load the user fails the page; the other
// sections degrade to empty with a note in PartialErrors.
func (s *ProfileService) Page(ctx context.Context, sess *models.Session, userID string) (*dto.ProfilePage, error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}

	var (
		user    *models.User
		posts   models.Page[models.Post]
		gallery models.Page[models.GalleryItem]
		postErr error
		galErr  error
	)
	section := listing.Descriptor{Page: 1, Limit: profileSectionLimit, SortBy: "createdAt", SortOrder: listing.SortDesc, Author: userID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.remote.GetUser(gctx, sess.Token, userID, true)
		return err
	})
	g.Go(func() error {
		posts, postErr = s.remote.ListPosts(gctx, sess.Token, section)
		return nil
	})
	g.Go(func() error {
		gallery, galErr = s.remote.ListGallery(gctx, sess.Token, section)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &dto.ProfilePage{
		User:         *user,
		Posts:        posts.Items,
		Gallery:      gallery.Items,
		IsOwn:        sess.User.ID == user.ID,
		PostsTotal:   posts.TotalItems,
		GalleryTotal: gallery.TotalItems,
	}
	page.CanEdit = page.IsOwn
	if page.Posts == nil {
		page.Posts = []models.Post{}
	}
	if page.Gallery == nil {
		page.Gallery = []models.GalleryItem{}
	}
	if postErr != nil {
		s.logger.Warn("profile posts unavailable", zap.String("user_id", userID), zap.Error(postErr))
		page.PartialErrors = append(page.PartialErrors, "posts")
	}
	if galErr != nil {
		s.logger.Warn("profile gallery unavailable", zap.String("user_id", userID), zap.Error(galErr))
		page.PartialErrors = append(page.PartialErrors, "gallery")
	}
	return page, nil
}

// Update edits the caller's own profile and returns the refetched user. If
// the refetch fails the update still stands and the session's user is
// returned.
func (s *ProfileService) Update(ctx context.Context, sess *models.Session, req dto.ProfileUpdateRequest) (*models.User, string, error) {
	if sess == nil {
		return nil, "", appErrors.ErrUnauthorized
	}
	req.Normalize()
	if err := validation.Struct(s.validator, req, "invalid profile details"); err != nil {
		return nil, "", err
	}

	action := dispatch.Action{
		Kind:     dispatch.KindUpdateProfile,
		Entity:   models.EntityUser,
		TargetID: sess.User.ID,
		Payload:  dispatch.Payload{Fields: req.ToFields()},
	}
	var (
		updated    *models.User
		refetchErr error
	)
	result, err := s.dispatcher.Perform(ctx, sess, action, func() {
		s.sessions.Invalidate(ctx, sess.Token)
		updated, refetchErr = s.remote.GetUser(ctx, sess.Token, sess.User.ID, true)
	})
	if err != nil {
		return nil, result.Message, err
	}
	if refetchErr != nil {
		s.logger.Warn("refetch after profile update failed", zap.String("user_id", sess.User.ID), zap.Error(refetchErr))
		stale := sess.User
		return &stale, result.Message, nil
	}
	return updated, result.Message, nil
}
