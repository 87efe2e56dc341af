package handler

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/live"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/middleware/requestid"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type liveUsers interface {
	Fetcher(sess *models.Session) listing.Fetcher[models.User]
	Compose(sess *models.Session) func([]models.User) []view.UserRow
	Act(ctx context.Context, sess *models.Session, targetID string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error)
}

type livePosts interface {
	Fetcher(sess *models.Session) listing.Fetcher[models.Post]
	Compose(sess *models.Session) func([]models.Post) []view.PostRow
	Act(ctx context.Context, sess *models.Session, postID string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error)
}

type liveGallery interface {
	Fetcher(sess *models.Session) listing.Fetcher[models.GalleryItem]
}

// LiveHandler upgrades list routes to websocket sessions.
type LiveHandler struct {
	users    liveUsers
	posts    livePosts
	gallery  liveGallery
	upgrader *websocket.Upgrader
	limits   listing.Limits
	opts     live.Options
	logger   *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

// NewLiveHandler constructs the handler. Sessions outlive their upgrade
// request and end on Shutdown.
func NewLiveHandler(users liveUsers, posts livePosts, gallery liveGallery, upgrader *websocket.Upgrader, opts live.Options) *LiveHandler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LiveHandler{
		users:    users,
		posts:    posts,
		gallery:  gallery,
		upgrader: upgrader,
		limits:   opts.Limits,
		opts:     opts,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Shutdown closes every open session and waits for them to finish.
func (h *LiveHandler) Shutdown() {
	h.cancel()
	h.sessions.Wait()
}

// Users godoc
// @Summary Live user directory
// @Description Websocket session over the user directory; send commands, receive rendered lists
// @Tags Live
// @Param token query string false "Bearer token when headers cannot be set"
// @Success 101
// @Router /live/users [get]
func (h *LiveHandler) Users(c *gin.Context) {
	sess, d, ok := h.prepare(c)
	if !ok {
		return
	}
	binding := live.Binding[models.User, view.UserRow]{
		Name:    "users",
		Fetch:   h.users.Fetcher(sess),
		Compose: h.users.Compose(sess),
		ID:      func(u models.User) string { return u.ID },
		Images: func(u models.User) []string {
			if u.ProfilePhoto == "" {
				return nil
			}
			return []string{u.ProfilePhoto}
		},
		Act: func(ctx context.Context, id string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
			return h.users.Act(ctx, sess, id, a, confirmed, refetch)
		},
	}
	serve(h, c, binding, d)
}

// Posts godoc
// @Summary Live post feed
// @Tags Live
// @Param token query string false "Bearer token when headers cannot be set"
// @Success 101
// @Router /live/posts [get]
func (h *LiveHandler) Posts(c *gin.Context) {
	sess, d, ok := h.prepare(c)
	if !ok {
		return
	}
	binding := live.Binding[models.Post, view.PostRow]{
		Name:    "posts",
		Fetch:   h.posts.Fetcher(sess),
		Compose: h.posts.Compose(sess),
		ID:      func(p models.Post) string { return p.ID },
		Images:  func(p models.Post) []string { return p.Images },
	}
	if permission.Can(sess.User, permission.ModeratePosts) {
		binding.Act = func(ctx context.Context, id string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
			return h.posts.Act(ctx, sess, id, a, confirmed, refetch)
		}
	}
	serve(h, c, binding, d)
}

// Gallery godoc
// @Summary Live gallery
// @Tags Live
// @Param token query string false "Bearer token when headers cannot be set"
// @Success 101
// @Router /live/gallery [get]
func (h *LiveHandler) Gallery(c *gin.Context) {
	sess, d, ok := h.prepare(c)
	if !ok {
		return
	}
	binding := live.Binding[models.GalleryItem, models.GalleryItem]{
		Name:    "gallery",
		Fetch:   h.gallery.Fetcher(sess),
		Compose: func(items []models.GalleryItem) []models.GalleryItem { return items },
		ID:      func(g models.GalleryItem) string { return g.ID },
		Images:  func(g models.GalleryItem) []string { return g.Images },
	}
	serve(h, c, binding, d)
}

func (h *LiveHandler) prepare(c *gin.Context) (*models.Session, listing.Descriptor, bool) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, listing.Descriptor{}, false
	}
	d, err := descriptorFromQuery(c, h.limits)
	if err != nil {
		response.Error(c, err)
		return nil, listing.Descriptor{}, false
	}
	return sess, d, true
}

func serve[T, R any](h *LiveHandler, c *gin.Context, binding live.Binding[T, R], d listing.Descriptor) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("list", binding.Name), zap.Error(err))
		return
	}
	ctx := requestid.WithValue(h.ctx, requestid.Value(c))
	h.sessions.Add(1)
	defer h.sessions.Done()
	live.Serve(ctx, conn, binding, d, h.opts)
}
