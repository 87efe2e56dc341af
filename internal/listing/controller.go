package listing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/models"
)

// State is the fetch lifecycle of a controller.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateErrored  State = "errored"
)

// Fetcher loads one page for a descriptor.
type Fetcher[T any] func(ctx context.Context, d Descriptor) (models.Page[T], error)

// Snapshot is a consistent copy of controller state.
type Snapshot[T any] struct {
	Seq        uint64
	State      State
	Descriptor Descriptor
	Page       models.Page[T]
	Err        error
	Loaded     bool
}

// Options tunes a controller.
type Options struct {
	Debounce time.Duration
	Limits   Limits
	Logger   *zap.Logger
}

// Controller owns the descriptor and the current page of one list. Every
// fetch carries a sequence number and only the most recently issued fetch
// may update state. Search input is debounced.
type Controller[T any] struct {
	mu       sync.Mutex
	fetch    Fetcher[T]
	debounce time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	desc     Descriptor
	seq      uint64
	state    State
	page     models.Page[T]
	err      error
	loaded   bool
	timer    *time.Timer
	closed   bool
	listener func(Snapshot[T])
}

// NewController creates a controller starting at initial. Nothing is fetched
// until Load is called.
func NewController[T any](ctx context.Context, fetch Fetcher[T], initial Descriptor, opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial.Limit <= 0 {
		initial.Limit = opts.Limits.normalize(0)
	}
	if initial.Page < 1 {
		initial.Page = 1
	}
	cctx, cancel := context.WithCancel(ctx)
	return &Controller[T]{
		fetch:    fetch,
		debounce: opts.Debounce,
		logger:   logger,
		ctx:      cctx,
		cancel:   cancel,
		desc:     initial,
		state:    StateIdle,
	}
}

// OnChange registers fn to receive a snapshot after every state change. fn
// runs while the controller lock is held and must not call back into the
// controller.
func (c *Controller[T]) OnChange(fn func(Snapshot[T])) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Load fetches the current descriptor.
func (c *Controller[T]) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issueLocked()
}

// Refetch re-issues the current descriptor. Repeated calls with no change in
// between request the same page.
func (c *Controller[T]) Refetch() {
	c.Load()
}

// Retry re-issues the last descriptor after a failure.
func (c *Controller[T]) Retry() {
	c.Load()
}

// SetSearch schedules a search change. Only the final term within the
// debounce window triggers a fetch.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.debounce <= 0 {
		c.desc = c.desc.WithSearch(term)
		c.issueLocked()
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.timer != timer {
			return
		}
		c.timer = nil
		c.desc = c.desc.WithSearch(term)
		c.issueLocked()
	})
	c.timer = timer
}

// SetStatus changes the status filter and fetches page one.
func (c *Controller[T]) SetStatus(status string) {
	c.update(func(d Descriptor) Descriptor { return d.WithStatus(status) })
}

// SetRole changes the role filter and fetches page one.
func (c *Controller[T]) SetRole(role string) {
	c.update(func(d Descriptor) Descriptor { return d.WithRole(role) })
}

// SetYear changes the year filter and fetches page one.
func (c *Controller[T]) SetYear(year int) {
	c.update(func(d Descriptor) Descriptor { return d.WithYear(year) })
}

// SetAuthor changes the author filter and fetches page one.
func (c *Controller[T]) SetAuthor(author string) {
	c.update(func(d Descriptor) Descriptor { return d.WithAuthor(author) })
}

// SetSort changes ordering and fetches page one.
func (c *Controller[T]) SetSort(by, order string) {
	c.update(func(d Descriptor) Descriptor { return d.WithSort(by, order) })
}

// SetPage moves to page p, clamped to the known page range.
func (c *Controller[T]) SetPage(p int) {
	c.update(func(d Descriptor) Descriptor {
		if c.loaded {
			return d.WithPage(Clamp(p, c.page.TotalPages))
		}
		return d.WithPage(p)
	})
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops any pending debounce and discards results of fetches still
// in flight. It is safe to call more than once.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
}

func (c *Controller[T]) update(fn func(Descriptor) Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.desc = fn(c.desc)
	c.issueLocked()
}

func (c *Controller[T]) issueLocked() {
	if c.closed {
		return
	}
	c.seq++
	seq := c.seq
	desc := c.desc
	c.state = StateFetching
	c.notifyLocked()

	go func() {
		page, err := c.fetch(c.ctx, desc)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.seq {
			return
		}
		if err != nil {
			c.logger.Warn("list fetch failed", zap.Uint64("seq", seq), zap.String("query", desc.Query()), zap.Error(err))
			c.state = StateErrored
			c.err = err
			c.notifyLocked()
			return
		}
		if page.ItemsPerPage <= 0 {
			page.ItemsPerPage = desc.Limit
		}
		if page.TotalPages <= 0 && page.TotalItems > 0 {
			page.TotalPages = TotalPages(page.TotalItems, page.ItemsPerPage)
		}
		c.state = StateIdle
		c.err = nil
		c.page = page
		c.loaded = true
		c.notifyLocked()
	}()
}

func (c *Controller[T]) notifyLocked() {
	if c.listener != nil {
		c.listener(c.snapshotLocked())
	}
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Seq:        c.seq,
		State:      c.state,
		Descriptor: c.desc,
		Page:       c.page,
		Err:        c.err,
		Loaded:     c.loaded,
	}
}
