// Package live runs list components over websocket connections. Each
// connection owns one pagination controller, the detail modal and the row
// action flow; the client sends commands and receives rendered state.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const (
	defaultReadLimit    = 4096
	defaultPingInterval = 30 * time.Second
	defaultPongWait     = 60 * time.Second
	writeWait           = 10 * time.Second
	outboxSize          = 16
)

// Binding connects a session to one kind of list.
type Binding[T, R any] struct {
	Name    string
	Fetch   listing.Fetcher[T]
	Compose func([]T) []R
	ID      func(T) string
	Images  func(T) []string
	// Act is nil for read-only lists.
	Act func(ctx context.Context, id string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error)
}

// Hooks observes session lifecycles.
type Hooks interface {
	LiveSessionOpened(list string)
	LiveSessionClosed(list string)
}

// Options tunes a session.
type Options struct {
	Limits       listing.Limits
	Debounce     time.Duration
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
	Logger       *zap.Logger
	Hooks        Hooks
}

// Detail is the open item rendered as its row plus the image carousel.
type Detail[R any] struct {
	Row      R                  `json:"row"`
	Carousel view.CarouselState `json:"carousel"`
}

type session[T, R any] struct {
	conn    *websocket.Conn
	binding Binding[T, R]
	opts    Options
	logger  *zap.Logger

	ctrl *listing.Controller[T]

	mu    sync.Mutex
	modal *view.DetailModal[T]
	flow  *view.ActionFlow

	listMu sync.Mutex
	latest view.ListView[R]
	wake   chan struct{}
	out    chan Event

	done    <-chan struct{}
	actions sync.WaitGroup
}

// Serve runs a session on conn until the client disconnects or ctx ends.
// It owns conn and closes it before returning.
func Serve[T, R any](ctx context.Context, conn *websocket.Conn, b Binding[T, R], initial listing.Descriptor, opts Options) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.PongWait <= opts.PingInterval {
		opts.PongWait = opts.PingInterval * 2
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &session[T, R]{
		conn:    conn,
		binding: b,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("list", b.Name)),
		modal:   view.NewDetailModal[T](),
		flow:    view.NewActionFlow(),
		wake:    make(chan struct{}, 1),
		out:     make(chan Event, outboxSize),
		done:    ctx.Done(),
	}
	s.ctrl = listing.NewController(ctx, b.Fetch, initial, listing.Options{
		Debounce: opts.Debounce,
		Limits:   opts.Limits,
		Logger:   s.logger,
	})
	s.ctrl.OnChange(s.onChange)

	if opts.Hooks != nil {
		opts.Hooks.LiveSessionOpened(b.Name)
		defer opts.Hooks.LiveSessionClosed(b.Name)
	}

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		s.writePump(ctx)
	}()

	s.ctrl.Load()
	s.readPump()

	cancel()
	s.ctrl.Close()
	s.actions.Wait()
	writer.Wait()
	_ = conn.Close()
	s.logger.Debug("live session closed")
}

// onChange runs under the controller lock and only records the newest view.
func (s *session[T, R]) onChange(snap listing.Snapshot[T]) {
	rendered := view.FromSnapshot(snap, s.binding.Compose)
	s.listMu.Lock()
	s.latest = rendered
	s.listMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *session[T, R]) readPump() {
	s.conn.SetReadLimit(s.opts.ReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Warn("live session read failed", zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.emit(errorEvent("malformed command"))
			continue
		}
		s.handle(cmd)
	}
}

func (s *session[T, R]) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = s.conn.Close()
			return
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-s.wake:
			s.listMu.Lock()
			rendered := s.latest
			s.listMu.Unlock()
			if !s.write(Event{Type: EventList, List: rendered}) {
				return
			}
		case ev := <-s.out:
			if !s.write(ev) {
				return
			}
		}
	}
}

func (s *session[T, R]) write(ev Event) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(ev); err != nil {
		s.logger.Warn("live session write failed", zap.String("event", ev.Type), zap.Error(err))
		_ = s.conn.Close()
		return false
	}
	return true
}

func (s *session[T, R]) emit(ev Event) {
	select {
	case s.out <- ev:
	case <-s.done:
	}
}

func (s *session[T, R]) handle(cmd Command) {
	switch cmd.Type {
	case CmdSearch:
		s.ctrl.SetSearch(cmd.Value)
	case CmdStatus:
		s.ctrl.SetStatus(cmd.Value)
	case CmdRole:
		s.ctrl.SetRole(cmd.Value)
	case CmdYear:
		s.ctrl.SetYear(cmd.Year)
	case CmdAuthor:
		s.ctrl.SetAuthor(cmd.Value)
	case CmdSort:
		s.ctrl.SetSort(cmd.SortBy, cmd.SortOrder)
	case CmdPage:
		s.ctrl.SetPage(cmd.Page)
	case CmdRetry:
		s.ctrl.Retry()
	case CmdRefresh:
		s.ctrl.Refetch()
	case CmdOpen:
		s.open(cmd.ID)
	case CmdNext, CmdPrev:
		s.step(cmd.Type == CmdNext)
	case CmdClose:
		s.mu.Lock()
		refetch := s.modal.Close()
		s.mu.Unlock()
		s.emit(Event{Type: EventClosed})
		if refetch {
			s.ctrl.Refetch()
		}
	case CmdAction:
		s.begin(cmd.ID, cmd.Action)
	case CmdConfirm:
		s.mu.Lock()
		pending, err := s.flow.Confirm()
		s.mu.Unlock()
		if err != nil {
			s.emit(errorEvent(appErrors.UserMessage(err)))
			return
		}
		s.dispatch(pending, true)
	case CmdCancel:
		s.mu.Lock()
		s.flow.Cancel()
		s.mu.Unlock()
		s.emit(Event{Type: EventCancelled})
	case CmdPing:
		s.emit(Event{Type: EventPong})
	default:
		s.emit(errorEvent("unknown command"))
	}
}

func (s *session[T, R]) open(id string) {
	snap := s.ctrl.Snapshot()
	for _, item := range snap.Page.Items {
		if s.binding.ID(item) != id {
			continue
		}
		var images []string
		if s.binding.Images != nil {
			images = s.binding.Images(item)
		}
		s.mu.Lock()
		s.modal.Open(item, images)
		ev := s.detailLocked()
		s.mu.Unlock()
		s.emit(ev)
		return
	}
	s.emit(errorEvent("This item is no longer in the list"))
}

func (s *session[T, R]) step(forward bool) {
	s.mu.Lock()
	if s.modal.State() != view.ModalOpen {
		s.mu.Unlock()
		s.emit(errorEvent(appErrors.UserMessage(view.ErrModalClosed)))
		return
	}
	if forward {
		s.modal.Carousel().Next()
	} else {
		s.modal.Carousel().Prev()
	}
	ev := s.detailLocked()
	s.mu.Unlock()
	s.emit(ev)
}

func (s *session[T, R]) detailLocked() Event {
	item, _ := s.modal.Item()
	rows := s.binding.Compose([]T{item})
	var row R
	if len(rows) > 0 {
		row = rows[0]
	}
	return Event{Type: EventDetail, Detail: Detail[R]{Row: row, Carousel: s.modal.Carousel().State()}}
}

func (s *session[T, R]) begin(id string, a permission.Action) {
	if s.binding.Act == nil {
		s.emit(errorEvent("Actions are not available for this list"))
		return
	}
	s.mu.Lock()
	needsConfirm, err := s.flow.Begin(id, a)
	pending, _ := s.flow.Pending()
	s.mu.Unlock()
	if err != nil {
		s.emit(errorEvent(appErrors.UserMessage(err)))
		return
	}
	if needsConfirm {
		s.emit(Event{Type: EventConfirm, Pending: &pending})
		return
	}
	s.dispatch(pending, false)
}

// dispatch runs the action off the read loop so the list stays responsive;
// the flow rejects new actions until it finishes.
func (s *session[T, R]) dispatch(p view.PendingAction, confirmed bool) {
	s.actions.Add(1)
	go func() {
		defer s.actions.Done()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-s.done:
				cancel()
			case <-ctx.Done():
			}
		}()

		result, err := s.binding.Act(ctx, p.TargetID, p.Action, confirmed, func() { s.afterMutation(p.TargetID) })

		s.mu.Lock()
		s.flow.Finish()
		s.mu.Unlock()

		ev := Event{Type: EventNotification, Level: dispatch.LevelSuccess, Message: result.Message, Pending: &p}
		if err != nil {
			ev.Level = dispatch.LevelError
			if ev.Message == "" {
				ev.Message = appErrors.UserMessage(err)
			}
		}
		s.emit(ev)
	}()
}

// afterMutation defers the refetch to modal close when the mutated item is
// open; otherwise the list is refetched at once.
func (s *session[T, R]) afterMutation(targetID string) {
	s.mu.Lock()
	item, open := s.modal.Item()
	if open && s.binding.ID(item) == targetID {
		_ = s.modal.MarkMutated()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.ctrl.Refetch()
}
