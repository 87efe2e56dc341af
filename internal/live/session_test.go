package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
)

type photo struct {
	ID     string
	Images []string
}

type actCall struct {
	ID        string
	Action    permission.Action
	Confirmed bool
}

type harness struct {
	mu      sync.Mutex
	calls   []actCall
	fetches []listing.Descriptor
	items   []photo
	actErr  error
	opened  int
	closed  int
}

func (h *harness) LiveSessionOpened(string) {
	h.mu.Lock()
	h.opened++
	h.mu.Unlock()
}

func (h *harness) LiveSessionClosed(string) {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
}

func (h *harness) binding() Binding[photo, string] {
	return Binding[photo, string]{
		Name: "photos",
		Fetch: func(_ context.Context, d listing.Descriptor) (models.Page[photo], error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.fetches = append(h.fetches, d)
			return models.Page[photo]{Items: h.items, CurrentPage: d.Page, TotalPages: 1, TotalItems: len(h.items), ItemsPerPage: d.Limit}, nil
		},
		Compose: func(items []photo) []string {
			rows := make([]string, len(items))
			for i, item := range items {
				rows[i] = item.ID
			}
			return rows
		},
		ID:     func(p photo) string { return p.ID },
		Images: func(p photo) []string { return p.Images },
		Act: func(_ context.Context, id string, a permission.Action, confirmed bool, refetch func()) (dispatch.Result, error) {
			h.mu.Lock()
			h.calls = append(h.calls, actCall{ID: id, Action: a, Confirmed: confirmed})
			err := h.actErr
			h.mu.Unlock()
			if err != nil {
				return dispatch.Result{Message: "Action failed on the server"}, err
			}
			refetch()
			return dispatch.Result{OK: true, Message: "Done"}, nil
		},
	}
}

func (h *harness) fetchCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fetches)
}

type clientEvent struct {
	Type    string                 `json:"type"`
	List    *view.ListView[string] `json:"list"`
	Detail  *Detail[string]        `json:"detail"`
	Pending *view.PendingAction    `json:"pending"`
	Level   dispatch.Level         `json:"level"`
	Message string                 `json:"message"`
}

func startServer(t *testing.T, h *harness) *websocket.Conn {
	t.Helper()
	upgrader := NewUpgrader(nil)
	limits := listing.Limits{Default: 10, Max: 50}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		Serve(context.Background(), conn, h.binding(), listing.NewDescriptor(limits), Options{
			Limits:       limits,
			PingInterval: time.Second,
			Hooks:        h,
		})
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(clientEvent) bool) clientEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var ev clientEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if match(ev) {
			return ev
		}
	}
}

func ofType(kind string) func(clientEvent) bool {
	return func(ev clientEvent) bool { return ev.Type == kind }
}

func ready(ev clientEvent) bool {
	return ev.Type == EventList && ev.List != nil && ev.List.Phase == view.PhaseReady
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
}

func TestServeSendsInitialList(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}, {ID: "b"}}}
	conn := startServer(t, h)

	ev := readUntil(t, conn, ready)
	assert.Equal(t, []string{"a", "b"}, ev.List.Rows)
	assert.Equal(t, 1, ev.List.Pagination.CurrentPage)
}

func TestServeFilterResetsPage(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	send(t, conn, Command{Type: CmdStatus, Value: "pending"})
	ev := readUntil(t, conn, func(ev clientEvent) bool {
		return ready(ev) && ev.List.Query.Status == "pending"
	})
	assert.Equal(t, 1, ev.List.Query.Page)
}

func TestServeDestructiveActionNeedsConfirmation(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	send(t, conn, Command{Type: CmdAction, ID: "a", Action: permission.ActionDelete})
	ev := readUntil(t, conn, ofType(EventConfirm))
	require.NotNil(t, ev.Pending)
	assert.Equal(t, "a", ev.Pending.TargetID)

	h.mu.Lock()
	assert.Empty(t, h.calls)
	h.mu.Unlock()

	send(t, conn, Command{Type: CmdConfirm})
	ev = readUntil(t, conn, ofType(EventNotification))
	assert.Equal(t, dispatch.LevelSuccess, ev.Level)
	assert.Equal(t, "Done", ev.Message)

	h.mu.Lock()
	require.Len(t, h.calls, 1)
	assert.Equal(t, actCall{ID: "a", Action: permission.ActionDelete, Confirmed: true}, h.calls[0])
	h.mu.Unlock()
}

func TestServeCancelDropsPendingAction(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	send(t, conn, Command{Type: CmdAction, ID: "a", Action: permission.ActionBlock})
	readUntil(t, conn, ofType(EventConfirm))
	send(t, conn, Command{Type: CmdCancel})
	readUntil(t, conn, ofType(EventCancelled))

	send(t, conn, Command{Type: CmdConfirm})
	ev := readUntil(t, conn, ofType(EventError))
	assert.Equal(t, view.ErrNothingToConfirm.Message, ev.Message)
}

func TestServeActionFailureKeepsServerMessage(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}, actErr: errors.New("boom")}
	conn := startServer(t, h)
	readUntil(t, conn, ready)
	before := h.fetchCount()

	send(t, conn, Command{Type: CmdAction, ID: "a", Action: permission.ActionApprove})
	ev := readUntil(t, conn, ofType(EventNotification))
	assert.Equal(t, dispatch.LevelError, ev.Level)
	assert.Equal(t, "Action failed on the server", ev.Message)
	assert.Equal(t, before, h.fetchCount())
}

func TestServeModalDefersRefetchUntilClose(t *testing.T) {
	h := &harness{items: []photo{{ID: "a", Images: []string{"1.jpg", "2.jpg"}}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	send(t, conn, Command{Type: CmdOpen, ID: "a"})
	ev := readUntil(t, conn, ofType(EventDetail))
	require.NotNil(t, ev.Detail)
	assert.Equal(t, "a", ev.Detail.Row)
	assert.Equal(t, "1 / 2", ev.Detail.Carousel.Counter)

	send(t, conn, Command{Type: CmdPrev})
	ev = readUntil(t, conn, ofType(EventDetail))
	assert.Equal(t, "2.jpg", ev.Detail.Carousel.Image)

	before := h.fetchCount()
	send(t, conn, Command{Type: CmdAction, ID: "a", Action: permission.ActionApprove})
	readUntil(t, conn, ofType(EventNotification))
	assert.Equal(t, before, h.fetchCount())

	send(t, conn, Command{Type: CmdClose})
	readUntil(t, conn, ofType(EventClosed))
	assert.Eventually(t, func() bool { return h.fetchCount() == before+1 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeRejectsUnknownInput(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	ev := readUntil(t, conn, ofType(EventError))
	assert.Equal(t, "malformed command", ev.Message)

	send(t, conn, Command{Type: "explode"})
	ev = readUntil(t, conn, ofType(EventError))
	assert.Equal(t, "unknown command", ev.Message)

	send(t, conn, Command{Type: CmdOpen, ID: "missing"})
	ev = readUntil(t, conn, ofType(EventError))
	assert.Equal(t, "This item is no longer in the list", ev.Message)

	send(t, conn, Command{Type: CmdPing})
	readUntil(t, conn, ofType(EventPong))
}

func TestServeReportsLifecycle(t *testing.T) {
	h := &harness{items: []photo{{ID: "a"}}}
	conn := startServer(t, h)
	readUntil(t, conn, ready)

	h.mu.Lock()
	assert.Equal(t, 1, h.opened)
	h.mu.Unlock()

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.closed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://alumni.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))
	req.Header.Set("Origin", "https://alumni.example.com")
	assert.True(t, up.CheckOrigin(req))

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}

func TestEventJSONOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(Event{Type: EventPong})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(raw))
}
