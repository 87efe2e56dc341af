package live

import (
	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
)

// Command types sent by clients.
const (
	CmdSearch  = "search"
	CmdStatus  = "status"
	CmdRole    = "role"
	CmdYear    = "year"
	CmdAuthor  = "author"
	CmdSort    = "sort"
	CmdPage    = "page"
	CmdRetry   = "retry"
	CmdRefresh = "refresh"
	CmdOpen    = "open"
	CmdNext    = "next"
	CmdPrev    = "prev"
	CmdClose   = "close"
	CmdAction  = "action"
	CmdConfirm = "confirm"
	CmdCancel  = "cancel"
	CmdPing    = "ping"
)

// Event types sent to clients.
const (
	EventList         = "list"
	EventDetail       = "detail"
	EventClosed       = "closed"
	EventConfirm      = "confirm"
	EventCancelled    = "cancelled"
	EventNotification = "notification"
	EventError        = "error"
	EventPong         = "pong"
)

// Command is one client instruction.
type Command struct {
	Type      string            `json:"type"`
	Value     string            `json:"value,omitempty"`
	Year      int               `json:"year,omitempty"`
	Page      int               `json:"page,omitempty"`
	SortBy    string            `json:"sortBy,omitempty"`
	SortOrder string            `json:"sortOrder,omitempty"`
	ID        string            `json:"id,omitempty"`
	Action    permission.Action `json:"action,omitempty"`
}

// Event is one server message.
type Event struct {
	Type    string              `json:"type"`
	List    interface{}         `json:"list,omitempty"`
	Detail  interface{}         `json:"detail,omitempty"`
	Pending *view.PendingAction `json:"pending,omitempty"`
	Level   dispatch.Level      `json:"level,omitempty"`
	Message string              `json:"message,omitempty"`
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
