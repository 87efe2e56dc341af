// Package dispatch sends mutations to the upstream API and reconciles by
// refetching. It never confirms, retries or patches local state.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// Kind is the mutation type.
type Kind string

const (
	KindUpdateStatus  Kind = "updateStatus"
	KindUpdateRole    Kind = "updateRole"
	KindRemoveRole    Kind = "removeRole"
	KindDelete        Kind = "delete"
	KindUpdateProfile Kind = "updateProfile"
)

// Payload carries the kind-specific arguments.
type Payload struct {
	Status string                 `json:"status,omitempty"`
	Role   models.Role            `json:"role,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Action is one mutation request.
type Action struct {
	Kind     Kind          `json:"kind"`
	Entity   models.Entity `json:"entity"`
	TargetID string        `json:"targetId"`
	Payload  Payload       `json:"payload"`
}

// Remote is the upstream surface the dispatcher writes through. Each call
// returns the server's message on success.
type Remote interface {
	UpdateStatus(ctx context.Context, token string, entity models.Entity, id, status string) (string, error)
	UpdateRole(ctx context.Context, token, id string, role models.Role) (string, error)
	RemoveRole(ctx context.Context, token, id string, role models.Role) (string, error)
	Delete(ctx context.Context, token string, entity models.Entity, id string) (string, error)
	UpdateProfile(ctx context.Context, token, id string, fields map[string]interface{}) (string, error)
}

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is emitted once per dispatched action, after the upstream
// call has returned.
type Notification struct {
	Level     Level         `json:"level"`
	Message   string        `json:"message"`
	Action    Action        `json:"action"`
	ActorID   string        `json:"actorId,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
}

// Notifier receives notifications. Implementations must return promptly.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Result is what the caller shows the user.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Dispatcher performs actions against Remote.
type Dispatcher struct {
	remote    Remote
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a dispatcher. Notifiers are called in order for every action
// that reached the upstream API.
func New(remote Remote, logger *zap.Logger, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{remote: remote, notifiers: notifiers, logger: logger, now: time.Now}
}

// Perform validates and sends action. Invalid actions fail without a network
// call. On success notifiers run and then refetch is invoked; on failure only
// notifiers run. The returned error is the upstream failure, if any.
func (d *Dispatcher) Perform(ctx context.Context, sess *models.Session, action Action, refetch func()) (Result, error) {
	if sess == nil || sess.Token == "" {
		return Result{Message: appErrors.ErrUnauthorized.Message}, appErrors.ErrUnauthorized
	}
	if err := action.Validate(); err != nil {
		return Result{Message: appErrors.UserMessage(err)}, err
	}

	start := d.now()
	message, err := d.send(ctx, sess.Token, action)
	elapsed := d.now().Sub(start)

	n := Notification{Action: action, ActorID: sess.ActorID(), Duration: elapsed, Timestamp: d.now()}
	if err != nil {
		n.Level = LevelError
		n.Message = appErrors.UserMessage(err)
		n.Err = err
		d.logger.Warn("dispatch failed",
			zap.String("kind", string(action.Kind)),
			zap.String("entity", string(action.Entity)),
			zap.String("target_id", action.TargetID),
			zap.String("actor_id", n.ActorID),
			zap.Error(err),
		)
		d.notify(ctx, n)
		return Result{OK: false, Message: n.Message}, err
	}

	if message == "" {
		message = defaultMessage(action)
	}
	n.Level = LevelSuccess
	n.Message = message
	d.logger.Info("dispatch succeeded",
		zap.String("kind", string(action.Kind)),
		zap.String("entity", string(action.Entity)),
		zap.String("target_id", action.TargetID),
		zap.String("actor_id", n.ActorID),
		zap.Duration("latency", elapsed),
	)
	d.notify(ctx, n)
	if refetch != nil {
		refetch()
	}
	return Result{OK: true, Message: message}, nil
}

func (d *Dispatcher) send(ctx context.Context, token string, a Action) (string, error) {
	switch a.Kind {
	case KindUpdateStatus:
		return d.remote.UpdateStatus(ctx, token, a.Entity, a.TargetID, a.Payload.Status)
	case KindUpdateRole:
		return d.remote.UpdateRole(ctx, token, a.TargetID, a.Payload.Role)
	case KindRemoveRole:
		return d.remote.RemoveRole(ctx, token, a.TargetID, a.Payload.Role)
	case KindDelete:
		return d.remote.Delete(ctx, token, a.Entity, a.TargetID)
	case KindUpdateProfile:
		return d.remote.UpdateProfile(ctx, token, a.TargetID, a.Payload.Fields)
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unsupported action")
}

func (d *Dispatcher) notify(ctx context.Context, n Notification) {
	for _, notifier := range d.notifiers {
		notifier.Notify(ctx, n)
	}
}

func defaultMessage(a Action) string {
	noun := "Item"
	switch a.Entity {
	case models.EntityUser:
		noun = "User"
	case models.EntityPost:
		noun = "Post"
	case models.EntityGallery:
		noun = "Gallery item"
	}
	switch a.Kind {
	case KindUpdateStatus:
		return noun + " status updated"
	case KindUpdateRole:
		return "Role granted"
	case KindRemoveRole:
		return "Role removed"
	case KindDelete:
		return noun + " deleted"
	case KindUpdateProfile:
		return "Profile updated"
	}
	return "Done"
}
