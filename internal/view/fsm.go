package view

import (
	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

var (
	ErrModalClosed      = appErrors.Clone(appErrors.ErrConflict, "no item is open")
	ErrActionInProgress = appErrors.Clone(appErrors.ErrConflict, "another action is in progress")
	ErrNothingToConfirm = appErrors.Clone(appErrors.ErrConflict, "there is no action awaiting confirmation")
)

// ModalState is the detail modal lifecycle.
type ModalState string

const (
	ModalClosed ModalState = "closed"
	ModalOpen   ModalState = "open"
)

// DetailModal holds the selected item while open. Closing reports whether a
// mutation happened in the meantime, which is the only case that needs a
// refetch.
type DetailModal[T any] struct {
	state    ModalState
	item     T
	carousel *Carousel
	mutated  bool
}

func NewDetailModal[T any]() *DetailModal[T] {
	return &DetailModal[T]{state: ModalClosed}
}

// Open shows item. Opening over an open modal replaces the item but keeps
// any pending mutation flag.
func (m *DetailModal[T]) Open(item T, images []string) {
	m.state = ModalOpen
	m.item = item
	m.carousel = NewCarousel(images)
}

// MarkMutated records that the open item was changed.
func (m *DetailModal[T]) MarkMutated() error {
	if m.state != ModalOpen {
		return ErrModalClosed
	}
	m.mutated = true
	return nil
}

// Close hides the modal and reports whether the list must be refetched.
func (m *DetailModal[T]) Close() bool {
	if m.state != ModalOpen {
		return false
	}
	refetch := m.mutated
	var zero T
	m.state = ModalClosed
	m.item = zero
	m.carousel = nil
	m.mutated = false
	return refetch
}

func (m *DetailModal[T]) State() ModalState { return m.state }

// Item returns the open item.
func (m *DetailModal[T]) Item() (T, bool) {
	return m.item, m.state == ModalOpen
}

// Carousel returns the open item's images, or nil when closed.
func (m *DetailModal[T]) Carousel() *Carousel {
	return m.carousel
}

// FlowState is the lifecycle of a row action.
type FlowState string

const (
	FlowIdle        FlowState = "idle"
	FlowConfirming  FlowState = "confirming"
	FlowDispatching FlowState = "dispatching"
)

// PendingAction is the action currently moving through a flow.
type PendingAction struct {
	TargetID string            `json:"targetId"`
	Action   permission.Action `json:"action"`
}

// ActionFlow serialises row actions: destructive ones wait in confirming,
// and nothing new starts while one is dispatching.
type ActionFlow struct {
	state   FlowState
	pending PendingAction
}

func NewActionFlow() *ActionFlow {
	return &ActionFlow{state: FlowIdle}
}

// Begin starts an action. It returns true when the action must be confirmed
// before dispatch; otherwise the flow is already dispatching.
func (f *ActionFlow) Begin(targetID string, action permission.Action) (bool, error) {
	if f.state != FlowIdle {
		return false, ErrActionInProgress
	}
	f.pending = PendingAction{TargetID: targetID, Action: action}
	if action.Destructive() {
		f.state = FlowConfirming
		return true, nil
	}
	f.state = FlowDispatching
	return false, nil
}

// Confirm moves a confirming action to dispatching.
func (f *ActionFlow) Confirm() (PendingAction, error) {
	if f.state != FlowConfirming {
		return PendingAction{}, ErrNothingToConfirm
	}
	f.state = FlowDispatching
	return f.pending, nil
}

// Cancel abandons a confirming action.
func (f *ActionFlow) Cancel() {
	if f.state == FlowConfirming {
		f.reset()
	}
}

// Finish returns a dispatching flow to idle.
func (f *ActionFlow) Finish() {
	if f.state == FlowDispatching {
		f.reset()
	}
}

func (f *ActionFlow) State() FlowState { return f.state }

func (f *ActionFlow) Pending() (PendingAction, bool) {
	return f.pending, f.state != FlowIdle
}

func (f *ActionFlow) reset() {
	f.state = FlowIdle
	f.pending = PendingAction{}
}
