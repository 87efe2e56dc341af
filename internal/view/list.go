package view

import (
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// Phase is the single state a list renders in.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseEmpty   Phase = "empty"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"
)

// EmptyMessage is shown when a list has no items.
const EmptyMessage = "No results found."

// ListView is a rendered list. Rows and Pagination are only set when Phase is
// ready; Message is set for empty and error.
type ListView[R any] struct {
	Phase      Phase              `json:"phase"`
	Rows       []R                `json:"rows,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Query      listing.Descriptor `json:"query"`
	Message    string             `json:"message,omitempty"`
	CanRetry   bool               `json:"canRetry,omitempty"`
}

// FromSnapshot renders a controller snapshot. A snapshot that has never
// issued a fetch renders as loading.
func FromSnapshot[T, R any](snap listing.Snapshot[T], compose func([]T) []R) ListView[R] {
	switch {
	case snap.Seq == 0 || snap.State == listing.StateFetching:
		return ListView[R]{Phase: PhaseLoading, Query: snap.Descriptor}
	case snap.State == listing.StateErrored:
		return ListView[R]{
			Phase:    PhaseError,
			Query:    snap.Descriptor,
			Message:  appErrors.UserMessage(snap.Err),
			CanRetry: true,
		}
	}
	return FromPage(snap.Descriptor, snap.Page, compose)
}

// FromPage renders a fetched page as ready or empty.
func FromPage[T, R any](query listing.Descriptor, page models.Page[T], compose func([]T) []R) ListView[R] {
	if len(page.Items) == 0 {
		return ListView[R]{Phase: PhaseEmpty, Query: query, Message: EmptyMessage, Pagination: page.Meta()}
	}
	return ListView[R]{
		Phase:      PhaseReady,
		Rows:       compose(page.Items),
		Pagination: page.Meta(),
		Query:      query,
	}
}

// NotFound is the explicit state for a missing entity.
type NotFound struct {
	Message  string `json:"message"`
	BackLink string `json:"backLink"`
	BackText string `json:"backText"`
}

// NewNotFound builds a not-found state pointing back to backLink.
func NewNotFound(entity, backLink string) NotFound {
	return NotFound{
		Message:  entity + " not found",
		BackLink: backLink,
		BackText: "Back to list",
	}
}
