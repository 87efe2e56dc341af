package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

type eventRemote interface {
	ListEvents(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Event], error)
}

// EventService lists alumni events.
type EventService struct {
	remote eventRemote
	logger *zap.Logger
}

func NewEventService(remote eventRemote, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{remote: remote, logger: logger}
}

// Page fetches one page of events.
func (s *EventService) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[models.Event], error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}
	page, err := s.remote.ListEvents(ctx, sess.Token, d)
	if err != nil {
		return nil, err
	}
	v := view.FromPage(d, page, identity[models.Event])
	return &v, nil
}
