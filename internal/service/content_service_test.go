package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

func TestPostServiceModeration(t *testing.T) {
	pending := models.Post{ID: "p1", Title: "Reunion", Status: models.PostPendingApproval}
	remote := &mockRemote{posts: map[string]models.Post{pending.ID: pending}}
	remote.listPosts = func(d listing.Descriptor) (models.Page[models.Post], error) {
		return pageOf([]models.Post{pending}, d.Page, d.Limit, 1), nil
	}
	svc := NewPostService(remote, dispatch.New(remote, nil), nil)

	plainPage, err := svc.Page(context.Background(), sessionFor(plainUser), listing.Descriptor{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, view.PlaceholderNoActions, plainPage.Rows[0].Placeholder)

	_, err = svc.Act(context.Background(), sessionFor(plainUser), "p1", permission.ActionApprove, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	resp, err := svc.Perform(context.Background(), sessionFor(modUser), "p1", dto.ActionRequest{Action: permission.ActionApprove}, listing.Descriptor{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Page)
	assert.Equal(t, []string{"status:posts:p1:active"}, remote.mutations)

	_, err = svc.Act(context.Background(), sessionFor(modUser), "p1", permission.ActionDelete, true, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Act(context.Background(), sessionFor(adminUser), "p1", permission.ActionDelete, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationNeeded)
}

func TestGalleryServiceDetailAndCreate(t *testing.T) {
	remote := &mockRemote{gallery: map[string]models.GalleryItem{
		"g1": {ID: "g1", Title: "Class of 2010", Images: []string{"a.jpg", "b.jpg", "c.jpg"}, Year: 2010},
	}}
	svc := NewGalleryService(remote, nil, nil)

	detail, err := svc.Detail(context.Background(), sessionFor(plainUser), "g1")
	require.NoError(t, err)
	require.NotNil(t, detail.Carousel)
	assert.Equal(t, "1 / 3", detail.Carousel.Counter)

	missing, err := svc.Detail(context.Background(), sessionFor(plainUser), "nope")
	require.NoError(t, err)
	require.NotNil(t, missing.NotFound)
	assert.Equal(t, GalleryBackLink, missing.NotFound.BackLink)

	req := dto.GalleryCreateRequest{Title: " Homecoming ", Year: 2020, Images: []string{"https://cdn.example.com/x.jpg"}}
	_, _, err = svc.Create(context.Background(), sessionFor(plainUser), req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	item, message, err := svc.Create(context.Background(), sessionFor(modUser), req)
	require.NoError(t, err)
	assert.Equal(t, "gal-new", item.ID)
	assert.Equal(t, "Gallery item published", message)
	require.Len(t, remote.createdGal, 1)
	assert.Equal(t, "Homecoming", remote.createdGal[0].Title)

	_, _, err = svc.Create(context.Background(), sessionFor(modUser), dto.GalleryCreateRequest{Title: "No images", Year: 2020})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, remote.createdGal, 1)
}

func TestGalleryAndEventPagesRenderEmpty(t *testing.T) {
	remote := &mockRemote{}
	gallery := NewGalleryService(remote, nil, nil)
	events := NewEventService(remote, nil)

	gv, err := gallery.Page(context.Background(), sessionFor(plainUser), listing.Descriptor{Page: 1, Limit: 12, Year: 2010})
	require.NoError(t, err)
	assert.Equal(t, view.PhaseEmpty, gv.Phase)
	assert.Equal(t, view.EmptyMessage, gv.Message)

	remote.events = pageOf([]models.Event{{ID: "e1", Title: "Gala"}}, 1, 10, 1)
	ev, err := events.Page(context.Background(), sessionFor(plainUser), listing.Descriptor{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, view.PhaseReady, ev.Phase)
	assert.Len(t, ev.Rows, 1)
}
