package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
)

// ListPosts fetches one page of posts. The author filter narrows to one user.
func (c *Client) ListPosts(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Post], error) {
	var page models.Page[models.Post]
	_, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/posts",
		operation: "list_posts",
		token:     token,
		query:     d.Values(),
	}, &page)
	return normalizePage(page, d), err
}

// ListGallery fetches one page of gallery items.
func (c *Client) ListGallery(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.GalleryItem], error) {
	var page models.Page[models.GalleryItem]
	_, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/gallery",
		operation: "list_gallery",
		token:     token,
		query:     d.Values(),
	}, &page)
	return normalizePage(page, d), err
}

func (c *Client) GetGalleryItem(ctx context.Context, token, id string) (*models.GalleryItem, error) {
	var item models.GalleryItem
	if _, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/gallery/" + url.PathEscape(id),
		operation: "get_gallery_item",
		token:     token,
	}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateGalleryItem publishes already-hosted images.
func (c *Client) CreateGalleryItem(ctx context.Context, token string, item models.NewGalleryItem) (*models.GalleryItem, string, error) {
	var created models.GalleryItem
	message, err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/gallery",
		operation: "create_gallery_item",
		token:     token,
		body:      item,
	}, &created)
	if err != nil {
		return nil, "", err
	}
	return &created, message, nil
}

// ListEvents fetches one page of events.
func (c *Client) ListEvents(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.Event], error) {
	var page models.Page[models.Event]
	_, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/events",
		operation: "list_events",
		token:     token,
		query:     d.Values(),
	}, &page)
	return normalizePage(page, d), err
}

func (c *Client) GetPost(ctx context.Context, token, id string) (*models.Post, error) {
	var post models.Post
	if _, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/posts/" + url.PathEscape(id),
		operation: "get_post",
		token:     token,
	}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}
