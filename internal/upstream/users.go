package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
)

// ListUsers fetches one directory page.
func (c *Client) ListUsers(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.User], error) {
	var page models.Page[models.User]
	_, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/users",
		operation: "list_users",
		token:     token,
		query:     d.Values(),
	}, &page)
	return normalizePage(page, d), err
}

// GetUser fetches one user. includeDetails asks the API for the extended
// profile fields.
func (c *Client) GetUser(ctx context.Context, token, id string, includeDetails bool) (*models.User, error) {
	var query url.Values
	if includeDetails {
		query = url.Values{"includeDetails": {"true"}}
	}
	var user models.User
	if _, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/users/" + url.PathEscape(id),
		operation: "get_user",
		token:     token,
		query:     query,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the account behind token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, call{
		method:    http.MethodGet,
		path:      "/auth/me",
		operation: "current_user",
		token:     token,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAccount submits a completed registration.
func (c *Client) CreateAccount(ctx context.Context, account models.NewAccount) (*models.User, string, error) {
	var user models.User
	message, err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/register",
		operation: "create_account",
		body:      account,
	}, &user)
	if err != nil {
		return nil, "", err
	}
	return &user, message, nil
}

// UpdateStatus sets the lifecycle status of a user or the moderation status
// of a post.
func (c *Client) UpdateStatus(ctx context.Context, token string, entity models.Entity, id, status string) (string, error) {
	return c.do(ctx, call{
		method:    http.MethodPatch,
		path:      "/" + string(entity) + "/" + url.PathEscape(id) + "/status",
		operation: "update_status",
		token:     token,
		body:      map[string]string{"status": status},
	}, nil)
}

// UpdateRole grants role to a user.
func (c *Client) UpdateRole(ctx context.Context, token, id string, role models.Role) (string, error) {
	return c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/users/" + url.PathEscape(id) + "/roles",
		operation: "update_role",
		token:     token,
		body:      map[string]string{"role": string(role)},
	}, nil)
}

// RemoveRole revokes role from a user.
func (c *Client) RemoveRole(ctx context.Context, token, id string, role models.Role) (string, error) {
	return c.do(ctx, call{
		method:    http.MethodDelete,
		path:      "/users/" + url.PathEscape(id) + "/roles/" + url.PathEscape(string(role)),
		operation: "remove_role",
		token:     token,
	}, nil)
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, token string, entity models.Entity, id string) (string, error) {
	return c.do(ctx, call{
		method:    http.MethodDelete,
		path:      "/" + string(entity) + "/" + url.PathEscape(id),
		operation: "delete_" + string(entity),
		token:     token,
	}, nil)
}

// UpdateProfile patches profile fields of a user.
func (c *Client) UpdateProfile(ctx context.Context, token, id string, fields map[string]interface{}) (string, error) {
	return c.do(ctx, call{
		method:    http.MethodPut,
		path:      "/users/" + url.PathEscape(id) + "/profile",
		operation: "update_profile",
		token:     token,
		body:      fields,
	}, nil)
}

func normalizePage[T any](page models.Page[T], d listing.Descriptor) models.Page[T] {
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.ItemsPerPage <= 0 {
		page.ItemsPerPage = d.Limit
	}
	if page.CurrentPage <= 0 {
		page.CurrentPage = d.Page
	}
	if page.TotalPages <= 0 {
		page.TotalPages = listing.TotalPages(page.TotalItems, page.ItemsPerPage)
	}
	return page
}
