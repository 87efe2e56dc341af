package dto

import (
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
)

// ActionRequest triggers a row action. Destructive actions need Confirmed.
type ActionRequest struct {
	Action    permission.Action `json:"action" validate:"required"`
	Confirmed bool              `json:"confirmed"`
}

// ActionResponse reports the outcome of a row action and, on success, the
// refetched page the caller was looking at.
type ActionResponse struct {
	OK      bool                         `json:"ok"`
	Message string                       `json:"message"`
	Page    *view.ListView[view.UserRow] `json:"page,omitempty"`
}

// PostActionResponse is ActionResponse for moderation.
type PostActionResponse struct {
	OK      bool                         `json:"ok"`
	Message string                       `json:"message"`
	Page    *view.ListView[view.PostRow] `json:"page,omitempty"`
}

// UserDetail is the directory detail view. Exactly one of User and NotFound
// is set.
type UserDetail struct {
	User        *models.User      `json:"user,omitempty"`
	Actions     []view.ActionItem `json:"actions,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	NotFound    *view.NotFound    `json:"notFound,omitempty"`
}
