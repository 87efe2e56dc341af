// Package view turns fetched pages into what a client renders: rows with
// permission-gated action menus, mutually exclusive list phases, image
// carousels and the small state machines behind modals and confirmations.
package view

import (
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
)

// Row placeholders shown instead of an action menu.
const (
	PlaceholderProtected = "Protected"
	PlaceholderNoActions = "No Actions"
)

// ActionItem is one entry of a row menu.
type ActionItem struct {
	Action      permission.Action `json:"action"`
	Label       string            `json:"label"`
	Destructive bool              `json:"destructive,omitempty"`
}

// UserRow is a directory row.
type UserRow struct {
	User        models.User  `json:"user"`
	Actions     []ActionItem `json:"actions"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// PostRow is a moderation row.
type PostRow struct {
	Post        models.Post  `json:"post"`
	Actions     []ActionItem `json:"actions"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// ComposeUserRows renders one row per user, in order. Rows without actions
// carry a placeholder instead of being dropped.
func ComposeUserRows(actor models.User, users []models.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		row := UserRow{User: u, Actions: items(permission.ActionsFor(actor, u))}
		switch {
		case !permission.CanModifyUser(u):
			row.Placeholder = PlaceholderProtected
		case len(row.Actions) == 0:
			row.Placeholder = PlaceholderNoActions
		}
		rows = append(rows, row)
	}
	return rows
}

// ComposePostRows renders one moderation row per post.
func ComposePostRows(actor models.User, posts []models.Post) []PostRow {
	rows := make([]PostRow, 0, len(posts))
	for _, p := range posts {
		row := PostRow{Post: p, Actions: items(permission.PostActionsFor(actor, p))}
		if len(row.Actions) == 0 {
			row.Placeholder = PlaceholderNoActions
		}
		rows = append(rows, row)
	}
	return rows
}

func items(actions []permission.Action) []ActionItem {
	out := make([]ActionItem, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionItem{Action: a, Label: a.Label(), Destructive: a.Destructive()})
	}
	return out
}
