package models

import "time"

// Visibility is the audience scope of a post.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityAlumniOnly Visibility = "alumni_only"
	VisibilityPrivate    Visibility = "private"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostPendingApproval PostStatus = "pending_approval"
	PostActive          PostStatus = "active"
	PostInactive        PostStatus = "inactive"
)

// Valid reports whether s is a known moderation status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostPendingApproval, PostActive, PostInactive:
		return true
	}
	return false
}

// Post is authored content owned by a user.
type Post struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags,omitempty"`
	Images     []string   `json:"images,omitempty"`
	Visibility Visibility `json:"visibility"`
	Status     PostStatus `json:"status"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
}
