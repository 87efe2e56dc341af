package models

import "time"

// Session is the authenticated context passed explicitly to services.
type Session struct {
	Token     string    `json:"-"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// ActorID returns the acting user's id or an empty string.
func (s *Session) ActorID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}
