package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is a role tag a user may hold. Roles are a closed set.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
	StatusRejected UserStatus = "rejected"
	StatusBlocked  UserStatus = "blocked"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusRejected, StatusBlocked:
		return true
	}
	return false
}

// AlumniType classifies an alumnus as a former student or faculty/staff member.
type AlumniType string

const (
	AlumniStudent AlumniType = "student"
	AlumniFaculty AlumniType = "faculty"
)

// User is an alumni-network account as returned by the upstream API.
type User struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Location       string     `json:"location,omitempty"`
	Profession     string     `json:"profession,omitempty"`
	Batch          string     `json:"batch,omitempty"`
	AlumniType     AlumniType `json:"alumniType,omitempty"`
	IsGraduated    bool       `json:"isGraduated"`
	GraduationYear *int       `json:"graduationYear,omitempty"`
	LeftAt         *int       `json:"leftAt,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	ProfilePhoto   string     `json:"profilePhoto,omitempty"`
	Roles          []Role     `json:"roles"`
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
}

// HasRole reports whether the user carries role r.
func (u User) HasRole(r Role) bool {
	for _, role := range u.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UnmarshalJSON accepts both the status enum and the legacy isActive boolean.
// When a payload carries only isActive it is mapped onto active/inactive.
// Unknown role tags are dropped.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var raw struct {
		alias
		IsActive *bool `json:"isActive"`
		Role     Role  `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)

	if u.Status == "" && raw.IsActive != nil {
		if *raw.IsActive {
			u.Status = StatusActive
		} else {
			u.Status = StatusInactive
		}
	}
	if len(u.Roles) == 0 && raw.Role != "" {
		u.Roles = []Role{raw.Role}
	}

	roles := u.Roles[:0]
	for _, r := range u.Roles {
		if r.Valid() {
			roles = append(roles, r)
		}
	}
	u.Roles = roles
	return nil
}
