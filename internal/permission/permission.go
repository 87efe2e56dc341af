// Package permission is the single place role checks are made. Permissions
// are resolved by a static lookup table; callers layer the protected-admin and
// moderator-scope rules on top through CanModifyUser and ActionsFor.
package permission

import "github.com/noah-isme/alumni-portal/internal/models"

// Permission is a closed enumeration of capabilities.
type Permission string

const (
	ManageUsers         Permission = "MANAGE_USERS"
	DeleteUser          Permission = "DELETE_USER"
	BlockUser           Permission = "BLOCK_USER"
	ChangeUserRole      Permission = "CHANGE_USER_ROLE"
	UploadGallery       Permission = "UPLOAD_GALLERY"
	PostAnnouncement    Permission = "POST_ANNOUNCEMENT"
	ManageAnnouncements Permission = "MANAGE_ANNOUNCEMENTS"
	ModeratePosts       Permission = "MODERATE_POSTS"
	ManageEvents        Permission = "MANAGE_EVENTS"
)

var table = map[Permission][]models.Role{
	ManageUsers:         {models.RoleAdmin, models.RoleModerator},
	DeleteUser:          {models.RoleAdmin},
	BlockUser:           {models.RoleAdmin},
	ChangeUserRole:      {models.RoleAdmin},
	UploadGallery:       {models.RoleAdmin, models.RoleModerator},
	PostAnnouncement:    {models.RoleAdmin, models.RoleModerator},
	ManageAnnouncements: {models.RoleAdmin},
	ModeratePosts:       {models.RoleAdmin, models.RoleModerator},
	ManageEvents:        {models.RoleAdmin, models.RoleModerator},
}

// Known reports whether p exists in the permission table.
func Known(p Permission) bool {
	_, ok := table[p]
	return ok
}

// HasPermission reports whether any of roles is granted p. Unknown
// permissions and empty role sets always yield false.
func HasPermission(roles []models.Role, p Permission) bool {
	allowed, ok := table[p]
	if !ok {
		return false
	}
	for _, have := range roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Can is HasPermission for a user.
func Can(u models.User, p Permission) bool {
	return HasPermission(u.Roles, p)
}

// CanModifyUser reports whether target may be the subject of role, status or
// delete mutations at all. Admins are protected regardless of the actor.
func CanModifyUser(target models.User) bool {
	return !target.HasRole(models.RoleAdmin)
}
