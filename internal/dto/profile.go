package dto

import "github.com/noah-isme/alumni-portal/internal/models"

// ProfileUpdateRequest edits the caller's own profile.
type ProfileUpdateRequest struct {
	ProfileFields
	ProfilePhoto string `json:"profilePhoto,omitempty" validate:"omitempty,url"`
}

// ToFields renders the update as an upstream patch body.
func (r ProfileUpdateRequest) ToFields() map[string]interface{} {
	fields := r.ProfileFields.ToFields()
	if r.ProfilePhoto != "" {
		fields["profilePhoto"] = r.ProfilePhoto
	}
	return fields
}

// ProfilePage is a user with their posts and gallery items.
type ProfilePage struct {
	User          models.User          `json:"user"`
	Posts         []models.Post        `json:"posts"`
	Gallery       []models.GalleryItem `json:"gallery"`
	IsOwn         bool                 `json:"isOwn"`
	CanEdit       bool                 `json:"canEdit"`
	PostsTotal    int                  `json:"postsTotal"`
	GalleryTotal  int                  `json:"galleryTotal"`
	PartialErrors []string             `json:"partialErrors,omitempty"`
}
