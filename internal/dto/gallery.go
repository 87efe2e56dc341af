package dto

import (
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/view"
)

// GalleryCreateRequest publishes hosted images as a gallery item.
type GalleryCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=120"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Year        int      `json:"year" validate:"required,pastyear"`
	Images      []string `json:"images" validate:"required,min=1,max=20,dive,url"`
}

// GalleryDetail is a gallery item with its carousel. NotFound replaces both
// when the item is missing.
type GalleryDetail struct {
	Item     *models.GalleryItem `json:"item,omitempty"`
	Carousel *view.CarouselState `json:"carousel,omitempty"`
	NotFound *view.NotFound      `json:"notFound,omitempty"`
}

// UploadedImage is a hosted image reference.
type UploadedImage struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
