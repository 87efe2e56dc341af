package models

import "time"

// GalleryItem is an image set with metadata, filterable by year.
type GalleryItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images"`
	Year        int       `json:"year"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Event is an alumni gathering listed on the portal.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	Images      []string  `json:"images,omitempty"`
	Status      string    `json:"status,omitempty"`
}
