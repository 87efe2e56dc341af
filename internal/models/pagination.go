package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Page is one page of items plus its pagination metadata.
type Page[T any] struct {
	Items        []T `json:"items"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Meta extracts the pagination metadata.
func (p Page[T]) Meta() *Pagination {
	return &Pagination{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalItems:   p.TotalItems,
		ItemsPerPage: p.ItemsPerPage,
	}
}

// Entity names a mutable upstream resource kind.
type Entity string

const (
	EntityUser    Entity = "users"
	EntityPost    Entity = "posts"
	EntityGallery Entity = "gallery"
)
