package listing

import (
	"net/url"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Limits bounds the page size a descriptor may ask for.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) normalize(limit int) int {
	if limit <= 0 {
		limit = l.Default
	}
	if limit <= 0 {
		limit = 10
	}
	if l.Max > 0 && limit > l.Max {
		limit = l.Max
	}
	return limit
}

// Descriptor is the full query state of one list: page, size, sort and
// filters. It is a value type; builder methods return modified copies.
type Descriptor struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
	Search    string `json:"search,omitempty"`
	Status    string `json:"status,omitempty"`
	Role      string `json:"role,omitempty"`
	Year      int    `json:"year,omitempty"`
	Author    string `json:"author,omitempty"`
}

// NewDescriptor returns the first page with the default limit.
func NewDescriptor(limits Limits) Descriptor {
	return Descriptor{Page: 1, Limit: limits.normalize(0)}
}

// WithSearch replaces the search term and resets to page one.
func (d Descriptor) WithSearch(term string) Descriptor {
	d.Search = strings.TrimSpace(term)
	d.Page = 1
	return d
}

// WithStatus replaces the status filter and resets to page one.
func (d Descriptor) WithStatus(status string) Descriptor {
	d.Status = strings.TrimSpace(status)
	d.Page = 1
	return d
}

// WithRole replaces the role filter and resets to page one.
func (d Descriptor) WithRole(role string) Descriptor {
	d.Role = strings.TrimSpace(role)
	d.Page = 1
	return d
}

// WithYear replaces the year filter and resets to page one. Zero clears it.
func (d Descriptor) WithYear(year int) Descriptor {
	if year < 0 {
		year = 0
	}
	d.Year = year
	d.Page = 1
	return d
}

// WithAuthor replaces the author filter and resets to page one.
func (d Descriptor) WithAuthor(author string) Descriptor {
	d.Author = strings.TrimSpace(author)
	d.Page = 1
	return d
}

// WithSort replaces the sort column and direction and resets to page one.
func (d Descriptor) WithSort(by, order string) Descriptor {
	d.SortBy = strings.TrimSpace(by)
	d.SortOrder = normalizeOrder(order)
	d.Page = 1
	return d
}

// WithPage moves to page p without touching filters. Values below one
// become one; the upper bound is applied by the controller, which knows the
// total page count.
func (d Descriptor) WithPage(p int) Descriptor {
	if p < 1 {
		p = 1
	}
	d.Page = p
	return d
}

// Values serialises the descriptor as query parameters. Page and limit are
// always present; empty filters are omitted.
func (d Descriptor) Values() url.Values {
	values := url.Values{}
	page := d.Page
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	if d.Limit > 0 {
		values.Set("limit", strconv.Itoa(d.Limit))
	}
	if d.SortBy != "" {
		values.Set("sortBy", d.SortBy)
		if d.SortOrder != "" {
			values.Set("sortOrder", d.SortOrder)
		}
	}
	if d.Search != "" {
		values.Set("search", d.Search)
	}
	if d.Status != "" {
		values.Set("status", d.Status)
	}
	if d.Role != "" {
		values.Set("role", d.Role)
	}
	if d.Year > 0 {
		values.Set("year", strconv.Itoa(d.Year))
	}
	if d.Author != "" {
		values.Set("author", d.Author)
	}
	return values
}

// Query is the encoded form of Values, stable for equal descriptors.
func (d Descriptor) Query() string {
	return d.Values().Encode()
}

// ParseDescriptor reads a descriptor from request query parameters.
func ParseDescriptor(values url.Values, limits Limits) (Descriptor, error) {
	d := NewDescriptor(limits)
	fields := map[string]string{}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			fields["page"] = "must be a number"
		} else {
			d = d.WithPage(page)
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			fields["limit"] = "must be a number"
		} else {
			d.Limit = limits.normalize(limit)
		}
	}
	if raw := strings.TrimSpace(values.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 0 {
			fields["year"] = "must be a positive year"
		} else {
			d.Year = year
		}
	}

	d.SortBy = strings.TrimSpace(values.Get("sortBy"))
	if raw := strings.TrimSpace(values.Get("sortOrder")); raw != "" {
		order := strings.ToLower(raw)
		if order != SortAsc && order != SortDesc {
			fields["sortOrder"] = "must be asc or desc"
		} else {
			d.SortOrder = order
		}
	}
	d.Search = strings.TrimSpace(values.Get("search"))
	d.Status = strings.TrimSpace(values.Get("status"))
	d.Role = strings.TrimSpace(values.Get("role"))
	d.Author = strings.TrimSpace(values.Get("author"))

	if len(fields) > 0 {
		return d, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid list parameters"), fields)
	}
	return d, nil
}

// TotalPages is ceil(totalItems / perPage). A non-positive page size yields 0.
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + perPage - 1) / perPage
}

// Clamp bounds page to [1, totalPages]. With no pages known the result is 1.
func Clamp(page, totalPages int) int {
	if page < 1 || totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func normalizeOrder(order string) string {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case SortDesc:
		return SortDesc
	case SortAsc:
		return SortAsc
	}
	return ""
}
