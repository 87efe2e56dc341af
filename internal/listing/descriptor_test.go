package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

var testLimits = Limits{Default: 10, Max: 100}

func TestDescriptorFilterChangesResetPage(t *testing.T) {
	d := NewDescriptor(testLimits).WithPage(4)

	assert.Equal(t, 1, d.WithSearch("ana").Page)
	assert.Equal(t, 1, d.WithStatus("pending").Page)
	assert.Equal(t, 1, d.WithRole("moderator").Page)
	assert.Equal(t, 1, d.WithYear(2015).Page)
	assert.Equal(t, 1, d.WithAuthor("u1").Page)
	assert.Equal(t, 1, d.WithSort("createdAt", "DESC").Page)
	assert.Equal(t, 4, d.Page, "builders must not mutate the receiver")
}

func TestDescriptorValues(t *testing.T) {
	d := NewDescriptor(testLimits).WithSearch("  ana ").WithSort("lastName", "desc").WithPage(3)
	values := d.Values()

	assert.Equal(t, "3", values.Get("page"))
	assert.Equal(t, "10", values.Get("limit"))
	assert.Equal(t, "ana", values.Get("search"))
	assert.Equal(t, "lastName", values.Get("sortBy"))
	assert.Equal(t, "desc", values.Get("sortOrder"))
	assert.False(t, values.Has("status"))
	assert.False(t, values.Has("year"))
	assert.Equal(t, d.Query(), d.Values().Encode())
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor(url.Values{
		"page":      {"2"},
		"limit":     {"500"},
		"status":    {"pending"},
		"year":      {"2019"},
		"sortOrder": {"ASC"},
	}, testLimits)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Page)
	assert.Equal(t, 100, d.Limit)
	assert.Equal(t, "pending", d.Status)
	assert.Equal(t, 2019, d.Year)
	assert.Equal(t, SortAsc, d.SortOrder)

	d, err = ParseDescriptor(url.Values{"page": {"-3"}}, testLimits)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 10, d.Limit)
}

func TestParseDescriptorRejectsGarbage(t *testing.T) {
	_, err := ParseDescriptor(url.Values{"page": {"x"}, "sortOrder": {"sideways"}}, testLimits)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	appErr := appErrors.FromError(err)
	assert.Contains(t, appErr.Fields, "page")
	assert.Contains(t, appErr.Fields, "sortOrder")
}

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 10, TotalPages(95, 10))
	assert.Equal(t, 10, TotalPages(100, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))

	assert.Equal(t, 10, Clamp(11, 10))
	assert.Equal(t, 1, Clamp(0, 10))
	assert.Equal(t, 1, Clamp(3, 0))
	assert.Equal(t, 7, Clamp(7, 10))
}
