package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:       "Alumni directory",
		GeneratedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Columns: []Column{
			{Key: "name", Title: "Name"},
			{Key: "email", Title: "Email", Width: 70},
			{Key: "status"},
		},
		Rows: []map[string]string{
			{"name": "Ana Lopez", "email": "ana@example.com", "status": "active"},
			{"name": "Budi, Jr.", "email": "budi@example.com", "status": "pending"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,status", lines[0])
	assert.Equal(t, `"Budi, Jr.",budi@example.com,pending`, lines[2])
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, map[string]string{"name": strings.Repeat("x", 200), "email": "e", "status": "s"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]Column{{Width: 77}, {}, {}})
	assert.Equal(t, []float64{77, 100, 100}, widths)
}
