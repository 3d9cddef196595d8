package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONJob_MixedItems(t *testing.T) {
	data := []byte(`{
		"name": "Frame",
		"rods": [311.5, {"length": 364.5, "quantity": 2, "label": "A"}],
		"pieces": [227, {"length": 90.5, "label": "Brace"}],
		"sort": "desc"
	}`)

	job, err := ParseJSONJob(data)
	require.NoError(t, err)

	assert.Equal(t, "Frame", job.Name)
	assert.Equal(t, model.SortDescending, job.SortOrder)
	require.Len(t, job.Rods, 2)
	require.Len(t, job.Pieces, 2)

	assert.Equal(t, "Rod 1", job.Rods[0].Label)
	assert.Equal(t, 311.5, job.Rods[0].Length)
	assert.Equal(t, 1, job.Rods[0].Quantity)
	assert.Equal(t, "A", job.Rods[1].Label)
	assert.Equal(t, 2, job.Rods[1].Quantity)
	assert.Equal(t, "Brace", job.Pieces[1].Label)
	assert.Equal(t, 1, job.Pieces[1].Quantity)
}

func TestParseJSONJob_EmptyAndMissingPieces(t *testing.T) {
	job, err := ParseJSONJob([]byte(`{"rods":[10],"pieces":[]}`))
	require.NoError(t, err)
	assert.Empty(t, job.Pieces)
	assert.Equal(t, model.SortNone, job.SortOrder)

	job, err = ParseJSONJob([]byte(`{"rods":[0, 10]}`))
	require.NoError(t, err)
	assert.Len(t, job.Rods, 2)
	assert.Empty(t, job.Pieces)
}

func TestParseJSONJob_ProjectFileShape(t *testing.T) {
	p := model.NewProject()
	p.Name = "Saved"
	p.Rods = append(p.Rods, model.NewRod("Bar", 6000, 2))
	p.Pieces = append(p.Pieces, model.NewPiece("Leg", 700, 4))
	p.Settings.SortOrder = model.SortAscending

	path := filepath.Join(t.TempDir(), "saved.json")
	data := []byte(`{"name":"Saved","rods":[{"id":"x","label":"Bar","length":6000,"quantity":2}],` +
		`"pieces":[{"id":"y","label":"Leg","length":700,"quantity":4}],"settings":{"sort_order":"asc"}}`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	result := ImportFile(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Rods, 1)
	assert.Equal(t, p.Rods[0].Label, result.Rods[0].Label)
	assert.Equal(t, p.Rods[0].Quantity, result.Rods[0].Quantity)
	assert.Equal(t, p.Pieces[0].Length, result.Pieces[0].Length)

	job, err := ParseJSONJob(data)
	require.NoError(t, err)
	assert.Equal(t, p.Settings.SortOrder, job.SortOrder)
}

func TestParseJSONJob_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"rods":[1,`},
		{"rods missing", `{"pieces":[1]}`},
		{"rods not array", `{"rods":5}`},
		{"pieces not array", `{"rods":[5],"pieces":"x"}`},
		{"negative length", `{"rods":[-1]}`},
		{"string length", `{"rods":["10"]}`},
		{"object without length", `{"rods":[{"quantity":2}]}`},
		{"zero quantity", `{"rods":[{"length":10,"quantity":0}]}`},
		{"fractional quantity", `{"rods":[10],"pieces":[{"length":1,"quantity":1.5}]}`},
		{"unknown sort", `{"rods":[10],"sort":"random"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSONJob([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}
