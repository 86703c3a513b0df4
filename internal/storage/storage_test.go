package storage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteNDJSONKeepsUnicode(t *testing.T) {
	country := "RS"
	jobs := []Job{
		{Remote: &RemoteJob{StableKey: "a1", Title: "Go <Developer>", Company: "Ćevap & Co", Remote: true}},
		{Hybrid: &HybridJob{ExternalID: "b2", Title: "Programer", CountryCode: &country, Skills: []string{}, Technologies: []string{}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, jobs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"company":"Ćevap & Co"`)
	assert.Contains(t, lines[0], `"title":"Go <Developer>"`)
	assert.Contains(t, lines[0], `"stable_key":"a1"`)
	assert.NotContains(t, lines[1], "stable_key")
	assert.Contains(t, lines[1], `"country_code":"RS"`)
	assert.Contains(t, lines[1], `"skills":[]`)
}

func TestSaveAndLoadNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "jobs.ndjson")
	jobs := []Job{
		{Remote: &RemoteJob{StableKey: "a1", Title: "Backend", Raw: map[string]any{"id": "7"}}},
		{Hybrid: &HybridJob{ExternalID: "b2", Title: "Frontend", QualityScore: 65}},
	}

	require.NoError(t, SaveNDJSON(path, jobs))

	records, err := LoadNDJSON(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a1", records[0]["stable_key"])
	assert.Equal(t, map[string]any{"id": "7"}, records[0]["raw"])
	assert.Equal(t, float64(65), records[1]["quality_score"])
}

func TestReadNDJSONSkipsBlankLines(t *testing.T) {
	input := "{\"title\":\"a\"}\n\n   \n{\"title\":\"b\"}\n"
	records, err := ReadNDJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1]["title"])
}

func TestReadNDJSONReportsLine(t *testing.T) {
	_, err := ReadNDJSON(strings.NewReader("{\"title\":\"a\"}\n{broken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestJobAccessors(t *testing.T) {
	remote := Job{Remote: &RemoteJob{StableKey: "k", RemoteType: "REMOTE", Title: "T"}}
	hybrid := Job{Hybrid: &HybridJob{ExternalID: "e", RemoteType: "HYBRID", Title: "H"}}

	assert.Equal(t, "k", remote.ID())
	assert.Equal(t, "REMOTE", remote.RemoteType())
	assert.Equal(t, RemoteTable, remote.Table())
	assert.Equal(t, "e", hybrid.ID())
	assert.Equal(t, "H", hybrid.Title())
	assert.Equal(t, HybridTable, hybrid.Table())
	assert.Equal(t, "", Job{}.ID())

	_, err := Job{}.MarshalJSON()
	assert.Error(t, err)

	rec, err := hybrid.Record()
	require.NoError(t, err)
	assert.Equal(t, "e", rec["external_id"])
	assert.Nil(t, rec["salary_min"])
}

func TestColumns(t *testing.T) {
	cols := Columns([]Record{
		{"title": "a", "external_id": "1"},
		{"title": "b", "location": "Beograd"},
	})
	assert.Equal(t, []string{"external_id", "location", "title"}, cols)
}
