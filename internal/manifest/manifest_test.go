package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestWriteFormat(t *testing.T) {
	t.Parallel()

	records := []Record{
		{
			Name:   "하츄핑",
			NameKo: ptr("하츄핑"),
			NameEn: "Hachuping",
			Season: ptr(1),
			File:   "images/Hachuping_1.jpg",
			Source: "google",
		},
		{
			Name:   "Gammaping",
			NameEn: "Gammaping",
			File:   "images/Gammaping_2.jpg",
			Source: "google",
		},
	}

	path := filepath.Join(t.TempDir(), "data", "mapping.json")
	require.NoError(t, Write(path, records))

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "name": "하츄핑",
    "name_ko": "하츄핑",
    "name_en": "Hachuping",
    "season": 1,
    "file": "images/Hachuping_1.jpg",
    "source": "google"
  },
  {
    "name": "Gammaping",
    "name_ko": null,
    "name_en": "Gammaping",
    "season": null,
    "file": "images/Gammaping_2.jpg",
    "source": "google"
  }
]`
	assert.Equal(t, want, string(got))
}

func TestWriteEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, Write(path, nil))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestWriteKeepsSpecialCharactersLiteral(t *testing.T) {
	t.Parallel()

	data, err := Marshal([]Record{{Name: "A&B <ping>", NameEn: "A&B <ping>"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"A&B <ping>"`)
}

func TestWriteReplacesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, Write(path, []Record{{Name: "old"}}))
	require.NoError(t, Write(path, []Record{{Name: "new", NameEn: "new", Source: "google"}}))

	records, err := Read(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadRoundTripsNulls(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, Write(path, []Record{{Name: "Gammaping", NameEn: "Gammaping"}}))

	records, err := Read(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].NameKo)
	assert.Nil(t, records[0].Season)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Name: "하츄핑", NameEn: "Hachuping"},
		{Name: "하츄핑", NameEn: "Hachuping"},
		{Name: "Gammaping", NameEn: "Gammaping"},
	}

	s := Summarize(records)
	assert.Equal(t, Summary{Images: 3, Names: 2}, s)
	assert.Equal(t, "Downloaded 3 images for 2 names.", s.String())
	assert.Equal(t, "Downloaded 0 images for 0 names.", Summarize(nil).String())
}
