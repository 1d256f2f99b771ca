package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}
}

func TestFindInputs(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "workbooks and csv",
			files:    []string{"b.xlsx", "a.csv", "c.XLSM"},
			expected: []string{"a.csv", "b.xlsx", "c.XLSM"},
		},
		{
			name:     "other types ignored",
			files:    []string{"report.xlsx", "notes.txt", "legacy.xls", "doc.pdf"},
			expected: []string{"report.xlsx"},
		},
		{
			name:     "lock files and outputs skipped",
			files:    []string{"~$weekly.xlsx", "weekly.xlsx", "weekly_partial_week_output.xlsx", "weekly_partial_week_output.csv"},
			expected: []string{"weekly.xlsx"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)

			found, err := NewDiscovery("").FindInputs(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(4), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindInputs_SkipsDirectoriesAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.xlsx"), nil, 0o644))
	writeFiles(t, dir, "weekly.xlsx")

	found, err := NewDiscovery("").FindInputs(dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "weekly.xlsx", found[0].Name)
}

func TestFindInputs_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "exports"), 0o755))
	writeFiles(t, filepath.Join(base, "exports"), "weekly.xlsx")

	found, err := NewDiscovery(base).FindInputs("exports")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "exports", "weekly.xlsx"), found[0].Path)
}

func TestFindInputs_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery("").FindInputs(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to read directory")
}
