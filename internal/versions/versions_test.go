package versions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandaskit/internal/charset"
	"pandaskit/internal/inject"
)

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestValid(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"1.1.8.1":      true,
		"2024.05.01.0": true,
		"1.1.8":        false,
		"1.1.8.1.2":    false,
		"1.a.8.1":      false,
		"1..8.1":       false,
		"1,1,8,1":      false,
		"":             false,
		"1.1.8.+1":     false,
	}
	for in, want := range tests {
		assert.Equal(t, want, Valid(in), in)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, mode, want string
	}{
		{"1.1.8.1", ".", "1.1.8.1"},
		{"1.1.8.1", ",", "1,1,8,1"},
		{"1,1,8,0", ".", "1.1.8.0"},
		{"1.1.8.1", "fmt", "v1.1.8-dev"},
		{"1.1.8.0", "fmt", "v1.1.8"},
	}
	for _, tt := range tests {
		got, err := Format(tt.in, tt.mode)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s as %s", tt.in, tt.mode)
	}

	_, err := Format("118", ".")
	assert.ErrorIs(t, err, ErrInvalidVersion)
	_, err = Format("1.1.8.1", "?")
	assert.Error(t, err)
}

// =============================================================================
// UPDATER TESTS
// =============================================================================

const rcTemplate = "1 VERSIONINFO\r\n FILEVERSION 1,1,7,0\r\n PRODUCTVERSION 1,1,7,0\r\nBEGIN\r\n  VALUE \"FileVersion\", \"1.1.7.0\"\r\n  VALUE \"ProductVersion\", \"1.1.7.0\"\r\nEND\r\n"

func TestUpdateDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	rcPath := filepath.Join(root, "map", "map-server.rc")
	hppPath := filepath.Join(root, "config", "pandas.hpp")
	otherPath := filepath.Join(root, "config", "pandas.hpp.bak")
	require.NoError(t, os.MkdirAll(filepath.Dir(rcPath), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(hppPath), 0o755))

	rc, err := charset.Encode(rcTemplate, charset.UTF16LE)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(rcPath, rc, 0o644))

	header := "\xEF\xBB\xBF#define Pandas_Version \"1.1.7.0\"\n#define Pandas_Commercial_Version \"2024.01.01.0\"\n"
	require.NoError(t, os.WriteFile(hppPath, []byte(header), 0o644))
	require.NoError(t, os.WriteFile(otherPath, []byte(header), 0o644))

	var seen []string
	u := NewUpdater()
	u.OnFile = func(path string) { seen = append(seen, path) }

	updates, err := u.UpdateDirectory(root, "1.1.8.1", inject.Community)
	require.NoError(t, err)
	assert.Len(t, updates, 2)
	assert.ElementsMatch(t, []string{rcPath, hppPath}, seen)

	data, err := os.ReadFile(rcPath)
	require.NoError(t, err)
	assert.Equal(t, charset.UTF16LE, charset.Detect(data))
	text, err := charset.Decode(data, charset.UTF16LE)
	require.NoError(t, err)
	assert.Contains(t, text, " FILEVERSION 1,1,8,1\r\n")
	assert.Contains(t, text, " PRODUCTVERSION 1,1,8,1\r\n")
	assert.Contains(t, text, `VALUE "FileVersion", "1.1.8.1"`)
	assert.Contains(t, text, `VALUE "ProductVersion", "1.1.8.1"`)

	hpp, err := os.ReadFile(hppPath)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBF#define Pandas_Version \"1.1.8.1\"\n#define Pandas_Commercial_Version \"2024.01.01.0\"\n", string(hpp))

	bak, err := os.ReadFile(otherPath)
	require.NoError(t, err)
	assert.Equal(t, header, string(bak))
}

func TestUpdateDirectory_CommercialOnlyTouchesCommercialDefine(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	hppPath := filepath.Join(root, "pandas.hpp")
	require.NoError(t, os.WriteFile(hppPath, []byte("#define Pandas_Version \"1.1.7.0\"\n#define Pandas_Commercial_Version \"2024.01.01.0\"\n"), 0o644))

	_, err := NewUpdater().UpdateDirectory(root, "2024.06.01.2", inject.Commercial)
	require.NoError(t, err)

	data, err := os.ReadFile(hppPath)
	require.NoError(t, err)
	assert.Equal(t, "#define Pandas_Version \"1.1.7.0\"\n#define Pandas_Commercial_Version \"2024.06.01.2\"\n", string(data))
}

func TestUpdateDirectory_RejectsInvalidVersion(t *testing.T) {
	t.Parallel()
	_, err := NewUpdater().UpdateDirectory(t.TempDir(), "1.2.3", inject.Community)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestUpdateDirectory_UnchangedFilesNotRewritten(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	hppPath := filepath.Join(root, "pandas.hpp")
	require.NoError(t, os.WriteFile(hppPath, []byte("#define Pandas_Version \"1.1.8.1\"\n"), 0o600))

	updates, err := NewUpdater().UpdateDirectory(root, "1.1.8.1", inject.Community)
	require.NoError(t, err)
	assert.Empty(t, updates)
}
