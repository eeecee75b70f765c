package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pandaskit/internal/inject"
)

func writeHeader(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "src", "config")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("\xEF\xBB\xBF"+content), 0o644))
}

func TestWorkspace_Community(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		short   string
	}{
		{"1.1.8.1", "1.1.8-dev"},
		{"1.1.8.0", "1.1.8"},
		{"1.1.8", "1.1.8"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeHeader(t, root, "pandas.hpp", "#pragma once\n#define Pandas_Version \""+tt.version+"\"\n")
			w := Workspace{Root: root}

			origin, err := w.CommunityVersion(true)
			require.NoError(t, err)
			assert.Equal(t, tt.version, origin)

			short, err := w.CommunityVersion(false)
			require.NoError(t, err)
			assert.Equal(t, tt.short, short)

			assert.False(t, w.IsCommercial())
			assert.Equal(t, inject.Community, w.Mode())

			display, err := w.DisplayVersion("v")
			require.NoError(t, err)
			assert.Equal(t, "v"+tt.short, display)
		})
	}
}

func TestWorkspace_Commercial(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeHeader(t, root, "pandas.hpp", "#define Pandas_Version \"1.1.8.0\"\n")
	writeHeader(t, root, "professional.hpp", "#define Pandas_Commercial_Version \"2024.05.01.3\"\n")
	w := Workspace{Root: root}

	assert.True(t, w.IsCommercial())
	assert.Equal(t, inject.Commercial, w.Mode())

	v, err := w.CommercialVersion(false)
	require.NoError(t, err)
	assert.Equal(t, "2024.05.01 Rev.3", v)

	display, err := w.DisplayVersion("v")
	require.NoError(t, err)
	assert.Equal(t, "v2024.05.01 Rev.3", display)
}

func TestWorkspace_CommercialHeaderWithoutDefine(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeHeader(t, root, "professional.hpp", "// nothing here\n")
	w := Workspace{Root: root}

	assert.False(t, w.IsCommercial())
	_, err := w.CommercialVersion(true)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestWorkspace_MissingHeader(t *testing.T) {
	t.Parallel()
	w := Workspace{Root: t.TempDir()}

	_, err := w.CommunityVersion(false)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, inject.Community, w.Mode())
}
