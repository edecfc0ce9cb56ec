package dupes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below a fresh temporary directory and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

// memFS returns an in-memory filesystem holding files.
func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()

	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}

	return fsys
}

// relPaths returns the paths of entries relative to root, in slash form.
func relPaths(t *testing.T, root string, entries []FileEntry) []string {
	t.Helper()

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		rel, err := filepath.Rel(root, entry.Path)
		require.NoError(t, err)

		paths = append(paths, filepath.ToSlash(rel))
	}

	return paths
}
