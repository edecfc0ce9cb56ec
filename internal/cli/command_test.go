package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dupes/internal/dupes"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "dupes.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log:\n  level: warn\n"), 0o600))

	var out, errOut strings.Builder

	cmd := New("v1.2.3").Command()
	cmd.SetArgs(append([]string{"--config", configFile}, args...))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()

	return out.String(), err
}

func TestCommand_Version(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3\n", out)
}

func TestCommand_InvalidFlags(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"-o", "xml"},
		{"--depth=-1"},
		{"--sort", "sideways"},
		{"--min-size", "lots"},
		{"--algorithm", "crc32", "--check"},
	} {
		_, err := execute(t, append(args, t.TempDir())...)
		require.Error(t, err, "%v", args)
	}
}

func TestCommand_ListOnly(t *testing.T) {
	t.Parallel()

	root := scenarioTree(t)

	out, err := execute(t, root)
	require.NoError(t, err)

	assert.Contains(t, out, "100 bytes")
	assert.Contains(t, out, "Total files:  4")
	assert.NotContains(t, out, "Hash: ")
}

func TestCommand_DeleteNonInteractive(t *testing.T) {
	t.Parallel()

	root := scenarioTree(t)

	out, err := execute(t, "--sort", "asc", "--delete", "2", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Deleted "+filepath.ToSlash(filepath.Join(root, "B")))
	assert.Contains(t, out, "Total freed up space: 100 bytes")
	assert.FileExists(t, filepath.Join(root, "A"))
	assert.NoFileExists(t, filepath.Join(root, "B"))
}

func TestCommand_DeleteInvalidSelection(t *testing.T) {
	t.Parallel()

	root := scenarioTree(t)

	_, err := execute(t, "--delete", "999", root)
	require.ErrorIs(t, err, dupes.ErrInvalidSelection)

	for _, name := range []string{"A", "B", "C", "D"} {
		assert.FileExists(t, filepath.Join(root, name))
	}
}

func TestCommand_DryRun(t *testing.T) {
	t.Parallel()

	root := scenarioTree(t)

	out, err := execute(t, "--delete", "1 2", "--dry-run", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Would delete")
	assert.Contains(t, out, "Total space to free up: 200 bytes")
	assert.FileExists(t, filepath.Join(root, "A"))
	assert.FileExists(t, filepath.Join(root, "B"))
}

func TestCommand_JSON(t *testing.T) {
	t.Parallel()

	root := scenarioTree(t)

	out, err := execute(t, "-o", "json", "--check", "-a", "md5", root)
	require.NoError(t, err)

	var doc struct {
		Files      int                 `json:"files"`
		Duplicates []dupes.ReportGroup `json:"duplicates"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 4, doc.Files)
	require.Len(t, doc.Duplicates, 1)
	assert.Len(t, doc.Duplicates[0].Digest, 32)
	assert.Len(t, doc.Duplicates[0].Entries, 2)
}
