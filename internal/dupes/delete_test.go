package dupes

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deletionFixture returns a filesystem and a report over it:
// 1 /a, 2 /b (100 bytes), 3 /c, 4 /d, 5 /e (10 bytes).
func deletionFixture(t *testing.T) (afero.Fs, *Report) {
	t.Helper()

	hundred := string(make([]byte, 100))
	ten := string(make([]byte, 10))

	fsys := memFS(t, map[string]string{
		"/a": hundred, "/b": hundred,
		"/c": ten, "/d": ten, "/e": ten,
	})

	report := Build(map[uint64][]DigestGroup{
		100: {digestGroup(100, "h1", "/a", "/b")},
		10:  {digestGroup(10, "h2", "/c", "/d", "/e")},
	}, Descending)

	return fsys, report
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()

	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)

	return ok
}

func TestExecutor_DeletePartial(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)
	executor := NewExecutor(fsys, false, zerolog.Nop())

	result, err := executor.Delete(report, []int{4, 1})
	require.NoError(t, err)

	assert.Equal(t, []DeletedFile{
		{Number: 1, Path: "/a", Size: 100},
		{Number: 4, Path: "/d", Size: 10},
	}, result.Deleted)
	assert.Empty(t, result.Failed)
	assert.Equal(t, uint64(110), result.FreedBytes)
	assert.False(t, result.DryRun)

	assert.False(t, exists(t, fsys, "/a"))
	assert.False(t, exists(t, fsys, "/d"))

	for _, path := range []string{"/b", "/c", "/e"} {
		assert.True(t, exists(t, fsys, path), path)
	}

	assert.Equal(t, []int{2, 3, 5}, report.Numbers())
	assert.True(t, report.Retired(1))
	assert.True(t, report.Retired(4))
	assert.Equal(t, uint64(110), executor.Freed())
}

func TestExecutor_InvalidSelection(t *testing.T) {
	t.Parallel()

	for name, numbers := range map[string][]int{
		"empty":        {},
		"out of range": {999},
		"mixed":        {1, 999},
		"zero":         {0},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fsys, report := deletionFixture(t)

			result, err := NewExecutor(fsys, false, zerolog.Nop()).Delete(report, numbers)
			require.ErrorIs(t, err, ErrInvalidSelection)
			assert.Nil(t, result)

			assert.Equal(t, []int{1, 2, 3, 4, 5}, report.Numbers())

			for _, path := range []string{"/a", "/b", "/c", "/d", "/e"} {
				assert.True(t, exists(t, fsys, path), path)
			}
		})
	}
}

func TestExecutor_ReplayRejected(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)
	executor := NewExecutor(fsys, false, zerolog.Nop())

	_, err := executor.Delete(report, []int{1})
	require.NoError(t, err)

	_, err = executor.Delete(report, []int{1})
	require.ErrorIs(t, err, ErrInvalidSelection)

	_, err = executor.Delete(report, []int{2, 1})
	require.ErrorIs(t, err, ErrInvalidSelection)
	assert.True(t, exists(t, fsys, "/b"), "validation precedes any removal")

	assert.Equal(t, uint64(100), executor.Freed(), "no byte is freed twice")
}

func TestExecutor_DuplicateNumbersCollapsed(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)

	result, err := NewExecutor(fsys, false, zerolog.Nop()).Delete(report, []int{3, 3, 3})
	require.NoError(t, err)
	require.Len(t, result.Deleted, 1)
	assert.Equal(t, uint64(10), result.FreedBytes)
}

func TestExecutor_PartialFailure(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)

	// Removed behind the report's back.
	require.NoError(t, fsys.Remove("/c"))

	result, err := NewExecutor(fsys, false, zerolog.Nop()).Delete(report, []int{2, 3, 5})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0], ErrDeleteFailed)

	var pathErr *PathError
	require.ErrorAs(t, result.Failed[0], &pathErr)
	assert.Equal(t, "/c", pathErr.Path)

	assert.Equal(t, []DeletedFile{
		{Number: 2, Path: "/b", Size: 100},
		{Number: 5, Path: "/e", Size: 10},
	}, result.Deleted)
	assert.Equal(t, uint64(110), result.FreedBytes)

	_, ok := report.Lookup(3)
	assert.True(t, ok, "failed numbers stay live")
	assert.Equal(t, []int{1, 3, 4}, report.Numbers())
}

func TestExecutor_CurrentSize(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)

	// The file grew after the scan; the freed total follows the disk.
	require.NoError(t, afero.WriteFile(fsys, "/b", make([]byte, 150), 0o644))

	result, err := NewExecutor(fsys, false, zerolog.Nop()).Delete(report, []int{2})
	require.NoError(t, err)
	assert.Equal(t, uint64(150), result.FreedBytes)
}

func TestExecutor_DryRun(t *testing.T) {
	t.Parallel()

	fsys, report := deletionFixture(t)
	executor := NewExecutor(fsys, true, zerolog.Nop())

	result, err := executor.Delete(report, []int{1, 3})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, result.Deleted, 2)
	assert.Equal(t, uint64(110), result.FreedBytes)
	assert.Zero(t, executor.Freed())

	assert.True(t, exists(t, fsys, "/a"))
	assert.True(t, exists(t, fsys, "/c"))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, report.Numbers())
}
