package dupes

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/scylladb/go-set/iset"
	"github.com/spf13/afero"
)

// DeletedFile is a file removed by a deletion batch.
type DeletedFile struct {
	// Number is the report number of the file.
	Number int `json:"number"`
	// Path is the removed path.
	Path string `json:"path"`
	// Size is the size in bytes measured right before removal.
	Size uint64 `json:"size"`
}

// DeletionResult summarizes one deletion batch.
type DeletionResult struct {
	// Deleted lists the removed files in number order.
	Deleted []DeletedFile `json:"deleted"`
	// Failed holds one ErrDeleteFailed per file that could not be removed.
	Failed []error `json:"-"`
	// FreedBytes is the sum of the sizes of the removed files.
	FreedBytes uint64 `json:"freed_bytes"`
	// DryRun is set when nothing was actually removed.
	DryRun bool `json:"dry_run"`
}

// Executor removes selected report entries from a filesystem.
type Executor struct {
	fs     afero.Fs
	log    zerolog.Logger
	dryRun bool
	freed  atomic.Uint64
}

// NewExecutor creates an Executor removing files from fsys.
// With dryRun set it only reports what would be removed.
func NewExecutor(fsys afero.Fs, dryRun bool, log zerolog.Logger) *Executor {
	return &Executor{fs: fsys, log: log, dryRun: dryRun}
}

// Freed returns the bytes reclaimed by all batches run through this Executor.
func (x *Executor) Freed() uint64 {
	return x.freed.Load()
}

// Delete removes the files behind numbers, in ascending order.
//
// The whole selection is validated first: if it is empty or names a number
// that is not live in report, ErrInvalidSelection is returned and nothing is
// touched. A file that cannot be removed is recorded in Failed and the batch
// continues. Removed numbers are retired from report, so replaying the same
// selection fails validation.
//
// The report is locked for the whole batch.
func (x *Executor) Delete(report *Report, numbers []int) (*DeletionResult, error) {
	report.mu.Lock()
	defer report.mu.Unlock()

	if err := report.validate(numbers); err != nil {
		return nil, err
	}

	selection := iset.New(numbers...).List()
	slices.Sort(selection)

	result := &DeletionResult{DryRun: x.dryRun}

	for _, number := range selection {
		entry := report.entries[number]

		info, err := x.fs.Stat(entry.Path)
		if err != nil {
			x.fail(result, entry, err)

			continue
		}

		if info.IsDir() {
			x.fail(result, entry, errors.New("is a directory"))

			continue
		}

		size := uint64(info.Size()) //nolint:gosec // Regular file sizes are never negative

		if !x.dryRun {
			if err := x.fs.Remove(entry.Path); err != nil {
				x.fail(result, entry, err)

				continue
			}

			report.retire(number)
		}

		result.Deleted = append(result.Deleted, DeletedFile{Number: number, Path: entry.Path, Size: size})
		result.FreedBytes += size

		x.log.Debug().
			Int("number", number).
			Str("path", entry.Path).
			Uint64("size", size).
			Bool("dry_run", x.dryRun).
			Msg("deleted")
	}

	if !x.dryRun {
		x.freed.Add(result.FreedBytes)
	}

	return result, nil
}

func (x *Executor) fail(result *DeletionResult, entry ReportEntry, err error) {
	x.log.Warn().Err(err).Int("number", entry.Number).Str("path", entry.Path).Msg("delete failed")

	result.Failed = append(result.Failed, pathError(ErrDeleteFailed, entry.Path, err))
}
