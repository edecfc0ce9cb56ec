package dupes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"
)

// FileEntry is a regular file found by the walk.
type FileEntry struct {
	// Path is the file path joined from the root.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size uint64 `json:"size"`
	// Order is the discovery order, starting at 0.
	Order int `json:"order"`
}

// Walked is the outcome of a tree walk.
type Walked struct {
	// Files holds every accepted regular file in discovery order.
	Files []FileEntry
	// Errors holds the entries that could not be read and were skipped.
	Errors []error
	// TotalBytes is the cumulative size of all files.
	TotalBytes uint64
	// Elapsed is the time taken by the walk.
	Elapsed time.Duration
}

// collector aggregates walk results from concurrent fastwalk callbacks using a mutex.
type collector struct {
	counter

	mu      sync.Mutex
	entries []FileEntry
	errs    []error
}

func (c *collector) addError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errs = append(c.errs, err)
}

func (c *collector) add(path string, size uint64) {
	c.mu.Lock()
	c.entries = append(c.entries, FileEntry{Path: path, Size: size})
	c.mu.Unlock()

	c.counter.add(size)
}

// finalize sorts the collected files into lexical path-component order and
// assigns discovery order. fastwalk visits directories concurrently, so the
// callback order alone is not reproducible.
func (c *collector) finalize() *Walked {
	c.mu.Lock()
	defer c.mu.Unlock()

	slices.SortFunc(c.entries, func(a, b FileEntry) int {
		return comparePaths(a.Path, b.Path)
	})

	var total uint64

	for i := range c.entries {
		c.entries[i].Order = i
		total += c.entries[i].Size
	}

	slices.SortFunc(c.errs, func(a, b error) int {
		return strings.Compare(a.Error(), b.Error())
	})

	return &Walked{
		Files:      c.entries,
		Errors:     c.errs,
		TotalBytes: total,
	}
}

// comparePaths orders paths the way a depth-first walk over sorted
// directory listings would visit them.
func comparePaths(a, b string) int {
	return slices.Compare(
		strings.Split(filepath.ToSlash(a), "/"),
		strings.Split(filepath.ToSlash(b), "/"),
	)
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// validateRoot checks that root is an existing, listable directory.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return pathError(ErrInvalidRoot, root, err)
	}

	if !info.IsDir() {
		return pathError(ErrInvalidRoot, root, errors.New("not a directory"))
	}

	dir, err := os.Open(root)
	if err != nil {
		return pathError(ErrInvalidRoot, root, err)
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return pathError(ErrInvalidRoot, root, err)
	}

	return nil
}

// Walk enumerates the regular files below opt.Root that pass the filters.
// Unreadable subdirectories are skipped and reported in Walked.Errors.
// Symbolic links are neither followed nor reported.
func Walk(ctx context.Context, opt WalkOptions) (*Walked, error) {
	return walk(ctx, opt, zerolog.Nop(), &collector{})
}

//nolint:gocognit,funlen // Filtering steps mirror each other.
func walk(ctx context.Context, opt WalkOptions, log zerolog.Logger, c *collector) (*Walked, error) {
	if opt.Root == "" {
		opt.Root = "."
	}

	// Normalize to native format to handle both C:/Path and C:\Path inputs
	opt.Root = filepath.Clean(opt.Root)

	if err := validateRoot(opt.Root); err != nil {
		return nil, err
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	log.Debug().
		Str("root", opt.Root).
		Str("suffix", opt.Suffix).
		Strs("excludes", opt.Excludes).
		Uint64("min_size", opt.MinSize).
		Msg("walking")

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			c.addError(pathError(ErrDirectoryRead, filepath.Clean(path), err))

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path = filepath.Clean(path)

		if opt.Depth > 0 && calculateDepth(path, opt.Root) > opt.Depth {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if matched := shouldExcludeByPattern(path, excludeRegexes); matched != nil {
			log.Debug().Str("path", path).Str("regex", matched.String()).Msg("excluding")

			if d.IsDir() && path != opt.Root {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if opt.Suffix != "" && !strings.HasSuffix(d.Name(), opt.Suffix) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			c.addError(pathError(ErrDirectoryRead, path, err))

			return nil
		}

		size := uint64(fileInfo.Size()) //nolint:gosec // Regular file sizes are never negative
		if size < opt.MinSize {
			return nil
		}

		c.add(path, size)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	walked := c.finalize()
	walked.Elapsed = time.Since(start)

	log.Debug().
		Int("files", len(walked.Files)).
		Int("errors", len(walked.Errors)).
		Dur("elapsed", walked.Elapsed).
		Msg("walk finished")

	return walked, nil
}
