package dupes

import (
	"cmp"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// SortOrder controls whether sizes are reported smallest or largest first.
type SortOrder int

const (
	// Descending reports the largest sizes first.
	Descending SortOrder = iota
	// Ascending reports the smallest sizes first.
	Ascending
)

// String returns the flag spelling of the order.
func (o SortOrder) String() string {
	if o == Ascending {
		return "asc"
	}

	return "desc"
}

// compare orders two sizes for emission.
func (o SortOrder) compare(a, b uint64) int {
	if o == Ascending {
		return cmp.Compare(a, b)
	}

	return cmp.Compare(b, a)
}

// ParseSortOrder validates a sort order given as a flag value or prompt answer.
// "1" and "2" follow the numbering of the interactive menu (1 = descending, 2 = ascending).
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "desc", "descending":
		return Descending, nil
	case "2", "asc", "ascending":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("invalid sort order %q: must be one of [asc desc]", s)
	}
}

const (
	// DefaultAlgorithm is the digest used when none is configured.
	DefaultAlgorithm = "sha256"
	// DefaultBufferSize is the read buffer used while hashing.
	DefaultBufferSize = 1 << 20
	// DefaultProgressInterval is the default interval for progress updates.
	DefaultProgressInterval = 500 * time.Millisecond
)

// WalkOptions configures the tree walk.
type WalkOptions struct {
	// Root is the directory to scan.
	Root string
	// Suffix is a literal file name suffix to include (empty = all).
	Suffix string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize uint64
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
}

// Options configures a full scan.
type Options struct {
	WalkOptions

	// Order is the size order of listings and reports.
	Order SortOrder
	// Algorithm names the digest algorithm.
	Algorithm string
	// Workers bounds the number of files hashed concurrently.
	Workers int
	// BufferSize is the read buffer size used while hashing.
	BufferSize int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Root == "" {
		o.Root = "."
	}

	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}

	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}

	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}

	return o
}
