package dupes

import (
	"slices"
)

// SizeBucket holds the files sharing one exact size, in discovery order.
type SizeBucket struct {
	// Size is the shared size in bytes.
	Size uint64 `json:"size"`
	// Files are the bucket members in discovery order.
	Files []FileEntry `json:"files"`
}

// Buckets maps a size to the bucket of files with that size.
type Buckets map[uint64]SizeBucket

// Classify buckets entries by exact size, preserving their order within each bucket.
func Classify(entries []FileEntry) Buckets {
	buckets := make(Buckets)

	for _, entry := range entries {
		bucket := buckets[entry.Size]
		bucket.Size = entry.Size
		bucket.Files = append(bucket.Files, entry)
		buckets[entry.Size] = bucket
	}

	return buckets
}

// Sorted returns every bucket ordered by size.
func (b Buckets) Sorted(order SortOrder) []SizeBucket {
	return b.collect(order, 1)
}

// Candidates returns the buckets that can contain duplicates, ordered by size.
// Buckets with a single file are left out, so they are never hashed.
func (b Buckets) Candidates(order SortOrder) []SizeBucket {
	return b.collect(order, 2)
}

// CandidateFiles is the number of files held by candidate buckets.
func (b Buckets) CandidateFiles() int {
	n := 0

	for _, bucket := range b {
		if len(bucket.Files) > 1 {
			n += len(bucket.Files)
		}
	}

	return n
}

func (b Buckets) collect(order SortOrder, minFiles int) []SizeBucket {
	sizes := make([]uint64, 0, len(b))

	for size, bucket := range b {
		if len(bucket.Files) >= minFiles {
			sizes = append(sizes, size)
		}
	}

	slices.SortFunc(sizes, order.compare)

	out := make([]SizeBucket, 0, len(sizes))
	for _, size := range sizes {
		out = append(out, b[size])
	}

	return out
}
