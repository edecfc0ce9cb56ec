package dupes

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

// DigestGroup holds the files of one size sharing one digest.
type DigestGroup struct {
	// Size is the shared size in bytes.
	Size uint64 `json:"size"`
	// Digest is the shared hex digest.
	Digest string `json:"digest"`
	// Files are the group members in discovery order.
	Files []FileEntry `json:"files"`
}

// Grouping is the outcome of hashing all candidate buckets.
type Grouping struct {
	// Groups maps a size to its duplicate sets in first-seen digest order.
	// Sizes without any duplicate set are absent.
	Groups map[uint64][]DigestGroup
	// Failures holds the ErrRead failures of files left out of grouping.
	Failures []error
}

// Grouper hashes bucket members on a bounded worker pool and groups them by digest.
type Grouper struct {
	hasher  *Hasher
	workers int
	log     zerolog.Logger
	counter *counter
}

// NewGrouper creates a Grouper that hashes at most workers files at once.
func NewGrouper(hasher *Hasher, workers int, log zerolog.Logger) *Grouper {
	if workers <= 0 {
		workers = 1
	}

	return &Grouper{hasher: hasher, workers: workers, log: log, counter: &counter{}}
}

// Group hashes one bucket and returns its duplicate sets.
func (g *Grouper) Group(ctx context.Context, bucket SizeBucket) ([]DigestGroup, []error, error) {
	grouping, err := g.GroupAll(ctx, []SizeBucket{bucket})
	if err != nil {
		return nil, nil, err
	}

	return grouping.Groups[bucket.Size], grouping.Failures, nil
}

// hashSlot receives the result for one file. Each slot has exactly one writer.
type hashSlot struct {
	digest string
	err    error
}

// GroupAll hashes every file of the given buckets and groups them by digest.
// Hashing runs concurrently, but grouping walks each bucket in its own order
// afterwards, so the result does not depend on the number of workers.
func (g *Grouper) GroupAll(ctx context.Context, buckets []SizeBucket) (*Grouping, error) {
	slots := make([][]hashSlot, len(buckets))
	for i, bucket := range buckets {
		slots[i] = make([]hashSlot, len(bucket.Files))
	}

	if err := g.hashAll(ctx, buckets, slots); err != nil {
		return nil, err
	}

	grouping := &Grouping{Groups: make(map[uint64][]DigestGroup)}

	for i, bucket := range buckets {
		groups, failures := groupBucket(bucket, slots[i])

		grouping.Failures = append(grouping.Failures, failures...)

		if len(groups) > 0 {
			grouping.Groups[bucket.Size] = append(grouping.Groups[bucket.Size], groups...)
		}
	}

	g.log.Debug().
		Int("sizes", len(grouping.Groups)).
		Int("failures", len(grouping.Failures)).
		Msg("grouping finished")

	return grouping, nil
}

func (g *Grouper) hashAll(ctx context.Context, buckets []SizeBucket, slots [][]hashSlot) error {
	pool, err := ants.NewPool(g.workers)
	if err != nil {
		return fmt.Errorf("creating hash pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup

	for i, bucket := range buckets {
		for j, entry := range bucket.Files {
			if ctx.Err() != nil {
				break
			}

			slot := &slots[i][j]

			wg.Add(1)

			submitErr := pool.Submit(func() {
				defer wg.Done()

				slot.digest, slot.err = g.hasher.Hash(ctx, entry.Path)
				if slot.err == nil {
					g.counter.add(entry.Size)
				}
			})
			if submitErr != nil {
				wg.Done()
				wg.Wait()

				return fmt.Errorf("submitting hash task: %w", submitErr)
			}
		}
	}

	wg.Wait()

	return ctx.Err()
}

// groupBucket groups a hashed bucket by digest, keeping first-seen digest
// order and discovery order within each digest.
func groupBucket(bucket SizeBucket, slots []hashSlot) ([]DigestGroup, []error) {
	var (
		failures []error
		digests  []string
		members  = make(map[string][]FileEntry)
	)

	for i, entry := range bucket.Files {
		slot := slots[i]
		if slot.err != nil {
			failures = append(failures, slot.err)

			continue
		}

		if _, seen := members[slot.digest]; !seen {
			digests = append(digests, slot.digest)
		}

		members[slot.digest] = append(members[slot.digest], entry)
	}

	var groups []DigestGroup

	for _, digest := range digests {
		if len(members[digest]) < 2 {
			continue
		}

		groups = append(groups, DigestGroup{
			Size:   bucket.Size,
			Digest: digest,
			Files:  members[digest],
		})
	}

	return groups, failures
}
