package dupes

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Listing is the outcome of the walk and size classification.
type Listing struct {
	*Walked

	// Buckets holds every file bucketed by size.
	Buckets Buckets
}

// Result is the outcome of the duplicate check.
type Result struct {
	// Report numbers the duplicate sets.
	Report *Report
	// Failures holds the files that could not be hashed.
	Failures []error
	// Hashed is the number of files submitted for hashing.
	Hashed int
	// Elapsed is the time taken by hashing and grouping.
	Elapsed time.Duration
}

// Scanner runs the stages of a duplicate scan.
// The walk always reads the host filesystem; fsys serves the hashing reads.
type Scanner struct {
	opts   Options
	fs     afero.Fs
	log    zerolog.Logger
	hasher *Hasher
}

// NewScanner validates opts and prepares a Scanner.
func NewScanner(opts Options, fsys afero.Fs, log zerolog.Logger) (*Scanner, error) {
	opts = opts.withDefaults()

	algorithm, err := LookupAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	if algorithm.Bits < 128 {
		log.Warn().
			Str("algorithm", algorithm.Name).
			Int("bits", algorithm.Bits).
			Msg("digest is narrower than 128 bits, collisions are more likely")
	}

	return &Scanner{
		opts:   opts,
		fs:     fsys,
		log:    log,
		hasher: NewHasher(fsys, algorithm, opts.BufferSize),
	}, nil
}

// Options returns the effective options.
func (s *Scanner) Options() Options {
	return s.opts
}

// List walks the root and buckets the files by size.
// The walk can be cancelled via ctx. Progress updates are sent to progressHook if provided.
func (s *Scanner) List(ctx context.Context, progressHook ProgressFunc) (*Listing, error) {
	c := &collector{}

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, &c.counter, progressHook, s.opts.ProgressInterval)

	walked, err := walk(ctx, s.opts.WalkOptions, s.log, c)
	if err != nil {
		return nil, err
	}

	for _, err := range walked.Errors {
		s.log.Warn().Err(err).Msg("skipped")
	}

	buckets := Classify(walked.Files)

	s.log.Info().
		Int("files", len(walked.Files)).
		Int("sizes", len(buckets)).
		Int("candidates", buckets.CandidateFiles()).
		Msg("listed")

	return &Listing{Walked: walked, Buckets: buckets}, nil
}

// Duplicates hashes the candidate buckets of listing and builds the report.
// Only buckets holding at least two files are read.
func (s *Scanner) Duplicates(ctx context.Context, listing *Listing, progressHook ProgressFunc) (*Result, error) {
	start := time.Now()

	candidates := listing.Buckets.Candidates(s.opts.Order)
	grouper := NewGrouper(s.hasher, s.opts.Workers, s.log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, grouper.counter, progressHook, s.opts.ProgressInterval)

	grouping, err := grouper.GroupAll(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("grouping duplicates: %w", err)
	}

	for _, err := range grouping.Failures {
		s.log.Warn().Err(err).Msg("excluded from grouping")
	}

	result := &Result{
		Report:   Build(grouping.Groups, s.opts.Order),
		Failures: grouping.Failures,
		Hashed:   listing.Buckets.CandidateFiles(),
		Elapsed:  time.Since(start),
	}

	s.log.Info().
		Str("algorithm", s.hasher.Algorithm().Name).
		Int("hashed", result.Hashed).
		Int("duplicates", result.Report.Len()).
		Dur("elapsed", result.Elapsed).
		Msg("checked for duplicates")

	return result, nil
}
