package dupes

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sync"
)

// ReportEntry is one numbered file of a duplicate set.
type ReportEntry struct {
	// Number is the caller-facing handle, unique within one report.
	Number int `json:"number"`
	// Size is the size in bytes at scan time.
	Size uint64 `json:"size"`
	// Digest is the content digest.
	Digest string `json:"digest"`
	// Path is the file path.
	Path string `json:"path"`
}

// ReportGroup is one duplicate set as it appears in the report.
type ReportGroup struct {
	// Size is the shared size in bytes.
	Size uint64 `json:"size"`
	// Digest is the shared digest.
	Digest string `json:"digest"`
	// Entries are the numbered members.
	Entries []ReportEntry `json:"entries"`
}

// Report is the numbered view over all duplicate sets of one scan.
// Its layout is fixed at build time; only the set of live numbers shrinks
// as files are deleted.
type Report struct {
	order  SortOrder
	groups []ReportGroup

	mu      sync.Mutex
	entries map[int]ReportEntry
	retired map[int]struct{}
}

// Build numbers the duplicate sets. Sizes follow order, groups keep their
// first-seen order and files their discovery order. Numbers start at 1.
func Build(groups map[uint64][]DigestGroup, order SortOrder) *Report {
	sizes := make([]uint64, 0, len(groups))
	for size := range groups {
		sizes = append(sizes, size)
	}

	slices.SortFunc(sizes, order.compare)

	report := &Report{
		order:   order,
		entries: make(map[int]ReportEntry),
		retired: make(map[int]struct{}),
	}

	number := 0

	for _, size := range sizes {
		for _, group := range groups[size] {
			if len(group.Files) < 2 {
				continue
			}

			reportGroup := ReportGroup{Size: size, Digest: group.Digest}

			for _, file := range group.Files {
				number++

				entry := ReportEntry{
					Number: number,
					Size:   file.Size,
					Digest: group.Digest,
					Path:   file.Path,
				}

				reportGroup.Entries = append(reportGroup.Entries, entry)
				report.entries[number] = entry
			}

			report.groups = append(report.groups, reportGroup)
		}
	}

	return report
}

// Order returns the size order the report was built with.
func (r *Report) Order() SortOrder {
	return r.order
}

// Groups returns the duplicate sets as built, including retired entries.
func (r *Report) Groups() []ReportGroup {
	return slices.Clone(r.groups)
}

// Len returns the number of live entries.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Empty reports whether the scan found no duplicates.
func (r *Report) Empty() bool {
	return len(r.groups) == 0
}

// Numbers returns the live numbers in ascending order.
func (r *Report) Numbers() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.numbers()
}

func (r *Report) numbers() []int {
	numbers := make([]int, 0, len(r.entries))
	for number := range r.entries {
		numbers = append(numbers, number)
	}

	slices.Sort(numbers)

	return numbers
}

// Entries returns the live entries ordered by number.
func (r *Report) Entries() []ReportEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]ReportEntry, 0, len(r.entries))
	for _, number := range r.numbers() {
		entries = append(entries, r.entries[number])
	}

	return entries
}

// Lookup resolves a live number.
func (r *Report) Lookup(number int) (ReportEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[number]

	return entry, ok
}

// Retired reports whether number was deleted through this report.
func (r *Report) Retired(number int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.retired[number]

	return ok
}

// Validate checks that numbers is a non-empty subset of the live numbers.
func (r *Report) Validate(numbers []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.validate(numbers)
}

func (r *Report) validate(numbers []int) error {
	if len(numbers) == 0 {
		return fmt.Errorf("%w: no numbers given", ErrInvalidSelection)
	}

	var unknown []int

	for _, number := range numbers {
		if _, ok := r.entries[number]; !ok {
			unknown = append(unknown, number)
		}
	}

	if len(unknown) > 0 {
		slices.Sort(unknown)

		return fmt.Errorf("%w: unknown numbers %v", ErrInvalidSelection, slices.Compact(unknown))
	}

	return nil
}

// retire removes number from the live set. The caller holds r.mu.
func (r *Report) retire(number int) {
	delete(r.entries, number)
	r.retired[number] = struct{}{}
}

// Render writes the report grouped by size, then digest:
//
//	100 bytes
//	Hash: <digest>
//	1. a.txt
//	2. b.txt
//
// Deleted entries keep their number and are marked.
func (r *Report) Render(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prevSize uint64

	for i, group := range r.groups {
		if i == 0 || group.Size != prevSize {
			if _, err := fmt.Fprintf(w, "%d bytes\n", group.Size); err != nil {
				return err
			}

			prevSize = group.Size
		}

		if _, err := fmt.Fprintf(w, "Hash: %s\n", group.Digest); err != nil {
			return err
		}

		for _, entry := range group.Entries {
			marker := ""
			if _, ok := r.retired[entry.Number]; ok {
				marker = " (deleted)"
			}

			if _, err := fmt.Fprintf(w, "%d. %s%s\n", entry.Number, filepath.ToSlash(entry.Path), marker); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
