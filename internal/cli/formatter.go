package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dupes/internal/dupes"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// document is the JSON output of one run.
type document struct {
	Root       string              `json:"root"`
	Order      string              `json:"order"`
	Files      int                 `json:"files"`
	TotalBytes uint64              `json:"total_bytes"`
	Sizes      []dupes.SizeBucket  `json:"sizes"`
	Duplicates []dupes.ReportGroup `json:"duplicates,omitempty"`
	Skipped    []string            `json:"skipped,omitempty"`
	Deletion   *deletionDocument   `json:"deletion,omitempty"`
}

type deletionDocument struct {
	*dupes.DeletionResult

	Failures []string `json:"failures,omitempty"`
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}

	return out
}

// PrintJSON outputs v in indented JSON format.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintListing outputs every file grouped by size, followed by totals.
//
//nolint:forbidigo // This function prints output to the console.
func PrintListing(listing *dupes.Listing, order dupes.SortOrder, writer io.Writer) error {
	for _, bucket := range listing.Buckets.Sorted(order) {
		fmt.Fprintf(writer, "%d bytes\n", bucket.Size)

		for _, file := range bucket.Files {
			fmt.Fprintln(writer, filepath.ToSlash(file.Path))
		}

		fmt.Fprintln(writer)
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Total files:\t%d\n", len(listing.Files))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(listing.TotalBytes), listing.TotalBytes)
	fmt.Fprintf(w, "Candidates:\t%d files\n", listing.Buckets.CandidateFiles())

	if len(listing.Errors) > 0 {
		fmt.Fprintf(w, "Skipped:\t%d unreadable entries\n", len(listing.Errors))
	}

	fmt.Fprintf(w, "Elapsed:\t%v\n\n", listing.Elapsed.Round(time.Millisecond))

	return w.Flush()
}

// PrintReport outputs the numbered duplicate sets.
func PrintReport(result *dupes.Result, writer io.Writer) error {
	if result.Report.Empty() {
		_, err := fmt.Fprintln(writer, "No duplicate files found.")

		return err
	}

	if err := result.Report.Render(writer); err != nil {
		return err
	}

	var wasted uint64

	for _, group := range result.Report.Groups() {
		wasted += group.Size * uint64(len(group.Entries)-1)
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Duplicate sets:\t%d\n", len(result.Report.Groups()))
	fmt.Fprintf(w, "Duplicate files:\t%d\n", result.Report.Len())
	fmt.Fprintf(w, "Reclaimable:\t%s (%d bytes)\n", humanize.IBytes(wasted), wasted)

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d files\n", len(result.Failures))
	}

	fmt.Fprintf(w, "Elapsed:\t%v\n\n", result.Elapsed.Round(time.Millisecond))

	return w.Flush()
}

// PrintDeletion outputs the outcome of a deletion batch.
func PrintDeletion(result *dupes.DeletionResult, writer io.Writer) error {
	verb, total := "Deleted", "Total freed up space"
	if result.DryRun {
		verb, total = "Would delete", "Total space to free up"
	}

	for _, file := range result.Deleted {
		if _, err := fmt.Fprintf(writer, "%s %s\n", verb, filepath.ToSlash(file.Path)); err != nil {
			return err
		}
	}

	for _, err := range result.Failed {
		if _, werr := fmt.Fprintf(writer, "Failed: %v\n", err); werr != nil {
			return werr
		}
	}

	_, err := fmt.Fprintf(writer, "%s: %d bytes (%s)\n",
		total, result.FreedBytes, humanize.IBytes(result.FreedBytes))

	return err
}
