package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/idelchi/dupes/internal/dupes"
)

// plan holds the decisions taken on the command line.
type plan struct {
	// askSuffix and askOrder are set when the flags were not given.
	askSuffix bool
	askOrder  bool
	// check skips the gate before hashing.
	check bool
	// selection is a non-interactive deletion request.
	selection string
	dryRun    bool
	json      bool
}

// session drives one run: listing, duplicate check and deletion.
type session struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	progress    bool
	log         zerolog.Logger
	fs          afero.Fs
}

// progressHook returns a callback that prints an in-place status line, or nil.
func (s *session) progressHook(label string) dupes.ProgressFunc {
	if !s.progress {
		return nil
	}

	return func(files int64, bytes uint64) {
		fmt.Fprintf(s.errOut, "\r\033[2K%s… %d files, %s\r", label, files, humanize.IBytes(bytes))
	}
}

// clearProgress clears the status line.
func (s *session) clearProgress() {
	if s.progress {
		fmt.Fprint(s.errOut, "\r\033[2K\r")
	}
}

//nolint:gocognit,cyclop,funlen // Linear sequence of gated steps.
func (s *session) run(ctx context.Context, options dupes.Options, p plan) error {
	prompt := newPrompter(s.in, s.out)

	if s.interactive && p.askSuffix {
		suffix, err := prompt.line("Enter file format:")
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		options.Suffix = suffix
	}

	if s.interactive && p.askOrder {
		order, err := ask(prompt, "Size sorting options:\n1. Descending\n2. Ascending\n\nEnter a sorting option:",
			"Wrong option.", dupes.ParseSortOrder)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		options.Order = order
	}

	fsys := s.fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	scanner, err := dupes.NewScanner(options, fsys, s.log)
	if err != nil {
		return err
	}

	listing, err := scanner.List(ctx, s.progressHook("Scanning"))
	s.clearProgress()

	if err != nil {
		return err
	}

	doc := &document{
		Root:       options.Root,
		Order:      options.Order.String(),
		Files:      len(listing.Files),
		TotalBytes: listing.TotalBytes,
		Sizes:      listing.Buckets.Sorted(options.Order),
		Skipped:    errorStrings(listing.Errors),
	}

	if !p.json {
		if err := PrintListing(listing, options.Order, s.out); err != nil {
			return err
		}
	}

	proceed := p.check || p.selection != ""
	if !proceed && s.interactive {
		if proceed, err = prompt.confirm("Check for duplicates?"); err != nil {
			return err
		}
	}

	if !proceed {
		return s.finish(doc, p)
	}

	result, err := scanner.Duplicates(ctx, listing, s.progressHook("Hashing"))
	s.clearProgress()

	if err != nil {
		return err
	}

	doc.Duplicates = result.Report.Groups()
	doc.Skipped = append(doc.Skipped, errorStrings(result.Failures)...)

	if !p.json {
		if err := PrintReport(result, s.out); err != nil {
			return err
		}
	}

	if result.Report.Empty() {
		return s.finish(doc, p)
	}

	numbers, err := s.selection(prompt, result.Report, p)
	if err != nil {
		return err
	}

	if len(numbers) == 0 {
		return s.finish(doc, p)
	}

	executor := dupes.NewExecutor(fsys, p.dryRun, s.log)

	deletion, err := executor.Delete(result.Report, numbers)
	if err != nil {
		return err
	}

	doc.Deletion = &deletionDocument{DeletionResult: deletion, Failures: errorStrings(deletion.Failed)}

	if p.json {
		return PrintJSON(doc, s.out)
	}

	if err := PrintDeletion(deletion, s.out); err != nil {
		return err
	}

	if len(deletion.Failed) > 0 {
		return fmt.Errorf("%d of %d files could not be deleted", len(deletion.Failed), len(deletion.Failed)+len(deletion.Deleted))
	}

	return nil
}

// selection returns the numbers to delete, or none if deletion was declined.
func (s *session) selection(prompt *prompter, report *dupes.Report, p plan) ([]int, error) {
	if p.selection != "" {
		numbers, err := dupes.ParseSelection(p.selection)
		if err != nil {
			return nil, err
		}

		return numbers, report.Validate(numbers)
	}

	if !s.interactive {
		return nil, nil
	}

	ok, err := prompt.confirm("Delete files?")
	if err != nil || !ok {
		return nil, err
	}

	numbers, err := ask(prompt, "Enter file numbers to delete:", "Wrong format", func(input string) ([]int, error) {
		numbers, err := dupes.ParseSelection(input)
		if err != nil {
			return nil, err
		}

		return numbers, report.Validate(numbers)
	})
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	return numbers, err
}

// finish prints the JSON document, or the exit notice in table mode.
func (s *session) finish(doc *document, p plan) error {
	if p.json {
		return PrintJSON(doc, s.out)
	}

	_, err := fmt.Fprintln(s.out, "Exiting...")

	return err
}
