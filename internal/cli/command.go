package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/dupes/internal/config"
	"github.com/idelchi/dupes/internal/dupes"
	"github.com/idelchi/dupes/internal/logger"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// flags holds the raw command line values.
type flags struct {
	suffix     string
	sort       string
	excludes   []string
	minSize    string
	depth      int
	algorithm  string
	workers    int
	bufferSize string
	check      bool
	selection  string
	dryRun     bool
	output     string
	debug      bool
	configFile string
	logFile    string
	logLevel   string
	version    bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var f flags

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "dupes [flags] <path>",
		Short: "Find and delete duplicate files",
		Long: heredoc.Doc(`
			dupes lists the files below a directory by size, finds the files with
			identical content and optionally deletes a selection of them.

			Files are first bucketed by exact size. Only sizes shared by two or more
			files are hashed, and files with equal digests are reported as duplicates.
			Every reported file gets a number; deletion takes a space separated list
			of those numbers.

			On a terminal, missing choices (suffix, sort order, whether to check for
			duplicates, what to delete) are prompted for. Without a terminal, use
			--check and --delete.
		`),
		Example: heredoc.Doc(`
			dupes ~/Downloads
			dupes -x .jpg -s asc --check ~/Pictures
			dupes --check --delete "2 4" --dry-run .
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.Flags()
	fs.SortFlags = false

	fs.StringVarP(&f.suffix, "ext", "x", "", "File name suffix to include (e.g., .jpg); empty includes all files")
	fs.StringVarP(&f.sort, "sort", "s", "desc", "Size sort order: asc or desc")
	fs.StringSliceVarP(&f.excludes, "exclude", "e", nil, "Regex patterns to exclude")
	fs.StringVar(&f.minSize, "min-size", "0B", "Minimum file size (e.g., 1KB)")
	fs.IntVarP(&f.depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	fs.StringVarP(&f.algorithm, "algorithm", "a", dupes.DefaultAlgorithm,
		fmt.Sprintf("Digest algorithm: %s", strings.Join(dupes.Algorithms(), ", ")))
	fs.IntVarP(&f.workers, "workers", "w", 0, "Files hashed concurrently (0=number of CPUs)")
	fs.StringVar(&f.bufferSize, "buffer-size", "1MiB", "Read buffer size used while hashing")
	fs.BoolVar(&f.check, "check", false, "Check for duplicates without asking")
	fs.StringVar(&f.selection, "delete", "", "Space separated report numbers to delete without asking")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Report what would be deleted without deleting")
	fs.StringVarP(&f.output, "output", "o", "table", "Output format: json or table")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fs.StringVarP(&f.configFile, "config", "c", "", "Config file (default $HOME/.config/dupes/dupes.yaml or ./dupes.yaml)")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this file")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	fs.BoolVarP(&f.version, "version", "v", false, "Show version and exit")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if f.version {
			fmt.Fprintln(cmd.OutOrStdout(), c.version)

			return nil
		}

		if !slices.Contains(allowedOutputs, f.output) {
			return fmt.Errorf("invalid output format %q: must be one of %v", f.output, allowedOutputs)
		}

		if f.depth < 0 {
			return errors.New("depth cannot be negative")
		}

		order, err := dupes.ParseSortOrder(f.sort)
		if err != nil {
			return err
		}

		minSize, err := humanize.ParseBytes(f.minSize)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}

		cfg, err := config.Load(f.configFile, cmd.Flags())
		if err != nil {
			return err
		}

		bufferSize, err := humanize.ParseBytes(cfg.BufferSize)
		if err != nil {
			return fmt.Errorf("invalid buffer-size: %w", err)
		}

		level := cfg.Log.Level
		if f.debug {
			level = "debug"
		}

		log, closer := logger.New(logger.Options{
			Level:      level,
			File:       cfg.Log.File,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Console:    cmd.ErrOrStderr(),
		})
		defer closer.Close()

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		options := dupes.Options{
			WalkOptions: dupes.WalkOptions{
				Root:     root,
				Suffix:   f.suffix,
				Excludes: f.excludes,
				MinSize:  minSize,
				Depth:    f.depth,
			},
			Order:            order,
			Algorithm:        cfg.Algorithm,
			Workers:          cfg.Workers,
			BufferSize:       int(bufferSize), //nolint:gosec // Buffer sizes are small
			ProgressInterval: cfg.ProgressInterval,
		}

		json := f.output == "json"
		stdinTerminal := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

		s := &session{
			in:          cmd.InOrStdin(),
			out:         cmd.OutOrStdout(),
			errOut:      cmd.ErrOrStderr(),
			interactive: stdinTerminal && !json,
			progress:    !json && !f.debug && isatty.IsTerminal(os.Stderr.Fd()),
			log:         log,
		}

		return s.run(cmd.Context(), options, plan{
			askSuffix: !cmd.Flags().Changed("ext"),
			askOrder:  !cmd.Flags().Changed("sort"),
			check:     f.check,
			selection: f.selection,
			dryRun:    f.dryRun,
			json:      json,
		})
	}

	return cmd
}
