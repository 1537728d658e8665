package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/qri-io/h5diff"
	"github.com/qri-io/h5diff/container/docfile"
	"github.com/qri-io/h5diff/internal/dlogger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// process exit codes
const (
	ExitSame    = 0
	ExitDiffers = 1
	ExitUsage   = 2
)

// usageError marks errors caused by how the command was invoked
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app carries everything a single invocation needs, so tests can run the
// command against an in-memory filesystem & buffers
type app struct {
	fs       afero.Fs
	out      io.Writer
	errOut   io.Writer
	exitCode int
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "h5diff [flags] <fileA> <fileB>",
		Short: "Report every difference between two hierarchical data containers",
		Long: `h5diff compares two hierarchical data containers, walking both trees from the
root group and reporting names present on one side only, objects of differing
kinds, datasets with differing element types, shapes or values, and attribute
differences.

Exit status is 0 when the containers are identical, 1 when they differ or
can't be read, and 2 on usage errors.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return &usageError{errors.Errorf("expected 2 container paths, got %d", len(args))}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(a.fs, cmd.Flags())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), s, args[0], args[1])
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	addFlags(cmd.Flags())
	return cmd
}

// Execute runs h5diff with the process arguments, returning the exit code.
// This is called by main.main()
func Execute() int {
	return execute(afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	a := &app{fs: fs, out: stdout, errOut: stderr}
	cmd := newRootCmd(a)
	// cobra reads os.Args when given nil
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return a.exitCode
	}

	var (
		usage   *usageError
		openErr *docfile.OpenError
	)
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(stdout, "Error: %s\n", err)
		fmt.Fprint(stdout, cmd.UsageString())
		return ExitUsage
	case errors.As(err, &openErr):
		fmt.Fprintf(stdout, "Unable to open file '%s'\n", openErr.Path)
		fmt.Fprintf(stderr, "h5diff: %s\n", openErr)
		return ExitDiffers
	default:
		fmt.Fprintf(stderr, "h5diff: %s\n", err)
		return ExitDiffers
	}
}

func (a *app) run(ctx context.Context, s *settings, pathA, pathB string) error {
	logger, err := dlogger.GetLogger(s.LogLevel)
	if err != nil {
		return &usageError{err}
	}
	defer func() {
		_ = logger.Sync()
	}()

	fmt.Fprintf(a.out, "Comparing '%s' and '%s'\n", pathA, pathB)

	fa, err := docfile.Open(a.fs, pathA)
	if err != nil {
		return err
	}
	fb, err := docfile.Open(a.fs, pathB)
	if err != nil {
		_ = fa.Close()
		return err
	}
	defer func() {
		if err := multierr.Append(fa.Close(), fb.Close()); err != nil {
			logger.Warn("closing containers", zap.Error(err))
		}
	}()
	logger.Debug("opened containers",
		zap.String("a", pathA),
		zap.String("sizeA", units.HumanSize(float64(fa.Size()))),
		zap.String("b", pathB),
		zap.String("sizeB", units.HumanSize(float64(fb.Size()))),
	)

	var reporter h5diff.Reporter
	switch s.Format {
	case formatJSON:
		reporter = h5diff.NewJSONReporter(a.out)
	default:
		reporter = h5diff.NewTextReporter(a.out, a.useColor(s.Color))
	}

	stats := &h5diff.Stats{}
	res, err := h5diff.New(
		h5diff.OptionSetNames(pathA, pathB),
		h5diff.OptionSetReporter(reporter),
		h5diff.OptionSetStats(stats),
		h5diff.OptionSetLogger(logger),
	).Diff(ctx, fa, fb)
	if err != nil {
		return err
	}

	if s.Stats {
		// keep json reports a clean stream of records
		w := a.out
		if s.Format == formatJSON {
			w = a.errOut
		}
		if a.useColor(s.Color) {
			fmt.Fprint(w, h5diff.FormatPrettyStatsColor(stats))
		} else {
			fmt.Fprint(w, h5diff.FormatPrettyStats(stats))
		}
	}

	differs := res.Differs
	if s.RootStatus {
		differs = res.RootDiffers
	}
	if differs {
		a.exitCode = ExitDiffers
	}
	return nil
}

func (a *app) useColor(mode string) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := a.out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
