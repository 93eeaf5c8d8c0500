package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"omap/internal/analyze"
	"omap/internal/diagnostic"
	"omap/internal/lint"
	"omap/internal/match"
	"omap/rulefile"
)

// errLintFailed is returned when the rule file has error diagnostics. They
// are already printed, so main only sets the exit code.
var errLintFailed = errors.New("lint failed")

type lintOptions struct {
	Path       string
	Packages   []string
	Dump       bool
	NoColor    bool
	Normalized bool
	Verbosity  int
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts lintOptions

	cmd := &cobra.Command{
		Use:   "omap-lint [flags] RULEFILE",
		Short: "Check a mapping rule file against Go types",
		Long: "Check a mapping rule file against Go types.\n\n" +
			"The file is validated on its own first. Its types are then resolved in the\n" +
			"packages given with -p, or in every package below the file's directory.\n\n" +
			"Examples:\n" +
			"  omap-lint examples/shop/shop.yaml\n" +
			"  omap-lint -p ./store -p ./warehouse -v rules.yaml\n",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]

			return runLint(stdout, newLogger(stderr, opts.Verbosity), opts)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.Packages, "packages", "p", nil, "Go package pattern to load (repeatable, default ./... next to the rule file)")
	flags.BoolVar(&opts.Dump, "dump", false, "Dump the parsed rule file")
	flags.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.Normalized, "normalized", false, "Match field names after normalization when checking all")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "Log verbosity (repeatable)")

	return cmd
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(w, prefix, args)

			return
		}

		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func runLint(w io.Writer, log logr.Logger, opts lintOptions) error {
	f, err := rulefile.LoadFile(opts.Path)
	if err != nil {
		return err
	}

	if opts.Dump {
		spew.Fdump(w, f)
	}

	p := newPrinter(w, opts.NoColor)

	res := rulefile.Validate(f)
	if res.HasErrors() {
		// types are not looked at before the file itself is sound
		p.print(opts.Path, res)

		return errLintFailed
	}

	patterns := opts.Packages
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	log.V(1).Info("loading packages", "patterns", patterns)

	graph, err := analyze.NewAnalyzer(
		analyze.WithLogger(log.WithName("analyze")),
		analyze.WithDir(filepath.Dir(opts.Path)),
	).LoadPackages(patterns...)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	mode := match.Exact
	if opts.Normalized {
		mode = match.Normalized
	}

	res.Merge(*lint.New(graph, lint.WithLogger(log.WithName("lint")), lint.WithNameMatching(mode)).Check(f))
	p.print(opts.Path, res)

	if res.HasErrors() {
		return errLintFailed
	}

	return nil
}

type printer struct {
	w      io.Writer
	labels map[diagnostic.Severity]*color.Color
	ok     *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w: w,
		labels: map[diagnostic.Severity]*color.Color{
			diagnostic.SeverityError:   color.New(color.FgRed, color.Bold),
			diagnostic.SeverityWarning: color.New(color.FgYellow),
			diagnostic.SeverityInfo:    color.New(color.FgCyan),
		},
		ok: color.New(color.FgGreen),
	}

	if noColor {
		for _, c := range p.labels {
			c.DisableColor()
		}

		p.ok.DisableColor()
	}

	return p
}

func (p *printer) print(path string, res *diagnostic.Diagnostics) {
	for _, d := range res.All() {
		fmt.Fprintf(p.w, "%s: %s %s\n", path, p.labels[d.Severity].Sprint(d.Severity.String()+":"), d.String())
	}

	if res.HasErrors() {
		fmt.Fprintf(p.w, "%d error(s), %d warning(s), %d info(s)\n", len(res.Errors), len(res.Warnings), len(res.Infos))

		return
	}

	fmt.Fprintf(p.w, "%s %d warning(s), %d info(s)\n", p.ok.Sprint("ok:"), len(res.Warnings), len(res.Infos))
}
