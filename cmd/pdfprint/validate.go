package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfprint-golang/internal/config"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

// errNotPrintable is returned when at least one file failed. The reports
// already describe why, so main only sets the exit status.
var errNotPrintable = errors.New("one or more documents are not printable")

const defaultWorkers = 4

type validateOptions struct {
	strategy      string
	strict        bool
	maxPages      int
	bleedPositive int
	bleedNegative int
	skipMargin    bool
	skipFonts     bool
	skipPageCount bool
	skipVersion   bool
	workers       int
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate PDF files for print",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.strategy, "strategy", "", "Read strategy: full or incremental (default full)")
	f.BoolVar(&opts.strict, "strict", false, "Treat documents failing full PDF validation as unparseable")
	f.IntVar(&opts.maxPages, "max-pages", validate.DefaultMaxPageCount, "Maximum number of pages")
	f.IntVar(&opts.bleedPositive, "bleed-positive", validate.DefaultPositiveBleedMM, "Millimeters a page may exceed A4")
	f.IntVar(&opts.bleedNegative, "bleed-negative", validate.DefaultNegativeBleedMM, "Millimeters a page may fall short of A4")
	f.BoolVar(&opts.skipMargin, "skip-margin", false, "Skip the barcode margin check")
	f.BoolVar(&opts.skipFonts, "skip-fonts", false, "Skip the font check")
	f.BoolVar(&opts.skipPageCount, "skip-page-count", false, "Skip the page count check")
	f.BoolVar(&opts.skipVersion, "skip-version", false, "Skip the PDF version check")
	f.IntVarP(&opts.workers, "workers", "w", defaultWorkers, "Number of files validated concurrently")

	_ = cmd.RegisterFlagCompletionFunc("strategy", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{pdf.StrategyFull.String(), pdf.StrategyIncremental.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// validationRun is the resolved configuration of one validate invocation
type validationRun struct {
	settings validate.Settings
	strategy pdf.Strategy
	strict   bool
	workers  int
}

// resolve merges the config file with the flags set on the command line
func (o *validateOptions) resolve(cmd *cobra.Command, cfg *config.Config) (validationRun, error) {
	run := validationRun{
		settings: cfg.Settings(),
		strategy: cfg.Strategy(),
		strict:   cfg.StrictParsing(),
		workers:  o.workers,
	}

	changed := cmd.Flags().Changed
	if changed("strategy") {
		s, err := pdf.ParseStrategy(o.strategy)
		if err != nil {
			return run, err
		}
		run.strategy = s
	}
	if changed("strict") {
		run.strict = o.strict
	}
	if changed("max-pages") {
		run.settings.MaxPageCount = o.maxPages
	}
	if changed("bleed-positive") {
		run.settings.Bleed.PositiveMM = o.bleedPositive
	}
	if changed("bleed-negative") {
		run.settings.Bleed.NegativeMM = o.bleedNegative
	}
	if o.skipMargin {
		run.settings.CheckLeftMargin = false
	}
	if o.skipFonts {
		run.settings.CheckFonts = false
	}
	if o.skipPageCount {
		run.settings.CheckPageCount = false
	}
	if o.skipVersion {
		run.settings.CheckPDFVersion = false
	}
	if run.workers < 1 {
		return run, fmt.Errorf("workers must be at least 1, got %d", run.workers)
	}
	return run, run.settings.Validate()
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions, files []string) error {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	if err := pdf.Configure(pdf.Config{PdfcpuConfigDir: cfg.PdfcpuConfigDir()}); err != nil {
		root.log.WithError(err).Warn("PDF library configuration ignored")
	}

	run, err := opts.resolve(cmd, cfg)
	if err != nil {
		return err
	}

	reports := validateFiles(files, run.workers, func(path string) (validate.Result, error) {
		v := validate.New(
			validate.WithLogger(root.log.WithField("file", path)),
			validate.WithStrategy(run.strategy),
			validate.WithStrictParsing(run.strict),
		)
		return v.ValidateFile(path, run.settings)
	})

	w := cmd.OutOrStdout()
	if root.json() {
		if err := writeJSON(w, reports); err != nil {
			return err
		}
	} else {
		writeText(w, reports)
	}

	for _, r := range reports {
		if !r.ok() {
			return errNotPrintable
		}
	}
	return nil
}

// fileReport is the outcome for one file: a result or the I/O error that
// prevented validation.
type fileReport struct {
	File   string           `json:"file"`
	Result *validate.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (r fileReport) ok() bool {
	return r.Result != nil && r.Result.OKForPrint()
}

func writeJSON(w io.Writer, reports []fileReport) error {
	b, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func writeText(w io.Writer, reports []fileReport) {
	for _, r := range reports {
		if r.Result == nil {
			fmt.Fprintf(w, "%s: error: %s\n", r.File, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s: pages %d, print %s, web %s\n",
			r.File, r.Result.Pages(), okString(r.Result.OKForPrint()), okString(r.Result.OKForWeb()))
		for _, k := range r.Result.Errors() {
			fmt.Fprintf(w, "  - %s: %s\n", k, r.Result.Message(k))
		}
	}
}
