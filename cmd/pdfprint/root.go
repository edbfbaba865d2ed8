package main

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validOutputFormats = []string{"text", "json"}

// rootOptions holds the flags shared by all commands
type rootOptions struct {
	configPath string
	output     string
	verbose    bool

	log *logrus.Logger
}

func (o *rootOptions) json() bool { return o.output == "json" }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pdfprint",
		Short:         "Check PDF documents for automated print and mail",
		Long:          `Validates that PDF documents can be printed and enveloped automatically: A4 size, a free barcode margin, a bounded page count, a supported version and printable fonts.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(validOutputFormats, opts.output) {
				return fmt.Errorf("invalid output format: %s (valid: %v)", opts.output, validOutputFormats)
			}
			opts.log = newLogger(cmd, opts.verbose)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file (YAML)")
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every finding and parse failure")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newValidateCmd(opts), newErrorsCmd(opts))
	return cmd
}

// newLogger logs to the command's stderr. Findings are logged at info, so
// they only show with --verbose.
func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
