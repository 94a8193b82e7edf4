// Command invoicexl renders invoice workbooks from a layout configuration, an
// invoice data file and a template workbook.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/run"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "invoicexl",
		Short:         "Render invoice workbooks from templates and invoice data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newValidateCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var opts run.Options

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render an output workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := run.Render(opts)
			if err != nil {
				return err
			}
			if !summary.OK() {
				return fmt.Errorf("run %s: %d of %d sheet(s) failed: %v",
					summary.RunID, len(summary.Failed()), len(summary.Sheets), summary.Failed())
			}
			fmt.Printf("wrote %s (%d sheet(s), run %s)\n",
				summary.OutputPath, len(summary.Sheets), summary.RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "layout configuration file (YAML)")
	cmd.Flags().StringVarP(&opts.DataPath, "data", "d", "", "invoice data file (JSON)")
	cmd.Flags().StringVarP(&opts.TemplatePath, "template", "t", "", "template workbook (XLSX)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "output workbook path")
	cmd.Flags().BoolVar(&opts.DAF, "daf", false, "render in DAF mode")
	cmd.Flags().BoolVar(&opts.Custom, "custom", false, "render in custom mode")
	for _, f := range []string{"config", "data", "template", "output"} {
		cobra.CheckErr(cmd.MarkFlagRequired(f))
	}
	return cmd
}

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a layout configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s: OK (%d sheet(s))\n", configPath, len(cfg.Sheets))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout configuration file (YAML)")
	cobra.CheckErr(cmd.MarkFlagRequired("config"))
	return cmd
}
