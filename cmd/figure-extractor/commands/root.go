// Package commands implements the figure-extractor command line.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/figure-extractor/internal/config"
	"github.com/ironsheep/figure-extractor/internal/detection"
	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/logger"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
	log zerolog.Logger

	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "figure-extractor",
	Short: "Mark, classify and export figures from PDF documents",
	Long: `figure-extractor renders the pages of a PDF, lets a host UI or AI client
drag rectangles over them, classifies each as a figure, a full composite
figure or one of its numbered panels, and exports the selections as cropped
PNG images plus a figures_metadata.json manifest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console or json)")
}

// SetVersion records build information shown by the version command.
func SetVersion(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openDocument(path string) (*document.FitzRenderer, error) {
	return document.Open(path, document.OpenOptions{
		Validate: cfg.Document.Validate,
		Logger:   log,
	})
}

func blockOptions() detection.BlockOptions {
	opts := detection.DefaultBlockOptions()
	opts.Threshold = uint8(cfg.Detection.Threshold)
	opts.CellSize = cfg.Detection.CellSize
	opts.MinArea = cfg.Detection.MinArea
	opts.ExcludeText = cfg.Detection.ExcludeText
	return opts
}
