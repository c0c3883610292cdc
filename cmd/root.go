package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pinggame/pingharvest/internal/buildinfo"
	"github.com/pinggame/pingharvest/internal/conf"
	"github.com/pinggame/pingharvest/internal/logging"
)

const serviceName = "pingharvest"

// options carries what the command line adds on top of the settings
type options struct {
	configFile string

	// transport replaces the pooled transport of the search and download
	// clients; nil in production
	transport http.RoundTripper
}

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	return newRootCommand(viper.New(), &options{})
}

func newRootCommand(v *viper.Viper, opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pingharvest",
		Short:         "Harvest character images and build the game manifest",
		Version:       buildinfo.Current().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := conf.Load(v, opts.configFile)
			if err != nil {
				return err
			}

			logger, closeLog, err := initLogging(cmd.ErrOrStderr(), settings)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeLog(); err != nil {
					logger.Warn("Failed to close log file", "error", err)
				}
			}()

			return runHarvest(cmd.Context(), settings, opts, logger, cmd.OutOrStdout())
		},
	}

	if err := setupFlags(rootCmd, v, opts); err != nil {
		// Flag names are static, a binding failure is a programming error
		panic(err)
	}

	return rootCmd
}

// setupFlags defines the command line overrides and binds them to config keys
func setupFlags(rootCmd *cobra.Command, v *viper.Viper, opts *options) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to config.yaml")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.IntP("target", "n", 100, "Number of images to download")
	flags.Int("max-names", 50, "Maximum number of names to harvest")
	flags.StringP("output", "o", ".", "Output directory for images and data")
	flags.Uint64("seed", 0, "Seed for the name shuffle, 0 uses the clock")
	flags.Duration("pace-delay", 0, "Pause after each image search")
	flags.String("keyword", "", "Keyword appended to every image search")
	flags.String("pushgateway", "", "Prometheus Pushgateway URL")

	bindings := map[string]string{
		"debug":               "debug",
		"log.level":           "log-level",
		"log.path":            "log-file",
		"harvest.target":      "target",
		"harvest.maxnames":    "max-names",
		"harvest.outputdir":   "output",
		"harvest.seed":        "seed",
		"search.pacedelay":    "pace-delay",
		"search.keyword":      "keyword",
		"metrics.pushgateway": "pushgateway",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}

// initLogging sets up the stderr logger and, when log.path is set, a rotated
// JSON file logger receiving the same records.
func initLogging(stderr io.Writer, settings *conf.Settings) (*slog.Logger, func() error, error) {
	level := logging.ParseLevel(settings.Log.Level)
	if settings.Debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	logging.SetOutput(stderr, level)

	logger := logging.ForService(serviceName)
	noop := func() error { return nil }
	if settings.Log.Path == "" {
		return logger, noop, nil
	}

	fileLogger, closeFile, err := logging.NewFileLogger(settings.Log.Path, serviceName, level, logging.FileLogConfig{
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, noop, err
	}
	return logging.Tee(logger, fileLogger), closeFile, nil
}
