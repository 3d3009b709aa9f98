package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/retinascan/cmd/analyze"
	"github.com/tphakala/retinascan/cmd/config"
	"github.com/tphakala/retinascan/cmd/devserver"
	"github.com/tphakala/retinascan/cmd/history"
	"github.com/tphakala/retinascan/cmd/shell"
	"github.com/tphakala/retinascan/internal/buildinfo"
	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, info buildinfo.Info) *cobra.Command {
	var centralLogger *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:           "retinascan",
		Short:         "RetinaScan diabetic retinopathy screening client",
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		shell.Command(settings),
		analyze.Command(settings),
		history.Command(settings),
		devserver.Command(settings),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// flags may have changed validated values
		if err := conf.ValidateSettings(settings); err != nil {
			return err
		}

		cl, err := setupLogging(settings)
		if err != nil {
			return err
		}
		centralLogger = cl

		return telemetry.Init(settings, telemetry.Options{Version: info.Version})
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		telemetry.Flush(telemetryFlushTimeout)
		if centralLogger != nil {
			_ = centralLogger.Close()
		}
	}

	return rootCmd
}

// setupLogging installs the global logger. Debug forces the debug level.
func setupLogging(settings *conf.Settings) (*logger.CentralLogger, error) {
	level := settings.Logging.Level
	if settings.Debug {
		level = "debug"
	}
	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		Level:    level,
		Timezone: settings.Display.Timezone,
		File:     settings.Logging.File,
		Console:  true,
	}, os.Stderr)
	if err != nil {
		return nil, err
	}
	logger.SetGlobal(cl)
	return cl, nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVarP(&settings.Server.URL, "server", "s", viper.GetString("server.url"), "Base URL of the screening backend")
	flags.DurationVar(&settings.HTTP.Timeout, "timeout", viper.GetDuration("http.timeout"), "Per-request timeout, 0 disables")
	flags.StringVar(&settings.Display.Locale, "locale", viper.GetString("display.locale"), "Locale for number formatting")
	flags.StringVar(&settings.Display.Timezone, "timezone", viper.GetString("display.timezone"), "Timezone for history timestamps")
	flags.StringVar(&settings.Logging.Level, "log-level", viper.GetString("logging.level"), "Log level: trace, debug, info, warn, error")

	bindings := map[string]string{
		"debug":            "debug",
		"server.url":       "server",
		"http.timeout":     "timeout",
		"display.locale":   "locale",
		"display.timezone": "timezone",
		"logging.level":    "log-level",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}
