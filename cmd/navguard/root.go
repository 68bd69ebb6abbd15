package main

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/config"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/navguard/internal/shared/codec"
	"github.com/spf13/cobra"
)

// globalOptions are flags shared by every command. Set flags override the
// environment.
type globalOptions struct {
	dataDir  string
	logLevel string
	dev      bool
	format   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "navguard",
		Short: "Mode-isolated navigation policy engine",
		Long: `navguard decides, for every navigation and sub-resource request of a
browser shell, whether it may load, where a private address resolves to and
which isolated partition it runs in.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "Directory holding blocklist.json, allowlist.json and locations.yaml")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.dev, "dev", false, "Development logging (console, debug)")
	flags.StringVarP(&opts.format, "output", "o", "json", "Output format for check and resolve: json, yaml or toml")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newResolveCmd(opts),
	)
	return rootCmd
}

// loadConfig reads the environment and applies the global flags
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.UseDataDir(opts.dataDir)
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = opts.dev
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
}

// newStderrLogger keeps logs of one-shot commands out of their output
func newStderrLogger(cfg *config.Config) *logging.Logger {
	lc := logging.DefaultConfig()
	if cfg.Logging.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	lc.OutputPaths = []string{"stderr"}

	logger, err := logging.New(lc)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// printValue writes v to w in the selected output format
func printValue(w io.Writer, format string, v any) error {
	data, err := codec.Encode(codec.Format(format), v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
