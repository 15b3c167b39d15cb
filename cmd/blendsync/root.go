package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jamesainslie/blendsync/pkg/blendsync/config"
	"github.com/jamesainslie/blendsync/pkg/blendsync/logging"
	"github.com/jamesainslie/blendsync/pkg/blendsync/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	configErr error
	rootCmd   = &cobra.Command{
		Use:   "blendsync",
		Short: "Copy Blender settings between installed versions",
		Long: `Blendsync copies addons, presets, startup and preference files between the
per-version settings directories of a local Blender installation.

Run without a subcommand to list the versions that were found.

Examples:
  blendsync                           # List discovered versions
  blendsync sync                      # Pick source and target interactively
  blendsync sync --from 4.3 --to all  # Copy 4.3 settings to every other version
  blendsync sync -f 4.3 -t 4.2 -x addons --newer-only
  blendsync check 4.3 4.0             # Show known incompatibilities
  blendsync history                   # View past syncs`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		RunE: runVersions,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/blendsync/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "Blender settings directory (default: platform location)")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("settings_root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	configErr = config.Configure(viper.GetViper(), cfgFile)
}

// setupLogging starts the file logger, plus console output in verbose mode.
func setupLogging(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		printError("%v (using defaults)", configErr)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lc := cfg.LoggingConfig()
	if getVerbose() {
		lc.ConsoleLevel = "debug"
	}
	if err := logging.Init(lc); err != nil {
		printVerbose("logging disabled: %v", err)
	}
	return nil
}

// loadConfig decodes the global viper instance.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// render formats a document with the selected output format and writes it
// to stdout.
func render(format func(f output.Formatter, buf *bytes.Buffer) error) error {
	f, err := output.Get(viper.GetString("output"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := format(f, &buf); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
