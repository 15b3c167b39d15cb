package main

import (
	"bytes"

	"github.com/jamesainslie/blendsync/pkg/blendsync/config"
	"github.com/jamesainslie/blendsync/pkg/blendsync/locator"
	"github.com/jamesainslie/blendsync/pkg/blendsync/output"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:     "versions",
	Aliases: []string{"list", "refresh"},
	Short:   "List installed Blender versions",
	Long: `Scan the Blender settings directory and list every version found.

Only directories named like a version (4.3, 3.6) are listed. The scan is
repeated on every invocation, so this also serves as a refresh.`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

// runVersions discovers and prints the installed versions.
func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inv, err := discoverInventory(cfg)
	if err != nil {
		return err
	}

	return render(func(f output.Formatter, buf *bytes.Buffer) error {
		return f.FormatInventory(buf, &inv)
	})
}

// settingsRoot returns the configured settings root or the platform default.
func settingsRoot(cfg *config.Config) (string, error) {
	if cfg.SettingsRoot != "" {
		return cfg.SettingsRoot, nil
	}
	return locator.SettingsRoot(locator.HostPlatform())
}

// discoverInventory scans the settings root for version directories.
func discoverInventory(cfg *config.Config) (types.Inventory, error) {
	root, err := settingsRoot(cfg)
	if err != nil {
		return types.Inventory{}, err
	}

	printVerbose("Scanning %s", root)
	return locator.Discover(root, locator.WithIgnore(cfg.IgnoreDirs...))
}
