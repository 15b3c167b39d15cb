package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/jamesainslie/blendsync/pkg/blendsync/config"
	"github.com/jamesainslie/blendsync/pkg/blendsync/manifest"
	"github.com/jamesainslie/blendsync/pkg/blendsync/output"
	"github.com/jamesainslie/blendsync/pkg/blendsync/syncer"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errSyncFailed signals exit status 1 after the report was already printed.
var errSyncFailed = errors.New("sync failed")

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy settings from one version to another",
	Long: `Copy the settings tree of one Blender version into another version, or into
every other installed version with --to all.

Exclusion categories (-x) leave parts of the tree alone:
  recent     bookmarks.txt, recent-files.txt, recent-searches.txt
  addons     addons directories
  presets    presets directories
  startup    startup.blend
  userprefs  userpref.blend

Pairs with a known incompatibility ask for confirmation first. Without a
terminal they are skipped unless --yes is given.

When --from or --to is missing and a terminal is attached, the selection is
made interactively.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var (
	syncFrom   string
	syncTo     string
	syncDryRun bool
	syncYes    bool
)

func init() {
	syncCmd.Flags().StringVarP(&syncFrom, "from", "f", "", "source version")
	syncCmd.Flags().StringVarP(&syncTo, "to", "t", "", `target version or "all"`)
	syncCmd.Flags().StringSliceP("exclude", "x", nil, "exclusion categories (can be specified multiple times)")
	syncCmd.Flags().Bool("newer-only", false, "only replace target files that are older than the source")
	syncCmd.Flags().IntP("workers", "w", 0, "override enumeration workers (0=auto)")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "show what would be copied without writing")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "sync incompatible pairs without asking")

	_ = viper.BindPFlag("exclude", syncCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("newer_only", syncCmd.Flags().Lookup("newer-only"))
	_ = viper.BindPFlag("workers", syncCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(syncCmd)
}

// runSync resolves the request, runs it and prints the report.
func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	inv, err := discoverInventory(cfg)
	if err != nil {
		return err
	}
	if inv.Len() == 0 {
		return fmt.Errorf("no Blender versions found in %s", inv.Root)
	}

	table := cfg.CategoryTable()
	req := types.Request{
		Source:    syncFrom,
		Target:    syncTo,
		Exclude:   cfg.Exclude,
		NewerOnly: cfg.NewerOnly,
		DryRun:    syncDryRun,
	}

	interactive := isInteractive()
	if req.Source == "" || req.Target == "" {
		if !interactive {
			return errors.New("--from and --to are required without a terminal")
		}
		if err := promptSelection(inv, table, &req); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				printInfo("Cancelled.")
				return nil
			}
			return err
		}
	}

	opts := syncer.Options{
		Policy:     policy,
		Confirm:    &promptConfirmer{assumeYes: syncYes, interactive: interactive, out: os.Stderr},
		Categories: table,
		Workers:    cfg.Workers,
	}
	if getVerbose() {
		opts.OnFile = func(target types.Installation, ev types.FileEvent) {
			if ev.Err != nil {
				printVerbose("%s %-10s %s: %v", target.Version, ev.Action, ev.RelPath, ev.Err)
				return
			}
			printVerbose("%s %-10s %s", target.Version, ev.Action, ev.RelPath)
		}
	}

	history := openHistory(cfg)
	if history != nil {
		opts.Recorder = history
	}

	report, err := syncer.New(opts).Run(inv, req)
	if err != nil {
		return err
	}

	if err := render(func(f output.Formatter, buf *bytes.Buffer) error {
		return f.FormatReport(buf, report)
	}); err != nil {
		return err
	}

	if history != nil && !req.DryRun {
		if n, err := history.Cleanup(cfg.History.RetentionDays); err != nil {
			printVerbose("history cleanup failed: %v", err)
		} else if n > 0 {
			printVerbose("Removed %d old history entries", n)
		}
	}

	if report.Failed() {
		return errSyncFailed
	}
	return nil
}

// openHistory returns the history manifest, or nil when history is
// disabled or unavailable.
func openHistory(cfg *config.Config) *manifest.Manifest {
	if !cfg.History.Enabled {
		return nil
	}
	m, err := manifest.New(cfg.HistoryDir())
	if err != nil {
		printVerbose("history disabled: %v", err)
		return nil
	}
	return m
}
