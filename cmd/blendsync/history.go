package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/blendsync/pkg/blendsync/config"
	"github.com/jamesainslie/blendsync/pkg/blendsync/manifest"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sync history",
	Long: `View the history of sync operations.

Every sync that writes files is recorded with its source, targets, and the
files copied. History is informational; it cannot undo a sync.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show details of a specific sync",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old history entries",
	Long:  `Remove history entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	historyDays  int
)

// maxShownFiles caps the file list of history show.
const maxShownFiles = 50

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCleanCmd.Flags().IntVar(&historyDays, "days", 0, "retention in days (default: history.retention_days)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest for the configured history directory.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.New(cfg.HistoryDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return m, cfg, nil
}

// runHistory lists recent syncs.
func runHistory(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'blendsync sync' to copy settings between versions.")
		return nil
	}

	fmt.Printf("\n%-34s  %-14s  %-7s  %-20s  %-6s  %-10s\n", "ID", "WHEN", "SOURCE", "TARGETS", "FILES", "SIZE")
	fmt.Println(strings.Repeat("-", 100))

	for _, entry := range entries {
		fmt.Printf("%-34s  %-14s  %-7s  %-20s  %-6d  %-10s\n",
			truncateString(entry.ID, 34),
			truncateString(humanize.Time(entry.Timestamp), 14),
			entry.Source.Version,
			truncateString(targetVersions(entry.Targets), 20),
			entry.Summary.TotalFiles,
			types.FormatSize(entry.Summary.TotalBytes),
		)
	}

	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'blendsync history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays one recorded sync.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return fmt.Errorf("no history entry %q", args[0])
		}
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nSync Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:          %s\n", entry.ID)
	fmt.Printf("Timestamp:   %s (%s)\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Printf("Source:      %s  %s\n", entry.Source.Version, entry.Source.Path)
	if len(entry.Exclude) > 0 {
		fmt.Printf("Excluded:    %s\n", strings.Join(entry.Exclude, ", "))
	}
	fmt.Printf("Newer only:  %t\n", entry.NewerOnly)
	fmt.Printf("Files:       %d\n", entry.Summary.TotalFiles)
	fmt.Printf("Total Size:  %s\n", types.FormatSize(entry.Summary.TotalBytes))

	fmt.Println("\nTargets:")
	fmt.Println(strings.Repeat("-", 60))
	for _, t := range entry.Targets {
		fmt.Printf("%-8s  %-9s  %4d copied  %d errors\n", t.Version, t.Status, t.Copied, t.Errors)
	}

	if len(entry.Files) > 0 {
		fmt.Println("\nFiles:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-8s  %-12s  %s\n", "TARGET", "SIZE", "PATH")
		fmt.Println(strings.Repeat("-", 60))

		limit := min(len(entry.Files), maxShownFiles)
		for _, file := range entry.Files[:limit] {
			fmt.Printf("%-8s  %-12s  %s\n", file.Target, types.FormatSize(file.Size), file.RelPath)
		}

		if len(entry.Files) > limit {
			fmt.Printf("\n... and %d more files\n", len(entry.Files)-limit)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := historyDays
	if retentionDays <= 0 {
		retentionDays = cfg.History.RetentionDays
	}
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

// targetVersions joins the target versions of an entry.
func targetVersions(targets []manifest.TargetSummary) string {
	versions := make([]string, 0, len(targets))
	for _, t := range targets {
		versions = append(versions, t.Version)
	}
	return strings.Join(versions, ",")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
