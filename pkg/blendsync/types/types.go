// Package types provides core data types for blendsync.
// It includes the discovered installation inventory, sync requests, and the
// per-target results reported back to callers.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// AllTargets is the target selector that expands to every discovered
// installation except the source.
const AllTargets = "all"

// Installation is one installed Blender version and its settings directory.
type Installation struct {
	// Version is the directory name, e.g. "4.2".
	Version string `json:"version" yaml:"version"`

	// Path is the absolute settings directory for this version.
	Path string `json:"path" yaml:"path"`
}

// Inventory is the result of scanning the settings root.
// Installations are ordered by version, newest first.
type Inventory struct {
	// Root is the settings root that was scanned.
	Root string `json:"root" yaml:"root"`

	// Installations holds every discovered version directory.
	Installations []Installation `json:"installations" yaml:"installations"`
}

// Len returns the number of discovered installations.
func (inv Inventory) Len() int {
	return len(inv.Installations)
}

// Lookup returns the installation for version.
func (inv Inventory) Lookup(version string) (Installation, bool) {
	for _, inst := range inv.Installations {
		if inst.Version == version {
			return inst, true
		}
	}
	return Installation{}, false
}

// Versions returns the discovered version strings in inventory order.
func (inv Inventory) Versions() []string {
	versions := make([]string, 0, len(inv.Installations))
	for _, inst := range inv.Installations {
		versions = append(versions, inst.Version)
	}
	return versions
}

// Others returns every installation except source, preserving order.
func (inv Inventory) Others(source string) []Installation {
	others := make([]Installation, 0, len(inv.Installations))
	for _, inst := range inv.Installations {
		if inst.Version == source {
			continue
		}
		others = append(others, inst)
	}
	return others
}

// Request describes a single user-initiated sync.
type Request struct {
	// Source is the version to copy settings from.
	Source string `json:"source" yaml:"source"`

	// Target is a version or AllTargets.
	Target string `json:"target" yaml:"target"`

	// Exclude holds exclusion category keys or labels.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// NewerOnly skips files whose destination copy is at least as fresh.
	NewerOnly bool `json:"newer_only" yaml:"newer_only"`

	// DryRun reports decisions without writing anything.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// FileAction is the decision made for a single source file.
type FileAction string

const (
	// ActionCopy means the file was (or in a dry run would be) copied.
	ActionCopy FileAction = "copy"
	// ActionExcluded means a path component matched an excluded name.
	ActionExcluded FileAction = "excluded"
	// ActionUpToDate means newer-only mode found a destination at least as fresh.
	ActionUpToDate FileAction = "up-to-date"
	// ActionSkipped means the entry is not a regular file.
	ActionSkipped FileAction = "skipped"
	// ActionFailed means copying the file returned an error.
	ActionFailed FileAction = "failed"
)

// FileEvent reports one engine decision.
type FileEvent struct {
	// RelPath is the path relative to the source directory.
	RelPath string
	Action  FileAction
	Size    int64
	Err     error
}

// FileRecord describes a copied file.
type FileRecord struct {
	RelPath string    `json:"rel_path" yaml:"rel_path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// FileError pairs a path with the error encountered while copying it.
type FileError struct {
	RelPath string `json:"rel_path" yaml:"rel_path"`
	Error   string `json:"error" yaml:"error"`
}

// CopyResult aggregates the outcome of copying one source tree into one target.
type CopyResult struct {
	Copied      int64        `json:"copied" yaml:"copied"`
	Excluded    int64        `json:"excluded" yaml:"excluded"`
	UpToDate    int64        `json:"up_to_date" yaml:"up_to_date"`
	Skipped     int64        `json:"skipped" yaml:"skipped"`
	BytesCopied int64        `json:"bytes_copied" yaml:"bytes_copied"`
	Files       []FileRecord `json:"files,omitempty" yaml:"files,omitempty"`
	Errors      []FileError  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// TargetStatus summarizes what happened to a single target.
type TargetStatus string

const (
	// StatusSynced means every eligible file was copied.
	StatusSynced TargetStatus = "synced"
	// StatusPartial means some files failed to copy.
	StatusPartial TargetStatus = "partial"
	// StatusDeclined means the compatibility gate was not confirmed.
	StatusDeclined TargetStatus = "declined"
	// StatusFailed means the pair could not be processed at all.
	StatusFailed TargetStatus = "failed"
)

// TargetResult is the outcome for one source/target pair.
type TargetResult struct {
	Target       Installation  `json:"target" yaml:"target"`
	Status       TargetStatus  `json:"status" yaml:"status"`
	Incompatible bool          `json:"incompatible" yaml:"incompatible"`
	Warnings     []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Result       CopyResult    `json:"result" yaml:"result"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed      time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Report is the outcome of a whole sync request.
type Report struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Source    Installation   `json:"source" yaml:"source"`
	Targets   []TargetResult `json:"targets" yaml:"targets"`
	Exclude   []string       `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	NewerOnly bool           `json:"newer_only" yaml:"newer_only"`
	DryRun    bool           `json:"dry_run" yaml:"dry_run"`
	Started   time.Time      `json:"started" yaml:"started"`
	Elapsed   time.Duration  `json:"elapsed" yaml:"elapsed"`
}

// Failed reports whether any target failed or copied only partially.
func (r *Report) Failed() bool {
	for _, t := range r.Targets {
		if t.Status == StatusFailed || t.Status == StatusPartial {
			return true
		}
	}
	return false
}

// TotalCopied returns the number of files copied across all targets.
func (r *Report) TotalCopied() int64 {
	var n int64
	for _, t := range r.Targets {
		n += t.Result.Copied
	}
	return n
}

// TotalBytes returns the bytes copied across all targets.
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, t := range r.Targets {
		n += t.Result.BytesCopied
	}
	return n
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
