// Package manifest keeps a history of sync operations on the filesystem.
package manifest

import (
	"time"

	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// OperationType represents the type of operation.
type OperationType string

// OpSync represents a settings sync.
const OpSync OperationType = "sync"

// Entry represents a single history entry.
type Entry struct {
	ID        string             `json:"id" yaml:"id"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Operation OperationType      `json:"operation" yaml:"operation"`
	Source    types.Installation `json:"source" yaml:"source"`
	Exclude   []string           `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	NewerOnly bool               `json:"newer_only" yaml:"newer_only"`
	Targets   []TargetSummary    `json:"targets" yaml:"targets"`
	Files     []FileRecord       `json:"files" yaml:"files"`
	Summary   Summary            `json:"summary" yaml:"summary"`
}

// TargetSummary is the recorded outcome for one target.
type TargetSummary struct {
	Version string             `json:"version" yaml:"version"`
	Path    string             `json:"path" yaml:"path"`
	Status  types.TargetStatus `json:"status" yaml:"status"`
	Copied  int64              `json:"copied" yaml:"copied"`
	Errors  int                `json:"errors" yaml:"errors"`
}

// FileRecord represents a copied file.
type FileRecord struct {
	Target  string    `json:"target" yaml:"target"`
	RelPath string    `json:"rel_path" yaml:"rel_path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Summary contains operation summary.
type Summary struct {
	TotalFiles int64 `json:"total_files" yaml:"total_files"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
	Targets    int   `json:"targets" yaml:"targets"`
}
