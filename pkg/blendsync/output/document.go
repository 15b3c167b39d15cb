package output

import (
	"time"

	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// The structured formatters (json, yaml) share these document shapes so
// both encodings carry the same fields.

type inventoryDoc struct {
	Root     string               `json:"root" yaml:"root"`
	Count    int                  `json:"count" yaml:"count"`
	Versions []types.Installation `json:"versions" yaml:"versions"`
}

type reportDoc struct {
	ID         string             `json:"id,omitempty" yaml:"id,omitempty"`
	Source     types.Installation `json:"source" yaml:"source"`
	Exclude    []string           `json:"exclude" yaml:"exclude"`
	NewerOnly  bool               `json:"newer_only" yaml:"newer_only"`
	DryRun     bool               `json:"dry_run" yaml:"dry_run"`
	Started    time.Time          `json:"started" yaml:"started"`
	Elapsed    string             `json:"elapsed" yaml:"elapsed"`
	Failed     bool               `json:"failed" yaml:"failed"`
	TotalFiles int64              `json:"total_files" yaml:"total_files"`
	TotalBytes int64              `json:"total_bytes" yaml:"total_bytes"`
	TotalSize  string             `json:"total_size" yaml:"total_size"`
	Targets    []targetDoc        `json:"targets" yaml:"targets"`
}

type targetDoc struct {
	Version      string             `json:"version" yaml:"version"`
	Path         string             `json:"path" yaml:"path"`
	Status       types.TargetStatus `json:"status" yaml:"status"`
	Incompatible bool               `json:"incompatible" yaml:"incompatible"`
	Warnings     []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error        string             `json:"error,omitempty" yaml:"error,omitempty"`
	Copied       int64              `json:"copied" yaml:"copied"`
	UpToDate     int64              `json:"up_to_date" yaml:"up_to_date"`
	Excluded     int64              `json:"excluded" yaml:"excluded"`
	Skipped      int64              `json:"skipped" yaml:"skipped"`
	BytesCopied  int64              `json:"bytes_copied" yaml:"bytes_copied"`
	Files        []string           `json:"files,omitempty" yaml:"files,omitempty"`
	Errors       []types.FileError  `json:"errors,omitempty" yaml:"errors,omitempty"`
	Elapsed      string             `json:"elapsed" yaml:"elapsed"`
}

type verdictDoc struct {
	Source       string        `json:"source" yaml:"source"`
	Target       string        `json:"target" yaml:"target"`
	Policy       compat.Policy `json:"policy" yaml:"policy"`
	Incompatible bool          `json:"incompatible" yaml:"incompatible"`
	Rules        []compat.Rule `json:"rules" yaml:"rules"`
}

func newInventoryDoc(inv *types.Inventory) inventoryDoc {
	versions := inv.Installations
	if versions == nil {
		versions = []types.Installation{}
	}
	return inventoryDoc{Root: inv.Root, Count: len(versions), Versions: versions}
}

func newReportDoc(r *types.Report) reportDoc {
	doc := reportDoc{
		ID:         r.ID,
		Source:     r.Source,
		Exclude:    r.Exclude,
		NewerOnly:  r.NewerOnly,
		DryRun:     r.DryRun,
		Started:    r.Started,
		Elapsed:    formatDuration(r.Elapsed),
		Failed:     r.Failed(),
		TotalFiles: r.TotalCopied(),
		TotalBytes: r.TotalBytes(),
		TotalSize:  types.FormatSize(r.TotalBytes()),
		Targets:    make([]targetDoc, 0, len(r.Targets)),
	}
	if doc.Exclude == nil {
		doc.Exclude = []string{}
	}

	for _, t := range r.Targets {
		td := targetDoc{
			Version:      t.Target.Version,
			Path:         t.Target.Path,
			Status:       t.Status,
			Incompatible: t.Incompatible,
			Warnings:     t.Warnings,
			Error:        t.Error,
			Copied:       t.Result.Copied,
			UpToDate:     t.Result.UpToDate,
			Excluded:     t.Result.Excluded,
			Skipped:      t.Result.Skipped,
			BytesCopied:  t.Result.BytesCopied,
			Errors:       t.Result.Errors,
			Elapsed:      formatDuration(t.Elapsed),
		}
		for _, f := range t.Result.Files {
			td.Files = append(td.Files, f.RelPath)
		}
		doc.Targets = append(doc.Targets, td)
	}
	return doc
}

func newVerdictDoc(v *Verdict) verdictDoc {
	rules := v.Rules
	if rules == nil {
		rules = []compat.Rule{}
	}
	return verdictDoc{
		Source:       v.Source,
		Target:       v.Target,
		Policy:       v.Policy,
		Incompatible: v.Incompatible,
		Rules:        rules,
	}
}

// formatDuration renders d rounded for display.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
