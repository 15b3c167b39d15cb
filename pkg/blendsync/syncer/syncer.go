// Package syncer runs a sync request against a discovered inventory.
//
// A request names one source and either one target or every other
// installation. Each target is checked for known incompatibilities before any
// file is written; a flagged target is copied only if the Confirmer approves
// it. Targets are processed one after another in inventory order.
package syncer

import (
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/engine"
	"github.com/jamesainslie/blendsync/pkg/blendsync/logging"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

var logger = logging.Get("syncer")

var (
	// ErrUnknownSource is returned when the source version was not discovered.
	ErrUnknownSource = errors.New("unknown source version")

	// ErrUnknownTarget is returned when the target is neither a discovered
	// version nor "all".
	ErrUnknownTarget = errors.New("unknown target version")

	// ErrSameVersion is returned when source and target are the same version.
	ErrSameVersion = errors.New("source and target are the same version")

	// ErrNoTargets is returned when "all" expands to nothing.
	ErrNoTargets = errors.New("no other versions to sync to")
)

// Confirmer decides whether a flagged pair should be synced anyway.
type Confirmer interface {
	ConfirmIncompatible(source, target types.Installation, rules []compat.Rule) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(source, target types.Installation, rules []compat.Rule) (bool, error)

// ConfirmIncompatible calls f.
func (f ConfirmFunc) ConfirmIncompatible(source, target types.Installation, rules []compat.Rule) (bool, error) {
	return f(source, target, rules)
}

// Recorder persists a finished report and returns the identifier it was
// stored under.
type Recorder interface {
	Record(report *types.Report) (string, error)
}

// Options configures a Syncer.
type Options struct {
	// Policy controls how exclusions affect the compatibility check.
	Policy compat.Policy

	// Rules overrides compat.DefaultRules when non-nil.
	Rules []compat.Rule

	// Confirm is asked about every flagged pair. A nil Confirm declines.
	Confirm Confirmer

	// Categories resolves exclusion selections. Nil uses category.Default().
	Categories category.Table

	// OnFile receives every engine decision, tagged with its target.
	OnFile func(target types.Installation, ev types.FileEvent)

	// Workers is passed to the engine for enumeration.
	Workers int

	// Recorder stores the report after a real (non dry-run) sync.
	Recorder Recorder
}

// Syncer executes requests.
type Syncer struct {
	opts Options
}

// New creates a Syncer.
func New(opts Options) *Syncer {
	if opts.Categories == nil {
		opts.Categories = category.Default()
	}
	if opts.Rules == nil {
		opts.Rules = compat.DefaultRules
	}
	if opts.Policy == "" {
		opts.Policy = compat.PolicyVersion
	}
	return &Syncer{opts: opts}
}

// plan is a validated request.
type plan struct {
	source  types.Installation
	targets []types.Installation
	cats    []category.Category
}

// Validate checks req against inv without touching the filesystem.
func (s *Syncer) Validate(inv types.Inventory, req types.Request) error {
	_, err := s.plan(inv, req)
	return err
}

func (s *Syncer) plan(inv types.Inventory, req types.Request) (*plan, error) {
	source, ok := inv.Lookup(req.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
	}

	var targets []types.Installation
	switch {
	case req.Target == types.AllTargets:
		targets = inv.Others(source.Version)
		if len(targets) == 0 {
			return nil, ErrNoTargets
		}
	case req.Target == source.Version:
		return nil, fmt.Errorf("%w: %s", ErrSameVersion, req.Target)
	default:
		target, ok := inv.Lookup(req.Target)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, req.Target)
		}
		targets = []types.Installation{target}
	}

	cats, err := s.opts.Categories.Resolve(req.Exclude)
	if err != nil {
		return nil, err
	}

	return &plan{source: source, targets: targets, cats: cats}, nil
}

// Run executes req. An error is returned only for an invalid selection or a
// failing Confirmer; per-target problems are reported in the Report.
func (s *Syncer) Run(inv types.Inventory, req types.Request) (*types.Report, error) {
	p, err := s.plan(inv, req)
	if err != nil {
		return nil, err
	}

	keys := category.Keys(p.cats)
	names := category.Names(p.cats)

	report := &types.Report{
		Source:    p.source,
		Exclude:   keys,
		NewerOnly: req.NewerOnly,
		DryRun:    req.DryRun,
		Started:   time.Now(),
	}

	logger.Info("sync started",
		"source", p.source.Version,
		"targets", len(p.targets),
		"exclude", keys,
		"newer_only", req.NewerOnly,
		"dry_run", req.DryRun,
	)

	for _, target := range p.targets {
		tr, err := s.syncTarget(p.source, target, keys, names, req)
		if err != nil {
			return nil, err
		}
		report.Targets = append(report.Targets, tr)
	}

	report.Elapsed = time.Since(report.Started)

	if s.opts.Recorder != nil && !req.DryRun {
		id, err := s.opts.Recorder.Record(report)
		if err != nil {
			logger.Warn("failed to record sync history", "error", err)
		} else {
			report.ID = id
		}
	}

	logger.Info("sync finished",
		"source", p.source.Version,
		"copied", report.TotalCopied(),
		"bytes", report.TotalBytes(),
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// syncTarget runs the compatibility gate and the engine for one target.
func (s *Syncer) syncTarget(source, target types.Installation, keys, names []string, req types.Request) (types.TargetResult, error) {
	start := time.Now()
	tr := types.TargetResult{Target: target}

	rules := compat.CheckRules(s.opts.Rules, source.Version, target.Version, s.opts.Policy, keys)
	if len(rules) > 0 {
		tr.Incompatible = true
		for _, r := range rules {
			tr.Warnings = append(tr.Warnings, r.Reason)
		}

		approved := false
		if s.opts.Confirm != nil {
			ok, err := s.opts.Confirm.ConfirmIncompatible(source, target, rules)
			if err != nil {
				return tr, fmt.Errorf("confirmation for %s failed: %w", target.Version, err)
			}
			approved = ok
		}
		if !approved {
			logger.Info("target declined", "source", source.Version, "target", target.Version)
			tr.Status = types.StatusDeclined
			tr.Elapsed = time.Since(start)
			return tr, nil
		}
	}

	var onFile func(types.FileEvent)
	if s.opts.OnFile != nil {
		onFile = func(ev types.FileEvent) { s.opts.OnFile(target, ev) }
	}

	res, err := engine.New(engine.Options{
		SourceDir: source.Path,
		TargetDir: target.Path,
		Exclude:   names,
		NewerOnly: req.NewerOnly,
		DryRun:    req.DryRun,
		Workers:   s.opts.Workers,
		OnFile:    onFile,
	}).Run()
	tr.Elapsed = time.Since(start)

	if err != nil {
		logger.Error("target failed", "target", target.Version, "error", err)
		tr.Status = types.StatusFailed
		tr.Error = err.Error()
		return tr, nil
	}

	tr.Result = *res
	if len(res.Errors) > 0 {
		tr.Status = types.StatusPartial
	} else {
		tr.Status = types.StatusSynced
	}
	return tr, nil
}
