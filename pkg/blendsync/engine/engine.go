// Package engine copies one version's settings tree into another version's
// directory, honouring excluded names and the newer-only rule.
//
// Enumeration uses fastwalk and is read-only; every write happens
// sequentially on the goroutine that called Run. A failure on one file is
// recorded in the result and the copy continues with the next file.
package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/blendsync/pkg/blendsync/logging"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

var logger = logging.Get("engine")

// ErrNotDirectory is returned when the source root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a copy.
type Options struct {
	// SourceDir is the settings directory to read from.
	SourceDir string

	// TargetDir is the settings directory to write into. It is created if missing.
	TargetDir string

	// Exclude holds file or directory names (or glob patterns) to skip.
	Exclude []string

	// NewerOnly skips a file when the destination exists and is not older.
	NewerOnly bool

	// DryRun makes every decision without writing anything.
	DryRun bool

	// Workers is the number of fastwalk workers used for enumeration.
	// Zero uses the fastwalk default.
	Workers int

	// OnFile is called once per decision, on the calling goroutine.
	OnFile func(types.FileEvent)
}

// Engine performs a single source-to-target copy.
type Engine struct {
	opts    Options
	matcher *Matcher
	result  types.CopyResult
}

// New creates an Engine for opts.
func New(opts Options) *Engine {
	return &Engine{
		opts:    opts,
		matcher: NewMatcher(opts.Exclude),
	}
}

// Copy mirrors every non-excluded file under sourceDir into targetDir.
func Copy(sourceDir, targetDir string, excluded []string, newerOnly bool) (*types.CopyResult, error) {
	return New(Options{
		SourceDir: sourceDir,
		TargetDir: targetDir,
		Exclude:   excluded,
		NewerOnly: newerOnly,
	}).Run()
}

// entry is a source file found during enumeration.
type entry struct {
	path    string
	relPath string
}

// Run performs the copy. The returned error is non-nil only when the pair
// cannot be processed at all; per-file failures are in the result.
func (e *Engine) Run() (*types.CopyResult, error) {
	start := time.Now()

	src, err := validateSource(e.opts.SourceDir)
	if err != nil {
		return nil, err
	}
	dst, err := filepath.Abs(e.opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %q: %w", e.opts.TargetDir, err)
	}

	e.result = types.CopyResult{}
	entries := e.collect(src)

	for _, ent := range entries {
		e.process(ent, dst)
	}

	logger.Info("copy finished",
		"source", src,
		"target", dst,
		"copied", e.result.Copied,
		"excluded", e.result.Excluded,
		"up_to_date", e.result.UpToDate,
		"errors", len(e.result.Errors),
		"dry_run", e.opts.DryRun,
		"elapsed", time.Since(start),
	)

	res := e.result
	return &res, nil
}

// validateSource resolves the source root and verifies it is a directory.
func validateSource(dir string) (string, error) {
	src, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source %q: %w", dir, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("cannot access source: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s: %w", src, ErrNotDirectory)
	}
	return src, nil
}

// collect walks src and returns candidate files sorted by relative path.
// Excluded entries are reported immediately; excluded directories are pruned.
func (e *Engine) collect(src string) []entry {
	var (
		mu       sync.Mutex
		entries  []entry
		excluded []string
		walkErrs []types.FileError
	)

	conf := fastwalk.Config{
		Follow:     false,
		Sort:       fastwalk.SortLexical,
		NumWorkers: e.opts.Workers,
	}

	err := fastwalk.Walk(&conf, src, func(path string, d fs.DirEntry, err error) error {
		relPath, relErr := filepath.Rel(src, path)
		if relErr != nil {
			relPath = path
		}

		if err != nil {
			mu.Lock()
			walkErrs = append(walkErrs, types.FileError{RelPath: relPath, Error: err.Error()})
			mu.Unlock()
			return nil
		}

		if relPath == "." {
			return nil
		}

		if e.matcher.MatchName(d.Name()) {
			mu.Lock()
			excluded = append(excluded, relPath)
			mu.Unlock()
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		mu.Lock()
		entries = append(entries, entry{path: path, relPath: relPath})
		mu.Unlock()
		return nil
	})
	if err != nil {
		e.result.Errors = append(e.result.Errors, types.FileError{RelPath: ".", Error: err.Error()})
	}

	sort.Strings(excluded)
	for _, relPath := range excluded {
		e.result.Excluded++
		e.emit(types.FileEvent{RelPath: relPath, Action: types.ActionExcluded})
	}

	sort.Slice(walkErrs, func(i, j int) bool { return walkErrs[i].RelPath < walkErrs[j].RelPath })
	for _, fe := range walkErrs {
		e.result.Errors = append(e.result.Errors, fe)
		e.emit(types.FileEvent{RelPath: fe.RelPath, Action: types.ActionFailed, Err: errors.New(fe.Error)})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].relPath < entries[j].relPath })
	return entries
}

// process decides and applies the action for a single source file.
func (e *Engine) process(ent entry, dstRoot string) {
	info, err := os.Stat(ent.path)
	if err != nil {
		e.fail(ent.relPath, err)
		return
	}
	if !info.Mode().IsRegular() {
		e.result.Skipped++
		e.emit(types.FileEvent{RelPath: ent.relPath, Action: types.ActionSkipped})
		return
	}

	dst := filepath.Join(dstRoot, ent.relPath)

	if e.opts.NewerOnly && upToDate(dst, info.ModTime()) {
		e.result.UpToDate++
		e.emit(types.FileEvent{RelPath: ent.relPath, Action: types.ActionUpToDate, Size: info.Size()})
		return
	}

	if !e.opts.DryRun {
		if err := copyFile(ent.path, dst, info); err != nil {
			e.fail(ent.relPath, err)
			return
		}
		logger.Debug("copied file", "path", ent.relPath, "size", info.Size())
	}

	e.result.Copied++
	e.result.BytesCopied += info.Size()
	e.result.Files = append(e.result.Files, types.FileRecord{
		RelPath: ent.relPath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	e.emit(types.FileEvent{RelPath: ent.relPath, Action: types.ActionCopy, Size: info.Size()})
}

// fail records a per-file error.
func (e *Engine) fail(relPath string, err error) {
	logger.Warn("failed to copy file", "path", relPath, "error", err)
	e.result.Errors = append(e.result.Errors, types.FileError{RelPath: relPath, Error: err.Error()})
	e.emit(types.FileEvent{RelPath: relPath, Action: types.ActionFailed, Err: err})
}

// emit forwards an event to the OnFile callback if set.
func (e *Engine) emit(ev types.FileEvent) {
	if e.opts.OnFile != nil {
		e.opts.OnFile(ev)
	}
}

// upToDate reports whether dst exists and is not older than srcMod.
func upToDate(dst string, srcMod time.Time) bool {
	info, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(srcMod)
}

// copyFile copies src to dst through a temp file in dst's directory,
// preserving permission bits and modification time.
func copyFile(src, dst string, info os.FileInfo) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to copy content: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
