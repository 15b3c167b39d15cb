package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("entry not found")

// Manifest manages operation logging to the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir}, nil
}

// Dir returns the directory entries are stored in.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// Record stores report and returns the new entry ID.
func (m *Manifest) Record(report *types.Report) (string, error) {
	entry, err := m.LogSync(report)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

// LogSync logs a sync operation and returns the created entry.
func (m *Manifest) LogSync(report *types.Report) (*Entry, error) {
	if report == nil {
		return nil, errors.New("report cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	entry := &Entry{
		ID:        generateID(OpSync),
		Timestamp: time.Now().UTC(),
		Operation: OpSync,
		Source:    report.Source,
		Exclude:   report.Exclude,
		NewerOnly: report.NewerOnly,
		Targets:   make([]TargetSummary, 0, len(report.Targets)),
		Files:     []FileRecord{},
	}

	for _, tr := range report.Targets {
		entry.Targets = append(entry.Targets, TargetSummary{
			Version: tr.Target.Version,
			Path:    tr.Target.Path,
			Status:  tr.Status,
			Copied:  tr.Result.Copied,
			Errors:  len(tr.Result.Errors),
		})
		for _, f := range tr.Result.Files {
			entry.Files = append(entry.Files, FileRecord{
				Target:  tr.Target.Version,
				RelPath: f.RelPath,
				Size:    f.Size,
				ModTime: f.ModTime,
			})
			entry.Summary.TotalBytes += f.Size
		}
	}
	entry.Summary.TotalFiles = int64(len(entry.Files))
	entry.Summary.Targets = len(entry.Targets)

	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	return entry, nil
}

// writeEntry writes an entry to a JSON file in the manifest directory.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns all manifest entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves a specific entry by ID.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.readEntryFile(id + ".json")
	if err == nil && entry.ID == id {
		return entry, nil
	}

	// Fall back to a scan in case the file was renamed.
	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// readAll parses every entry in the directory, skipping unreadable files.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// readEntryFile reads and parses a manifest entry from a JSON file.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. A non-positive retention keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, f.Name())); err != nil {
			continue
		}
		removed++
	}

	return removed, nil
}

// generateID creates a unique ID like "sync-2024-06-15T10-30-00-1b4e28ba".
func generateID(op OperationType) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	return fmt.Sprintf("%s-%s-%s", op, ts, uuid.NewString()[:8])
}
