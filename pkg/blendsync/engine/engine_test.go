package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates path (and parents) with content and the given mtime.
func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// readTree returns every regular file under root keyed by slash-separated relative path.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func fixture(t *testing.T) (src, dst string) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "4.3")
	dst = filepath.Join(root, "4.0")

	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, filepath.Join(src, "config", "userpref.blend"), "prefs-4.3", mtime)
	writeFile(t, filepath.Join(src, "config", "startup.blend"), "startup-4.3", mtime)
	writeFile(t, filepath.Join(src, "config", "bookmarks.txt"), "bookmarks", mtime)
	writeFile(t, filepath.Join(src, "scripts", "addons", "foo.py"), "print('foo')", mtime)
	writeFile(t, filepath.Join(src, "scripts", "presets", "keyconfig", "mine.py"), "keys", mtime)
	return src, dst
}

func TestCopy_ExcludesAddons(t *testing.T) {
	src, dst := fixture(t)

	res, err := Copy(src, dst, []string{"addons"}, false)
	require.NoError(t, err)

	tree := readTree(t, dst)
	assert.Equal(t, map[string]string{
		"config/userpref.blend":             "prefs-4.3",
		"config/startup.blend":              "startup-4.3",
		"config/bookmarks.txt":              "bookmarks",
		"scripts/presets/keyconfig/mine.py": "keys",
	}, tree)

	assert.EqualValues(t, 4, res.Copied)
	assert.EqualValues(t, 1, res.Excluded)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Files, 4)

	_, err = os.Stat(filepath.Join(dst, "scripts", "addons"))
	assert.True(t, os.IsNotExist(err), "excluded directory must not be created")
}

func TestCopy_ExcludedTargetFileUntouched(t *testing.T) {
	src, dst := fixture(t)
	writeFile(t, filepath.Join(dst, "config", "userpref.blend"), "prefs-4.0", time.Now().Add(-48*time.Hour))

	_, err := Copy(src, dst, []string{"userpref.blend", "addons"}, false)
	require.NoError(t, err)

	tree := readTree(t, dst)
	assert.Equal(t, "prefs-4.0", tree["config/userpref.blend"])
	for rel := range tree {
		assert.NotContains(t, rel, "addons")
	}
}

func TestCopy_PreservesModTime(t *testing.T) {
	src, dst := fixture(t)

	_, err := Copy(src, dst, nil, false)
	require.NoError(t, err)

	srcInfo, err := os.Stat(filepath.Join(src, "config", "userpref.blend"))
	require.NoError(t, err)
	dstInfo, err := os.Stat(filepath.Join(dst, "config", "userpref.blend"))
	require.NoError(t, err)

	assert.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()),
		"mtime not preserved: src=%v dst=%v", srcInfo.ModTime(), dstInfo.ModTime())
}

func TestCopy_Idempotent(t *testing.T) {
	src, dst := fixture(t)

	_, err := Copy(src, dst, []string{"addons"}, false)
	require.NoError(t, err)
	first := readTree(t, dst)

	_, err = Copy(src, dst, []string{"addons"}, false)
	require.NoError(t, err)
	second := readTree(t, dst)

	assert.Equal(t, first, second)

	// Newer-only after a full copy finds everything up to date.
	res, err := Copy(src, dst, []string{"addons"}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Copied)
	assert.EqualValues(t, 4, res.UpToDate)
	assert.Equal(t, first, readTree(t, dst))
}

func TestCopy_NewerOnly(t *testing.T) {
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	tests := []struct {
		name        string
		targetMtime time.Time
		wantContent string
		wantAction  types.FileAction
	}{
		{
			name:        "target older is overwritten",
			targetMtime: base.Add(-time.Minute),
			wantContent: "source",
			wantAction:  types.ActionCopy,
		},
		{
			name:        "equal timestamps skip",
			targetMtime: base,
			wantContent: "target",
			wantAction:  types.ActionUpToDate,
		},
		{
			name:        "target newer is never overwritten",
			targetMtime: base.Add(time.Minute),
			wantContent: "target",
			wantAction:  types.ActionUpToDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			src := filepath.Join(root, "src")
			dst := filepath.Join(root, "dst")
			writeFile(t, filepath.Join(src, "userpref.blend"), "source", base)
			writeFile(t, filepath.Join(dst, "userpref.blend"), "target", tt.targetMtime)

			var events []types.FileEvent
			res, err := New(Options{
				SourceDir: src,
				TargetDir: dst,
				NewerOnly: true,
				OnFile:    func(ev types.FileEvent) { events = append(events, ev) },
			}).Run()
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(dst, "userpref.blend"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(data))

			require.Len(t, events, 1)
			assert.Equal(t, tt.wantAction, events[0].Action)
			assert.Equal(t, "userpref.blend", events[0].RelPath)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestCopy_NewerOnlyMissingTarget(t *testing.T) {
	src, dst := fixture(t)

	res, err := Copy(src, dst, nil, true)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Copied)
	assert.EqualValues(t, 0, res.UpToDate)
}

func TestCopy_WithoutNewerOnlyOverwritesNewerTarget(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(src, "startup.blend"), "source", time.Now().Add(-time.Hour))
	writeFile(t, filepath.Join(dst, "startup.blend"), "target", time.Now())

	_, err := Copy(src, dst, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "source", readTree(t, dst)["startup.blend"])
}

func TestCopy_DryRun(t *testing.T) {
	src, dst := fixture(t)

	res, err := New(Options{SourceDir: src, TargetDir: dst, Exclude: []string{"addons"}, DryRun: true}).Run()
	require.NoError(t, err)

	assert.EqualValues(t, 4, res.Copied)
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "dry run must not create the target")
}

func TestCopy_SourceErrors(t *testing.T) {
	root := t.TempDir()

	_, err := Copy(filepath.Join(root, "missing"), filepath.Join(root, "dst"), nil, false)
	assert.Error(t, err)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Copy(file, filepath.Join(root, "dst"), nil, false)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestCopy_PerFileFailureContinues(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "a", time.Now())
	writeFile(t, filepath.Join(src, "b.txt"), "b", time.Now())
	writeFile(t, filepath.Join(src, "c.txt"), "c", time.Now())

	// A directory where b.txt should land makes that single file fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "b.txt", "occupied"), 0o755))

	res, err := Copy(src, dst, nil, false)
	require.NoError(t, err)

	assert.EqualValues(t, 2, res.Copied)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "b.txt", res.Errors[0].RelPath)

	tree := readTree(t, dst)
	assert.Equal(t, "a", tree["a.txt"])
	assert.Equal(t, "c", tree["c.txt"])
}

func TestCopy_SymlinkedDirectoryNotTraversed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}

	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	outside := filepath.Join(root, "outside")
	writeFile(t, filepath.Join(outside, "big.bin"), "data", time.Now())
	writeFile(t, filepath.Join(src, "userpref.blend"), "prefs", time.Now())
	require.NoError(t, os.Symlink(outside, filepath.Join(src, "linked")))

	res, err := Copy(src, dst, nil, false)
	require.NoError(t, err)

	assert.EqualValues(t, 1, res.Copied)
	assert.EqualValues(t, 1, res.Skipped)
	assert.Equal(t, map[string]string{"userpref.blend": "prefs"}, readTree(t, dst))
}
