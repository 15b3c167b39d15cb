package syncer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInventory creates version directories under a temp root. The first
// version gets a populated settings tree; the rest start empty.
func newInventory(t *testing.T, versions ...string) types.Inventory {
	t.Helper()
	root := t.TempDir()
	inv := types.Inventory{Root: root}
	for i, v := range versions {
		dir := filepath.Join(root, v)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		if i == 0 {
			write(t, filepath.Join(dir, "config", "userpref.blend"), "prefs-"+v)
			write(t, filepath.Join(dir, "scripts", "addons", "foo.py"), "print('foo')")
		}
		inv.Installations = append(inv.Installations, types.Installation{Version: v, Path: dir})
	}
	return inv
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	mtime := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func approve(types.Installation, types.Installation, []compat.Rule) (bool, error) {
	return true, nil
}

type fakeRecorder struct {
	reports []*types.Report
	err     error
}

func (f *fakeRecorder) Record(r *types.Report) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.reports = append(f.reports, r)
	return "sync-test", nil
}

func TestValidate(t *testing.T) {
	inv := newInventory(t, "4.3", "4.0")
	s := New(Options{})

	tests := []struct {
		name    string
		req     types.Request
		wantErr error
	}{
		{name: "valid", req: types.Request{Source: "4.3", Target: "4.0"}},
		{name: "valid all", req: types.Request{Source: "4.3", Target: types.AllTargets}},
		{name: "unknown source", req: types.Request{Source: "2.79", Target: "4.0"}, wantErr: ErrUnknownSource},
		{name: "unknown target", req: types.Request{Source: "4.3", Target: "5.0"}, wantErr: ErrUnknownTarget},
		{name: "same version", req: types.Request{Source: "4.3", Target: "4.3"}, wantErr: ErrSameVersion},
		{
			name:    "unknown category",
			req:     types.Request{Source: "4.3", Target: "4.0", Exclude: []string{"themes"}},
			wantErr: category.ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(inv, tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_InvalidSelectionWritesNothing(t *testing.T) {
	inv := newInventory(t, "4.3", "4.0")

	report, err := New(Options{Confirm: ConfirmFunc(approve)}).Run(inv, types.Request{
		Source:  "4.3",
		Target:  "4.0",
		Exclude: []string{"addons", "nope"},
	})
	require.ErrorIs(t, err, category.ErrUnknownCategory)
	assert.Nil(t, report)

	entries, err := os.ReadDir(inv.Installations[1].Path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_AllWithSingleInstallation(t *testing.T) {
	inv := newInventory(t, "4.3")
	_, err := New(Options{}).Run(inv, types.Request{Source: "4.3", Target: types.AllTargets})
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestRun_IncompatiblePairAskedBeforeCopy(t *testing.T) {
	inv := newInventory(t, "4.3", "4.0")
	target := inv.Installations[1]

	var asked int
	confirm := ConfirmFunc(func(src, tgt types.Installation, rules []compat.Rule) (bool, error) {
		asked++
		assert.Equal(t, "4.3", src.Version)
		assert.Equal(t, "4.0", tgt.Version)
		require.Len(t, rules, 1)
		assert.Equal(t, category.Preferences, rules[0].Category)
		assert.False(t, exists(filepath.Join(tgt.Path, "config", "userpref.blend")),
			"nothing may be copied before the pair is confirmed")
		return true, nil
	})

	report, err := New(Options{Confirm: confirm}).Run(inv, types.Request{
		Source:  "4.3",
		Target:  "4.0",
		Exclude: []string{"addons"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, asked)

	require.Len(t, report.Targets, 1)
	tr := report.Targets[0]
	assert.Equal(t, types.StatusSynced, tr.Status)
	assert.True(t, tr.Incompatible)
	assert.Len(t, tr.Warnings, 1)
	assert.EqualValues(t, 1, tr.Result.Copied)
	assert.Equal(t, []string{category.Addons}, report.Exclude)
	assert.False(t, report.Failed())

	data, err := os.ReadFile(filepath.Join(target.Path, "config", "userpref.blend"))
	require.NoError(t, err)
	assert.Equal(t, "prefs-4.3", string(data))
	assert.False(t, exists(filepath.Join(target.Path, "scripts", "addons")))
}

func TestRun_DeclinedTargetUntouched(t *testing.T) {
	inv := newInventory(t, "4.3", "4.1", "4.0")

	// Nil Confirm declines every flagged pair.
	report, err := New(Options{}).Run(inv, types.Request{Source: "4.3", Target: types.AllTargets})
	require.NoError(t, err)

	require.Len(t, report.Targets, 2)
	assert.Equal(t, "4.1", report.Targets[0].Target.Version)
	assert.Equal(t, types.StatusSynced, report.Targets[0].Status)
	assert.Equal(t, "4.0", report.Targets[1].Target.Version)
	assert.Equal(t, types.StatusDeclined, report.Targets[1].Status)
	assert.True(t, report.Targets[1].Incompatible)

	entries, err := os.ReadDir(inv.Installations[2].Path)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, exists(filepath.Join(inv.Installations[1].Path, "config", "userpref.blend")))
	assert.False(t, report.Failed())
}

func TestRun_AllNeverIncludesSource(t *testing.T) {
	inv := newInventory(t, "4.2", "4.1", "3.6")
	write(t, filepath.Join(inv.Installations[1].Path, "config", "startup.blend"), "startup-4.1")

	var seen []string
	report, err := New(Options{
		Confirm: ConfirmFunc(approve),
		OnFile: func(target types.Installation, ev types.FileEvent) {
			seen = append(seen, target.Version)
		},
	}).Run(inv, types.Request{Source: "4.1", Target: types.AllTargets})
	require.NoError(t, err)

	var versions []string
	for _, tr := range report.Targets {
		versions = append(versions, tr.Target.Version)
	}
	assert.Equal(t, []string{"4.2", "3.6"}, versions)
	assert.Equal(t, []string{"4.2", "3.6"}, seen)
}

func TestRun_ConfirmErrorAborts(t *testing.T) {
	inv := newInventory(t, "4.3", "4.0")
	boom := errors.New("terminal closed")

	report, err := New(Options{
		Confirm: ConfirmFunc(func(types.Installation, types.Installation, []compat.Rule) (bool, error) {
			return false, boom
		}),
	}).Run(inv, types.Request{Source: "4.3", Target: "4.0"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, report)
}

func TestRun_ExclusionAwarePolicySkipsGate(t *testing.T) {
	inv := newInventory(t, "4.3", "4.0")

	report, err := New(Options{Policy: compat.PolicyExclusionAware}).Run(inv, types.Request{
		Source:  "4.3",
		Target:  "4.0",
		Exclude: []string{"Preferences"},
	})
	require.NoError(t, err)
	require.Len(t, report.Targets, 1)
	assert.False(t, report.Targets[0].Incompatible)
	assert.Equal(t, types.StatusSynced, report.Targets[0].Status)
	assert.False(t, exists(filepath.Join(inv.Installations[1].Path, "config", "userpref.blend")))
}

func TestRun_FailedAndPartialTargets(t *testing.T) {
	t.Run("missing source directory fails the pair", func(t *testing.T) {
		inv := newInventory(t, "4.2", "4.1")
		require.NoError(t, os.RemoveAll(inv.Installations[0].Path))

		report, err := New(Options{}).Run(inv, types.Request{Source: "4.2", Target: "4.1"})
		require.NoError(t, err)
		require.Len(t, report.Targets, 1)
		assert.Equal(t, types.StatusFailed, report.Targets[0].Status)
		assert.NotEmpty(t, report.Targets[0].Error)
		assert.True(t, report.Failed())
	})

	t.Run("file error makes the pair partial", func(t *testing.T) {
		inv := newInventory(t, "4.2", "4.1")
		blocker := filepath.Join(inv.Installations[1].Path, "config", "userpref.blend", "x")
		require.NoError(t, os.MkdirAll(blocker, 0o755))

		report, err := New(Options{}).Run(inv, types.Request{Source: "4.2", Target: "4.1"})
		require.NoError(t, err)
		require.Len(t, report.Targets, 1)
		assert.Equal(t, types.StatusPartial, report.Targets[0].Status)
		assert.Len(t, report.Targets[0].Result.Errors, 1)
		assert.True(t, report.Failed())
	})
}

func TestRun_Recorder(t *testing.T) {
	t.Run("records real runs", func(t *testing.T) {
		inv := newInventory(t, "4.2", "4.1")
		rec := &fakeRecorder{}

		report, err := New(Options{Recorder: rec}).Run(inv, types.Request{Source: "4.2", Target: "4.1"})
		require.NoError(t, err)
		require.Len(t, rec.reports, 1)
		assert.Equal(t, "sync-test", report.ID)
	})

	t.Run("skips dry runs", func(t *testing.T) {
		inv := newInventory(t, "4.2", "4.1")
		rec := &fakeRecorder{}

		report, err := New(Options{Recorder: rec}).Run(inv, types.Request{Source: "4.2", Target: "4.1", DryRun: true})
		require.NoError(t, err)
		assert.Empty(t, rec.reports)
		assert.Empty(t, report.ID)
		assert.False(t, exists(filepath.Join(inv.Installations[1].Path, "config")))
	})

	t.Run("recorder failure is not fatal", func(t *testing.T) {
		inv := newInventory(t, "4.2", "4.1")
		rec := &fakeRecorder{err: errors.New("disk full")}

		report, err := New(Options{Recorder: rec}).Run(inv, types.Request{Source: "4.2", Target: "4.1"})
		require.NoError(t, err)
		assert.Empty(t, report.ID)
		assert.EqualValues(t, 2, report.TotalCopied())
	})
}
