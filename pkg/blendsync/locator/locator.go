// Package locator finds the Blender settings root and the per-version
// directories inside it.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jamesainslie/blendsync/pkg/blendsync/logging"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

var logger = logging.Get("locator")

// versionPattern matches version directory names like "4.2" or "3.10".
var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// DefaultIgnore lists directory names that never hold per-version settings.
var DefaultIgnore = []string{"config", "scripts", "datafiles", "extensions"}

// ErrNoAppData is returned on Windows when %APPDATA% is not set.
var ErrNoAppData = errors.New("APPDATA is not set")

// Platform describes the host facts needed to compute the settings root.
type Platform struct {
	GOOS    string
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// HostPlatform returns the Platform for the running process.
func HostPlatform() Platform {
	return Platform{
		GOOS:    runtime.GOOS,
		Getenv:  os.Getenv,
		HomeDir: os.UserHomeDir,
	}
}

// SettingsRoot returns the directory holding one subdirectory per installed
// Blender version.
//
//   - Windows: %APPDATA%\Blender Foundation\Blender
//   - Others:  $XDG_CONFIG_HOME/blender, falling back to ~/.config/blender
func SettingsRoot(p Platform) (string, error) {
	if p.Getenv == nil {
		p.Getenv = os.Getenv
	}
	if p.HomeDir == nil {
		p.HomeDir = os.UserHomeDir
	}

	if p.GOOS == "windows" {
		appData := p.Getenv("APPDATA")
		if appData == "" {
			return "", ErrNoAppData
		}
		return filepath.Join(appData, "Blender Foundation", "Blender"), nil
	}

	if xdgConfigHome := p.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "blender"), nil
	}

	homeDir, err := p.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "blender"), nil
}

// Option configures Discover.
type Option func(*options)

type options struct {
	ignore map[string]struct{}
}

// WithIgnore adds directory names that are never treated as versions.
func WithIgnore(names ...string) Option {
	return func(o *options) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name != "" {
				o.ignore[name] = struct{}{}
			}
		}
	}
}

// IsVersionName reports whether name has the numeric-dot-numeric shape.
func IsVersionName(name string) bool {
	return versionPattern.MatchString(name)
}

// Discover scans root and returns every version directory, newest first.
// A missing root yields an empty inventory and no error.
func Discover(root string, opts ...Option) (types.Inventory, error) {
	o := options{ignore: make(map[string]struct{})}
	WithIgnore(DefaultIgnore...)(&o)
	for _, opt := range opts {
		opt(&o)
	}

	inv := types.Inventory{Root: root, Installations: []types.Installation{}}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("settings root does not exist", "root", root)
			return inv, nil
		}
		return inv, fmt.Errorf("failed to read settings root: %w", err)
	}

	type found struct {
		inst    types.Installation
		version *semver.Version
	}
	var versions []found

	for _, entry := range entries {
		name := entry.Name()
		if _, ignored := o.ignore[name]; ignored {
			continue
		}
		if !IsVersionName(name) {
			continue
		}

		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		v, err := semver.NewVersion(name)
		if err != nil {
			continue
		}
		versions = append(versions, found{
			inst:    types.Installation{Version: name, Path: path},
			version: v,
		})
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].version.GreaterThan(versions[j].version)
	})

	for _, f := range versions {
		inv.Installations = append(inv.Installations, f.inst)
	}

	logger.Debug("discovered installations", "root", root, "count", len(inv.Installations))
	return inv, nil
}
