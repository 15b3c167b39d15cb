// Package category defines the exclusion categories a user can opt out of
// when syncing settings between Blender versions.
package category

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a selection names no known category.
var ErrUnknownCategory = errors.New("unknown exclusion category")

// Category maps a human label to the file and directory names it covers.
type Category struct {
	// Key is the stable identifier used in flags and config.
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// Label is the human-readable name.
	Label string `json:"label" yaml:"label" mapstructure:"label"`

	// Names are file or directory names (or glob patterns) to skip.
	Names []string `json:"names" yaml:"names" mapstructure:"names"`

	// Aliases are alternative labels accepted on selection.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
}

// matches reports whether s selects this category.
func (c Category) matches(s string) bool {
	if strings.EqualFold(s, c.Key) || strings.EqualFold(s, c.Label) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(s, alias) {
			return true
		}
	}
	return false
}

// Keys used by the default table.
const (
	Recent      = "recent"
	Addons      = "addons"
	Presets     = "presets"
	Startup     = "startup"
	Preferences = "userprefs"
)

// Table is an ordered set of categories.
type Table []Category

// Default returns the built-in category table.
func Default() Table {
	return Table{
		{
			Key:     Recent,
			Label:   "Recent paths",
			Names:   []string{"bookmarks.txt", "recent-files.txt", "recent-searches.txt"},
			Aliases: []string{"Последние пути"},
		},
		{
			Key:     Addons,
			Label:   "Addons",
			Names:   []string{"addons"},
			Aliases: []string{"Аддоны"},
		},
		{
			Key:     Presets,
			Label:   "Presets",
			Names:   []string{"presets"},
			Aliases: []string{"Пресеты"},
		},
		{
			Key:     Startup,
			Label:   "Startup file",
			Names:   []string{"startup.blend"},
			Aliases: []string{"Стартовый файл"},
		},
		{
			Key:     Preferences,
			Label:   "Preferences",
			Names:   []string{"userpref.blend"},
			Aliases: []string{"Настройки"},
		},
	}
}

// Lookup finds a category by key, label or alias, ignoring case.
func (t Table) Lookup(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Category{}, false
	}
	for _, c := range t {
		if c.matches(s) {
			return c, true
		}
	}
	return Category{}, false
}

// Resolve maps each selection to its category, dropping duplicates.
// The result keeps table order.
func (t Table) Resolve(selected []string) ([]Category, error) {
	want := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		c, ok := t.Lookup(s)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
		}
		want[c.Key] = struct{}{}
	}

	resolved := make([]Category, 0, len(want))
	for _, c := range t {
		if _, ok := want[c.Key]; ok {
			resolved = append(resolved, c)
		}
	}
	return resolved, nil
}

// Merge returns a table where extra categories replace same-keyed entries
// and new keys are appended in the given order.
func (t Table) Merge(extra []Category) Table {
	merged := make(Table, len(t))
	copy(merged, t)

	for _, c := range extra {
		if c.Key == "" {
			continue
		}
		replaced := false
		for i := range merged {
			if merged[i].Key == c.Key {
				if c.Label == "" {
					c.Label = merged[i].Label
				}
				merged[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			if c.Label == "" {
				c.Label = c.Key
			}
			merged = append(merged, c)
		}
	}
	return merged
}

// Keys returns the category keys in table order.
func Keys(cats []Category) []string {
	keys := make([]string, 0, len(cats))
	for _, c := range cats {
		keys = append(keys, c.Key)
	}
	return keys
}

// Names flattens the categories into a de-duplicated list of names.
func Names(cats []Category) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range cats {
		for _, n := range c.Names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	return names
}
