// Package compat flags source/target version pairs whose settings are known
// not to carry over cleanly.
package compat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
)

// Policy selects how exclusions influence the check.
type Policy string

const (
	// PolicyVersion flags a pair purely from the two version numbers.
	PolicyVersion Policy = "version"

	// PolicyExclusionAware drops a rule when its category is already excluded.
	PolicyExclusionAware Policy = "exclusion-aware"
)

// ErrInvalidPolicy is returned by ParsePolicy for unknown names.
var ErrInvalidPolicy = errors.New("invalid compatibility policy")

// ParsePolicy parses a policy name. An empty string selects PolicyVersion.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyVersion):
		return PolicyVersion, nil
	case string(PolicyExclusionAware):
		return PolicyExclusionAware, nil
	default:
		return PolicyVersion, fmt.Errorf("%w: %s", ErrInvalidPolicy, s)
	}
}

// Rule flags copying from SourceMin or newer into TargetMax or older.
type Rule struct {
	SourceMin string `json:"source_min" yaml:"source_min"`
	TargetMax string `json:"target_max" yaml:"target_max"`

	// Category is the exclusion category whose files cause the problem.
	Category string `json:"category" yaml:"category"`

	Reason string `json:"reason" yaml:"reason"`
}

// Applies reports whether the rule covers the given pair.
func (r Rule) Applies(source, target *semver.Version) bool {
	minSource, err := semver.NewVersion(r.SourceMin)
	if err != nil {
		return false
	}
	maxTarget, err := semver.NewVersion(r.TargetMax)
	if err != nil {
		return false
	}
	return !source.LessThan(minSource) && !target.GreaterThan(maxTarget)
}

// DefaultRules is the built-in table of known incompatibilities.
var DefaultRules = []Rule{
	{
		SourceMin: "4.3",
		TargetMax: "4.0",
		Category:  category.Preferences,
		Reason:    "userpref.blend from 4.3+ cannot be read by 4.0 and older",
	},
	{
		SourceMin: "3.4",
		TargetMax: "3.3",
		Category:  category.Startup,
		Reason:    "startup.blend from 3.4+ breaks the default workspace in 3.3 and older",
	},
}

// IsIncompatible reports whether copying from source to target matches any
// default rule. Unparsable versions are never flagged.
func IsIncompatible(source, target string) bool {
	return len(Check(source, target, PolicyVersion, nil)) > 0
}

// Check returns the rules that flag the pair under policy. excluded holds
// category keys and only matters for PolicyExclusionAware.
func Check(source, target string, policy Policy, excluded []string) []Rule {
	return CheckRules(DefaultRules, source, target, policy, excluded)
}

// CheckRules is Check against an explicit rule table.
func CheckRules(rules []Rule, source, target string, policy Policy, excluded []string) []Rule {
	src, err := semver.NewVersion(source)
	if err != nil {
		return nil
	}
	tgt, err := semver.NewVersion(target)
	if err != nil {
		return nil
	}

	skip := make(map[string]struct{}, len(excluded))
	if policy == PolicyExclusionAware {
		for _, key := range excluded {
			skip[key] = struct{}{}
		}
	}

	var matched []Rule
	for _, r := range rules {
		if !r.Applies(src, tgt) {
			continue
		}
		if _, ok := skip[r.Category]; ok {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}
