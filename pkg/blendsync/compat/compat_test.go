package compat

import (
	"testing"

	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIncompatible(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   bool
	}{
		{name: "4.3 to 4.0", source: "4.3", target: "4.0", want: true},
		{name: "4.4 to 3.6", source: "4.4", target: "3.6", want: true},
		{name: "4.3 to 4.1", source: "4.3", target: "4.1", want: false},
		{name: "4.2 to 4.0", source: "4.2", target: "4.0", want: false},
		{name: "3.4 to 3.3", source: "3.4", target: "3.3", want: true},
		{name: "3.6 to 2.93", source: "3.6", target: "2.93", want: true},
		{name: "3.3 to 3.2", source: "3.3", target: "3.2", want: false},
		{name: "upgrade is fine", source: "4.0", target: "4.3", want: false},
		{name: "same version", source: "4.3", target: "4.3", want: false},
		{name: "double digit minor", source: "3.10", target: "3.3", want: true},
		{name: "garbage source", source: "latest", target: "4.0", want: false},
		{name: "garbage target", source: "4.3", target: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIncompatible(tt.source, tt.target))
		})
	}
}

func TestCheck_Policies(t *testing.T) {
	// 4.3 -> 3.3 trips both rules.
	rules := Check("4.3", "3.3", PolicyVersion, []string{category.Preferences})
	require.Len(t, rules, 2)

	rules = Check("4.3", "3.3", PolicyExclusionAware, []string{category.Preferences})
	require.Len(t, rules, 1)
	assert.Equal(t, category.Startup, rules[0].Category)

	rules = Check("4.3", "3.3", PolicyExclusionAware, []string{category.Preferences, category.Startup})
	assert.Empty(t, rules)

	// Excluding an unrelated category never suppresses a warning.
	rules = Check("4.3", "4.0", PolicyExclusionAware, []string{category.Addons})
	assert.Len(t, rules, 1)
}

func TestCheckRules_BadRule(t *testing.T) {
	rules := []Rule{{SourceMin: "x", TargetMax: "4.0"}}
	assert.Empty(t, CheckRules(rules, "4.3", "4.0", PolicyVersion, nil))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{input: "", want: PolicyVersion},
		{input: "version", want: PolicyVersion},
		{input: "Exclusion-Aware", want: PolicyExclusionAware},
		{input: "strict", want: PolicyVersion, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPolicy)
		} else {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.want, got)
	}
}
