package main

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/locator"
	"github.com/jamesainslie/blendsync/pkg/blendsync/output"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check SOURCE TARGET",
	Short: "Check whether two versions are compatible",
	Long: `Report the known incompatibilities for copying settings from SOURCE to TARGET.

With compat.policy set to exclusion-aware, warnings whose category is listed
with -x are dropped.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

var checkExclude []string

func init() {
	checkCmd.Flags().StringSliceVarP(&checkExclude, "exclude", "x", nil, "exclusion categories to take into account")
	rootCmd.AddCommand(checkCmd)
}

// runCheck prints the verdict for one pair.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	verdict, err := checkPair(cfg.CategoryTable(), policy, args[0], args[1], checkExclude)
	if err != nil {
		return err
	}

	return render(func(f output.Formatter, buf *bytes.Buffer) error {
		return f.FormatVerdict(buf, verdict)
	})
}

// checkPair validates both versions and builds the verdict.
func checkPair(table category.Table, policy compat.Policy, source, target string, exclude []string) (*output.Verdict, error) {
	for _, v := range []string{source, target} {
		if !locator.IsVersionName(v) {
			return nil, fmt.Errorf("invalid version %q: expected MAJOR.MINOR", v)
		}
	}

	keys, err := excludeKeys(table, exclude)
	if err != nil {
		return nil, err
	}

	rules := compat.Check(source, target, policy, keys)
	return &output.Verdict{
		Source:       source,
		Target:       target,
		Policy:       policy,
		Incompatible: len(rules) > 0,
		Rules:        rules,
	}, nil
}
