package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/syncer"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"golang.org/x/term"
)

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptConfirmer is the yes/no gate shown for incompatible pairs.
type promptConfirmer struct {
	assumeYes   bool
	interactive bool
	out         io.Writer
}

// ConfirmIncompatible implements syncer.Confirmer. With --yes every pair is
// approved; without a terminal every pair is declined.
func (p *promptConfirmer) ConfirmIncompatible(source, target types.Installation, rules []compat.Rule) (bool, error) {
	reasons := make([]string, 0, len(rules))
	for _, r := range rules {
		reasons = append(reasons, r.Reason)
	}

	if p.assumeYes {
		fmt.Fprintf(p.out, "Warning: %s -> %s: %s (continuing, --yes)\n",
			source.Version, target.Version, strings.Join(reasons, "; "))
		return true, nil
	}

	if !p.interactive {
		fmt.Fprintf(p.out, "Skipping %s -> %s: %s (use --yes to sync anyway)\n",
			source.Version, target.Version, strings.Join(reasons, "; "))
		return false, nil
	}

	ok := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Settings from %s may not work in %s. Sync anyway?", source.Version, target.Version)).
		Description(strings.Join(reasons, "\n")).
		Affirmative("Sync").
		Negative("Skip").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

var _ syncer.Confirmer = (*promptConfirmer)(nil)

// excludeKeys resolves configured exclusions to category keys, keeping
// table order.
func excludeKeys(table category.Table, selected []string) ([]string, error) {
	cats, err := table.Resolve(selected)
	if err != nil {
		return nil, err
	}
	return category.Keys(cats), nil
}

// targetOptions lists "all" first, then every version except source.
func targetOptions(inv types.Inventory, source string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All other versions", types.AllTargets)}
	for _, inst := range inv.Others(source) {
		opts = append(opts, huh.NewOption(inst.Version, inst.Version))
	}
	return opts
}

// categoryOptions lists the table with the given keys preselected.
func categoryOptions(table category.Table, selected []string) []huh.Option[string] {
	picked := make(map[string]struct{}, len(selected))
	for _, key := range selected {
		picked[key] = struct{}{}
	}

	opts := make([]huh.Option[string], 0, len(table))
	for _, c := range table {
		_, ok := picked[c.Key]
		opts = append(opts, huh.NewOption(c.Label, c.Key).Selected(ok))
	}
	return opts
}

// promptSelection fills the missing parts of req with an interactive form.
func promptSelection(inv types.Inventory, table category.Table, req *types.Request) error {
	if req.Source == "" {
		req.Source = inv.Versions()[0]
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Copy settings from").
				Options(huh.NewOptions(inv.Versions()...)...).
				Value(&req.Source),
		)).Run()
		if err != nil {
			return err
		}
	}

	exclude, err := excludeKeys(table, req.Exclude)
	if err != nil {
		return err
	}

	if req.Target == "" {
		req.Target = types.AllTargets
	}

	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Copy settings to").
			Options(targetOptions(inv, req.Source)...).
			Value(&req.Target),
		huh.NewMultiSelect[string]().
			Title("Leave out").
			Options(categoryOptions(table, exclude)...).
			Value(&exclude),
		huh.NewConfirm().
			Title("Only copy files newer than the target copy?").
			Value(&req.NewerOnly),
	)).Run()
	if err != nil {
		return err
	}

	req.Exclude = exclude
	return nil
}
