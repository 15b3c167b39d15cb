package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// PlainFormatter writes unstyled, tab-aligned text for scripts and pipes.
type PlainFormatter struct{}

// FormatInventory implements Formatter.
func (f *PlainFormatter) FormatInventory(w *bytes.Buffer, inv *types.Inventory) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "VERSION\tPATH"); err != nil {
		return err
	}
	for _, inst := range inv.Installations {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", inst.Version, inst.Path); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatReport implements Formatter.
func (f *PlainFormatter) FormatReport(w *bytes.Buffer, r *types.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TARGET\tSTATUS\tCOPIED\tUP-TO-DATE\tEXCLUDED\tERRORS\tSIZE"); err != nil {
		return err
	}
	for _, t := range r.Targets {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			t.Target.Version,
			t.Status,
			t.Result.Copied,
			t.Result.UpToDate,
			t.Result.Excluded,
			len(t.Result.Errors),
			types.FormatSize(t.Result.BytesCopied),
		)
		if err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range r.Targets {
		for _, warning := range t.Warnings {
			fmt.Fprintf(w, "warning: %s: %s\n", t.Target.Version, warning)
		}
		if t.Error != "" {
			fmt.Fprintf(w, "error: %s: %s\n", t.Target.Version, t.Error)
		}
		for _, fe := range t.Result.Errors {
			fmt.Fprintf(w, "error: %s: %s: %s\n", t.Target.Version, fe.RelPath, fe.Error)
		}
	}
	return nil
}

// FormatVerdict implements Formatter.
func (f *PlainFormatter) FormatVerdict(w *bytes.Buffer, v *Verdict) error {
	state := "compatible"
	if v.Incompatible {
		state = "incompatible"
	}
	fmt.Fprintf(w, "%s -> %s: %s\n", v.Source, v.Target, state)
	for _, rule := range v.Rules {
		fmt.Fprintf(w, "  %s (%s)\n", rule.Reason, rule.Category)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
