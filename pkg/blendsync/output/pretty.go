package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// maxListedErrors caps per-target file errors shown by the pretty formatter.
const maxListedErrors = 10

// PrettyFormatter renders colored, boxed output with lipgloss.
type PrettyFormatter struct{}

// FormatInventory implements Formatter.
func (f *PrettyFormatter) FormatInventory(w *bytes.Buffer, inv *types.Inventory) error {
	header := fmt.Sprintf("%s %s\n%s %s",
		LabelStyle.Render("Settings root:"), ValueStyle.Render(inv.Root),
		LabelStyle.Render("Versions:"), ValueStyle.Render(fmt.Sprintf("%d", inv.Len())),
	)
	w.WriteString(HeaderBox.Render(header))
	w.WriteString("\n")

	if inv.Len() == 0 {
		w.WriteString(MutedStyle.Render("  No Blender versions found"))
		w.WriteString("\n")
		return nil
	}

	width := 0
	for _, inst := range inv.Installations {
		width = max(width, len(inst.Version))
	}

	for i, inst := range inv.Installations {
		line := fmt.Sprintf("  %s  %s", VersionStyle.Render(padRight(inst.Version, width)), MutedStyle.Render(inst.Path))
		if i == 0 {
			line += "  " + SuccessStyle.Render("newest")
		}
		w.WriteString(line)
		w.WriteString("\n")
	}
	return nil
}

// FormatReport implements Formatter.
func (f *PrettyFormatter) FormatReport(w *bytes.Buffer, r *types.Report) error {
	w.WriteString(HeaderBox.Render(f.reportHeader(r)))
	w.WriteString("\n")

	for _, t := range r.Targets {
		w.WriteString(f.targetBlock(t))
	}

	w.WriteString(FooterBox.Render(f.reportFooter(r)))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) reportHeader(r *types.Report) string {
	lines := []string{
		fmt.Sprintf("%s %s  %s",
			LabelStyle.Render("Source:"),
			VersionStyle.Render(r.Source.Version),
			MutedStyle.Render(r.Source.Path)),
	}

	exclude := "nothing"
	if len(r.Exclude) > 0 {
		exclude = strings.Join(r.Exclude, ", ")
	}
	lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Excluding:"), ValueStyle.Render(exclude)))

	var modes []string
	if r.NewerOnly {
		modes = append(modes, "newer only")
	}
	if r.DryRun {
		modes = append(modes, WarningStyle.Bold(true).Render("dry run, nothing written"))
	}
	if len(modes) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Mode:"), strings.Join(modes, ", ")))
	}

	return strings.Join(lines, "\n")
}

func (f *PrettyFormatter) targetBlock(t types.TargetResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s %s  %s\n",
		statusMark(t.Status),
		VersionStyle.Render(t.Target.Version),
		statusStyle(t.Status).Render(string(t.Status))))

	for _, warning := range t.Warnings {
		sb.WriteString("    " + WarningStyle.Render("! "+warning) + "\n")
	}

	switch t.Status {
	case types.StatusDeclined:
		sb.WriteString("    " + MutedStyle.Render("skipped, incompatibility not confirmed") + "\n")
		return sb.String()
	case types.StatusFailed:
		sb.WriteString("    " + ErrorStyle.Render(t.Error) + "\n")
		return sb.String()
	}

	res := t.Result
	parts := []string{
		fmt.Sprintf("%d copied (%s)", res.Copied, SizeStyle.Render(types.FormatSize(res.BytesCopied))),
	}
	if res.UpToDate > 0 {
		parts = append(parts, fmt.Sprintf("%d up to date", res.UpToDate))
	}
	if res.Excluded > 0 {
		parts = append(parts, fmt.Sprintf("%d excluded", res.Excluded))
	}
	if res.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", res.Skipped))
	}
	sb.WriteString("    " + LabelStyle.Render(strings.Join(parts, ", ")) + "\n")

	for i, fe := range res.Errors {
		if i == maxListedErrors {
			sb.WriteString("    " + MutedStyle.Render(fmt.Sprintf("... and %d more", len(res.Errors)-maxListedErrors)) + "\n")
			break
		}
		sb.WriteString("    " + ErrorStyle.Render(fe.RelPath+": "+fe.Error) + "\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) reportFooter(r *types.Report) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Targets:"), ValueStyle.Render(fmt.Sprintf("%d", len(r.Targets)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Copied:"), ValueStyle.Render(fmt.Sprintf("%d files", r.TotalCopied()))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Total:"), SizeStyle.Render(types.FormatSize(r.TotalBytes()))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Elapsed:"), ValueStyle.Render(formatDuration(r.Elapsed))),
	}
	if r.ID != "" {
		parts = append(parts, MutedStyle.Render("history: "+r.ID))
	}
	return strings.Join(parts, "  ")
}

// FormatVerdict implements Formatter.
func (f *PrettyFormatter) FormatVerdict(w *bytes.Buffer, v *Verdict) error {
	pair := fmt.Sprintf("%s %s %s", VersionStyle.Render(v.Source), MutedStyle.Render("->"), VersionStyle.Render(v.Target))

	if !v.Incompatible {
		w.WriteString(fmt.Sprintf("%s  %s\n", pair, SuccessStyle.Render("compatible")))
		return nil
	}

	w.WriteString(fmt.Sprintf("%s  %s\n", pair, WarningStyle.Bold(true).Render("incompatible")))
	for _, rule := range v.Rules {
		w.WriteString("  " + WarningStyle.Render("! "+rule.Reason))
		w.WriteString(" " + MutedStyle.Render("(exclude "+rule.Category+" to avoid)") + "\n")
	}
	return nil
}

func statusMark(s types.TargetStatus) string {
	switch s {
	case types.StatusSynced:
		return SuccessStyle.Render("✓")
	case types.StatusPartial:
		return WarningStyle.Render("~")
	case types.StatusDeclined:
		return MutedStyle.Render("-")
	default:
		return ErrorStyle.Render("✗")
	}
}

func statusStyle(s types.TargetStatus) lipgloss.Style {
	switch s {
	case types.StatusSynced:
		return SuccessStyle
	case types.StatusPartial:
		return WarningStyle
	case types.StatusDeclined:
		return MutedStyle
	default:
		return ErrorStyle
	}
}

// padRight pads s with spaces to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
