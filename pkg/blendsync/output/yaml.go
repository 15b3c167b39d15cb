package output

import (
	"bytes"

	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes the same documents as JSONFormatter in YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) encode(w *bytes.Buffer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// FormatInventory implements Formatter.
func (f *YAMLFormatter) FormatInventory(w *bytes.Buffer, inv *types.Inventory) error {
	return f.encode(w, newInventoryDoc(inv))
}

// FormatReport implements Formatter.
func (f *YAMLFormatter) FormatReport(w *bytes.Buffer, r *types.Report) error {
	return f.encode(w, newReportDoc(r))
}

// FormatVerdict implements Formatter.
func (f *YAMLFormatter) FormatVerdict(w *bytes.Buffer, v *Verdict) error {
	return f.encode(w, newVerdictDoc(v))
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
