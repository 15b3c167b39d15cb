package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// JSONFormatter writes each document as a single indented JSON object.
type JSONFormatter struct{}

func (f *JSONFormatter) encode(w *bytes.Buffer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatInventory implements Formatter.
func (f *JSONFormatter) FormatInventory(w *bytes.Buffer, inv *types.Inventory) error {
	return f.encode(w, newInventoryDoc(inv))
}

// FormatReport implements Formatter.
func (f *JSONFormatter) FormatReport(w *bytes.Buffer, r *types.Report) error {
	return f.encode(w, newReportDoc(r))
}

// FormatVerdict implements Formatter.
func (f *JSONFormatter) FormatVerdict(w *bytes.Buffer, v *Verdict) error {
	return f.encode(w, newVerdictDoc(v))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
