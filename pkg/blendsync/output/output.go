// Package output renders blendsync documents (version inventories, sync
// reports and compatibility verdicts) in several formats.
//
// Formatters are looked up by name from a registry:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.FormatReport(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/types"
)

// Verdict is the result of checking a single source/target pair.
type Verdict struct {
	Source       string        `json:"source" yaml:"source"`
	Target       string        `json:"target" yaml:"target"`
	Policy       compat.Policy `json:"policy" yaml:"policy"`
	Incompatible bool          `json:"incompatible" yaml:"incompatible"`
	Rules        []compat.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Formatter renders blendsync documents.
type Formatter interface {
	// FormatInventory writes the discovered installations.
	FormatInventory(w *bytes.Buffer, inv *types.Inventory) error

	// FormatReport writes the outcome of a sync.
	FormatReport(w *bytes.Buffer, r *types.Report) error

	// FormatVerdict writes a compatibility check result.
	FormatVerdict(w *bytes.Buffer, v *Verdict) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
