// Package diag records structured diagnostics for recoverable data problems.
//
// Nothing in the layout core fails on inconsistent edition data: it falls back
// to a safe value and reports a Diagnostic instead. A Collector keeps the
// diagnostics of one session and mirrors each of them to a slog logger.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Codes used across the module.
const (
	UnknownParagraphStyle = "style.unknown-paragraph"
	UnknownTokenType      = "compiler.unknown-token"
	UnknownLemmaComponent = "lemma.unknown-component"
	UnknownSubEntryType   = "apparatus.unknown-subentry"
	UnknownWitness        = "apparatus.unknown-witness"
	UnmappedEntry         = "apparatus.unmapped-entry"
	StaleLineMap          = "apparatus.stale-line-map"
	NoLineMap             = "apparatus.no-line-map"
	CorruptOccurrence     = "lineinfo.corrupt-occurrence"
	MergedWithoutSources  = "lineinfo.merged-without-sources"
)

// Diagnostic is one recoverable problem.
type Diagnostic struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

func (d Diagnostic) String() string {
	if len(d.Attrs) == 0 {
		return d.Code + ": " + d.Message
	}
	return fmt.Sprintf("%s: %s %v", d.Code, d.Message, d.Attrs)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// Collector stores diagnostics and logs them at warn level.
// The zero value is usable and logs to slog.Default().
type Collector struct {
	Logger *slog.Logger

	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates a collector logging to logger (nil → slog.Default()).
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{Logger: logger}
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, 2+2*len(d.Attrs))
	args = append(args, "code", d.Code)
	for k, v := range d.Attrs {
		args = append(args, k, v)
	}
	logger.Log(context.Background(), slog.LevelWarn, d.Message, args...)
}

// Warn is a shorthand for Report with key/value attributes.
func (c *Collector) Warn(code, msg string, kv ...any) {
	d := Diagnostic{Code: code, Message: msg}
	if len(kv) > 0 {
		d.Attrs = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				key = fmt.Sprint(kv[i])
			}
			d.Attrs[key] = kv[i+1]
		}
	}
	c.Report(d)
}

// All returns a copy of the collected diagnostics.
func (c *Collector) All() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Has reports whether a diagnostic with the given code was collected.
func (c *Collector) Has(code string) bool {
	for _, d := range c.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Reset drops all collected diagnostics.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
