// Package apparatus groups apparatus entries by the physical lines their
// lemmata ended up on and typesets them for arbitrary page windows.
//
// All caches live on a Session. They are stamped with the epoch of the line
// map they were built from; SetPagination and Invalidate start a new epoch,
// which makes every older cache stale. Recompiling the main text does not
// touch the line map: until SetPagination is called with the new pagination
// the session keeps serving the old map and reports apparatus.stale-line-map.
package apparatus

import (
	"log/slog"

	"github.com/ByLCY/scriptorium/compiler"
	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/lineinfo"
	"github.com/ByLCY/scriptorium/script"
	"github.com/ByLCY/scriptorium/typeset"
)

// Options configures a Session.
type Options struct {
	Detector script.Detector
	Reporter diag.Reporter
	Logger   *slog.Logger
}

// Session owns one compile/extract/assemble cycle and its caches.
// It is not safe for concurrent use.
type Session struct {
	sheet     typeset.Sheet
	composer  *typeset.Composer
	compiler  *compiler.Compiler
	extractor *lineinfo.Extractor
	reporter  diag.Reporter
	logger    *slog.Logger

	edition   *edition.Edition
	direction layout.Direction

	// compiled counts CompileMainText calls; paginated is its value at the
	// last SetPagination.
	compiled  uint64
	paginated uint64

	ranges     map[string]*rangeCache
	marginalia *marginaliaMemo
}

// NewSession creates a session measuring text with m and styling with sheet.
func NewSession(sheet typeset.Sheet, m layout.TextMeasurer, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NewCollector(logger)
	}
	comp := compiler.New(sheet, m, compiler.Options{
		Detector: opts.Detector,
		Reporter: reporter,
		Logger:   logger,
	})
	return &Session{
		sheet:     sheet,
		composer:  comp.Composer(),
		compiler:  comp,
		extractor: lineinfo.New(reporter, logger),
		reporter:  reporter,
		logger:    logger,
		direction: layout.DirectionLTR,
		ranges:    map[string]*rangeCache{},
	}
}

// Extractor exposes the line map of the session.
func (s *Session) Extractor() *lineinfo.Extractor { return s.extractor }

// Epoch identifies the line map caches are built from.
func (s *Session) Epoch() uint64 { return s.extractor.Epoch() }

// Edition returns the edition of the last CompileMainText call.
func (s *Session) Edition() *edition.Edition { return s.edition }

// CompileMainText compiles ed and makes it the session's edition.
func (s *Session) CompileMainText(ed *edition.Edition) (layout.Item, error) {
	s.edition = ed
	s.direction = script.Direction(ed.Lang)
	s.compiled++
	return s.compiler.Compile(ed)
}

// SetPagination replaces the line map with the one of doc. Every cache
// built from an older map becomes stale.
func (s *Session) SetPagination(doc *layout.Document) {
	s.dropCaches()
	s.extractor.Extract(doc)
	s.paginated = s.compiled
	s.logger.Debug("pagination set", "epoch", s.extractor.Epoch())
}

// Invalidate drops the line map and all caches built on it.
func (s *Session) Invalidate() {
	s.dropCaches()
	s.extractor.Reset()
	s.logger.Debug("line cache invalidated", "epoch", s.extractor.Epoch())
}

// ResetLineCache is Invalidate.
func (s *Session) ResetLineCache() { s.Invalidate() }

func (s *Session) dropCaches() {
	s.ranges = map[string]*rangeCache{}
	s.marginalia = nil
}

// Stale reports whether the main text was recompiled after the line map was set.
func (s *Session) Stale() bool {
	return s.extractor.Extracted() && s.paginated != s.compiled
}

// checkLineMap reports protocol problems; ok is false when no map exists.
func (s *Session) checkLineMap(op string) bool {
	if !s.extractor.Extracted() {
		s.reporter.Report(diag.Diagnostic{
			Code:    diag.NoLineMap,
			Message: "no pagination has been set, nothing to assemble",
			Attrs:   map[string]any{"op": op},
		})
		return false
	}
	if s.Stale() {
		s.reporter.Report(diag.Diagnostic{
			Code:    diag.StaleLineMap,
			Message: "main text was recompiled after the last pagination, serving the previous line map",
			Attrs: map[string]any{
				"op":        op,
				"epoch":     s.extractor.Epoch(),
				"compiled":  s.compiled,
				"paginated": s.paginated,
			},
		})
	}
	return true
}
