package apparatus

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/style"
)

// LineRange is a bucket of entries whose lemmata start and end on the same
// physical lines.
type LineRange struct {
	Key      string          `json:"key"`
	LineFrom int             `json:"lineFrom"`
	LineTo   int             `json:"lineTo"`
	Entries  []edition.Entry `json:"entries"`
	// Content is the JSON export of the typeset bucket (non-marginalia).
	Content json.RawMessage `json:"content,omitempty"`
	// Notes holds one item list per enabled sub-entry (marginalia).
	Notes [][]layout.Item `json:"notes,omitempty"`
}

// RangeKey formats the key of a line range.
func RangeKey(from, to int) string { return fmt.Sprintf("R_%06d_%06d", from, to) }

// Items replays the cached content.
func (r *LineRange) Items() ([]layout.Item, error) {
	if len(r.Content) == 0 {
		return nil, nil
	}
	var items []layout.Item
	if err := json.Unmarshal(r.Content, &items); err != nil {
		return nil, fmt.Errorf("回放行区间 %s 失败: %w", r.Key, err)
	}
	return items, nil
}

type rangeCache struct {
	epoch  uint64
	ranges []*LineRange
}

// LineRanges returns the cached buckets of an apparatus type, or nil when
// none are built for the current line map.
func (s *Session) LineRanges(appType string) []*LineRange {
	c, ok := s.ranges[appType]
	if !ok || c.epoch != s.extractor.Epoch() {
		return nil
	}
	out := make([]*LineRange, len(c.ranges))
	for i, r := range c.ranges {
		out[i] = r.clone()
	}
	return out
}

// clone returns a copy sharing no memory with r.
func (r *LineRange) clone() *LineRange {
	c := *r
	c.Entries = append([]edition.Entry(nil), r.Entries...)
	c.Content = append(json.RawMessage(nil), r.Content...)
	c.Notes = cloneNotes(r.Notes)
	return &c
}

// lineRanges returns the buckets of app, building them once per epoch.
func (s *Session) lineRanges(app *edition.Apparatus) ([]*LineRange, error) {
	epoch := s.extractor.Epoch()
	if c, ok := s.ranges[app.Type]; ok && c.epoch == epoch {
		return c.ranges, nil
	}
	ranges, err := s.BuildLineRanges(app)
	if err != nil {
		return nil, err
	}
	s.ranges[app.Type] = &rangeCache{epoch: epoch, ranges: ranges}
	return ranges, nil
}

// BuildLineRanges buckets and typesets the entries of app against the
// current line map without consulting or filling the cache. The result only
// depends on the entries and the line map.
func (s *Session) BuildLineRanges(app *edition.Apparatus) ([]*LineRange, error) {
	lo, hi, ok := s.extractor.IndexRange()
	if !ok {
		return nil, nil
	}
	byKey := map[string]*LineRange{}
	for i := range app.Entries {
		e := app.Entries[i]
		if e.From < lo || e.From > hi || !e.HasEnabled() {
			continue
		}
		from, ok := s.extractor.LineNumberFor(e.From)
		if !ok {
			s.reporter.Report(diag.Diagnostic{
				Code:    diag.UnmappedEntry,
				Message: "apparatus entry starts on a token without line information, skipped",
				Attrs:   map[string]any{"apparatus": app.Type, "from": e.From},
			})
			continue
		}
		to, ok := s.extractor.LineNumberFor(e.Last())
		if !ok || to < from {
			to = from
		}
		key := RangeKey(from, to)
		r, ok := byKey[key]
		if !ok {
			r = &LineRange{Key: key, LineFrom: from, LineTo: to}
			byKey[key] = r
		}
		r.Entries = append(r.Entries, e)
	}

	ranges := make([]*LineRange, 0, len(byKey))
	for _, r := range byKey {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Key < ranges[j].Key })

	for _, r := range ranges {
		if app.IsMarginalia() {
			notes, err := s.typesetNotes(r.Entries)
			if err != nil {
				return nil, fmt.Errorf("排版边注 %s 失败: %w", r.Key, err)
			}
			r.Notes = notes
			continue
		}
		items, err := s.typesetBucket(r.Entries)
		if err != nil {
			return nil, fmt.Errorf("排版校勘记 %s/%s 失败: %w", app.Type, r.Key, err)
		}
		data, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("导出行区间 %s 失败: %w", r.Key, err)
		}
		r.Content = data
	}
	s.logger.Debug("apparatus line ranges built",
		"apparatus", app.Type,
		"entries", len(app.Entries),
		"ranges", len(ranges),
		"epoch", s.extractor.Epoch())
	return ranges, nil
}

// AssembleApparatus returns the typeset apparatus for the lines
// [firstLine, lastLine]. With resetFirstLineNumber the labels count from
// firstLine. Marginalia are served by MarginaliaInRange instead and yield
// nothing here. Without a line map the result is empty.
func (s *Session) AssembleApparatus(app *edition.Apparatus, firstLine, lastLine int, resetFirstLineNumber bool) ([]layout.Item, error) {
	if app == nil || !s.checkLineMap("assemble") || app.IsMarginalia() {
		return nil, nil
	}
	ranges, err := s.lineRanges(app)
	if err != nil {
		return nil, err
	}

	var out []layout.Item
	for _, r := range ranges {
		if r.LineFrom < firstLine || r.LineFrom > lastLine {
			continue
		}
		if len(out) > 0 {
			sep, err := s.rangeSeparator()
			if err != nil {
				return nil, err
			}
			out = append(out, sep...)
		}
		label, err := s.label(r, firstLine, lastLine, resetFirstLineNumber)
		if err != nil {
			return nil, err
		}
		out = append(out, label...)
		content, err := r.Items()
		if err != nil {
			return nil, err
		}
		out = append(out, content...)
	}
	if len(out) > 0 {
		out = append(out, layout.FillGlue(), layout.Penalty(layout.PenaltyForced))
	}
	return out, nil
}

// LabelText is the line-number label of a range. Relative labels count from
// firstLine; an end beyond lastLine continues into the next window.
func LabelText(lineFrom, lineTo, firstLine, lastLine int, relative bool) string {
	from, to := lineFrom, lineTo
	if relative {
		from = lineFrom - firstLine + 1
		if lineTo > lastLine {
			to = lineTo - lastLine
		} else {
			to = lineTo - firstLine + 1
		}
	}
	if lineTo == lineFrom {
		return strconv.Itoa(from)
	}
	return strconv.Itoa(from) + "–" + strconv.Itoa(to)
}

func (s *Session) label(r *LineRange, firstLine, lastLine int, relative bool) ([]layout.Item, error) {
	text := LabelText(r.LineFrom, r.LineTo, firstLine, lastLine, relative)
	box, err := s.composer.Run(text, s.direction, s.direction, style.Apparatus, style.ApparatusLineNumbers)
	if err != nil {
		return nil, err
	}
	g, err := s.composer.Space(style.Apparatus)
	if err != nil {
		return nil, err
	}
	return []layout.Item{box, layout.Penalty(layout.PenaltyInfinite), g}, nil
}

func (s *Session) rangeSeparator() ([]layout.Item, error) {
	g, err := s.composer.Space(style.Apparatus)
	if err != nil {
		return nil, err
	}
	sep, err := s.composer.Run(s.sheet.String(style.StrLineRangeSeparator), s.direction, s.direction, style.Apparatus)
	if err != nil {
		return nil, err
	}
	return []layout.Item{g, sep, layout.Penalty(layout.PenaltyInfinite), g}, nil
}
