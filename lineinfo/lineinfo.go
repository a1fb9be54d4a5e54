// Package lineinfo maps logical main-text indices to the physical lines a
// line breaker put them on.
package lineinfo

import (
	"log/slog"
	"sort"

	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/layout"
)

// Info is the line information of one logical token.
type Info struct {
	LineNumber             int    `json:"lineNumber"`
	MainTextIndex          int    `json:"mainTextIndex"`
	OccurrenceInLine       int    `json:"occurrenceInLine"`
	TotalOccurrencesInLine int    `json:"totalOccurrencesInLine"`
	Text                   string `json:"text,omitempty"`
	// Merged is set when the record stands for an item the line breaker
	// folded together from several tokens; MergedIndices lists all of them.
	Merged        bool  `json:"merged,omitempty"`
	MergedIndices []int `json:"mergedIndices,omitempty"`
}

// Extractor holds the line map of the last extracted pagination. Every
// Extract or Reset starts a new epoch; caches built on top of the map compare
// epochs to detect that they are stale.
type Extractor struct {
	reporter diag.Reporter
	logger   *slog.Logger

	infos     []Info
	merged    []int // positions in infos of merged records
	epoch     uint64
	extracted bool
}

// New creates an empty extractor. A nil reporter logs diagnostics only.
func New(reporter diag.Reporter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = diag.NewCollector(logger)
	}
	return &Extractor{reporter: reporter, logger: logger}
}

// Epoch identifies the current line map.
func (x *Extractor) Epoch() uint64 { return x.epoch }

// Extracted reports whether a pagination has been extracted since the last reset.
func (x *Extractor) Extracted() bool { return x.extracted }

// Reset drops the line map and starts a new epoch.
func (x *Extractor) Reset() {
	x.infos = nil
	x.merged = nil
	x.extracted = false
	x.epoch++
}

// Extract rebuilds the line map from doc. It never updates a map partially.
func (x *Extractor) Extract(doc *layout.Document) {
	x.Reset()
	x.extracted = true
	if doc == nil {
		return
	}
	lines := 0
	for pi := range doc.Pages {
		layout.Walk(doc.Pages[pi].Items, func(it *layout.Item) bool {
			if !it.IsLine() {
				return true
			}
			lines++
			x.line(it.LineNumber(), it.Items)
			return false
		})
	}
	sort.SliceStable(x.infos, func(i, j int) bool {
		a, b := x.infos[i], x.infos[j]
		if a.MainTextIndex != b.MainTextIndex {
			return a.MainTextIndex < b.MainTextIndex
		}
		return a.LineNumber < b.LineNumber
	})
	for i, info := range x.infos {
		if info.Merged {
			x.merged = append(x.merged, i)
		}
	}
	x.logger.Debug("line info extracted",
		"epoch", x.epoch,
		"pages", len(doc.Pages),
		"lines", lines,
		"records", len(x.infos))
}

// line records the items of one physical line. Nested lists are walked with
// an explicit stack.
func (x *Extractor) line(number int, items []layout.Item) {
	stack := pushReversed(nil, items)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if src := it.Source(); src != nil {
			x.direct(number, src)
			continue
		}
		if it.Meta != nil && len(it.Meta.Merged) > 0 {
			x.mergedItem(number, it)
			continue
		}
		if len(it.Items) > 0 {
			stack = pushReversed(stack, it.Items)
		}
	}
}

func (x *Extractor) direct(number int, src *layout.Provenance) {
	occ, total := src.OccurrenceInLine, src.TotalOccurrencesInLine
	if occ <= 0 {
		occ = 1
	}
	if total <= 0 {
		total = 1
	}
	if occ > total {
		x.reporter.Report(diag.Diagnostic{
			Code:    diag.CorruptOccurrence,
			Message: "occurrence exceeds total occurrences in line, item dropped",
			Attrs: map[string]any{
				"index": src.MainTextIndex,
				"line":  number,
				"occ":   occ,
				"total": total,
			},
		})
		return
	}
	x.infos = append(x.infos, Info{
		LineNumber:             number,
		MainTextIndex:          src.MainTextIndex,
		OccurrenceInLine:       occ,
		TotalOccurrencesInLine: total,
		Text:                   src.Text,
	})
}

// mergedItem collects every logical index that contributed to a merged item.
func (x *Extractor) mergedItem(number int, it *layout.Item) {
	var indices []int
	seen := map[int]bool{}
	stack := pushReversed(nil, it.Meta.Merged)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if src := cur.Source(); src != nil {
			if !seen[src.MainTextIndex] {
				seen[src.MainTextIndex] = true
				indices = append(indices, src.MainTextIndex)
			}
			continue
		}
		if cur.Meta != nil && len(cur.Meta.Merged) > 0 {
			stack = pushReversed(stack, cur.Meta.Merged)
		}
		if len(cur.Items) > 0 {
			stack = pushReversed(stack, cur.Items)
		}
	}
	if len(indices) == 0 {
		x.reporter.Report(diag.Diagnostic{
			Code:    diag.MergedWithoutSources,
			Message: "merged item carries no source metadata, item dropped",
			Attrs:   map[string]any{"line": number, "text": it.Text},
		})
		return
	}
	first := indices[0]
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	x.infos = append(x.infos, Info{
		LineNumber:             number,
		MainTextIndex:          first,
		OccurrenceInLine:       1,
		TotalOccurrencesInLine: 1,
		Text:                   it.Text,
		Merged:                 true,
		MergedIndices:          sorted,
	})
}

func pushReversed(stack []*layout.Item, items []layout.Item) []*layout.Item {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, &items[i])
	}
	return stack
}

// Infos returns a copy of the records, sorted by main-text index.
func (x *Extractor) Infos() []Info {
	out := make([]Info, len(x.infos))
	copy(out, x.infos)
	return out
}

// find returns the position of the first direct record for index.
func (x *Extractor) find(index int) (int, bool) {
	i := sort.Search(len(x.infos), func(i int) bool { return x.infos[i].MainTextIndex >= index })
	for ; i < len(x.infos) && x.infos[i].MainTextIndex == index; i++ {
		if !x.infos[i].Merged {
			return i, true
		}
	}
	return 0, false
}

// LineNumberFor returns the line of a logical index: a direct record first,
// then any merged record the index contributed to.
func (x *Extractor) LineNumberFor(index int) (int, bool) {
	if i, ok := x.find(index); ok {
		return x.infos[i].LineNumber, true
	}
	for _, pos := range x.merged {
		info := &x.infos[pos]
		j := sort.SearchInts(info.MergedIndices, index)
		if j < len(info.MergedIndices) && info.MergedIndices[j] == index {
			return info.LineNumber, true
		}
	}
	return 0, false
}

// Occurrences implements lemma.OccurrenceSource. Only direct records with
// text answer; merged items and glue are unknown.
func (x *Extractor) Occurrences(index int) (occ, total int, ok bool) {
	i, found := x.find(index)
	if !found || x.infos[i].Text == "" {
		return 0, 0, false
	}
	return x.infos[i].OccurrenceInLine, x.infos[i].TotalOccurrencesInLine, true
}

// IndexRange returns the smallest and largest logical index seen.
func (x *Extractor) IndexRange() (lo, hi int, ok bool) {
	if len(x.infos) == 0 {
		return 0, 0, false
	}
	lo, hi = x.infos[0].MainTextIndex, x.infos[len(x.infos)-1].MainTextIndex
	for _, pos := range x.merged {
		idx := x.infos[pos].MergedIndices
		if idx[0] < lo {
			lo = idx[0]
		}
		if last := idx[len(idx)-1]; last > hi {
			hi = last
		}
	}
	return lo, hi, true
}
