package apparatus

import (
	"fmt"
	"sort"

	"github.com/ByLCY/scriptorium/layout"
)

// MarginalRecord holds the margin notes that start on one physical line.
type MarginalRecord struct {
	Line  int             `json:"line"`
	Notes [][]layout.Item `json:"notes"`
}

type marginaliaMemo struct {
	epoch   uint64
	records []MarginalRecord
}

// MarginaliaInRange returns the consolidated margin notes of the lines
// [lineFrom, lineTo], sorted by line. Records are built once per line map
// from every marginalia apparatus of the edition.
func (s *Session) MarginaliaInRange(lineFrom, lineTo int) ([]MarginalRecord, error) {
	if !s.checkLineMap("marginalia") {
		return nil, nil
	}
	records, err := s.consolidatedMarginalia()
	if err != nil {
		return nil, err
	}
	var out []MarginalRecord
	for _, r := range records {
		if r.Line >= lineFrom && r.Line <= lineTo {
			out = append(out, MarginalRecord{Line: r.Line, Notes: cloneNotes(r.Notes)})
		}
	}
	return out, nil
}

// cloneNotes copies note lists so callers cannot reach the memoized records.
func cloneNotes(notes [][]layout.Item) [][]layout.Item {
	if notes == nil {
		return nil
	}
	out := make([][]layout.Item, len(notes))
	for i, n := range notes {
		out[i] = layout.CloneItems(n)
	}
	return out
}

func (s *Session) consolidatedMarginalia() ([]MarginalRecord, error) {
	epoch := s.extractor.Epoch()
	if s.marginalia != nil && s.marginalia.epoch == epoch {
		return s.marginalia.records, nil
	}
	byLine := map[int]*MarginalRecord{}
	if s.edition != nil {
		for i := range s.edition.Apparatuses {
			app := &s.edition.Apparatuses[i]
			if !app.IsMarginalia() {
				continue
			}
			ranges, err := s.lineRanges(app)
			if err != nil {
				return nil, fmt.Errorf("构建边注行区间失败: %w", err)
			}
			for _, r := range ranges {
				rec, ok := byLine[r.LineFrom]
				if !ok {
					rec = &MarginalRecord{Line: r.LineFrom}
					byLine[r.LineFrom] = rec
				}
				rec.Notes = append(rec.Notes, r.Notes...)
			}
		}
	}
	records := make([]MarginalRecord, 0, len(byLine))
	for _, rec := range byLine {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Line < records[j].Line })
	s.marginalia = &marginaliaMemo{epoch: epoch, records: records}
	s.logger.Debug("marginalia consolidated", "records", len(records), "epoch", epoch)
	return records, nil
}
