package edition

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load decodes an edition from YAML (JSON is accepted as well) and normalizes it.
func Load(r io.Reader) (*Edition, error) {
	var ed Edition
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&ed); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("edition: 输入为空")
		}
		return nil, fmt.Errorf("edition: 解析失败: %w", err)
	}
	ed.Normalize()
	if err := ed.Validate(); err != nil {
		return nil, err
	}
	return &ed, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Edition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开版本文件 %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Normalize replaces the -1 sentinels used by older data producers with nil.
func (e *Edition) Normalize() {
	for ai := range e.Apparatuses {
		app := &e.Apparatuses[ai]
		for ei := range app.Entries {
			en := &app.Entries[ei]
			if en.To != nil && *en.To < 0 {
				en.To = nil
			}
			for si := range en.SubEntries {
				se := &en.SubEntries[si]
				if se.Position != nil && *se.Position < 0 {
					se.Position = nil
				}
			}
		}
	}
}

// Validate checks structural invariants that cannot be recovered from.
// Apparatus types must be unique: layout caches are keyed by type. Foliation
// changes must name a known witness and main-text token.
func (e *Edition) Validate() error {
	for i, fc := range e.FoliationChanges {
		if fc.WitnessIndex < 0 || fc.WitnessIndex >= len(e.Witnesses) {
			return fmt.Errorf("edition: foliation change %d: unknown witness %d", i, fc.WitnessIndex)
		}
		if fc.MainTextIndex < 0 || fc.MainTextIndex >= len(e.MainText) {
			return fmt.Errorf("edition: foliation change %d: main-text index %d out of range", i, fc.MainTextIndex)
		}
	}
	types := make(map[string]int, len(e.Apparatuses))
	for ai, app := range e.Apparatuses {
		if prev, ok := types[app.Type]; ok {
			return fmt.Errorf("edition: apparatus %d and %d share type %q", prev, ai, app.Type)
		}
		types[app.Type] = ai
		for ei, en := range app.Entries {
			if en.To != nil && *en.To >= 0 && en.From > *en.To {
				return fmt.Errorf("edition: apparatus %d (%s) entry %d: from %d > to %d", ai, app.Type, ei, en.From, *en.To)
			}
		}
	}
	return nil
}

// Apparatus returns the first apparatus of the given type.
func (e *Edition) Apparatus(typ string) (*Apparatus, bool) {
	for i := range e.Apparatuses {
		if e.Apparatuses[i].Type == typ {
			return &e.Apparatuses[i], true
		}
	}
	return nil, false
}

// Siglum returns the siglum of witness i.
func (e *Edition) Siglum(i int) (string, bool) {
	if i < 0 || i >= len(e.Witnesses) {
		return "", false
	}
	return e.Witnesses[i].Siglum, true
}
