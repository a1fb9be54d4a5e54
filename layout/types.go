package layout

// 该文件定义排版原语（box/glue/penalty 与水平/垂直列表）以及分页结果，
// 供主文编译、断行、行信息提取与校勘记装配共用，并可直接序列化为调试 JSON。

// Kind 区分排版原语的种类。
type Kind string

const (
	KindBox     Kind = "box"
	KindGlue    Kind = "glue"
	KindPenalty Kind = "penalty"
	KindHList   Kind = "hlist"
	KindVList   Kind = "vlist"
)

// Penalty values follow the usual box/glue/penalty conventions.
const (
	PenaltyInfinite = 10000  // never break here
	PenaltyForced   = -10000 // always break here
)

// Direction 为文本方向。空字符串表示尚未确定。
type Direction string

const (
	DirectionUnset Direction = ""
	DirectionLTR   Direction = "ltr"
	DirectionRTL   Direction = "rtl"
)

// Opposite returns the other writing direction; an unset direction stays unset.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLTR:
		return DirectionRTL
	case DirectionRTL:
		return DirectionLTR
	default:
		return DirectionUnset
	}
}

// Tag values carried by lists.
const (
	TagParagraph = "paragraph"
	TagLine      = "line"
	TagSpacer    = "spacer"
	TagIndent    = "indent"
	TagMarker    = "foliation-marker"
)

// FontSpec 描述一个已解析的字体（字号单位：pt）。
type FontSpec struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Style  string  `json:"style,omitempty"`
}

// TextRun 是交给测量服务的带样式文本片段。
type TextRun struct {
	Text string   `json:"text"`
	Font FontSpec `json:"font"`
}

// Item 是单个排版原语。所有尺寸均为 pt。
// box 使用 Text/Width/Font/Raise；glue 使用 Width/Stretch/Shrink/Fill；
// penalty 使用 Penalty/Flagged；hlist/vlist 使用 Items。
type Item struct {
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Width     float64   `json:"width,omitempty"`
	Stretch   float64   `json:"stretch,omitempty"`
	Shrink    float64   `json:"shrink,omitempty"`
	Fill      bool      `json:"fill,omitempty"` // infinitely stretchable glue
	Penalty   int       `json:"penalty,omitempty"`
	Flagged   bool      `json:"flagged,omitempty"`
	Raise     float64   `json:"raise,omitempty"` // baseline shift for superscripts
	Font      *FontSpec `json:"font,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Items     []Item    `json:"items,omitempty"`
	Meta      *Metadata `json:"meta,omitempty"`
}

// Metadata links a primitive back to the logical main text.
type Metadata struct {
	// Source is set on primitives produced directly from a main-text token.
	Source *Provenance `json:"source,omitempty"`
	// Merged holds the items a line breaker folded into this one.
	Merged []Item `json:"merged,omitempty"`
	// LineNumber is set on physical lines.
	LineNumber int `json:"lineNumber,omitempty"`
	// Style is the paragraph style name, set on paragraph lists.
	Style string `json:"style,omitempty"`
}

// Provenance records which logical token produced a primitive and, once the
// line breaker has run, how often the same text occurs on its physical line.
type Provenance struct {
	MainTextIndex          int    `json:"mainTextIndex"`
	OccurrenceInLine       int    `json:"occurrenceInLine,omitempty"`
	TotalOccurrencesInLine int    `json:"totalOccurrencesInLine,omitempty"`
	Text                   string `json:"text,omitempty"`
}

// Document 是外部断行/分页引擎的输出。
type Document struct {
	Pages []Page `json:"pages"`
}

// Page 保存一页上的物理行及其间的垂直间距。
type Page struct {
	Number int    `json:"number"`
	Items  []Item `json:"items"`
}

// Box returns a text box.
func Box(text string, width float64, font FontSpec) Item {
	f := font
	return Item{Kind: KindBox, Text: text, Width: width, Font: &f}
}

// EmptyBox returns a box without text, e.g. an indent or a centring anchor.
func EmptyBox(width float64) Item {
	return Item{Kind: KindBox, Width: width}
}

// Glue returns a glue item.
func Glue(width, stretch, shrink float64) Item {
	return Item{Kind: KindGlue, Width: width, Stretch: stretch, Shrink: shrink}
}

// FillGlue returns glue that can absorb any amount of remaining line space.
func FillGlue() Item {
	return Item{Kind: KindGlue, Fill: true}
}

// Penalty returns a penalty item.
func Penalty(value int) Item {
	return Item{Kind: KindPenalty, Penalty: value}
}

// HList returns a horizontal list.
func HList(tag string, items ...Item) Item {
	return Item{Kind: KindHList, Tag: tag, Items: items}
}

// VList returns a vertical list.
func VList(items ...Item) Item {
	return Item{Kind: KindVList, Items: items}
}

// IsBox reports whether it is a box.
func (it Item) IsBox() bool { return it.Kind == KindBox }

// IsGlue reports whether it is glue.
func (it Item) IsGlue() bool { return it.Kind == KindGlue }

// IsPenalty reports whether it is a penalty.
func (it Item) IsPenalty() bool { return it.Kind == KindPenalty }

// IsLine reports whether it is a physical line produced by a line breaker.
func (it Item) IsLine() bool { return it.Kind == KindHList && it.Tag == TagLine }

// Unbreakable reports whether it is a penalty that forbids a break.
func (it Item) Unbreakable() bool { return it.Kind == KindPenalty && it.Penalty >= PenaltyInfinite }

// ForcedBreak reports whether it is a penalty that forces a break.
func (it Item) ForcedBreak() bool { return it.Kind == KindPenalty && it.Penalty <= PenaltyForced }

// Source returns the provenance of the item, or nil.
func (it Item) Source() *Provenance {
	if it.Meta == nil {
		return nil
	}
	return it.Meta.Source
}

// WithSource tags the item with the logical index that produced it.
func (it Item) WithSource(index int, text string) Item {
	if it.Meta == nil {
		it.Meta = &Metadata{}
	} else {
		m := *it.Meta
		it.Meta = &m
	}
	it.Meta.Source = &Provenance{MainTextIndex: index, Text: text}
	return it
}

// LineNumber returns the line number of a physical line, or 0.
func (it Item) LineNumber() int {
	if it.Meta == nil {
		return 0
	}
	return it.Meta.LineNumber
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.Font != nil {
		f := *it.Font
		out.Font = &f
	}
	if it.Meta != nil {
		m := *it.Meta
		if it.Meta.Source != nil {
			s := *it.Meta.Source
			m.Source = &s
		}
		if len(it.Meta.Merged) > 0 {
			m.Merged = CloneItems(it.Meta.Merged)
		}
		out.Meta = &m
	}
	if len(it.Items) > 0 {
		out.Items = CloneItems(it.Items)
	}
	return out
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Walk visits every item of the tree rooted at items in document order.
// Merged source items are not visited. Returning false from fn skips the
// children of that item.
func Walk(items []Item, fn func(it *Item) bool) {
	type frame struct {
		list []Item
		pos  int
	}
	stack := []frame{{list: items}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos >= len(top.list) {
			stack = stack[:len(stack)-1]
			continue
		}
		it := &top.list[top.pos]
		top.pos++
		if fn(it) && len(it.Items) > 0 {
			stack = append(stack, frame{list: it.Items})
		}
	}
}
