package layout

// TextMeasurer 负责测量带样式文本的宽度（pt）。由渲染后端实现并注入。
type TextMeasurer interface {
	Width(run TextRun) (float64, error)
}

// LineBreaker 是外部断行/分页引擎的契约：接收垂直列表，返回分页结果。
// 结果中的每个物理行都是带 TagLine 的 hlist，并在 Metadata 中带行号；
// 每个保留下来的原语携带产生它的逻辑下标，若被合并则携带全部来源原语。
type LineBreaker interface {
	Typeset(list Item) (*Document, error)
}
