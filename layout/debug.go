package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将分页结果或校勘记原语输出为 JSON，便于调试或可视化。
func WriteDebugJSON(v any, path string) error {
	if v == nil {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PlainText concatenates the text of all boxes in items, separating glue by a
// single space. Useful for logging and tests.
func PlainText(items []Item) string {
	var out []byte
	Walk(items, func(it *Item) bool {
		switch it.Kind {
		case KindBox:
			out = append(out, it.Text...)
		case KindGlue:
			if len(out) > 0 && out[len(out)-1] != ' ' && !it.Fill {
				out = append(out, ' ')
			}
		}
		return true
	})
	return string(out)
}
