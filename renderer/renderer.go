// Package renderer defines the proof output contract: paginated main text
// with its apparatus and margin notes.
package renderer

import (
	"github.com/ByLCY/scriptorium/apparatus"
	"github.com/ByLCY/scriptorium/layout"
)

// Block is the typeset apparatus of one type for one page.
type Block struct {
	Type  string        `json:"type"`
	Items []layout.Item `json:"items"`
}

// Page 是一页校样：主文物理行、页下校勘记与页边注。
type Page struct {
	Number     int                        `json:"number"`
	Items      []layout.Item              `json:"items"`
	Apparatus  []Block                    `json:"apparatus,omitempty"`
	Marginalia []apparatus.MarginalRecord `json:"marginalia,omitempty"`
}

// Renderer 将校样输出为最终文件，例如 PDF。
type Renderer interface {
	Render(pages []Page) ([]byte, error)
}
