package compiler

import (
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/style"
)

// Paragraph is a run of main-text tokens closed by a paragraph end.
type Paragraph struct {
	// Style is the style tag of the closing paragraph_end token.
	Style string
	// Tokens excludes the closing paragraph_end token. OriginalIndex is set.
	Tokens []edition.Token
}

// Partition splits tokens at paragraph_end tokens. The result always has one
// paragraph more than there are paragraph ends: the trailing paragraph is
// implicit, possibly empty, and uses the normal style.
func Partition(tokens []edition.Token) []Paragraph {
	var out []Paragraph
	cur := Paragraph{}
	for i, tok := range tokens {
		tok.OriginalIndex = i
		if tok.Type == edition.TokenParagraphEnd {
			cur.Style = tok.Style
			if cur.Style == "" {
				cur.Style = style.Normal
			}
			out = append(out, cur)
			cur = Paragraph{}
			continue
		}
		cur.Tokens = append(cur.Tokens, tok)
	}
	cur.Style = style.Normal
	return append(out, cur)
}
