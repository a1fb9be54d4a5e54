package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sheetLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|em|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	sheetParser = participle.MustBuild[Sheet](
		participle.Lexer(sheetLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Sheet is the root AST node of a style sheet file.
type Sheet struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'stylesheet' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one top-level declaration of a sheet.
type Section struct {
	Strings    *StringsSection `parser:"  @@"`
	Fonts      *FontsSection   `parser:"| @@"`
	Style      *StyleDecl      `parser:"| @@"`
	Substitute *SubstituteDecl `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Strings != nil:
		return "strings"
	case s.Fonts != nil:
		return "fonts"
	case s.Style != nil:
		return "style"
	case s.Substitute != nil:
		return "substitute"
	default:
		return "unknown"
	}
}

// StringsSection holds localized keywords and separators.
type StringsSection struct {
	Props *Props `parser:"'strings' @@"`
}

// FontsSection declares font resources.
type FontsSection struct {
	Fonts []*FontDecl `parser:"'fonts' '{' Newline* ( @@ Newline* )* '}'"`
}

// FontDecl declares one font resource (`font Body { src: "..." }`).
type FontDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'font' @Ident"`
	Props *Props         `parser:"@@"`
}

// StyleDecl declares a named style, optionally inheriting another one.
type StyleDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'style' @Ident"`
	Extends string         `parser:"( 'extends' @Ident )?"`
	Props   *Props         `parser:"@@"`
}

// SubstituteDecl declares a font substitution for a script (`substitute Arab { font: Amiri }`).
type SubstituteDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Script string         `parser:"'substitute' @Ident"`
	Props  *Props         `parser:"@@"`
}

// Props is a braced list of assignments separated by newlines or semicolons.
type Props struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ ( ';' | ',' | Newline )* )* '}'"`
}

// Map returns the assignments as a key → string map; later keys win.
func (p *Props) Map() map[string]string {
	out := map[string]string{}
	if p == nil {
		return out
	}
	for _, a := range p.Entries {
		out[a.Key] = a.Value.String()
	}
	return out
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents a property value.
type Value struct {
	Str    *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
}

// String returns the raw textual value.
func (v *Value) String() string {
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return string(*v.Str)
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a style sheet from an io.Reader.
func Parse(r io.Reader) (*Sheet, error) {
	return sheetParser.Parse("", r)
}

// ParseString parses a style sheet from a string.
func ParseString(input string) (*Sheet, error) {
	return sheetParser.ParseString("", input)
}

// ParseFile parses a style sheet, naming filename in error positions.
func ParseFile(filename string, r io.Reader) (*Sheet, error) {
	return sheetParser.Parse(filename, r)
}
