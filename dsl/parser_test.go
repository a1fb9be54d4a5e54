package dsl_test

import (
	"testing"

	"github.com/ByLCY/scriptorium/dsl"
)

const sampleSheet = `
// edition style sheet
stylesheet Edition v1 {
  strings {
    omission: "om."
    addition: "add."; ante: "ante"
  }

  fonts {
    font Body {
      src: "fonts/Serif.ttf"
      style: "regular"
    }
    font Amiri { src: "fonts/Amiri.ttf" }
  }

  style normal {
    font: Body
    size: 12pt
    indent: 1.5em
    align: justified
  }

  /* headings inherit from normal */
  style heading extends normal { align: center; space-before: 6pt }

  substitute Arab { font: Amiri }
}
`

func TestParseSheet(t *testing.T) {
	sheet, err := dsl.ParseString(sampleSheet)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sheet.Name != "Edition" || sheet.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", sheet.Name, sheet.Version)
	}
	if len(sheet.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(sheet.Sections))
	}

	kinds := []string{"strings", "fonts", "style", "style", "substitute"}
	for i, want := range kinds {
		if got := sheet.Sections[i].Kind(); got != want {
			t.Fatalf("section %d: expected %s, got %s", i, want, got)
		}
	}

	strs := sheet.Sections[0].Strings.Props.Map()
	if strs["omission"] != "om." || strs["addition"] != "add." || strs["ante"] != "ante" {
		t.Fatalf("unexpected strings: %v", strs)
	}

	fonts := sheet.Sections[1].Fonts.Fonts
	if len(fonts) != 2 || fonts[0].Name != "Body" || fonts[1].Name != "Amiri" {
		t.Fatalf("unexpected fonts: %+v", fonts)
	}
	if got := fonts[0].Props.Map()["src"]; got != "fonts/Serif.ttf" {
		t.Fatalf("unexpected font src: %s", got)
	}

	normal := sheet.Sections[2].Style
	if normal.Name != "normal" || normal.Extends != "" {
		t.Fatalf("unexpected style header: %+v", normal)
	}
	props := normal.Props.Map()
	if props["size"] != "12pt" || props["indent"] != "1.5em" || props["align"] != "justified" || props["font"] != "Body" {
		t.Fatalf("unexpected style props: %v", props)
	}

	heading := sheet.Sections[3].Style
	if heading.Extends != "normal" {
		t.Fatalf("expected heading to extend normal, got %q", heading.Extends)
	}
	if got := heading.Props.Map()["space-before"]; got != "6pt" {
		t.Fatalf("unexpected space-before: %s", got)
	}

	sub := sheet.Sections[4].Substitute
	if sub.Script != "Arab" || sub.Props.Map()["font"] != "Amiri" {
		t.Fatalf("unexpected substitution: %+v", sub)
	}
}

func TestParseSheetRejectsGarbage(t *testing.T) {
	if _, err := dsl.ParseString(`stylesheet X v1 { style { } }`); err == nil {
		t.Fatalf("expected error for style without name")
	}
}
