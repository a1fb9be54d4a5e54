package style

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSheet(t *testing.T) {
	s := Default()
	assert.Equal(t, "om.", s.String(StrOmission))
	assert.Equal(t, "]", s.String(StrLemmaSeparator))
	assert.Equal(t, "unknown-key", s.String("unknown-key"))

	ps, err := s.Paragraph(Normal)
	require.NoError(t, err)
	assert.Equal(t, AlignJustified, ps.Align)
	assert.InDelta(t, 12, ps.Font.Size, 1e-9)
	assert.InDelta(t, 12*1.3, ps.LineHeight, 1e-9)

	_, err = s.Paragraph("nope")
	assert.True(t, errors.Is(err, ErrUnknownStyle))
}

func TestTextStylesMergeAndEm(t *testing.T) {
	s := Default()
	ts := s.Text(Apparatus, Superscript)
	assert.InDelta(t, 9*0.6, ts.Font.Size, 1e-9)
	assert.InDelta(t, 9*0.4, ts.Raise, 1e-9)

	ts = s.Text(Apparatus, Bold, Italic)
	assert.Equal(t, "bold italic", ts.Font.Style)
	assert.Equal(t, "Body", ts.Font.Family)
}

func TestUserSheetLayersOverDefault(t *testing.T) {
	src := `stylesheet Mine v1 {
  strings { omission: "deest" }
  fonts { font Amiri { src: "fonts/Amiri.ttf" } }
  style normal { size: 10pt; indent: 2em }
  style verse extends normal { align: left; space-after: 3pt }
  substitute Arab { font: Amiri }
}`
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Mine", s.Name())
	assert.Equal(t, "deest", s.String(StrOmission))
	assert.Equal(t, "add.", s.String(StrAddition), "defaults survive")

	ps, err := s.Paragraph("verse")
	require.NoError(t, err)
	assert.Equal(t, AlignLeft, ps.Align)
	assert.InDelta(t, 20, ps.Indent, 1e-9)
	assert.InDelta(t, 3, ps.SpaceAfter, 1e-9)

	assert.True(t, s.Has(Apparatus))
	assert.Equal(t, []Substitution{{Script: "Arab", Family: "Amiri"}}, s.Substitutions())
	assert.Equal(t, "fonts/Amiri.ttf", s.Fonts()["Amiri"].Src)
}

func TestInheritanceCycleIsRejected(t *testing.T) {
	_, err := Parse(strings.NewReader(`stylesheet C v1 { style a extends b { } style b extends a { } }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "循环")
}

func TestMissingParentIsRejected(t *testing.T) {
	_, err := Parse(strings.NewReader(`stylesheet C v1 { style a extends ghost { } }`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStyle))
}
