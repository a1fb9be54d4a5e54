package edition

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TokenType discriminates main-text tokens.
type TokenType int

const (
	TokenText TokenType = iota
	TokenGlue
	TokenEmpty
	TokenParagraphEnd
	TokenNumberingLabel
	TokenFoliationChangeMarker
)

var tokenTypeNames = map[TokenType]string{
	TokenText:                  "text",
	TokenGlue:                  "glue",
	TokenEmpty:                 "empty",
	TokenParagraphEnd:          "paragraph_end",
	TokenNumberingLabel:        "numbering_label",
	TokenFoliationChangeMarker: "foliation_change_marker",
}

func (t TokenType) String() string {
	if s, ok := tokenTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t TokenType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TokenType) UnmarshalText(b []byte) error {
	for k, v := range tokenTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown main text token type %q", string(b))
}

// UnmarshalYAML decodes the snake_case token type name.
func (t *TokenType) UnmarshalYAML(value *yaml.Node) error {
	return t.UnmarshalText([]byte(value.Value))
}

// SubEntryType discriminates apparatus sub-entries.
type SubEntryType int

const (
	SubEntryVariant SubEntryType = iota
	SubEntryOmission
	SubEntryAddition
	SubEntryFullCustom
	SubEntryAutoFoliation
)

var subEntryTypeNames = map[SubEntryType]string{
	SubEntryVariant:       "variant",
	SubEntryOmission:      "omission",
	SubEntryAddition:      "addition",
	SubEntryFullCustom:    "fullCustom",
	SubEntryAutoFoliation: "autoFoliation",
}

func (t SubEntryType) String() string {
	if s, ok := subEntryTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SubEntryType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t SubEntryType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SubEntryType) UnmarshalText(b []byte) error {
	for k, v := range subEntryTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown apparatus sub-entry type %q", string(b))
}

// UnmarshalYAML decodes the camelCase sub-entry type name.
func (t *SubEntryType) UnmarshalYAML(value *yaml.Node) error {
	return t.UnmarshalText([]byte(value.Value))
}
