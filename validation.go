package stanza

import (
	"fmt"
	"unicode/utf8"
)

// ValidationKind selects which production a byte string is checked against.
type ValidationKind int

const (
	// KindElementName checks a full XML Name (§2.3 [4]/[4a]).
	KindElementName ValidationKind = iota
	// KindAttributeName checks a full XML Name, additionally permitting the
	// internal 0x01 separator byte used by AttrName's composed storage form.
	KindAttributeName
	// KindCharData checks character data (§2.2).
	KindCharData
)

// InvalidCharacterError reports the first rejected codepoint and its offset
// (in runes, not bytes) within the checked string.
type InvalidCharacterError struct {
	At        int
	Codepoint rune
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("stanza: invalid character %q at position %d", e.Codepoint, e.At)
}

// ErrEmptyName is returned by Classify for KindElementName/KindAttributeName
// when given an empty string.
var ErrEmptyName = fmt.Errorf("stanza: empty string")

// ErrInvalidUTF8 is returned by Classify when the input is not valid UTF-8.
var ErrInvalidUTF8 = fmt.Errorf("stanza: invalid utf8")

type codepointRange struct {
	lo, hi rune
}

func (r codepointRange) contains(c rune) bool { return r.lo <= c && c <= r.hi }

// XML 1.0 § 2.2
var validXMLCDataRanges = []codepointRange{
	{0x09, 0x0a},
	{0x0d, 0x0d},
	{0x0020, 0xd7ff},
	{0xe000, 0xfffd},
	{0x10000, 0x10ffff},
}

// XML 1.0 § 2.3 [4]
var validXMLNameStartRanges = []codepointRange{
	{':', ':'},
	{'A', 'Z'},
	{'_', '_'},
	{'a', 'z'},
	{0xc0, 0xd6},
	{0xd8, 0xf6},
	{0xf8, 0x2ff},
	{0x370, 0x37d},
	{0x37f, 0x1fff},
	{0x200c, 0x200d},
	{0x2070, 0x218f},
	{0x2c00, 0x2fef},
	{0x3001, 0xd7ff},
	{0xf900, 0xfdcf},
	{0x10000, 0xeffff},
}

// XML 1.0 § 2.3 [4a]
var validXMLNameRanges = []codepointRange{
	{':', ':'},
	{'-', '-'},
	{'.', '.'},
	{'A', 'Z'},
	{'_', '_'},
	{'0', '9'},
	{'a', 'z'},
	{0xb7, 0xb7},
	{0xc0, 0xd6},
	{0xd8, 0xf6},
	{0xf8, 0x2ff},
	{0x300, 0x36f},
	{0x370, 0x37d},
	{0x37f, 0x1fff},
	{0x200c, 0x200d},
	{0x203f, 0x2040},
	{0x2070, 0x218f},
	{0x2c00, 0x2fef},
	{0x3001, 0xd7ff},
	{0xf900, 0xfdcf},
	{0x10000, 0xeffff},
}

func inRanges(ranges []codepointRange, c rune) bool {
	for _, r := range ranges {
		if r.contains(c) {
			return true
		}
	}
	return false
}

func isValidNameStartChar(c rune) bool { return inRanges(validXMLNameStartRanges, c) }
func isValidNameChar(c rune) bool      { return inRanges(validXMLNameRanges, c) }
func isValidCDataChar(c rune) bool     { return inRanges(validXMLCDataRanges, c) }

// Classify checks b against the production named by kind and, on success,
// returns it converted to a string. It is the entry point C2 (AttrName) and
// C8 (Stream) use to validate names and character data; Element
// construction (C3) does not call it.
func Classify(kind ValidationKind, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	s := string(b)
	switch kind {
	case KindCharData:
		i := 0
		for _, c := range s {
			if !isValidCDataChar(c) {
				return "", &InvalidCharacterError{At: i, Codepoint: c}
			}
			i++
		}
		return s, nil
	case KindElementName, KindAttributeName:
		attributeHack := kind == KindAttributeName
		first := true
		i := 0
		for _, c := range s {
			if first {
				first = false
				if !isValidNameStartChar(c) {
					return "", &InvalidCharacterError{At: i, Codepoint: c}
				}
				i++
				continue
			}
			if attributeHack && c == '\x01' {
				i++
				continue
			}
			if !isValidNameChar(c) {
				return "", &InvalidCharacterError{At: i, Codepoint: c}
			}
			i++
		}
		if first {
			return "", ErrEmptyName
		}
		return s, nil
	default:
		return "", fmt.Errorf("stanza: unknown validation kind %d", kind)
	}
}
