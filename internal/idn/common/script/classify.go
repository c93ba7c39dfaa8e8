package script

import (
	"sort"
	"unicode"
)

const (
	zeroWidthNonJoiner = 0x200C
	zeroWidthJoiner    = 0x200D
)

// identifierPunctuation lists the punctuation UTS 39 allows inside
// identifiers. Each of them gets an extra context check by the caller.
var identifierPunctuation = map[rune]bool{
	0x00B7: true, // MIDDLE DOT, Catalan l·l
	0x0375: true, // GREEK LOWER NUMERAL SIGN
	0x05F3: true, // HEBREW PUNCTUATION GERESH
	0x05F4: true, // HEBREW PUNCTUATION GERSHAYIM
	0x0F0B: true, // TIBETAN MARK INTERSYLLABIC TSHEG
	0x30FB: true, // KATAKANA MIDDLE DOT
	'-':    true,
}

// IsIdentifierChar reports whether r may appear in a label shown in Unicode:
// it must be assigned, belong to a recommended or aspirational script, and
// be a letter, mark or number (plus a handful of identifier punctuation and
// the two joiners).
func IsIdentifierChar(r rune) bool {
	switch s := Of(r); s {
	case Unknown, Restricted:
		return false
	}
	switch {
	case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsNumber(r):
		return true
	case r == zeroWidthNonJoiner || r == zeroWidthJoiner:
		return true
	default:
		return identifierPunctuation[r]
	}
}

// IsNonspacingMark reports whether r has general category Mn.
func IsNonspacingMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// NumberingSystem returns the zero digit of the decimal numbering system r
// belongs to. ok is false when r is not a decimal digit (Nd). Nd digits are
// encoded as contiguous runs starting at zero, so the zero is found by
// aligning r to its run.
func NumberingSystem(r rune) (zero rune, ok bool) {
	if r <= '9' {
		if r >= '0' {
			return '0', true
		}
		return 0, false
	}
	nd := unicode.Nd
	if r <= 0xFFFF {
		i := sort.Search(len(nd.R16), func(i int) bool { return rune(nd.R16[i].Hi) >= r })
		if i < len(nd.R16) {
			return alignToZero(r, rune(nd.R16[i].Lo), nd.R16[i].Stride)
		}
		return 0, false
	}
	i := sort.Search(len(nd.R32), func(i int) bool { return rune(nd.R32[i].Hi) >= r })
	if i < len(nd.R32) {
		return alignToZero(r, rune(nd.R32[i].Lo), uint32(nd.R32[i].Stride))
	}
	return 0, false
}

func alignToZero[S uint16 | uint32](r, lo rune, stride S) (rune, bool) {
	if r < lo || stride != 1 {
		return 0, false
	}
	return lo + (r-lo)/10*10, true
}
