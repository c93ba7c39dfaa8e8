package blocklist

import "github.com/haukened/rr-idn/internal/idn/domain"

// defaultRanges are codepoints that look like URL punctuation, spaces or
// separators, or are otherwise invisible.
var defaultRanges = [][2]rune{
	{0x00A0, 0x00A0},
	{0x00BC, 0x00BE},
	{0x01C3, 0x01C3},
	{0x02D0, 0x02D0},
	{0x0337, 0x0338},
	{0x0589, 0x058A},
	{0x05C3, 0x05C3},
	{0x05F4, 0x05F4},
	{0x0609, 0x060A},
	{0x066A, 0x066A},
	{0x06D4, 0x06D4},
	{0x0701, 0x0704},
	{0x115F, 0x1160},
	{0x1735, 0x1735},
	{0x2000, 0x200B},
	{0x200E, 0x2010},
	{0x2013, 0x2014},
	{0x2019, 0x201A},
	{0x201F, 0x201F},
	{0x2024, 0x2024},
	{0x2027, 0x202F},
	{0x2039, 0x203A},
	{0x2041, 0x2041},
	{0x2044, 0x2044},
	{0x2052, 0x2052},
	{0x205F, 0x205F},
	{0x2153, 0x215F},
	{0x2215, 0x2215},
	{0x23AE, 0x23AE},
	{0x29F6, 0x29F6},
	{0x29F8, 0x29F8},
	{0x2AFB, 0x2AFB},
	{0x2AFD, 0x2AFD},
	{0x2FF0, 0x2FFB},
	{0x3000, 0x3000},
	{0x3002, 0x3002},
	{0x3014, 0x3015},
	{0x3033, 0x3033},
	{0x30A0, 0x30A0},
	{0x3164, 0x3164},
	{0x321D, 0x321E},
	{0x33AE, 0x33AF},
	{0x33C6, 0x33C6},
	{0x33DF, 0x33DF},
	{0xA789, 0xA789},
	{0xFE14, 0xFE15},
	{0xFE3F, 0xFE3F},
	{0xFE5D, 0xFE5E},
	{0xFEFF, 0xFEFF},
	{0xFF0E, 0xFF0F},
	{0xFF61, 0xFF61},
	{0xFFA0, 0xFFA0},
	{0xFFF9, 0xFFFD},
	{0x1D242, 0x1D244},
}

// DefaultRanges returns the built-in base layer. Icelandic/Faroese thorn and
// eth, and Azerbaijani schwa, are blocked except under their own ccTLDs.
func DefaultRanges() []domain.BlocklistRange {
	out := make([]domain.BlocklistRange, 0, len(defaultRanges)+3)
	for _, r := range defaultRanges {
		out = append(out, domain.BlocklistRange{Low: r[0], High: r[1]})
	}
	isFo := domain.NewTLDScope(domain.ScopeExcept, []string{"is", "fo"})
	out = append(out,
		domain.BlocklistRange{Low: 0x00F0, High: 0x00F0, Scope: isFo}, // ð
		domain.BlocklistRange{Low: 0x00FE, High: 0x00FE, Scope: isFo}, // þ
		domain.BlocklistRange{Low: 0x0259, High: 0x0259, Scope: domain.NewTLDScope(domain.ScopeExcept, []string{"az"})},
	)
	return out
}
