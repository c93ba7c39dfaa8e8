package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
)

// parseCodepoint converts "U+XXXX" (case-insensitive, 4 to 6 hex digits)
// into a rune.
func parseCodepoint(tok string) (rune, error) {
	if len(tok) < 2 || !strings.EqualFold(tok[:2], "U+") {
		return 0, fmt.Errorf("codepoint %q: missing U+ prefix", tok)
	}
	hex := tok[2:]
	if len(hex) < 4 || len(hex) > 6 {
		return 0, fmt.Errorf("codepoint %q: want 4 to 6 hex digits", tok)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("codepoint %q: %w", tok, err)
	}
	if v > utf8.MaxRune {
		return 0, fmt.Errorf("codepoint %q: outside the Unicode codespace", tok)
	}
	return rune(v), nil
}

// parseRangeSpec converts "U+XXXX" or "U+XXXX..U+YYYY" into bounds.
func parseRangeSpec(tok string) (lo, hi rune, err error) {
	first, last, isRange := strings.Cut(tok, "..")
	if lo, err = parseCodepoint(first); err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	if hi, err = parseCodepoint(last); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// parseScope converts "all", "only:tld,tld" or "except:tld,tld". An empty
// string means all.
func parseScope(tok string) (domain.TLDScope, error) {
	modeStr, list, _ := strings.Cut(tok, ":")
	mode, err := domain.ParseScopeMode(modeStr)
	if err != nil {
		return domain.TLDScope{}, err
	}
	return domain.NewTLDScope(mode, splitList(list)), nil
}

// splitList splits on commas and whitespace, dropping empty items.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
}

// parseRangeLine parses "<range> [scope]" with any comment already removed.
func parseRangeLine(s string) (domain.BlocklistRange, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return domain.BlocklistRange{}, fmt.Errorf("want \"<range> [scope]\", got %q", s)
	}
	lo, hi, err := parseRangeSpec(fields[0])
	if err != nil {
		return domain.BlocklistRange{}, err
	}
	var scope domain.TLDScope
	if len(fields) == 2 {
		if scope, err = parseScope(fields[1]); err != nil {
			return domain.BlocklistRange{}, err
		}
	}
	return domain.NewBlocklistRange(lo, hi, scope)
}

// ParseCharList parses the extra allowed/blocked character preferences.
// Items are separated by commas or whitespace; an item starting with "U+"
// is a codepoint or range, anything else contributes each of its characters
// literally. The result blocks under every TLD.
func ParseCharList(s string) ([]domain.BlocklistRange, error) {
	var out []domain.BlocklistRange
	for _, item := range splitList(s) {
		if len(item) > 2 && strings.EqualFold(item[:2], "U+") {
			lo, hi, err := parseRangeSpec(item)
			if err != nil {
				return nil, err
			}
			r, err := domain.NewBlocklistRange(lo, hi, domain.TLDScope{})
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			continue
		}
		if !utf8.ValidString(item) {
			return nil, fmt.Errorf("item %q is not valid UTF-8", item)
		}
		out = append(out, blocklist.Codepoints([]rune(item))...)
	}
	return out, nil
}
