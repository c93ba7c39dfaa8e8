package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ScopeMode defines how a range's TLD list limits where it blocks.
//
// all    - blocks under every TLD (the TLD list is ignored)
// only   - blocks only under the listed TLDs
// except - blocks under every TLD except the listed ones
type ScopeMode uint8

const (
	// ScopeAll blocks regardless of TLD.
	ScopeAll ScopeMode = iota
	// ScopeOnly blocks only under the listed TLDs.
	ScopeOnly
	// ScopeExcept blocks everywhere except the listed TLDs.
	ScopeExcept
)

// String returns a stable string representation of the scope mode.
func (m ScopeMode) String() string {
	switch m {
	case ScopeAll:
		return "all"
	case ScopeOnly:
		return "only"
	case ScopeExcept:
		return "except"
	default:
		return fmt.Sprintf("ScopeMode(%d)", m)
	}
}

// ParseScopeMode converts "all", "only" or "except" (case-insensitive).
// An empty string means "all".
func ParseScopeMode(s string) (ScopeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ScopeAll, nil
	case "only":
		return ScopeOnly, nil
	case "except":
		return ScopeExcept, nil
	default:
		return 0, fmt.Errorf("unsupported ScopeMode: %q", s)
	}
}

// TLDScope restricts a blocklist range to, or exempts it from, a set of
// top-level domains. TLDs are held in lower-case ACE form, sorted.
type TLDScope struct {
	Mode ScopeMode
	TLDs []string
}

// Blocks reports whether a range with this scope applies under tld.
// tld must already be in lower-case ACE form.
func (s TLDScope) Blocks(tld string) bool {
	switch s.Mode {
	case ScopeOnly:
		return s.has(tld)
	case ScopeExcept:
		return !s.has(tld)
	default:
		return true
	}
}

func (s TLDScope) has(tld string) bool {
	_, found := slices.BinarySearch(s.TLDs, tld)
	return found
}

// Equal reports whether two scopes block under exactly the same TLDs.
func (s TLDScope) Equal(o TLDScope) bool {
	if s.Mode != o.Mode {
		return false
	}
	if s.Mode == ScopeAll {
		return true
	}
	return slices.Equal(s.TLDs, o.TLDs)
}

// String renders the scope as "all", "only:com,net" or "except:is,fo".
func (s TLDScope) String() string {
	if s.Mode == ScopeAll {
		return s.Mode.String()
	}
	return s.Mode.String() + ":" + strings.Join(s.TLDs, ",")
}

// NewTLDScope builds a scope, lower-casing, de-duplicating and sorting tlds.
// TLD names are expected in ACE form already; conversion is handled by the
// blocklist builder.
func NewTLDScope(mode ScopeMode, tlds []string) TLDScope {
	if mode == ScopeAll {
		return TLDScope{Mode: ScopeAll}
	}
	out := make([]string, 0, len(tlds))
	for _, t := range tlds {
		t = strings.Trim(strings.ToLower(strings.TrimSpace(t)), ".")
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return TLDScope{Mode: mode, TLDs: slices.Compact(out)}
}

// BlocklistRange is a closed interval of codepoints that is not safe to
// display, optionally limited by TLD.
type BlocklistRange struct {
	Low   rune
	High  rune
	Scope TLDScope
}

// NewBlocklistRange constructs a BlocklistRange and validates its bounds.
func NewBlocklistRange(low, high rune, scope TLDScope) (BlocklistRange, error) {
	r := BlocklistRange{Low: low, High: high, Scope: scope}
	if err := r.Validate(); err != nil {
		return BlocklistRange{}, err
	}
	return r, nil
}

// Validate checks the range bounds and scope.
func (r BlocklistRange) Validate() error {
	if r.Low < 0 || r.High > utf8.MaxRune {
		return fmt.Errorf("range U+%04X..U+%04X outside the Unicode codespace", r.Low, r.High)
	}
	if r.Low > r.High {
		return fmt.Errorf("range low U+%04X above high U+%04X", r.Low, r.High)
	}
	switch r.Scope.Mode {
	case ScopeAll:
		// ok
	case ScopeOnly, ScopeExcept:
		if len(r.Scope.TLDs) == 0 {
			return fmt.Errorf("range U+%04X..U+%04X: %s scope needs at least one TLD", r.Low, r.High, r.Scope.Mode)
		}
	default:
		return fmt.Errorf("unsupported ScopeMode: %d", r.Scope.Mode)
	}
	return nil
}

// Contains reports whether c falls inside the range.
func (r BlocklistRange) Contains(c rune) bool { return c >= r.Low && c <= r.High }

// String renders the range as "U+2000..U+200B" followed by its scope when scoped.
func (r BlocklistRange) String() string {
	s := fmt.Sprintf("U+%04X", r.Low)
	if r.High != r.Low {
		s += fmt.Sprintf("..U+%04X", r.High)
	}
	if r.Scope.Mode != ScopeAll {
		s += " " + r.Scope.String()
	}
	return s
}
