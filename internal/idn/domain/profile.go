package domain

import (
	"fmt"
	"strings"
)

// RestrictionProfile selects which script mixtures are tolerated in a label
// that is displayed in Unicode. The profiles follow the restriction levels of
// UTS 39 and are selected by the network.IDN.restriction_profile preference.
type RestrictionProfile uint8

const (
	// ASCIIOnly displays every non-ASCII label in ACE form.
	ASCIIOnly RestrictionProfile = iota
	// HighlyRestrictive allows a single script, or Latin + Han + Hiragana +
	// Katakana, Latin + Han + Bopomofo, Latin + Han + Hangul.
	HighlyRestrictive
	// ModeratelyRestrictive additionally allows Latin with any other single
	// script except Cyrillic and Greek.
	ModeratelyRestrictive
)

// String returns the preference value for the profile.
func (p RestrictionProfile) String() string {
	switch p {
	case ASCIIOnly:
		return "ASCII"
	case HighlyRestrictive:
		return "high"
	case ModeratelyRestrictive:
		return "moderate"
	default:
		return fmt.Sprintf("RestrictionProfile(%d)", p)
	}
}

// ParseRestrictionProfile converts a preference value into a profile.
// Accepts "ASCII", "high" and "moderate" (case-insensitive).
func ParseRestrictionProfile(s string) (RestrictionProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascii":
		return ASCIIOnly, nil
	case "high":
		return HighlyRestrictive, nil
	case "moderate":
		return ModeratelyRestrictive, nil
	default:
		return ASCIIOnly, fmt.Errorf("unsupported restriction profile: %q", s)
	}
}

// ProfileFromPref resolves a preference value, falling back to ASCIIOnly for
// anything unrecognized, including an unset preference.
func ProfileFromPref(s string) RestrictionProfile {
	p, err := ParseRestrictionProfile(s)
	if err != nil {
		return ASCIIOnly
	}
	return p
}
