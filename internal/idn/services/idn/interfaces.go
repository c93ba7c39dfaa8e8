package idn

// Preference keys read by the service. PrefsChanged is called with one of
// these, or with "" to re-read all of them.
const (
	PrefRestrictionProfile = "network.IDN.restriction_profile"
	PrefExtraAllowedChars  = "network.IDN.extra_allowed_chars"
	PrefExtraBlockedChars  = "network.IDN.extra_blocked_chars"
	PrefShowPunycode       = "network.IDN_show_punycode"
	PrefBlocklist          = "network.IDN.blocklist"
)

// Prefs exposes resolved preference values. ok is false for an unset key.
type Prefs interface {
	String(key string) (value string, ok bool)
}

func isKnownPref(name string) bool {
	switch name {
	case PrefRestrictionProfile, PrefExtraAllowedChars, PrefExtraBlockedChars, PrefShowPunycode, PrefBlocklist:
		return true
	}
	return false
}

type noPrefs struct{}

func (noPrefs) String(string) (string, bool) { return "", false }
