package idn

import (
	"github.com/haukened/rr-idn/internal/idn/common/script"
	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/lru"
)

const (
	middleDot           = 0x00B7
	combiningDotAbove   = 0x0307
	dotlessI            = 0x0131
	dotlessJ            = 0x0237
	prolongedSoundMark  = 0x30FC
	katakanaIteration   = 0x30FD
	katakanaVoicedIter  = 0x30FE
	hiraganaIteration   = 0x309D
	hiraganaVoicedIter  = 0x309E
	noNumberingSystem   = rune(-1)
	noPreviousCodepoint = rune(-1)
)

// cyrillicLookalikes are Cyrillic letters that render like Latin letters.
// A label made only of these (plus digits and hyphens) spells a Latin word.
var cyrillicLookalikes = map[rune]bool{
	'а': true, 'ы': true, 'с': true, 'ԁ': true, 'е': true, 'ԍ': true,
	'һ': true, 'і': true, 'ю': true, 'ј': true, 'ӏ': true, 'о': true,
	'р': true, 'ԛ': true, 'ѕ': true, 'ԝ': true, 'х': true, 'у': true,
	'ъ': true, 'ь': true, 'ҽ': true, 'п': true, 'г': true, 'ѵ': true,
	'ѡ': true,
}

// cyrillicTLDs are the ccTLDs under which an all-Cyrillic label is
// expected, in lower-case ACE form.
var cyrillicTLDs = map[string]bool{
	"bg": true, "by": true, "kz": true, "kg": true, "mk": true, "mn": true,
	"ru": true, "su": true, "ua": true, "uz": true,
	"xn--80ao21a": true, // қаз
	"xn--90a3ac":  true, // срб
	"xn--d1alf":   true, // мкд
	"xn--j1amh":   true, // укр
	"xn--l1acc":   true, // мон
	"xn--p1ai":    true, // рф
	"xn--90ais":   true, // бел
	"xn--90ae":    true, // бг
}

// IsLabelSafe reports whether a prepared Unicode label may be displayed
// under tld with the active configuration.
func (s *Service) IsLabelSafe(label, tld string) bool {
	return s.snapshot().isLabelSafe(label, s.scopeTLD(tld))
}

// isLabelSafe memoizes labelSafe in the snapshot's cache. tld must be in
// scope form.
func (cfg *snapshot) isLabelSafe(label, tld string) bool {
	if domain.IsASCII(label) {
		return true
	}
	key := lru.Key(label, tld)
	if safe, ok := cfg.cache.Get(key); ok {
		return safe
	}
	safe := cfg.labelSafe(label, tld)
	cfg.cache.Put(key, safe)
	return safe
}

// labelSafe folds the label's codepoints through the script combination
// reducer and the per-codepoint rules, stopping at the first violation.
func (cfg *snapshot) labelSafe(label, tld string) bool {
	if domain.IsASCII(label) {
		return true
	}
	if cfg.profile == domain.ASCIIOnly {
		return false
	}

	var (
		combo       = script.NewCombo()
		lastScript  = script.Unknown
		prev        = noPreviousCodepoint
		base        = noPreviousCodepoint
		zero        = noNumberingSystem
		lookalikes  = true
		pendingLDot = false
	)
	for _, c := range label {
		if pendingLDot {
			if c != 'l' {
				return false
			}
			pendingLDot = false
		}
		if !script.IsIdentifierChar(c) || cfg.table.Blocked(c, tld) {
			return false
		}

		before := lastScript
		sc := script.Of(c)
		if !sc.IsNeutral() && sc != lastScript {
			var legal bool
			if combo, legal = combo.Add(cfg.profile, sc); !legal {
				return false
			}
			lastScript = sc
		}
		if sc == script.Cyrillic && !cyrillicLookalikes[c] {
			lookalikes = false
		}

		if z, ok := script.NumberingSystem(c); ok {
			if zero != noNumberingSystem && z != zero {
				return false
			}
			zero = z
		}

		if script.IsNonspacingMark(c) {
			if c == prev || base == dotlessI || base == dotlessJ {
				return false
			}
			if c == combiningDotAbove && (prev == 'i' || prev == 'j' || prev == 'l') {
				return false
			}
		} else {
			base = c
		}

		switch c {
		case prolongedSoundMark:
			if before != script.Hiragana && before != script.Katakana {
				return false
			}
		case katakanaIteration, katakanaVoicedIter:
			if before != script.Katakana {
				return false
			}
		case hiraganaIteration, hiraganaVoicedIter:
			if before != script.Hiragana {
				return false
			}
		case middleDot:
			if prev != 'l' {
				return false
			}
			pendingLDot = true
		}

		prev = c
	}
	if pendingLDot {
		return false
	}
	if combo.IsCyrillicOnly() && lookalikes && !cyrillicTLDs[tld] {
		return false
	}
	return true
}
