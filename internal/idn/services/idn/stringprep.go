package idn

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/haukened/rr-idn/internal/idn/domain"
)

// uts46 is the non-transitional UTS 46 mapping with the bidi rule and
// without STD3 ASCII restrictions.
var uts46 = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

var errEmptyLabel = errors.New("label maps to nothing")

// stringPrep maps and validates one non-ASCII label. ok is false when the
// label was invalid; outside ForDNS the NFC lower-cased input is returned
// instead of failing.
func stringPrep(label string, mode domain.StringPrepMode) (out string, ok bool, err error) {
	out, err = uts46.ToUnicode(label)
	if err == nil {
		err = checkPrepared(out)
	}
	if err == nil {
		return out, true, nil
	}
	if mode == domain.ForDNS {
		return "", false, fmt.Errorf("%w: %q: %v", domain.ErrInvalidCharacter, label, err)
	}
	return norm.NFC.String(strings.ToLower(label)), false, nil
}

// checkPrepared rejects the codepoints a mapped label may still carry but
// that never belong in a hostname: controls, separators, surrogates and
// private use.
func checkPrepared(s string) error {
	if s == "" {
		return errEmptyLabel
	}
	if !utf8.ValidString(s) {
		return errors.New("invalid UTF-8")
	}
	for _, r := range s {
		if unicode.In(r, unicode.Cc, unicode.Z, unicode.Cs, unicode.Co) {
			return fmt.Errorf("disallowed codepoint U+%04X", r)
		}
	}
	return nil
}
