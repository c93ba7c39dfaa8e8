package domain

import (
	"strings"
	"unicode/utf8"
)

// ACEPrefix marks a label as punycode encoded.
const ACEPrefix = "xn--"

// Label is a single dot separated segment of a domain name.
type Label struct {
	Raw        string // text as it appeared in the input
	Unicode    string // decoded Unicode form
	ACE        string // ASCII compatible form
	IsPunycode bool   // Raw begins with the ACE prefix
}

// NewLabel constructs a Label from raw input text. The two encodings are filled
// in by the conversion that owns the label.
func NewLabel(raw string) Label {
	return Label{Raw: raw, IsPunycode: HasACEPrefix(raw)}
}

// HasACEPrefix reports whether s begins with "xn--", ignoring ASCII case.
func HasACEPrefix(s string) bool {
	return len(s) >= len(ACEPrefix) && strings.EqualFold(s[:len(ACEPrefix)], ACEPrefix)
}

// Domain is an ordered sequence of labels together with the separators that
// joined them in the original text.
type Domain struct {
	Labels     []Label
	Separators []rune // Separators[i] follows Labels[i]
	Trailing   bool   // the input ended with a separator
}

// isFullStop reports whether r is one of the label separators recognized by
// RFC 3490: full stop, ideographic full stop, fullwidth full stop and
// halfwidth ideographic full stop.
func isFullStop(r rune) bool {
	return r == '.' || r == '。' || r == '．' || r == '｡'
}

// NormalizeFullStops rewrites the Unicode full stop look-alikes to ASCII '.'.
// It must run before a domain is split so label boundaries do not depend on
// which stop variant the input used.
func NormalizeFullStops(s string) string {
	if !strings.ContainsAny(s, "。．｡") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isFullStop(r) {
			return '.'
		}
		return r
	}, s)
}

// SplitDomain splits text into labels on any full stop variant, remembering
// the separators so Original can rebuild the input. A single trailing
// separator marks the domain as absolute and does not produce an empty label.
func SplitDomain(s string) Domain {
	var d Domain
	if s == "" {
		return d
	}
	start := 0
	for i, r := range s {
		if !isFullStop(r) {
			continue
		}
		d.Labels = append(d.Labels, NewLabel(s[start:i]))
		d.Separators = append(d.Separators, r)
		start = i + utf8.RuneLen(r)
	}
	if start == len(s) {
		d.Trailing = true
		return d
	}
	d.Labels = append(d.Labels, NewLabel(s[start:]))
	return d
}

// Original reconstructs the input text with its original separators.
func (d Domain) Original() string {
	return d.join(func(l Label) string { return l.Raw }, true)
}

// String joins the raw labels with ASCII full stops.
func (d Domain) String() string {
	return d.join(func(l Label) string { return l.Raw }, false)
}

// ACE joins the ACE form of every label with ASCII full stops.
func (d Domain) ACE() string {
	return d.join(func(l Label) string { return l.ACE }, false)
}

// Unicode joins the Unicode form of every label with ASCII full stops.
func (d Domain) Unicode() string {
	return d.join(func(l Label) string { return l.Unicode }, false)
}

func (d Domain) join(text func(Label) string, original bool) string {
	var b strings.Builder
	for i, l := range d.Labels {
		b.WriteString(text(l))
		if i < len(d.Separators) {
			if original {
				b.WriteRune(d.Separators[i])
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

// TLD returns the raw text of the last label, or "" for an empty domain.
func (d Domain) TLD() string {
	if len(d.Labels) == 0 {
		return ""
	}
	return d.Labels[len(d.Labels)-1].Raw
}

// IsASCII reports whether s contains only ASCII bytes.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
