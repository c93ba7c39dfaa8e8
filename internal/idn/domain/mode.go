package domain

import (
	"fmt"
	"strings"
)

// StringPrepMode controls how label preparation reacts to invalid or unsafe
// input. It is chosen by the caller of a conversion, never by the normalizer.
type StringPrepMode uint8

const (
	// ForDNS is strict: any disallowed character fails the whole conversion.
	ForDNS StringPrepMode = iota
	// ForUI keeps labels in Unicode only when they are safe to display.
	ForUI
	// IgnoreErrors forces every non-ASCII label into ACE and never fails on content.
	IgnoreErrors
)

// String returns a stable name for the mode.
func (m StringPrepMode) String() string {
	switch m {
	case ForDNS:
		return "dns"
	case ForUI:
		return "ui"
	case IgnoreErrors:
		return "ignore"
	default:
		return fmt.Sprintf("StringPrepMode(%d)", m)
	}
}

// ParseStringPrepMode converts "dns", "ui" or "ignore" into a mode.
func ParseStringPrepMode(s string) (StringPrepMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dns":
		return ForDNS, nil
	case "ui":
		return ForUI, nil
	case "ignore":
		return IgnoreErrors, nil
	default:
		return 0, fmt.Errorf("unsupported StringPrepMode: %q", s)
	}
}
