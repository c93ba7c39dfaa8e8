package utils

import (
	"strings"

	"github.com/haukened/rr-idn/internal/idn/domain"
)

// CanonicalDNSName returns a DNS name in canonical form:
// - Unicode full stop variants folded to '.'
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot
func CanonicalDNSName(name string) string {
	name = domain.NormalizeFullStops(strings.TrimSpace(name))
	name = strings.ToLower(name)
	return strings.TrimRight(name, ".")
}

// TopLevelDomain returns the last label of name in canonical form, or "" when
// name has no labels.
func TopLevelDomain(name string) string {
	name = CanonicalDNSName(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
