package blocklist

import (
	"fmt"
	"slices"
	"sort"

	"github.com/haukened/rr-idn/internal/idn/domain"
)

// TLDEncoder converts a TLD to lower-case ACE form.
type TLDEncoder func(tld string) (string, error)

// Layers are the inputs of a table build, applied in order: Base first, in
// source order (later entries win where they overlap), then Blocked, then
// Allowed, which removes codepoints from the result.
type Layers struct {
	Base    []domain.BlocklistRange
	Blocked []domain.BlocklistRange
	Allowed []domain.BlocklistRange
}

// paint is one layer entry; a nil scope clears the interval.
type paint struct {
	low, high rune
	scope     *domain.TLDScope
}

// Build flattens layers into sorted, non-overlapping ranges. Adjacent
// intervals that end up with the same scope are merged. encode, if non-nil,
// converts every scope TLD to ACE; it runs before the scope is compared.
func Build(layers Layers, encode TLDEncoder) ([]domain.BlocklistRange, error) {
	paints := make([]paint, 0, len(layers.Base)+len(layers.Blocked)+len(layers.Allowed))
	add := func(ranges []domain.BlocklistRange, allow bool) error {
		for _, r := range ranges {
			if err := r.Validate(); err != nil {
				return err
			}
			p := paint{low: r.Low, high: r.High}
			if !allow {
				scope, err := encodeScope(r.Scope, encode)
				if err != nil {
					return fmt.Errorf("range %s: %w", r, err)
				}
				p.scope = &scope
			}
			paints = append(paints, p)
		}
		return nil
	}
	if err := add(layers.Base, false); err != nil {
		return nil, err
	}
	if err := add(layers.Blocked, false); err != nil {
		return nil, err
	}
	if err := add(layers.Allowed, true); err != nil {
		return nil, err
	}
	if len(paints) == 0 {
		return nil, nil
	}

	bounds := make([]rune, 0, 2*len(paints))
	for _, p := range paints {
		bounds = append(bounds, p.low, p.high+1)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	// cells[i] covers [bounds[i], bounds[i+1]-1]
	cells := make([]*domain.TLDScope, len(bounds)-1)
	for _, p := range paints {
		lo := sort.Search(len(bounds), func(i int) bool { return bounds[i] >= p.low })
		hi := sort.Search(len(bounds), func(i int) bool { return bounds[i] >= p.high+1 })
		for i := lo; i < hi; i++ {
			cells[i] = p.scope
		}
	}

	var out []domain.BlocklistRange
	for i, scope := range cells {
		if scope == nil {
			continue
		}
		low, high := bounds[i], bounds[i+1]-1
		if n := len(out); n > 0 && out[n-1].High+1 == low && out[n-1].Scope.Equal(*scope) {
			out[n-1].High = high
			continue
		}
		out = append(out, domain.BlocklistRange{Low: low, High: high, Scope: *scope})
	}
	return out, nil
}

func encodeScope(scope domain.TLDScope, encode TLDEncoder) (domain.TLDScope, error) {
	if scope.Mode == domain.ScopeAll || encode == nil {
		return domain.NewTLDScope(scope.Mode, scope.TLDs), nil
	}
	tlds := make([]string, 0, len(scope.TLDs))
	for _, t := range scope.TLDs {
		ace, err := encode(t)
		if err != nil {
			return domain.TLDScope{}, fmt.Errorf("tld %q: %w", t, err)
		}
		tlds = append(tlds, ace)
	}
	return domain.NewTLDScope(scope.Mode, tlds), nil
}

// Codepoints turns individual characters into single-codepoint ranges that
// block under every TLD, as used for the extra allowed/blocked preferences.
func Codepoints(chars []rune) []domain.BlocklistRange {
	out := make([]domain.BlocklistRange, 0, len(chars))
	for _, c := range chars {
		out = append(out, domain.BlocklistRange{Low: c, High: c})
	}
	return out
}
