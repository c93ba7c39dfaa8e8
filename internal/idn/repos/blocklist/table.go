package blocklist

import (
	"encoding/binary"
	"slices"
	"sort"

	"github.com/haukened/rr-idn/internal/idn/domain"
)

// MaxBloomCodepoints caps how many codepoints the prefilter is built for.
// Tables covering more than this are searched without a prefilter.
const MaxBloomCodepoints = 1 << 16

// DefaultFPRate is the Bloom false-positive target used when none is given.
const DefaultFPRate = 0.01

// Table is an immutable, sorted and non-overlapping set of blocklist ranges.
// Lookups go bloom → binary search; a negative from the bloom is final.
type Table struct {
	ranges []domain.BlocklistRange
	bloom  BloomFilter
}

// NewTable wraps ranges produced by Build. factory may be nil, in which case
// lookups always binary search.
func NewTable(ranges []domain.BlocklistRange, factory BloomFactory, fpRate float64) *Table {
	t := &Table{ranges: slices.Clone(ranges)}
	if factory == nil {
		return t
	}
	var n uint64
	for _, r := range t.ranges {
		n += uint64(r.High-r.Low) + 1
	}
	if n == 0 || n > MaxBloomCodepoints {
		return t
	}
	if fpRate <= 0 {
		fpRate = DefaultFPRate
	}
	bf := factory.New(n, fpRate)
	var key [4]byte
	for _, r := range t.ranges {
		for c := r.Low; c <= r.High; c++ {
			bf.Add(bloomKey(&key, c))
		}
	}
	t.bloom = bf
	return t
}

func bloomKey(buf *[4]byte, c rune) []byte {
	binary.BigEndian.PutUint32(buf[:], uint32(c))
	return buf[:]
}

// Lookup returns the range covering c, if any, and whether it blocks under
// tld. tld must be in lower-case ACE form.
func (t *Table) Lookup(c rune, tld string) (domain.BlocklistRange, bool) {
	if t == nil || len(t.ranges) == 0 {
		return domain.BlocklistRange{}, false
	}
	if t.bloom != nil {
		var key [4]byte
		if !t.bloom.MightContain(bloomKey(&key, c)) {
			return domain.BlocklistRange{}, false
		}
	}
	i := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].High >= c })
	if i == len(t.ranges) || !t.ranges[i].Contains(c) {
		return domain.BlocklistRange{}, false
	}
	r := t.ranges[i]
	return r, r.Scope.Blocks(tld)
}

// Blocked reports whether c is blocked under tld.
func (t *Table) Blocked(c rune, tld string) bool {
	_, blocked := t.Lookup(c, tld)
	return blocked
}

// Len returns the number of ranges in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ranges)
}

// Ranges returns a copy of the table's ranges.
func (t *Table) Ranges() []domain.BlocklistRange {
	if t == nil {
		return nil
	}
	return slices.Clone(t.ranges)
}

// HasPrefilter reports whether lookups go through a Bloom filter.
func (t *Table) HasPrefilter() bool { return t != nil && t.bloom != nil }
