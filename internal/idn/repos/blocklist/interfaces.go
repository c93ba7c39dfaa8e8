package blocklist

import (
	"context"

	"github.com/haukened/rr-idn/internal/idn/domain"
)

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFactory builds filters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// BloomFilter is the minimal interface the table needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// VerdictCache memoizes label safety verdicts keyed by label and TLD.
type VerdictCache interface {
	Get(key string) (safe bool, ok bool)
	Put(key string, safe bool)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store persists the last good set of source ranges so a restart, or a
// source that became unreadable, still yields the previous table.
type Store interface {
	Save(ranges []domain.BlocklistRange, version uint64, updatedUnix int64) error
	Load() ([]domain.BlocklistRange, error)
	Stats() StoreStats
	Close() error
}

// Source yields the base ranges a table is built from, before the extra
// allowed and blocked characters are applied.
type Source interface {
	Load(ctx context.Context) ([]domain.BlocklistRange, error)
}
