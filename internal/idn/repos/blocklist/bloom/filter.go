package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

// filter wraps a bits-and-blooms BloomFilter. Add takes the write lock and
// MightContain the read lock, so a filter may be probed while it is filled.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}
