package lru

import (
	"errors"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictCache_HitMissAndPut(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	key := Key("bücher", "de")
	_, ok := c.Get(key)
	assert.False(t, ok, "expected miss before put")

	c.Put(key, true)
	safe, ok := c.Get(key)
	assert.True(t, ok)
	assert.True(t, safe)

	c.Put(Key("раураl", "com"), false)
	safe, ok = c.Get(Key("раураl", "com"))
	assert.True(t, ok)
	assert.False(t, safe)

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 2, st.Capacity)
	assert.Equal(t, 2, st.Size)
}

func TestVerdictCache_KeyIncludesTLD(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	c.Put(Key("þing", "is"), true)
	_, ok := c.Get(Key("þing", "com"))
	assert.False(t, ok)
}

func TestVerdictCache_EvictionAndLen(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	c.Put("a|com", true)
	c.Put("b|com", true)
	assert.Equal(t, 2, c.Len())

	c.Put("c|com", true)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestVerdictCache_PurgeCountsEvictions(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)
	c.Put("a|com", true)
	c.Put("b|com", true)
	c.Put("c|com", false)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(3), c.Stats().Evictions)
}

func TestVerdictCache_Disabled(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	c.Put("x|com", true)
	_, ok := c.Get("x|com")
	assert.False(t, ok, "expected miss in disabled cache")
	assert.Equal(t, 0, c.Len())
	c.Purge()
	st := c.Stats()
	assert.Equal(t, 0, st.Capacity)
	assert.Equal(t, uint64(1), st.Misses)
}

func TestNewLRU_Error(t *testing.T) {
	originalLRU := newLRU
	newLRU = func(int, func(string, bool)) (*lru.Cache[string, bool], error) {
		return nil, errors.New("cache creation error")
	}
	defer func() { newLRU = originalLRU }()

	_, err := New(1)
	assert.Error(t, err)
}
