package prefs

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlPrefs = `network:
  IDN:
    restriction_profile: high
    extra_blocked_chars: [U+00E4, ö]
  IDN_show_punycode: true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// replaceFile swaps content in with a rename so watchers never see a
// half-written file.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestOpen_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "prefs.yaml", yamlPrefs},
		{"json dotted keys", "prefs.json", `{
			"network.IDN.restriction_profile": "high",
			"network.IDN.extra_blocked_chars": ["U+00E4", "ö"],
			"network.IDN_show_punycode": true
		}`},
		{"toml", "prefs.toml", `[network]
IDN_show_punycode = true

[network.IDN]
restriction_profile = "high"
extra_blocked_chars = ["U+00E4", "ö"]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			f, err := Open(path, nil)
			require.NoError(t, err)

			v, ok := f.String("network.IDN.restriction_profile")
			assert.True(t, ok)
			assert.Equal(t, "high", v)

			v, ok = f.String("network.IDN_show_punycode")
			assert.True(t, ok)
			assert.Equal(t, "true", v)

			v, ok = f.String("network.IDN.extra_blocked_chars")
			assert.True(t, ok)
			assert.Equal(t, "U+00E4,ö", v)

			_, ok = f.String("network.IDN.extra_allowed_chars")
			assert.False(t, ok)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "prefs.ini"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Open(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{not json")
	_, err = Open(bad, nil)
	assert.Error(t, err)
}

func TestReload_ReportsChangedKeysOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	writeFile(t, path, yamlPrefs)
	f, err := Open(path, nil)
	require.NoError(t, err)

	keys, err := f.Reload()
	require.NoError(t, err)
	assert.Empty(t, keys, "nothing changed")

	writeFile(t, path, `network:
  IDN:
    restriction_profile: moderate
    extra_allowed_chars: "ð"
  IDN_show_punycode: true
`)
	keys, err = f.Reload()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"network.IDN.extra_allowed_chars",
		"network.IDN.extra_blocked_chars",
		"network.IDN.restriction_profile",
	}, keys)

	v, _ := f.String("network.IDN.restriction_profile")
	assert.Equal(t, "moderate", v)
	_, ok := f.String("network.IDN.extra_blocked_chars")
	assert.False(t, ok)
}

func TestReload_FailureKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{"network.IDN.restriction_profile": "high"}`)
	f, err := Open(path, nil)
	require.NoError(t, err)

	writeFile(t, path, "{broken")
	_, err = f.Reload()
	require.Error(t, err)

	v, ok := f.String("network.IDN.restriction_profile")
	assert.True(t, ok)
	assert.Equal(t, "high", v)
}

func TestChangedKeys(t *testing.T) {
	prev := map[string]string{"a": "1", "b": "2", "c": "3"}
	next := map[string]string{"a": "1", "b": "20", "d": "4"}
	assert.Equal(t, []string{"b", "c", "d"}, changedKeys(prev, next))
	assert.Equal(t, []string{"a"}, changedKeys(nil, map[string]string{"a": ""}))
	assert.Empty(t, changedKeys(prev, prev))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "x", stringify("x"))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "42", stringify(42))
	assert.Equal(t, "a,1,b", stringify([]any{"a", 1, "b"}))
}

type keyRecorder struct {
	mu   sync.Mutex
	keys map[string]int
}

func (r *keyRecorder) record(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keys == nil {
		r.keys = make(map[string]int)
	}
	r.keys[key]++
}

func (r *keyRecorder) seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key] > 0
}

func TestWatch_EmitsChangedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	writeFile(t, path, yamlPrefs)
	f, err := Open(path, nil)
	require.NoError(t, err)

	var rec keyRecorder
	require.NoError(t, f.Watch(rec.record))

	replaceFile(t, path, `network:
  IDN:
    restriction_profile: moderate
    extra_blocked_chars: [U+00E4, ö]
  IDN_show_punycode: true
`)
	require.Eventually(t, func() bool {
		return rec.seen("network.IDN.restriction_profile")
	}, 5*time.Second, 20*time.Millisecond)

	v, _ := f.String("network.IDN.restriction_profile")
	assert.Equal(t, "moderate", v)
	assert.False(t, rec.seen("network.IDN_show_punycode"))
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.txt")
	writeFile(t, path, "U+00E4\n")

	var rec keyRecorder
	require.NoError(t, WatchFile(path, "network.IDN.blocklist", nil, rec.record))

	replaceFile(t, path, "U+00F6\n")
	require.Eventually(t, func() bool {
		return rec.seen("network.IDN.blocklist")
	}, 5*time.Second, 20*time.Millisecond)
}
