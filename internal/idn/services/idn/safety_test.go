package idn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLabelSafe_ASCIIUnderEveryProfile(t *testing.T) {
	for _, profile := range []string{"ascii", "high", "moderate", ""} {
		svc := newTestService(t, withProfile(profile))
		assert.True(t, svc.IsLabelSafe("example", "com"), profile)
		assert.True(t, svc.IsLabelSafe("xn--bcher-kva", "com"), profile)
		assert.True(t, svc.IsLabelSafe("a-b-1", "com"), profile)
	}
}

func TestIsLabelSafe_ASCIIOnlyRejectsUnicode(t *testing.T) {
	svc := newTestService(t, withProfile("ascii"))
	assert.False(t, svc.IsLabelSafe("bücher", "de"))
	assert.False(t, svc.IsLabelSafe("例え", "jp"))
}

func TestIsLabelSafe(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		tld      string
		high     bool
		moderate bool
	}{
		{"latin", "bücher", "de", true, true},
		{"cyrillic", "пример", "com", true, true},
		{"greek", "παράδειγμα", "com", true, true},
		{"japanese mix", "abc例えカ", "jp", true, true},
		{"korean mix", "abc한국", "kr", true, true},
		{"latin cyrillic", "раураl", "com", false, false},
		{"greek cyrillic", "αа", "com", false, false},
		{"latin arabic", "abcمثال", "com", false, true},
		{"latin greek", "bücherα", "com", false, false},
		{"restricted script", "ᚠᚢ", "com", false, false},
		{"unassigned", "a\u0378", "com", false, false},
		{"symbol", "a♥", "com", false, false},
		{"zero width space", "a\u200bb", "com", false, false},

		{"one numbering system", "bücher٣", "com", false, true},
		{"two numbering systems", "bücher٣3", "com", false, false},
		{"arabic digits only", "٣٣", "com", true, true},
		{"mixed digits only", "٣3", "com", false, false},

		{"default blocklist", "aǃb", "com", false, false},
		{"eth blocked under com", "ðing", "com", false, false},
		{"eth allowed under is", "ðing", "is", true, true},
		{"thorn allowed under fo", "þing", "fo", true, true},
		{"schwa allowed under az", "əlif", "az", true, true},
		{"schwa blocked under com", "əlif", "com", false, false},

		{"cyrillic lookalikes under com", "раура", "com", false, false},
		{"cyrillic lookalikes under ru", "раура", "ru", true, true},
		{"cyrillic lookalikes under rf", "раура", "рф", true, true},
		{"cyrillic lookalikes with digits", "раура1", "com", false, false},

		{"middle dot between l", "col\u00b7lecci\u00f3", "cat", true, true},
		{"middle dot wrong before", "co\u00b7lecci\u00f3", "cat", false, false},
		{"middle dot wrong after", "col\u00b7ecci\u00f3", "cat", false, false},
		{"middle dot at end", "col\u00b7", "cat", false, false},

		{"prolonged mark after katakana", "ラーメン", "jp", true, true},
		{"repeated prolonged mark", "ラーー", "jp", true, true},
		{"prolonged mark after hiragana", "らー", "jp", true, true},
		{"prolonged mark after latin", "aー", "jp", false, false},
		{"prolonged mark first", "ーラ", "jp", false, false},
		{"hiragana iteration", "かゝ", "jp", true, true},
		{"hiragana iteration after katakana", "カゝ", "jp", false, false},
		{"katakana iteration", "カヽ", "jp", true, true},
		{"katakana iteration after hiragana", "かヽ", "jp", false, false},

		{"combining acute", "e\u0301", "com", true, true},
		{"repeated mark", "e\u0301\u0301", "com", false, false},
		{"dot above after i", "i\u0307x", "com", false, false},
		{"dot above after l", "l\u0307x", "com", false, false},
		{"mark on dotless i", "\u0131\u0301", "com", false, false},
		{"mark on dotless j", "\u0237\u0301", "com", false, false},
	}
	high := newTestService(t, withProfile("high"))
	moderate := newTestService(t, withProfile("moderate"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.high, high.IsLabelSafe(tt.label, tt.tld), "high")
			assert.Equal(t, tt.moderate, moderate.IsLabelSafe(tt.label, tt.tld), "moderate")
		})
	}
}

func TestIsLabelSafe_CachedVerdict(t *testing.T) {
	svc := newTestService(t, withProfile("high"))
	assert.False(t, svc.IsLabelSafe("ðing", "com"))
	assert.False(t, svc.IsLabelSafe("ðing", "com"))
	assert.True(t, svc.IsLabelSafe("ðing", "is"))

	st := svc.Stats().Cache
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
	assert.Equal(t, 2, st.Size)
}
