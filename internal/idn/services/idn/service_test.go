package idn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/bloom"
)

// mapPrefs is a concurrency-safe in-memory Prefs.
type mapPrefs struct {
	mu sync.RWMutex
	m  map[string]string
}

func newMapPrefs(m map[string]string) *mapPrefs {
	p := &mapPrefs{m: make(map[string]string)}
	for k, v := range m {
		p.m[k] = v
	}
	return p
}

func (p *mapPrefs) String(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.m[key]
	return v, ok
}

func (p *mapPrefs) Set(key, value string) {
	p.mu.Lock()
	p.m[key] = value
	p.mu.Unlock()
}

type mockPrefs struct{ mock.Mock }

func (m *mockPrefs) String(key string) (string, bool) {
	args := m.Called(key)
	return args.String(0), args.Bool(1)
}

// fakeSource returns whatever it is currently set to.
type fakeSource struct {
	mu     sync.Mutex
	ranges []domain.BlocklistRange
	err    error
	calls  int
}

func (f *fakeSource) Load(context.Context) ([]domain.BlocklistRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ranges, f.err
}

func (f *fakeSource) set(ranges []domain.BlocklistRange, err error) {
	f.mu.Lock()
	f.ranges, f.err = ranges, err
	f.mu.Unlock()
}

func newTestService(t *testing.T, prefs map[string]string) *Service {
	t.Helper()
	return NewService(Options{Prefs: newMapPrefs(prefs), BloomFactory: bloom.NewFactory()})
}

func withProfile(profile string) map[string]string {
	return map[string]string{PrefRestrictionProfile: profile}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Options{})
	st := svc.Stats()
	assert.Equal(t, domain.ASCIIOnly, st.Profile)
	assert.False(t, st.ShowPunycode)
	want, err := blocklist.Build(blocklist.Layers{Base: blocklist.DefaultRanges()}, svc.encodeScopeTLD)
	require.NoError(t, err)
	assert.Equal(t, len(want), st.Ranges)
	assert.False(t, st.Prefilter)
	assert.Equal(t, DefaultCacheSize, st.Cache.Capacity)
}

func TestPrefsChanged_ReadsOnlyTheNamedPref(t *testing.T) {
	prefs := new(mockPrefs)
	prefs.On("String", PrefRestrictionProfile).Return("high", true).Once()
	prefs.On("String", PrefRestrictionProfile).Return("moderate", true).Once()
	prefs.On("String", mock.Anything).Return("", false)

	svc := NewService(Options{Prefs: prefs})
	assert.Equal(t, domain.HighlyRestrictive, svc.Stats().Profile)
	prefs.AssertNumberOfCalls(t, "String", 4)

	svc.PrefsChanged(PrefRestrictionProfile)
	assert.Equal(t, domain.ModeratelyRestrictive, svc.Stats().Profile)
	prefs.AssertNumberOfCalls(t, "String", 5)

	svc.PrefsChanged("browser.something.else")
	prefs.AssertNumberOfCalls(t, "String", 5)
}

func TestPrefsChanged_Profile(t *testing.T) {
	prefs := newMapPrefs(withProfile("high"))
	svc := NewService(Options{Prefs: prefs})
	assert.Equal(t, domain.HighlyRestrictive, svc.Stats().Profile)

	prefs.Set(PrefRestrictionProfile, "nonsense")
	svc.PrefsChanged(PrefRestrictionProfile)
	assert.Equal(t, domain.ASCIIOnly, svc.Stats().Profile)
}

func TestPrefsChanged_ShowPunycode(t *testing.T) {
	prefs := newMapPrefs(map[string]string{PrefShowPunycode: "true"})
	svc := NewService(Options{Prefs: prefs})
	assert.True(t, svc.Stats().ShowPunycode)

	prefs.Set(PrefShowPunycode, "not-a-bool")
	svc.PrefsChanged(PrefShowPunycode)
	assert.False(t, svc.Stats().ShowPunycode)
}

func TestPrefsChanged_ExtraChars(t *testing.T) {
	prefs := newMapPrefs(withProfile("high"))
	svc := NewService(Options{Prefs: prefs})
	require.True(t, svc.IsLabelSafe("bücher", "de"))
	require.False(t, svc.IsLabelSafe("ðing", "com"))

	prefs.Set(PrefExtraBlockedChars, "ü")
	svc.PrefsChanged(PrefExtraBlockedChars)
	assert.False(t, svc.IsLabelSafe("bücher", "de"))

	prefs.Set(PrefExtraAllowedChars, "U+00F0")
	svc.PrefsChanged(PrefExtraAllowedChars)
	assert.True(t, svc.IsLabelSafe("ðing", "com"))

	// an unparsable value keeps the previous list
	prefs.Set(PrefExtraBlockedChars, "U+ZZZZ")
	svc.PrefsChanged(PrefExtraBlockedChars)
	assert.False(t, svc.IsLabelSafe("bücher", "de"))

	// allowed wins over blocked
	prefs.Set(PrefExtraAllowedChars, "üð")
	svc.PrefsChanged(PrefExtraAllowedChars)
	assert.True(t, svc.IsLabelSafe("bücher", "de"))
}

func TestPrefsChanged_BlocklistSource(t *testing.T) {
	src := &fakeSource{err: errors.New("unreadable")}
	svc := NewService(Options{Prefs: newMapPrefs(withProfile("high")), Blocklist: src})
	want, err := blocklist.Build(blocklist.Layers{Base: blocklist.DefaultRanges()}, svc.encodeScopeTLD)
	require.NoError(t, err)
	assert.Equal(t, len(want), svc.Stats().Ranges, "defaults when the source fails at start")

	src.set([]domain.BlocklistRange{{Low: 0x00FC, High: 0x00FC}}, nil)
	svc.PrefsChanged(PrefBlocklist)
	assert.Equal(t, 1, svc.Stats().Ranges)
	assert.False(t, svc.IsLabelSafe("bücher", "de"))

	src.set(nil, errors.New("unreadable again"))
	svc.PrefsChanged(PrefBlocklist)
	assert.Equal(t, 1, svc.Stats().Ranges, "previous ranges stay in effect")
	assert.Equal(t, 3, src.calls)
}

func TestPrefsChanged_FreshCacheOnlyWhenVerdictsChange(t *testing.T) {
	prefs := newMapPrefs(withProfile("high"))
	svc := NewService(Options{Prefs: prefs})
	svc.IsLabelSafe("bücher", "de")
	svc.IsLabelSafe("bücher", "de")
	require.Equal(t, uint64(1), svc.Stats().Cache.Hits)

	prefs.Set(PrefShowPunycode, "true")
	svc.PrefsChanged(PrefShowPunycode)
	assert.Equal(t, uint64(1), svc.Stats().Cache.Hits, "show_punycode does not affect verdicts")

	prefs.Set(PrefRestrictionProfile, "moderate")
	svc.PrefsChanged(PrefRestrictionProfile)
	st := svc.Stats().Cache
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Size)
}

func TestNewService_CacheFactoryError(t *testing.T) {
	svc := NewService(Options{
		Prefs:    newMapPrefs(withProfile("high")),
		NewCache: func(int) (blocklist.VerdictCache, error) { return nil, errors.New("no cache") },
	})
	assert.True(t, svc.IsLabelSafe("bücher", "de"))
	assert.Equal(t, 0, svc.Stats().Cache.Capacity)
}

// Each conversion must see one whole snapshot: with exactly one of two
// characters blocked at any time, exactly one of the two labels stays ACE.
func TestService_ConcurrentSwapNeverTorn(t *testing.T) {
	prefs := newMapPrefs(map[string]string{
		PrefRestrictionProfile: "high",
		PrefExtraBlockedChars:  "ä",
	})
	svc := NewService(Options{Prefs: prefs, BloomFactory: bloom.NewFactory()})

	input, err := svc.UTF8ToACE("bär.böse.de", domain.ForDNS)
	require.NoError(t, err)
	labels := strings.Split(input, ".")
	require.Len(t, labels, 3)
	wantA := labels[0] + ".böse.de"
	wantB := "bär." + labels[1] + ".de"

	const readers = 8
	const iterations = 500
	var wg sync.WaitGroup
	done := make(chan struct{})
	errs := make(chan string, readers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < iterations; i++ {
			if i%2 == 0 {
				prefs.Set(PrefExtraBlockedChars, "ö")
			} else {
				prefs.Set(PrefExtraBlockedChars, "ä")
			}
			svc.PrefsChanged(PrefExtraBlockedChars)
		}
	}()

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				out, err := svc.ACEToUTF8(input, domain.ForUI, "")
				if err != nil || (out != wantA && out != wantB) {
					errs <- out
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for out := range errs {
		t.Errorf("torn or failed conversion: %q", out)
	}
}
