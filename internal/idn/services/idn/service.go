// Package idn converts domain names between Unicode and ACE and decides
// whether a decoded label is safe to display.
package idn

import (
	"context"
	"strconv"
	"sync"

	"github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/gateways/ace"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/lru"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist/parsers"
)

// DefaultCacheSize is the verdict cache capacity used when Options.CacheSize is zero.
const DefaultCacheSize = 4096

// snapshot is one consistent configuration. It is never modified after it
// has been published; PrefsChanged builds a new one and swaps the pointer.
type snapshot struct {
	profile      domain.RestrictionProfile
	showPunycode bool
	table        *blocklist.Table
	cache        blocklist.VerdictCache

	// build inputs, kept so a single preference change can rebuild the table
	base         []domain.BlocklistRange
	extraBlocked []domain.BlocklistRange
	extraAllowed []domain.BlocklistRange
}

// Service is safe for concurrent use. Conversions read one snapshot each;
// PrefsChanged replaces it.
type Service struct {
	mu  sync.RWMutex
	cfg *snapshot

	updateMu sync.Mutex

	prefs     Prefs
	source    blocklist.Source
	codec     ace.Codec
	bloom     blocklist.BloomFactory
	newCache  func(size int) (blocklist.VerdictCache, error)
	cacheSize int
	logger    log.Logger
}

type Options struct {
	Prefs        Prefs
	Blocklist    blocklist.Source
	Codec        ace.Codec
	BloomFactory blocklist.BloomFactory
	NewCache     func(size int) (blocklist.VerdictCache, error)
	CacheSize    int // <0 disables the verdict cache
	Logger       log.Logger
}

// NewService builds a Service and loads every preference once.
func NewService(opts Options) *Service {
	s := &Service{
		prefs:     opts.Prefs,
		source:    opts.Blocklist,
		codec:     opts.Codec,
		bloom:     opts.BloomFactory,
		newCache:  opts.NewCache,
		cacheSize: opts.CacheSize,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.NewNoopLogger()
	}
	if s.prefs == nil {
		s.prefs = noPrefs{}
	}
	if s.source == nil {
		s.source = blocklist.DefaultSource()
	}
	if s.codec == nil {
		s.codec = ace.NewCodec(s.logger)
	}
	if s.newCache == nil {
		s.newCache = lru.New
	}
	if s.cacheSize == 0 {
		s.cacheSize = DefaultCacheSize
	}
	s.cfg = &snapshot{profile: domain.ASCIIOnly, table: blocklist.NewTable(nil, nil, 0), cache: s.freshCache()}
	s.PrefsChanged("")
	return s
}

func (s *Service) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Service) freshCache() blocklist.VerdictCache {
	c, err := s.newCache(s.cacheSize)
	if err != nil {
		s.logger.Warn(map[string]any{"size": s.cacheSize, "error": err.Error()}, "verdict_cache_disabled")
		c, _ = lru.New(0)
	}
	return c
}

// PrefsChanged re-reads the named preference, or all of them for "", and
// installs the resulting configuration. Unknown names are ignored. A value
// that cannot be used is logged and the previous one stays in effect.
func (s *Service) PrefsChanged(name string) {
	all := name == ""
	if !all && !isKnownPref(name) {
		s.logger.Debug(map[string]any{"pref": name}, "pref_ignored")
		return
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	cur := s.snapshot()
	next := *cur
	rebuild := false

	if all || name == PrefRestrictionProfile {
		v, _ := s.prefs.String(PrefRestrictionProfile)
		next.profile = domain.ProfileFromPref(v)
	}
	if all || name == PrefShowPunycode {
		v, ok := s.prefs.String(PrefShowPunycode)
		show, err := strconv.ParseBool(v)
		if ok && err != nil {
			s.logger.Warn(map[string]any{"pref": PrefShowPunycode, "value": v}, "pref_invalid")
		}
		next.showPunycode = ok && err == nil && show
	}
	if all || name == PrefExtraAllowedChars {
		if rs, ok := s.charList(PrefExtraAllowedChars); ok {
			next.extraAllowed, rebuild = rs, true
		}
	}
	if all || name == PrefExtraBlockedChars {
		if rs, ok := s.charList(PrefExtraBlockedChars); ok {
			next.extraBlocked, rebuild = rs, true
		}
	}
	if all || name == PrefBlocklist {
		base, err := s.source.Load(context.Background())
		switch {
		case err == nil:
			next.base = base
		case next.base == nil:
			s.logger.Warn(map[string]any{"error": err.Error()}, "blocklist_source_failed_using_defaults")
			next.base = blocklist.DefaultRanges()
		default:
			s.logger.Warn(map[string]any{"error": err.Error()}, "blocklist_source_failed_keeping_previous")
		}
		rebuild = true
	}

	if rebuild {
		ranges, err := blocklist.Build(blocklist.Layers{
			Base:    next.base,
			Blocked: next.extraBlocked,
			Allowed: next.extraAllowed,
		}, s.encodeScopeTLD)
		if err != nil {
			s.logger.Warn(map[string]any{"error": err.Error()}, "blocklist_build_failed")
			next.base, next.extraBlocked, next.extraAllowed = cur.base, cur.extraBlocked, cur.extraAllowed
		} else {
			next.table = blocklist.NewTable(ranges, s.bloom, blocklist.DefaultFPRate)
		}
	}
	// verdicts depend on the profile and the table only
	if next.profile != cur.profile || next.table != cur.table {
		next.cache = s.freshCache()
	}

	s.mu.Lock()
	s.cfg = &next
	s.mu.Unlock()

	s.logger.Info(map[string]any{
		"pref":          name,
		"profile":       next.profile.String(),
		"show_punycode": next.showPunycode,
		"ranges":        next.table.Len(),
	}, "idn_config_swapped")
}

// charList reads an extra-characters preference. ok is false when the value
// does not parse, so the caller keeps the previous list.
func (s *Service) charList(key string) ([]domain.BlocklistRange, bool) {
	v, _ := s.prefs.String(key)
	rs, err := parsers.ParseCharList(v)
	if err != nil {
		s.logger.Warn(map[string]any{"pref": key, "error": err.Error()}, "pref_invalid")
		return nil, false
	}
	return rs, true
}

// Stats describes the active configuration.
type Stats struct {
	Profile      domain.RestrictionProfile
	ShowPunycode bool
	Ranges       int
	Prefilter    bool
	Cache        blocklist.CacheStats
}

// Stats reports the active snapshot's configuration and cache metrics.
func (s *Service) Stats() Stats {
	cfg := s.snapshot()
	return Stats{
		Profile:      cfg.profile,
		ShowPunycode: cfg.showPunycode,
		Ranges:       cfg.table.Len(),
		Prefilter:    cfg.table.HasPrefilter(),
		Cache:        cfg.cache.Stats(),
	}
}
