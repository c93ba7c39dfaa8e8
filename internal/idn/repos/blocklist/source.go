package blocklist

import (
	"context"
	"errors"
	"slices"

	"github.com/haukened/rr-idn/internal/idn/common/clock"
	"github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
)

// ErrNoRanges is returned by a CachedSource when neither the primary source
// nor the store can provide ranges.
var ErrNoRanges = errors.New("no blocklist ranges available")

// StaticSource always yields the same ranges.
type StaticSource []domain.BlocklistRange

// Load returns a copy of the static ranges.
func (s StaticSource) Load(context.Context) ([]domain.BlocklistRange, error) {
	return slices.Clone([]domain.BlocklistRange(s)), nil
}

// DefaultSource yields DefaultRanges.
func DefaultSource() Source { return StaticSource(DefaultRanges()) }

// CachedSource reads from a primary source and records every successful
// read in a Store. When the primary fails, the last saved ranges are used.
type CachedSource struct {
	primary Source
	store   Store
	clock   clock.Clock
	logger  log.Logger
}

// NewCachedSource wires a primary source to a store. clk and logger may be nil.
func NewCachedSource(primary Source, store Store, clk clock.Clock, logger log.Logger) *CachedSource {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &CachedSource{primary: primary, store: store, clock: clk, logger: logger}
}

// Load reads the primary source, persisting the result. If the primary
// fails, the store's last snapshot is returned instead.
func (s *CachedSource) Load(ctx context.Context) ([]domain.BlocklistRange, error) {
	ranges, err := s.primary.Load(ctx)
	if err == nil {
		version := s.store.Stats().Version + 1
		if serr := s.store.Save(ranges, version, s.clock.Now().Unix()); serr != nil {
			s.logger.Warn(map[string]any{"error": serr.Error()}, "blocklist_store_save_failed")
		} else {
			s.logger.Debug(map[string]any{"ranges": len(ranges), "version": version}, "blocklist_store_saved")
		}
		return ranges, nil
	}
	s.logger.Warn(map[string]any{"error": err.Error()}, "blocklist_source_failed")

	stored, serr := s.store.Load()
	if serr != nil {
		return nil, errors.Join(err, serr)
	}
	st := s.store.Stats()
	if st.Version == 0 {
		return nil, errors.Join(err, ErrNoRanges)
	}
	s.logger.Info(map[string]any{"ranges": len(stored), "version": st.Version, "updated": st.UpdatedUnix}, "blocklist_store_fallback")
	return stored, nil
}
