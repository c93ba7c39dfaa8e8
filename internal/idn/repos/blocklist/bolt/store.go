package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
)

var (
	bucketRanges = []byte("ranges")
	bucketMeta   = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// rangeHeaderLen is low(4) + high(4) + scope mode(1); the comma-joined
// TLD list follows.
const rangeHeaderLen = 9

// boltStore implements blocklist.Store using bbolt. Ranges are keyed by
// their big-endian position so Load returns them in saved order.
type boltStore struct {
	db *bbolt.DB
}

type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

type bucketDeleter interface {
	DeleteBucket(name []byte) error
}

// seams for tests
var (
	ensureBucketsFn = ensureBuckets
	deleteBucketsFn = deleteBuckets
	saveRangesFn    = saveRanges
	writeMetaFn     = writeMeta
)

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (blocklist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error { return ensureBucketsFn(tx) }); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func ensureBuckets(tx bucketCreator) error {
	for _, name := range [][]byte{bucketRanges, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return nil
}

// deleteBuckets drops the named buckets, ignoring ones that do not exist.
func deleteBuckets(tx bucketDeleter, names ...[]byte) error {
	for _, name := range names {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return fmt.Errorf("delete bucket %s: %w", name, err)
		}
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// Save replaces the stored snapshot with ranges in a single transaction.
func (s *boltStore) Save(ranges []domain.BlocklistRange, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteBucketsFn(tx, bucketRanges, bucketMeta); err != nil {
			return err
		}
		if err := ensureBucketsFn(tx); err != nil {
			return err
		}
		if err := saveRangesFn(tx, ranges); err != nil {
			return err
		}
		return writeMetaFn(tx, version, updatedUnix)
	})
}

func saveRanges(tx *bbolt.Tx, ranges []domain.BlocklistRange) error {
	b := tx.Bucket(bucketRanges)
	key := make([]byte, 8)
	for i, r := range ranges {
		binary.BigEndian.PutUint64(key, uint64(i))
		if err := b.Put(key, encodeRange(r)); err != nil {
			return err
		}
	}
	return nil
}

func writeMeta(tx *bbolt.Tx, version uint64, updatedUnix int64) error {
	b := tx.Bucket(bucketMeta)
	vbuf := make([]byte, 8)
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(vbuf, version)
	binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
	if err := b.Put(keyVersion, vbuf); err != nil {
		return err
	}
	return b.Put(keyUpdated, ubuf)
}

// Load returns the stored ranges in saved order. An empty store yields nil.
func (s *boltStore) Load() ([]domain.BlocklistRange, error) {
	var out []domain.BlocklistRange
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRanges)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			r, err := decodeRange(v)
			if err != nil {
				return fmt.Errorf("range %x: %w", k, err)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *boltStore) Stats() blocklist.StoreStats {
	st := blocklist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketRanges); b != nil {
			st.Ranges = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

func encodeRange(r domain.BlocklistRange) []byte {
	tlds := strings.Join(r.Scope.TLDs, ",")
	v := make([]byte, rangeHeaderLen, rangeHeaderLen+len(tlds))
	binary.BigEndian.PutUint32(v[0:4], uint32(r.Low))
	binary.BigEndian.PutUint32(v[4:8], uint32(r.High))
	v[8] = byte(r.Scope.Mode)
	return append(v, tlds...)
}

func decodeRange(v []byte) (domain.BlocklistRange, error) {
	if len(v) < rangeHeaderLen {
		return domain.BlocklistRange{}, fmt.Errorf("short value (%d bytes)", len(v))
	}
	var tlds []string
	if len(v) > rangeHeaderLen {
		tlds = strings.Split(string(v[rangeHeaderLen:]), ",")
	}
	return domain.NewBlocklistRange(
		rune(binary.BigEndian.Uint32(v[0:4])),
		rune(binary.BigEndian.Uint32(v[4:8])),
		domain.NewTLDScope(domain.ScopeMode(v[8]), tlds),
	)
}

var _ blocklist.Store = (*boltStore)(nil)
