// Package store provides a reference implementation of the sync
// subsystem's external collaborator data store (spec.md §6): insert,
// delete, status lookup, and full enumeration of a content-addressed
// object repository. The engine never imports this package directly —
// it depends only on the Store interface — but a running daemon needs a
// concrete one, and this is where the domain stack's storage-layer
// dependencies (goleveldb, snappy, fastcache) get exercised.
//
// Grounded on ethdb/relaydb.Database, which wraps a primary/secondary
// pair of KeyValueStores and serves Get from primary first, falling
// back to secondary on miss, counting hits/misses along the way. Here
// the primary is a fastcache hot-read cache and the secondary is a
// snappy-compressed goleveldb database, which is also the system of
// record: every write goes to goleveldb, and fastcache is populated
// lazily on read and overwritten with the new record on write.
package store

import (
	"errors"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
)

// Status mirrors the external store's getDataStatus contract (spec.md §6).
type Status uint8

const (
	StatusNone Status = iota
	StatusExisted
	StatusDeleted
	StatusInserted
)

// Store is the narrow interface the sync engine depends on.
type Store interface {
	InsertData(name string, value []byte) error
	DeleteData(name string) error
	GetDataStatus(name string) Status
	DataEnumeration(f func(name string, status Status))
}

var errClosed = errors.New("store: closed")

const (
	recStatusByte = 0 // offset of the status byte in a stored record
	recPayload    = 1 // offset payload starts at
)

// LevelStore is the goleveldb + snappy + fastcache reference Store.
type LevelStore struct {
	mu        sync.RWMutex
	db        *leveldb.DB
	hot       *fastcache.Cache
	closed    bool
	hits      int
	misses    int
}

// Open opens (creating if needed) a LevelStore at dir, with a hot cache
// of cacheBytes (0 disables the cache).
func Open(dir string, cacheBytes int) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	var hot *fastcache.Cache
	if cacheBytes > 0 {
		hot = fastcache.New(cacheBytes)
	}
	return &LevelStore{db: db, hot: hot}, nil
}

// Close releases the underlying database.
func (s *LevelStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func encodeRecord(status Status, payload []byte) []byte {
	if len(payload) == 0 {
		return []byte{byte(status)}
	}
	compressed := snappy.Encode(nil, payload)
	return append([]byte{byte(status)}, compressed...)
}

func decodeRecord(raw []byte) (status Status, payload []byte, err error) {
	if len(raw) < 1 {
		return StatusNone, nil, errors.New("store: corrupt record")
	}
	status = Status(raw[recStatusByte])
	if len(raw) == recPayload {
		return status, nil, nil
	}
	payload, err = snappy.Decode(nil, raw[recPayload:])
	return status, payload, err
}

// InsertData stores value under name with status Inserted, replacing
// any cached record with the new one.
func (s *LevelStore) InsertData(name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	rec := encodeRecord(StatusInserted, value)
	if err := s.db.Put([]byte(name), rec, nil); err != nil {
		return err
	}
	if s.hot != nil {
		s.hot.Set([]byte(name), rec)
	}
	return nil
}

// Seed loads pre-existing data with status Existed — used to simulate a
// peer that already held an object before the current engine session,
// distinguishing "had it all along" from "fetched it just now" for
// snapshot comparison purposes (spec.md §4.7 snapshot response handling).
func (s *LevelStore) Seed(name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	rec := encodeRecord(StatusExisted, value)
	if err := s.db.Put([]byte(name), rec, nil); err != nil {
		return err
	}
	if s.hot != nil {
		s.hot.Set([]byte(name), rec)
	}
	return nil
}

// DeleteData marks name deleted. The row is kept (with an empty
// payload) so GetDataStatus can distinguish "deleted" from "never
// existed".
func (s *LevelStore) DeleteData(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	rec := encodeRecord(StatusDeleted, nil)
	if err := s.db.Put([]byte(name), rec, nil); err != nil {
		return err
	}
	if s.hot != nil {
		s.hot.Set([]byte(name), rec)
	}
	return nil
}

// GetDataStatus returns the current status of name.
func (s *LevelStore) GetDataStatus(name string) Status {
	raw, ok := s.lookup(name)
	if !ok {
		return StatusNone
	}
	status, _, err := decodeRecord(raw)
	if err != nil {
		return StatusNone
	}
	return status
}

// Get returns the payload for name, if it has one (Existed/Inserted).
func (s *LevelStore) Get(name string) ([]byte, bool) {
	raw, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	_, payload, err := decodeRecord(raw)
	if err != nil || payload == nil {
		return nil, false
	}
	return payload, true
}

func (s *LevelStore) lookup(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	key := []byte(name)
	if s.hot != nil {
		if v, ok := s.hot.HasGet(nil, key); ok {
			s.hits++
			return v, true
		}
	}
	s.misses++
	v, err := s.db.Get(key, nil)
	if err != nil {
		return nil, false
	}
	if s.hot != nil {
		s.hot.Set(key, v)
	}
	return v, true
}

// Efficiency reports hot-cache hits and misses, in the spirit of
// ethdb/relaydb.Database.Efficiency.
func (s *LevelStore) Efficiency() (hits, misses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

// DataEnumeration invokes f(name, status) for every row, in
// binary-alphabetical key order.
func (s *LevelStore) DataEnumeration(f func(name string, status Status)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		status, _, err := decodeRecord(iter.Value())
		if err != nil {
			continue
		}
		f(string(iter.Key()), status)
	}
}

var _ Store = (*LevelStore)(nil)
