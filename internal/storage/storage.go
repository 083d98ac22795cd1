package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"

	"github.com/hailam/chessmagic/internal/magic"
)

var (
	// ErrNotFound is returned when no constants are stored for a class and width.
	ErrNotFound = errors.New("storage: magics not found")
	// ErrCorrupt is returned when a stored record fails its checksum.
	ErrCorrupt = errors.New("storage: corrupt record")
)

const keyPrefix = "magics/"

// MagicRecord is one class worth of magic constants.
type MagicRecord struct {
	Class     string     `json:"class"`
	Bits      uint       `json:"bits"`
	Seed      uint64     `json:"seed"`
	RunID     string     `json:"run_id,omitempty"`
	Magics    [64]uint64 `json:"magics"`
	CreatedAt time.Time  `json:"created_at"`
	Checksum  uint64     `json:"checksum"`
}

// Sum hashes the fields that identify the constants.
func (r *MagicRecord) Sum() uint64 {
	d := xxhash.New()
	d.WriteString(r.Class)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.Bits))
	d.Write(buf[:])
	for _, m := range r.Magics {
		binary.LittleEndian.PutUint64(buf[:], m)
		d.Write(buf[:])
	}
	return d.Sum64()
}

func recordKey(class magic.Class, bits uint) []byte {
	return []byte(fmt.Sprintf("%s%s/%d", keyPrefix, class, bits))
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log logr.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger routes badger's own logging to log.
func WithLogger(log logr.Logger) Option {
	return func(s *Storage) { s.log = log }
}

// NewStorage opens the store in the default database directory.
func NewStorage(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

// Open opens or creates a store in dir.
func Open(dir string, opts ...Option) (*Storage, error) {
	s := &Storage{log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	bopts := badger.DefaultOptions(dir)
	bopts.Logger = badgerLogger{s.log.WithName("badger")}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	s.db = db
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRecord stores rec under its class and width, filling in the checksum
// and creation time.
func (s *Storage) SaveRecord(rec *MagicRecord) error {
	class, err := magic.ParseClass(rec.Class)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Checksum = rec.Sum()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(class, rec.Bits), data)
	})
}

// LoadRecord returns the stored record for a class and width.
func (s *Storage) LoadRecord(class magic.Class, bits uint) (*MagicRecord, error) {
	rec := new(MagicRecord)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(class, bits))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, rec); err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if rec.Class != class.String() || rec.Bits != bits || rec.Checksum != rec.Sum() {
		return nil, fmt.Errorf("%w: %s/%d", ErrCorrupt, class, bits)
	}
	return rec, nil
}

// Records lists every stored record.
func (s *Storage) Records() ([]*MagicRecord, error) {
	var recs []*MagicRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rec := new(MagicRecord)
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCorrupt, it.Item().Key(), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

// Delete removes the record for a class and width.
func (s *Storage) Delete(class magic.Class, bits uint) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(class, bits))
	})
}

// SaveMagics stores bare constants.
func (s *Storage) SaveMagics(class magic.Class, bits uint, magics [64]uint64) error {
	return s.SaveRecord(&MagicRecord{Class: class.String(), Bits: bits, Magics: magics})
}

// LoadMagics returns the stored constants for a class and width.
func (s *Storage) LoadMagics(class magic.Class, bits uint) ([64]uint64, error) {
	rec, err := s.LoadRecord(class, bits)
	if err != nil {
		return [64]uint64{}, err
	}
	return rec.Magics, nil
}

// badgerLogger adapts logr to badger.Logger. Badger is chatty at info level,
// so its info and debug output go to V(1) and V(2).
type badgerLogger struct {
	log logr.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(nil, msg(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Info(msg(format, args))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.V(1).Info(msg(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.V(2).Info(msg(format, args))
}

func msg(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
