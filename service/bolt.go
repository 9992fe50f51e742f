package service

import (
	"context"
	"log"
	"time"

	"go.etcd.io/bbolt"
)

// SpecsBucket is the BoltDB bucket that holds documents.
var SpecsBucket = []byte("specs")

// BoltStore is a Store backed by a BoltDB file.
type BoltStore struct {
	Debug    bool
	filename string
	db       *bbolt.DB
}

func NewBoltStore(filename string) *BoltStore {
	return &BoltStore{
		filename: filename,
	}
}

// Open opens (or creates) the database file and makes sure
// SpecsBucket exists.
func (s *BoltStore) Open(ctx context.Context) error {
	opts := &bbolt.Options{
		Timeout: time.Second,
	}

	db, err := bbolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(SpecsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltStore."+format, args...)
	}
}

func (s *BoltStore) Put(ctx context.Context, name string, src []byte) error {
	s.logf("Put %s (%d bytes)", name, len(src))
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(SpecsBucket).Put([]byte(name), src)
	})
}

func (s *BoltStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.logf("Get %s", name)
	var acc []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		src := tx.Bucket(SpecsBucket).Get([]byte(name))
		if src == nil {
			return NotFound
		}
		// The value is only valid during the transaction.
		acc = make([]byte, len(src))
		copy(acc, src)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *BoltStore) Delete(ctx context.Context, name string) error {
	s.logf("Delete %s", name)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(SpecsBucket).Delete([]byte(name))
	})
}

func (s *BoltStore) List(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(SpecsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("List found %d", len(acc))
	return acc, nil
}
