package boltdb

import (
	"github.com/Analog-Labs/evm-interpreter/storage"
	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

var slotsBucket = []byte("slots")

// NewBoltDBStorage creates the new storage reference with bbolt
func NewBoltDBStorage(path string, logger hclog.Logger) (*storage.Storage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(slotsBucket)

		return err
	})
	if err != nil {
		return nil, err
	}

	kv := &boltDBKV{db: db}

	return storage.NewKeyValueStorage(logger, kv), nil
}

// boltDBKV is the bbolt implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (b *boltDBKV) Set(p []byte, v []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(slotsBucket).Put(p, v)
	})
}

func (b *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(slotsBucket).Get(p)
		if v != nil {
			value = append(value, v...)
			found = true
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return value, found, nil
}

func (b *boltDBKV) Close() error {
	return b.db.Close()
}
