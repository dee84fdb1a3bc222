package storage

import (
	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/hashicorp/go-hclog"
)

// KV is the raw persistent capability the interpreter borrows from its
// embedder. The interpreter never owns the store, it only writes through
// whatever implementation the caller designated.
type KV interface {
	// Set sets the key-value pair
	Set(k []byte, v []byte) error

	// Get returns the value for the key, and a flag for its presence
	Get(k []byte) ([]byte, bool, error)

	// Close closes the underlying store
	Close() error
}

// Storage wraps a KV with slot-typed accessors
type Storage struct {
	logger hclog.Logger
	db     KV
}

// NewKeyValueStorage creates a slot-typed storage over the given KV
func NewKeyValueStorage(logger hclog.Logger, db KV) *Storage {
	return &Storage{
		logger: logger.Named("storage"),
		db:     db,
	}
}

func slotKey(addr types.Address, key types.Hash) []byte {
	b := make([]byte, 0, types.AddressLength+types.HashLength)
	b = append(b, addr.Bytes()...)
	b = append(b, key.Bytes()...)

	return b
}

// GetStorage returns the value of the slot; uninitialized slots read as the
// zero hash
func (s *Storage) GetStorage(addr types.Address, key types.Hash) types.Hash {
	data, ok, err := s.db.Get(slotKey(addr, key))
	if err != nil {
		s.logger.Error("failed to read storage slot", "key", key, "err", err)

		return types.ZeroHash
	}

	if !ok {
		return types.ZeroHash
	}

	return types.BytesToHash(data)
}

// SetStorage writes the slot value
func (s *Storage) SetStorage(addr types.Address, key types.Hash, value types.Hash) error {
	return s.db.Set(slotKey(addr, key), value.Bytes())
}

// Close closes the underlying KV
func (s *Storage) Close() error {
	return s.db.Close()
}
