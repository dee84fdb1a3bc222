package memory

import (
	"github.com/Analog-Labs/evm-interpreter/helper/hex"
	"github.com/Analog-Labs/evm-interpreter/storage"
	"github.com/hashicorp/go-hclog"
)

// NewMemoryStorage creates a new in-memory storage reference
func NewMemoryStorage(logger hclog.Logger) (*storage.Storage, error) {
	db := &memoryKV{db: map[string][]byte{}}

	return storage.NewKeyValueStorage(logger, db), nil
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	db map[string][]byte
}

func (m *memoryKV) Set(p []byte, v []byte) error {
	m.db[hex.EncodeToString(p)] = v

	return nil
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	v, ok := m.db[hex.EncodeToString(p)]
	if !ok {
		return nil, false, nil
	}

	return v, true, nil
}

func (m *memoryKV) Close() error {
	return nil
}
