package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltDBStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")

	store, err := NewBoltDBStorage(path, hclog.NewNullLogger())
	require.NoError(t, err)

	addr := types.StringToAddress("0x01")
	key := types.StringToHash("0x02")
	value := types.StringToHash("0xAA")

	assert.Equal(t, types.ZeroHash, store.GetStorage(addr, key))

	require.NoError(t, store.SetStorage(addr, key, value))
	require.NoError(t, store.Close())

	// the slot survives a reopen
	store, err = NewBoltDBStorage(path, hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Equal(t, value, store.GetStorage(addr, key))
	assert.NoError(t, store.Close())
}
