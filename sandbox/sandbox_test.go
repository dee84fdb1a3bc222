package sandbox

import (
	"errors"
	"testing"

	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/state/runtime/evm"
	"github.com/Analog-Labs/evm-interpreter/storage/memory"
	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSandbox(t *testing.T, config *Config) *Sandbox {
	t.Helper()

	store, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	return NewSandbox(hclog.NewNullLogger(), store, config)
}

func TestSandboxBootstrapRoundTrip(t *testing.T) {
	box := newTestSandbox(t, nil)

	key := types.StringToHash("0x01")
	value := types.StringToHash("0xAA")

	require.NoError(t, box.BootstrapStore(key, value))

	got, err := box.BootstrapLoad(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestSandboxBootstrapBudgetTooLow(t *testing.T) {
	box := newTestSandbox(t, &Config{GasLimit: 10})

	err := box.BootstrapStore(types.StringToHash("0x01"), types.StringToHash("0xAA"))
	assert.ErrorIs(t, err, ErrBudgetTooLow)

	_, err = box.BootstrapLoad(types.StringToHash("0x01"))
	assert.ErrorIs(t, err, ErrBudgetTooLow)
}

func TestSandboxStaticCallRejectsWrites(t *testing.T) {
	box := newTestSandbox(t, nil)

	_, err := box.StaticCall(storeProgram(types.StringToHash("0x01"), types.StringToHash("0xAA")))
	require.ErrorIs(t, err, runtime.ErrInvalidInstruction)

	// nothing reached the store
	got, err := box.BootstrapLoad(types.StringToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, types.ZeroHash, got)
}

func TestSandboxDelegatedCallReportsGas(t *testing.T) {
	box := newTestSandbox(t, nil)

	_, err := box.DelegatedCall([]byte{evm.PUSH1, 0x01, evm.PUSH1, 0x02, evm.ADD})
	require.NoError(t, err)

	assert.Equal(t, uint64(9), box.GasUsed())
}

func TestSandboxRevertReason(t *testing.T) {
	box := newTestSandbox(t, nil)

	// store 0xAA in the last byte of the first memory word and revert
	// with that single byte as the reason
	code := []byte{
		evm.PUSH1, 0xAA, evm.PUSH0, evm.MSTORE,
		evm.PUSH1, 1, evm.PUSH1, 31, evm.REVERT,
	}

	_, err := box.DelegatedCall(code)
	require.Error(t, err)

	var revertErr *RevertError
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, []byte{0xAA}, revertErr.Reason)
	assert.ErrorIs(t, err, runtime.ErrExecutionReverted)
}

func TestSandboxAbortConsumesBudget(t *testing.T) {
	box := newTestSandbox(t, &Config{GasLimit: 5000})

	_, err := box.DelegatedCall([]byte{evm.INVALID})
	require.ErrorIs(t, err, runtime.ErrInvalidInstruction)

	assert.Equal(t, uint64(5000), box.GasUsed())
}

func TestSandboxLogs(t *testing.T) {
	box := newTestSandbox(t, nil)

	code := []byte{
		evm.PUSH1, 0xCC, // topic
		evm.PUSH0, evm.PUSH0, // empty payload
		evm.LOG1,
	}

	_, err := box.DelegatedCall(code)
	require.NoError(t, err)

	logs := box.Logs()
	require.Len(t, logs, 1)
	require.Len(t, logs[0].Topics, 1)
	assert.Equal(t, types.StringToHash("0xCC"), logs[0].Topics[0])
}

func TestSandboxTransientScope(t *testing.T) {
	box := newTestSandbox(t, &Config{Transient: true})

	store := []byte{evm.PUSH1, 0xAA, evm.PUSH1, 0x01, evm.TSTORE}
	load := []byte{
		evm.PUSH1, 0x01, evm.TLOAD,
		evm.PUSH0, evm.MSTORE,
		evm.PUSH1, 32, evm.PUSH0, evm.RETURN,
	}

	_, err := box.DelegatedCall(store)
	require.NoError(t, err)

	// visible across invocations within the scope
	ret, err := box.StaticCall(load)
	require.NoError(t, err)
	assert.Equal(t, types.StringToHash("0xAA"), types.BytesToHash(ret))

	// gone once the scope is closed
	box.CloseScope()

	ret, err = box.StaticCall(load)
	require.NoError(t, err)
	assert.Equal(t, types.ZeroHash, types.BytesToHash(ret))
}

func TestSandboxTransientUnsupported(t *testing.T) {
	box := newTestSandbox(t, nil)

	_, err := box.DelegatedCall([]byte{evm.PUSH0, evm.TLOAD})
	assert.ErrorIs(t, err, runtime.ErrCapabilityUnsupported)
}

func TestProbeTransientStorage(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected TransientSupport
		err      error
	}{
		{
			name:     "supported host",
			config:   &Config{Transient: true},
			expected: TransientSupported,
		},
		{
			name:     "unsupported host",
			config:   nil,
			expected: TransientUnsupported,
		},
		{
			name:     "budget too low to tell",
			config:   &Config{GasLimit: 1},
			expected: TransientIndeterminate,
			err:      runtime.ErrInsufficientProbeBudget,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			box := newTestSandbox(t, tt.config)

			support, err := box.ProbeTransientStorage()

			assert.Equal(t, tt.expected, support)

			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransientSupportString(t *testing.T) {
	assert.Equal(t, "supported", TransientSupported.String())
	assert.Equal(t, "unsupported", TransientUnsupported.String())
	assert.Equal(t, "indeterminate", TransientIndeterminate.String())
}
