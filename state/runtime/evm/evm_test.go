package evm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/Analog-Labs/evm-interpreter/helper/hex"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type hostSlot struct {
	addr types.Address
	key  types.Hash
}

type mockLog struct {
	addr   types.Address
	topics []types.Hash
	data   []byte
}

// mockHost is a plain in-memory runtime.Host with no journaling: failed
// sub-calls are not rolled back, that behavior belongs to the state package
type mockHost struct {
	storage   map[hostSlot]types.Hash
	warm      map[hostSlot]struct{}
	transient map[types.Hash]types.Hash
	codes     map[types.Address][]byte
	balances  map[types.Address]*big.Int
	txCtx     runtime.TxContext
	logs      []mockLog
}

func newMockHost() *mockHost {
	return &mockHost{
		storage:  map[hostSlot]types.Hash{},
		warm:     map[hostSlot]struct{}{},
		codes:    map[types.Address][]byte{},
		balances: map[types.Address]*big.Int{},
	}
}

func (m *mockHost) GetStorage(addr types.Address, key types.Hash) types.Hash {
	return m.storage[hostSlot{addr, key}]
}

func (m *mockHost) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	m.storage[hostSlot{addr, key}] = value
}

func (m *mockHost) AccessSlot(addr types.Address, key types.Hash) bool {
	s := hostSlot{addr, key}
	if _, ok := m.warm[s]; ok {
		return true
	}

	m.warm[s] = struct{}{}

	return false
}

func (m *mockHost) SupportsTransient() bool {
	return m.transient != nil
}

func (m *mockHost) GetTransientStorage(key types.Hash) types.Hash {
	return m.transient[key]
}

func (m *mockHost) SetTransientStorage(key types.Hash, value types.Hash) {
	m.transient[key] = value
}

func (m *mockHost) GetBalance(addr types.Address) *big.Int {
	if balance, ok := m.balances[addr]; ok {
		return balance
	}

	return big.NewInt(0)
}

func (m *mockHost) GetCode(addr types.Address) []byte {
	return m.codes[addr]
}

func (m *mockHost) GetCodeSize(addr types.Address) int {
	return len(m.codes[addr])
}

func (m *mockHost) GetCodeHash(addr types.Address) types.Hash {
	return types.ZeroHash
}

func (m *mockHost) GetTxContext() runtime.TxContext {
	return m.txCtx
}

func (m *mockHost) GetBlockHash(number int64) types.Hash {
	return types.ZeroHash
}

func (m *mockHost) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	m.logs = append(m.logs, mockLog{addr: addr, topics: topics, data: data})
}

func (m *mockHost) Callx(p *runtime.Program, host runtime.Host) *runtime.ExecutionResult {
	return NewEVM().Run(p, host)
}

func newMockProgram(gas uint64, code []byte, mode runtime.ExecutionMode) *runtime.Program {
	return &runtime.Program{
		Code:  code,
		Gas:   gas,
		Depth: 1,
		Mode:  mode,
		Value: big.NewInt(0),
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gas      uint64
		code     []byte
		mode     runtime.ExecutionMode
		expected *runtime.ExecutionResult
	}{
		{
			name: "should succeed because of no codes",
			gas:  5000,
			code: []byte{},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     5000,
			},
		},
		{
			name: "should succeed and return result",
			gas:  5000,
			code: []byte{
				PUSH1, 0x01, PUSH1, 0x02, ADD,
				PUSH1, 0x00, MSTORE8,
				PUSH1, 0x01, PUSH1, 0x00, RETURN,
			},
			expected: &runtime.ExecutionResult{
				ReturnValue: []byte{0x03},
				GasLeft:     4976,
				GasUsed:     24,
			},
		},
		{
			name: "should fail and consume all gas by stack underflow",
			gas:  5000,
			code: []byte{ADD},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     0,
				GasUsed:     5000,
				Err:         &runtime.StackUnderflowError{StackLen: 0, Required: 2},
			},
		},
		{
			name: "should fail and consume all gas by an unassigned opcode",
			gas:  5000,
			code: []byte{0xEF},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     0,
				GasUsed:     5000,
				Err:         runtime.ErrInvalidInstruction,
			},
		},
		{
			name: "should fail by REVERT and return remaining gas at that time",
			gas:  5000,
			code: []byte{PUSH1, 0x00, PUSH1, 0x00, REVERT},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasUsed:     6,
				// gas consumed for 2 push1 ops
				GasLeft: 4994,
				Err:     errRevert,
			},
		},
		{
			name: "should reject a storage write in read-only mode",
			gas:  5000,
			code: []byte{PUSH1, 0x01, PUSH1, 0x00, SSTORE},
			mode: runtime.ModeReadOnly,
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     0,
				GasUsed:     5000,
				Err:         runtime.ErrInvalidInstruction,
			},
		},
		{
			name: "should fail by a jump outside the marked destinations",
			gas:  5000,
			code: []byte{PUSH1, 0x03, JUMP, STOP},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     0,
				GasUsed:     5000,
				Err:         runtime.ErrInvalidJump,
			},
		},
		{
			// the jump target is the operand byte of a PUSH1 that happens
			// to hold the JUMPDEST value; target validation accepts it
			// because it only inspects the byte at the destination
			name: "should accept a jump into a push operand holding the marker",
			gas:  5000,
			code: []byte{PUSH1, 0x04, JUMP, PUSH1, JUMPDEST},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     4988,
				GasUsed:     12,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			evm := NewEVM()
			host := newMockHost()

			res := evm.Run(newMockProgram(tt.gas, tt.code, tt.mode), host)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestRunReturnsBigEndianWord(t *testing.T) {
	t.Parallel()

	code := []byte{
		PUSH1, 0x05, PUSH1, 0x07, ADD,
		PUSH1, 0x00, MSTORE,
		PUSH1, 32, PUSH1, 0x00, RETURN,
	}

	res := NewEVM().Run(newMockProgram(5000, code, runtime.ModeMutating), newMockHost())

	require.NoError(t, res.Err)
	require.Len(t, res.ReturnValue, 32)

	expected := hex.MustDecodeHex("0x000000000000000000000000000000000000000000000000000000000000000c")
	assert.Equal(t, expected, res.ReturnValue)
}

func TestRunStackOverflow(t *testing.T) {
	t.Parallel()

	code := bytes.Repeat([]byte{PUSH0}, stackSize+1)

	res := NewEVM().Run(newMockProgram(5000, code, runtime.ModeMutating), newMockHost())

	assert.Equal(t, &runtime.StackOverflowError{StackLen: stackSize + 1, Limit: stackSize}, res.Err)
	assert.Zero(t, res.GasLeft)
}

func TestRunTransientUnsupported(t *testing.T) {
	t.Parallel()

	code := []byte{PUSH0, TLOAD}

	res := NewEVM().Run(newMockProgram(5000, code, runtime.ModeMutating), newMockHost())

	assert.ErrorIs(t, res.Err, runtime.ErrCapabilityUnsupported)
	assert.Zero(t, res.GasLeft)
}

// the wraparound property holds end to end, not only at the handler level:
// a synthesized push-push-op-return program yields the reduced result
func TestRunArithmeticProgramProperty(t *testing.T) {
	t.Parallel()

	run := func(rt *rapid.T, op byte) (*big.Int, *big.Int, *big.Int) {
		a := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "b")

		code := append([]byte{PUSH32}, a...)
		code = append(code, PUSH32)
		code = append(code, b...)
		code = append(code,
			op,
			PUSH1, 0x00, MSTORE,
			PUSH1, 32, PUSH1, 0x00, RETURN,
		)

		res := NewEVM().Run(newMockProgram(100000, code, runtime.ModeMutating), newMockHost())
		if res.Err != nil {
			rt.Fatalf("execution failed: %v", res.Err)
		}

		return new(big.Int).SetBytes(a),
			new(big.Int).SetBytes(b),
			new(big.Int).SetBytes(res.ReturnValue)
	}

	t.Run("add", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			a, b, got := run(rt, ADD)

			expected := new(big.Int).Add(a, b)
			expected.Mod(expected, tt256)

			if expected.Cmp(got) != 0 {
				rt.Fatalf("expected %s, got %s", expected, got)
			}
		})
	})

	t.Run("sub", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			// the second push ends up on top, the instruction computes
			// top minus the word below it
			a, b, got := run(rt, SUB)

			expected := new(big.Int).Sub(b, a)
			expected.Mod(expected, tt256)

			if expected.Cmp(got) != 0 {
				rt.Fatalf("expected %s, got %s", expected, got)
			}
		})
	})
}

func TestStaticCallReturnData(t *testing.T) {
	t.Parallel()

	host := newMockHost()

	// the callee returns one memory word holding 42
	host.codes[types.StringToAddress("0x01")] = []byte{
		PUSH1, 42, PUSH0, MSTORE,
		PUSH1, 32, PUSH0, RETURN,
	}

	// the caller forwards into the callee and returns the word it got back
	code := []byte{
		PUSH1, 32, // retSize
		PUSH1, 0x00, // retOffset
		PUSH1, 0x00, // inSize
		PUSH1, 0x00, // inOffset
		PUSH1, 0x01, // address
		PUSH2, 0xFF, 0xFF, // gas
		STATICCALL,
		POP,
		PUSH1, 32, PUSH1, 0x00, RETURN,
	}

	res := NewEVM().Run(newMockProgram(100000, code, runtime.ModeMutating), host)

	assert.NoError(t, res.Err)
	assert.Len(t, res.ReturnValue, 32)
	assert.Equal(t, byte(42), res.ReturnValue[31])
}

func TestStaticCallFramePropagatesReadOnly(t *testing.T) {
	t.Parallel()

	host := newMockHost()

	// the callee tries to write storage; entered through STATICCALL it must
	// fail, so the caller observes the zero flag
	host.codes[types.StringToAddress("0x01")] = []byte{
		PUSH1, 0x01, PUSH1, 0x00, SSTORE,
	}

	code := []byte{
		PUSH1, 0x00, PUSH1, 0x00, PUSH1, 0x00, PUSH1, 0x00,
		PUSH1, 0x01, // address
		PUSH2, 0xFF, 0xFF, // gas
		STATICCALL,
		PUSH0, MSTORE,
		PUSH1, 32, PUSH0, RETURN,
	}

	res := NewEVM().Run(newMockProgram(100000, code, runtime.ModeMutating), host)

	assert.NoError(t, res.Err)
	assert.Equal(t, types.ZeroHash.Bytes(), res.ReturnValue)
	assert.Empty(t, host.storage)
}

func TestCallDepthExceeded(t *testing.T) {
	t.Parallel()

	host := newMockHost()

	code := []byte{
		PUSH1, 0x00, PUSH1, 0x00, PUSH1, 0x00, PUSH1, 0x00,
		PUSH1, 0x01, // address
		PUSH1, 0xFF, // gas
		DELEGATECALL,
		PUSH0, MSTORE,
		PUSH1, 32, PUSH0, RETURN,
	}

	p := newMockProgram(100000, code, runtime.ModeMutating)
	p.Depth = CallDepth

	res := NewEVM().Run(p, host)

	// the frame itself succeeds, only the failure flag is pushed
	assert.NoError(t, res.Err)
	assert.Equal(t, types.ZeroHash.Bytes(), res.ReturnValue)
}
