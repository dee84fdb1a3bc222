package sandbox

import (
	"github.com/Analog-Labs/evm-interpreter/state/runtime/evm"
	"github.com/Analog-Labs/evm-interpreter/types"
)

// Worst-case budgets of the synthesized micro-programs. The values follow
// the interpreter's own cost schedule: a cold set of a zero slot for the
// store, a cold read plus one memory word for the load.
const (
	// storeProgram: 2x PUSH32 (3+3) + SSTORE of a cold zero slot (20000+2100)
	bootstrapStoreGas uint64 = 3 + 3 + evm.SstoreSetGas + evm.ColdSloadGas

	// loadProgram: PUSH32 (3) + cold SLOAD (2100) + PUSH0 (2) + MSTORE
	// (3, +3 expansion) + PUSH1/PUSH0 (3+2) + RETURN (0)
	bootstrapLoadGas uint64 = 3 + evm.ColdSloadGas + 2 + 3 + 3 + 3 + 2

	// probeProgram: PUSH0 (2) + TLOAD (100)
	probeGas uint64 = 2 + evm.TLoadGas
)

// storeProgram synthesizes a minimal program storing value under key:
//
//	PUSH32 <value> PUSH32 <key> SSTORE
func storeProgram(key, value types.Hash) []byte {
	program := make([]byte, 0, 2*(1+types.HashLength)+1)

	program = append(program, evm.PUSH32)
	program = append(program, value.Bytes()...)
	program = append(program, evm.PUSH32)
	program = append(program, key.Bytes()...)
	program = append(program, evm.SSTORE)

	return program
}

// loadProgram synthesizes a minimal program returning the value under key:
//
//	PUSH32 <key> SLOAD PUSH0 MSTORE PUSH1 32 PUSH0 RETURN
func loadProgram(key types.Hash) []byte {
	program := make([]byte, 0, 1+types.HashLength+7)

	program = append(program, evm.PUSH32)
	program = append(program, key.Bytes()...)
	program = append(program,
		evm.SLOAD,
		evm.PUSH0,
		evm.MSTORE,
		evm.PUSH1, 32,
		evm.PUSH0,
		evm.RETURN,
	)

	return program
}

// probeProgram is the two-instruction micro-program of the transient
// storage capability probe
func probeProgram() []byte {
	return []byte{evm.PUSH0, evm.TLOAD}
}
