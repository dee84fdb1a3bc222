package evm

import (
	"errors"

	"github.com/Analog-Labs/evm-interpreter/state/runtime"
)

// EVM is the bytecode interpreter. It is stateless: every invocation runs
// in a fresh execution context against the host it is handed.
type EVM struct {
}

// NewEVM creates a new EVM
func NewEVM() *EVM {
	return &EVM{}
}

// Run executes the program against the host until it reaches one of the
// four terminal outcomes (stop, return, revert, abort)
func (e *EVM) Run(p *runtime.Program, host runtime.Host) *runtime.ExecutionResult {
	contract := acquireState()
	contract.resetReturnData()

	contract.msg = p
	contract.code = p.Code
	contract.gas = p.Gas
	contract.host = host

	ret, err := contract.Run()

	// an explicit revert keeps its remaining gas, every other failure
	// consumes the entire budget
	gasLeft := contract.gas
	if err != nil && !errors.Is(err, runtime.ErrExecutionReverted) {
		gasLeft = 0
	}

	var returnValue []byte
	returnValue = append(returnValue, ret...)

	releaseState(contract)

	return &runtime.ExecutionResult{
		ReturnValue: returnValue,
		GasLeft:     gasLeft,
		GasUsed:     p.Gas - gasLeft,
		Err:         err,
	}
}
