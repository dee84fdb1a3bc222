package runtime

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Analog-Labs/evm-interpreter/types"
)

// TxContext is the host context the program observes through the
// environment opcodes
type TxContext struct {
	GasPrice   types.Hash
	Origin     types.Address
	Coinbase   types.Address
	Number     int64
	Timestamp  int64
	GasLimit   int64
	ChainID    int64
	Difficulty types.Hash
}

// ExecutionMode gates which opcode classes one invocation may use
type ExecutionMode int

const (
	// ModeMutating permits every assigned opcode
	ModeMutating ExecutionMode = iota

	// ModeReadOnly rejects storage writes, log emission, sub-context
	// creation and value-transferring calls
	ModeReadOnly
)

func (m ExecutionMode) ReadOnly() bool {
	return m == ModeReadOnly
}

func (m ExecutionMode) String() string {
	if m == ModeReadOnly {
		return "read-only"
	}

	return "mutating"
}

// Host is the capability surface the interpreter borrows from its embedder.
// The interpreter owns no storage of its own: persistent writes become
// durable in whatever store the embedder designated, and only when the
// top-level invocation succeeds.
type Host interface {
	// persistent storage bridge
	GetStorage(addr types.Address, key types.Hash) types.Hash
	SetStorage(addr types.Address, key types.Hash, value types.Hash)

	// AccessSlot marks the slot warm and reports whether it already was
	AccessSlot(addr types.Address, key types.Hash) bool

	// transient storage bridge, scoped to the enclosing top-level scope.
	// Hosts without the capability report false and must never be asked
	// for the values themselves.
	SupportsTransient() bool
	GetTransientStorage(key types.Hash) types.Hash
	SetTransientStorage(key types.Hash, value types.Hash)

	// account surface used by the environment and call opcodes
	GetBalance(addr types.Address) *big.Int
	GetCode(addr types.Address) []byte
	GetCodeSize(addr types.Address) int
	GetCodeHash(addr types.Address) types.Hash

	GetTxContext() TxContext
	GetBlockHash(number int64) types.Hash
	EmitLog(addr types.Address, topics []types.Hash, data []byte)

	// Callx synchronously executes a sub-program and resumes the caller
	// once it reached a terminal outcome
	Callx(p *Program, host Host) *ExecutionResult
}

// Program is one instruction stream scheduled for execution. There is no
// structured input channel: any values the program needs must be embedded
// as push immediates inside Code.
type Program struct {
	Code    []byte
	Address types.Address
	Origin  types.Address
	Caller  types.Address
	Value   *big.Int
	Gas     uint64
	Depth   int
	Mode    ExecutionMode

	// Transfer marks a frame that moves Value from Caller to Address.
	// Delegated frames inherit the parent value for CALLVALUE without
	// moving it again.
	Transfer bool

	// memory window the parent designated for the sub-call result
	RetOffset uint64
	RetSize   uint64
}

// NewProgram creates a top-level program invocation
func NewProgram(code []byte, gas uint64, mode ExecutionMode) *Program {
	return &Program{
		Code:  code,
		Gas:   gas,
		Mode:  mode,
		Depth: 1,
		Value: big.NewInt(0),
	}
}

// ExecutionResult includes all output after executing a given program,
// no matter whether the execution itself was successful or not
type ExecutionResult struct {
	ReturnValue []byte // Returned data (function result or revert reason)
	GasLeft     uint64 // Total gas left as result of execution
	GasUsed     uint64 // Total gas used as result of execution
	Err         error  // Any error encountered during the execution
}

func (r *ExecutionResult) Succeeded() bool { return r.Err == nil }
func (r *ExecutionResult) Failed() bool    { return r.Err != nil }
func (r *ExecutionResult) Reverted() bool  { return errors.Is(r.Err, ErrExecutionReverted) }

var (
	ErrOutOfGas                = errors.New("out of gas")
	ErrInvalidInstruction      = errors.New("invalid instruction")
	ErrInvalidJump             = errors.New("invalid jump destination")
	ErrExecutionReverted       = errors.New("execution was reverted")
	ErrCapabilityUnsupported   = errors.New("transient storage is not supported by the host")
	ErrInsufficientProbeBudget = errors.New("gas budget is too low for a reliable probe")
	ErrReturnDataOutOfBounds   = errors.New("return data out of bounds")
	ErrNotEnoughFunds          = errors.New("not enough funds for transfer")
	ErrDepth                   = errors.New("max call depth exceeded")
)

// StackUnderflowError is returned when an instruction references a stack
// depth beyond what is present
type StackUnderflowError struct {
	StackLen int
	Required int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: size %d, required %d", e.StackLen, e.Required)
}

// StackOverflowError is returned on a push beyond the stack capacity
type StackOverflowError struct {
	StackLen int
	Limit    int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack overflow: size %d, limit %d", e.StackLen, e.Limit)
}
