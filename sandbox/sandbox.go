package sandbox

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Analog-Labs/evm-interpreter/helper/hex"
	"github.com/Analog-Labs/evm-interpreter/state"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/storage"
	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
)

// DefaultGasLimit bounds one wrapped invocation when the embedder does not
// configure its own budget. Gas is the sole bound on work performed, there
// is no wall-clock timeout.
const DefaultGasLimit uint64 = 10000000

// ErrBudgetTooLow is returned by the bootstrap helpers when the configured
// gas limit cannot cover their worst-case cost
var ErrBudgetTooLow = errors.New("gas limit cannot cover the worst-case bootstrap cost")

// Config tunes one sandbox instance
type Config struct {
	// GasLimit is the budget of each wrapped invocation
	GasLimit uint64

	// Transient equips the host with the transient storage capability
	Transient bool

	// TxContext is the context the environment instructions observe
	TxContext runtime.TxContext
}

// Sandbox executes unverified, non-deployed bytecode against a borrowed
// persistent store. Calls are strictly synchronous: one invocation runs to
// a terminal outcome before control returns. The sandbox performs no
// locking, concurrent use must be serialized by the embedder.
type Sandbox struct {
	logger hclog.Logger
	config *Config
	txn    *state.Txn

	lastGasUsed uint64
}

// NewSandbox creates a sandbox over the given persistent store capability
func NewSandbox(logger hclog.Logger, store *storage.Storage, config *Config) *Sandbox {
	if config == nil {
		config = &Config{}
	}

	if config.GasLimit == 0 {
		config.GasLimit = DefaultGasLimit
	}

	txn := state.NewTxn(logger, store)
	txn.SetTxContext(config.TxContext)

	if config.Transient {
		txn.EnableTransient()
	}

	return &Sandbox{
		logger: logger.Named("sandbox"),
		config: config,
		txn:    txn,
	}
}

// SetCode registers a program at an address so the call-family
// instructions can reach it
func (s *Sandbox) SetCode(addr types.Address, code []byte) {
	s.txn.SetCode(addr, code)
}

// SetBalance funds an account for value-transferring calls
func (s *Sandbox) SetBalance(addr types.Address, balance *big.Int) {
	s.txn.SetBalance(addr, balance)
}

// Logs returns the log records emitted by the last invocation
func (s *Sandbox) Logs() []*state.Log {
	return s.txn.Logs()
}

// GasUsed returns the gas consumed by the last invocation
func (s *Sandbox) GasUsed() uint64 {
	return s.lastGasUsed
}

// CloseScope ends the enclosing top-level scope: transient storage is
// dropped, persistent storage stays
func (s *Sandbox) CloseScope() {
	s.txn.ClearTransient()
}

// DelegatedCall executes the program with full mutation capability.
// Storage writes become durable only when the program stops or returns.
func (s *Sandbox) DelegatedCall(code []byte) ([]byte, error) {
	return s.call(code, runtime.ModeMutating)
}

// StaticCall executes the program in read-only mode: any mutating
// instruction aborts the invocation
func (s *Sandbox) StaticCall(code []byte) ([]byte, error) {
	return s.call(code, runtime.ModeReadOnly)
}

func (s *Sandbox) call(code []byte, mode runtime.ExecutionMode) ([]byte, error) {
	program := runtime.NewProgram(code, s.config.GasLimit, mode)

	metrics.IncrCounter([]string{"sandbox", "calls"}, 1)

	res := s.txn.Apply(program)

	s.lastGasUsed = res.GasUsed
	metrics.IncrCounter([]string{"sandbox", "gas_used"}, float32(res.GasUsed))

	s.logger.Debug("program executed",
		"mode", mode,
		"gas_used", res.GasUsed,
		"failed", res.Failed(),
	)

	if res.Failed() {
		metrics.IncrCounter([]string{"sandbox", "failures"}, 1)

		if res.Reverted() {
			return nil, &RevertError{Reason: res.ReturnValue}
		}

		return nil, res.Err
	}

	return res.ReturnValue, nil
}

// BootstrapStore seeds a single persistent slot by synthesizing and running
// a minimal store program. It fails fast when the configured budget cannot
// cover the worst case (two pushes plus a cold set of a zero slot).
func (s *Sandbox) BootstrapStore(key, value types.Hash) error {
	if s.config.GasLimit < bootstrapStoreGas {
		return ErrBudgetTooLow
	}

	_, err := s.DelegatedCall(storeProgram(key, value))

	return err
}

// BootstrapLoad reads a single persistent slot by synthesizing and running
// a minimal load program
func (s *Sandbox) BootstrapLoad(key types.Hash) (types.Hash, error) {
	if s.config.GasLimit < bootstrapLoadGas {
		return types.ZeroHash, ErrBudgetTooLow
	}

	ret, err := s.StaticCall(loadProgram(key))
	if err != nil {
		return types.ZeroHash, err
	}

	return types.BytesToHash(ret), nil
}

// RevertError carries the caller-defined reason bytes of an explicit revert
type RevertError struct {
	Reason []byte
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("execution was reverted: %s", hex.EncodeToHex(e.Reason))
}

func (e *RevertError) Unwrap() error {
	return runtime.ErrExecutionReverted
}
