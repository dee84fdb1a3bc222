package state

import (
	"encoding/binary"
	"math/big"

	"github.com/Analog-Labs/evm-interpreter/helper/keccak"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/state/runtime/evm"
	"github.com/Analog-Labs/evm-interpreter/storage"
	"github.com/Analog-Labs/evm-interpreter/types"
	"github.com/hashicorp/go-hclog"
)

// slot identifies one persistent storage slot
type slot struct {
	addr types.Address
	key  types.Hash
}

// Log is one emitted log record
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

// Txn is the journaled overlay the interpreter sees as its host. Reads hit
// the overlay first and fall through to the borrowed persistent store;
// writes land in the overlay only and reach the store exclusively through
// Commit, so a failed invocation leaves the store byte-for-byte unchanged.
//
// A Txn assumes it is the only active mutator of its store for the whole
// duration of a call: it performs no locking, the embedder serializes
// concurrent use.
type Txn struct {
	logger hclog.Logger
	store  *storage.Storage
	vm     *evm.EVM

	pending map[slot]types.Hash
	warm    map[slot]struct{}
	journal []journalEntry

	// transient is the outer-scope-bound store; nil marks a host
	// without the capability
	transient map[types.Hash]types.Hash

	codes    map[types.Address][]byte
	balances map[types.Address]*big.Int

	txCtx runtime.TxContext
	logs  []*Log
}

var _ runtime.Host = (*Txn)(nil)

// NewTxn creates a journaled overlay over the borrowed persistent store.
// Transient storage starts disabled; EnableTransient turns it on for hosts
// that carry the capability.
func NewTxn(logger hclog.Logger, store *storage.Storage) *Txn {
	return &Txn{
		logger:   logger.Named("txn"),
		store:    store,
		vm:       evm.NewEVM(),
		pending:  map[slot]types.Hash{},
		warm:     map[slot]struct{}{},
		codes:    map[types.Address][]byte{},
		balances: map[types.Address]*big.Int{},
	}
}

// EnableTransient equips the host with the transient storage capability
func (t *Txn) EnableTransient() {
	if t.transient == nil {
		t.transient = map[types.Hash]types.Hash{}
	}
}

// ClearTransient drops every transient slot; the embedder calls it when the
// enclosing top-level scope ends
func (t *Txn) ClearTransient() {
	if t.transient != nil {
		t.transient = map[types.Hash]types.Hash{}
	}
}

// SetCode registers a program at an address, making it callable by the
// call-family instructions
func (t *Txn) SetCode(addr types.Address, code []byte) {
	t.codes[addr] = code
}

// SetBalance sets the balance of an account
func (t *Txn) SetBalance(addr types.Address, balance *big.Int) {
	t.balances[addr] = new(big.Int).Set(balance)
}

// SetTxContext sets the context the environment instructions observe
func (t *Txn) SetTxContext(ctx runtime.TxContext) {
	t.txCtx = ctx
}

// Logs returns the log records emitted by the last invocation
func (t *Txn) Logs() []*Log {
	return t.logs
}

// Snapshot returns an identifier for the current state revision
func (t *Txn) Snapshot() int {
	return len(t.journal)
}

// RevertToSnapshot undoes every change recorded after the snapshot
func (t *Txn) RevertToSnapshot(s int) {
	for i := len(t.journal) - 1; i >= s; i-- {
		t.journal[i].revert(t)
	}

	t.journal = t.journal[:s]
}

// Apply runs one top-level program. Storage effects reach the persistent
// store only when the program stops or returns in mutating mode; every
// failure rolls the overlay back, all-or-nothing.
func (t *Txn) Apply(p *runtime.Program) *runtime.ExecutionResult {
	// the warm-slot set and the log buffer are scoped to one top-level
	// invocation
	t.warm = map[slot]struct{}{}
	t.logs = t.logs[:0]

	res := t.Callx(p, t)

	if res.Succeeded() && !p.Mode.ReadOnly() {
		if err := t.Commit(); err != nil {
			t.logger.Error("failed to commit storage", "err", err)

			res.Err = err
		}
	}

	// the journal only needs to span one top-level invocation
	t.journal = t.journal[:0]

	return res
}

// Commit flushes the overlay into the persistent store. A KV write error
// stops the flush and keeps the full overlay pending so the caller can
// retry; slots already flushed stay written (the raw KV offers no atomic
// batch), a retry simply rewrites them.
func (t *Txn) Commit() error {
	for s, value := range t.pending {
		if err := t.store.SetStorage(s.addr, s.key, value); err != nil {
			return err
		}
	}

	t.pending = map[slot]types.Hash{}
	t.journal = t.journal[:0]

	return nil
}

// runtime.Host implementation

func (t *Txn) GetStorage(addr types.Address, key types.Hash) types.Hash {
	s := slot{addr: addr, key: key}
	if value, ok := t.pending[s]; ok {
		return value
	}

	return t.store.GetStorage(addr, key)
}

func (t *Txn) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	s := slot{addr: addr, key: key}

	prev, existed := t.pending[s]
	t.journal = append(t.journal, storageChange{slot: s, prev: prev, existed: existed})

	t.pending[s] = value
}

func (t *Txn) AccessSlot(addr types.Address, key types.Hash) bool {
	s := slot{addr: addr, key: key}
	if _, ok := t.warm[s]; ok {
		return true
	}

	t.journal = append(t.journal, accessSlotChange{slot: s})
	t.warm[s] = struct{}{}

	return false
}

func (t *Txn) SupportsTransient() bool {
	return t.transient != nil
}

func (t *Txn) GetTransientStorage(key types.Hash) types.Hash {
	return t.transient[key]
}

func (t *Txn) SetTransientStorage(key types.Hash, value types.Hash) {
	prev, existed := t.transient[key]
	t.journal = append(t.journal, transientChange{key: key, prev: prev, existed: existed})

	t.transient[key] = value
}

func (t *Txn) GetBalance(addr types.Address) *big.Int {
	if balance, ok := t.balances[addr]; ok {
		return new(big.Int).Set(balance)
	}

	return big.NewInt(0)
}

func (t *Txn) GetCode(addr types.Address) []byte {
	return t.codes[addr]
}

func (t *Txn) GetCodeSize(addr types.Address) int {
	return len(t.codes[addr])
}

func (t *Txn) GetCodeHash(addr types.Address) types.Hash {
	code, ok := t.codes[addr]
	if !ok {
		return types.ZeroHash
	}

	return types.BytesToHash(keccak.Keccak256(nil, code))
}

func (t *Txn) GetTxContext() runtime.TxContext {
	return t.txCtx
}

// GetBlockHash returns a synthetic, deterministic hash for the block
// number: the sandbox executes outside any chain, so there is no real
// header to point at
func (t *Txn) GetBlockHash(number int64) types.Hash {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(number))

	return types.BytesToHash(keccak.Keccak256(nil, buf))
}

func (t *Txn) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	t.journal = append(t.journal, logChange{})

	t.logs = append(t.logs, &Log{
		Address: addr,
		Topics:  append([]types.Hash{}, topics...),
		Data:    append([]byte{}, data...),
	})
}

// Callx synchronously executes a sub-program against the shared overlay,
// rolling back to the pre-call revision when it fails
func (t *Txn) Callx(p *runtime.Program, host runtime.Host) *runtime.ExecutionResult {
	snapshot := t.Snapshot()

	if p.Transfer && p.Value != nil && p.Value.Sign() != 0 {
		if err := t.transfer(p.Caller, p.Address, p.Value); err != nil {
			return &runtime.ExecutionResult{
				GasLeft: p.Gas,
				Err:     err,
			}
		}
	}

	res := t.vm.Run(p, host)
	if res.Failed() {
		t.RevertToSnapshot(snapshot)
	}

	return res
}

func (t *Txn) transfer(from, to types.Address, amount *big.Int) error {
	balance := t.GetBalance(from)
	if balance.Cmp(amount) < 0 {
		return runtime.ErrNotEnoughFunds
	}

	t.journal = append(t.journal, balanceChange{addr: from, prev: t.balances[from]})
	t.balances[from] = balance.Sub(balance, amount)

	t.journal = append(t.journal, balanceChange{addr: to, prev: t.balances[to]})
	t.balances[to] = new(big.Int).Add(t.GetBalance(to), amount)

	return nil
}
