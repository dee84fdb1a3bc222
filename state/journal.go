package state

import (
	"math/big"

	"github.com/Analog-Labs/evm-interpreter/types"
)

// journalEntry undoes one recorded state change
type journalEntry interface {
	revert(t *Txn)
}

type (
	// storageChange tracks one overlay slot write
	storageChange struct {
		slot    slot
		prev    types.Hash
		existed bool
	}

	// transientChange tracks one transient slot write
	transientChange struct {
		key     types.Hash
		prev    types.Hash
		existed bool
	}

	// accessSlotChange tracks one slot turning warm
	accessSlotChange struct {
		slot slot
	}

	// balanceChange tracks one balance update
	balanceChange struct {
		addr types.Address
		prev *big.Int
	}

	// logChange tracks one emitted log record
	logChange struct {
	}
)

func (ch storageChange) revert(t *Txn) {
	if ch.existed {
		t.pending[ch.slot] = ch.prev
	} else {
		delete(t.pending, ch.slot)
	}
}

func (ch transientChange) revert(t *Txn) {
	if ch.existed {
		t.transient[ch.key] = ch.prev
	} else {
		delete(t.transient, ch.key)
	}
}

func (ch accessSlotChange) revert(t *Txn) {
	delete(t.warm, ch.slot)
}

func (ch balanceChange) revert(t *Txn) {
	if ch.prev == nil {
		delete(t.balances, ch.addr)
	} else {
		t.balances[ch.addr] = ch.prev
	}
}

func (ch logChange) revert(t *Txn) {
	t.logs = t.logs[:len(t.logs)-1]
}
