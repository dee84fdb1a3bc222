package evm

import (
	"math/big"
	"sync"

	"github.com/Analog-Labs/evm-interpreter/helper/common"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/types"
)

var statePool = sync.Pool{
	New: func() interface{} {
		return new(state)
	},
}

func acquireState() *state {
	aquiredState, ok := statePool.Get().(*state)
	if !ok {
		return nil
	}

	return aquiredState
}

func releaseState(s *state) {
	s.reset()
	statePool.Put(s)
}

const stackSize = 1024

// state is the execution context of one invocation. It is created fresh per
// invocation (from the pool) and discarded at termination; nothing survives
// between two invocations except through the host storage bridge.
type state struct {
	ip   int
	code []byte
	tmp  []byte

	host runtime.Host
	msg  *runtime.Program

	// memory
	memory      []byte
	lastGasCost uint64

	// stack
	stack []*big.Int
	sp    int

	err  error
	stop bool

	gas uint64

	returnData []byte
	ret        []byte
}

func (c *state) reset() {
	c.sp = 0
	c.ip = 0
	c.gas = 0
	c.lastGasCost = 0
	c.stop = false
	c.err = nil

	for i := range c.memory {
		c.memory[i] = 0
	}

	c.tmp = c.tmp[:0]
	c.ret = c.ret[:0]
	c.code = c.code[:0]
	c.returnData = c.returnData[:0]
	c.memory = c.memory[:0]
}

// validJumpdest only checks that the byte at dest holds the jump-target
// marker. Operand bytes of a preceding PUSH that happen to hold the
// JUMPDEST value are accepted as well: building the push-operand bitmap
// would raise the per-call overhead more than this soundness gap is worth,
// so the approximation is kept deliberately.
func (c *state) validJumpdest(dest *big.Int) bool {
	udest := dest.Uint64()
	if dest.BitLen() >= 63 || udest >= uint64(len(c.code)) {
		return false
	}

	return OpCode(c.code[udest]) == JUMPDEST
}

func (c *state) halt() {
	c.stop = true
}

func (c *state) exit(err error) {
	if err == nil {
		panic("cannot exit with a nil error")
	}

	c.stop = true
	c.err = err
}

func (c *state) readOnly() bool {
	return c.msg.Mode.ReadOnly()
}

func (c *state) push(val *big.Int) {
	c.push1().Set(val)
}

func (c *state) push1() *big.Int {
	if len(c.stack) > c.sp {
		c.sp++

		return c.stack[c.sp-1]
	}

	v := big.NewInt(0)
	c.stack = append(c.stack, v)
	c.sp++

	return v
}

func (c *state) stackAtLeast(n int) bool {
	return c.sp >= n
}

func (c *state) popHash() types.Hash {
	return types.BytesToHash(c.pop().Bytes())
}

func (c *state) popAddr() (types.Address, bool) {
	b := c.pop()
	if b == nil {
		return types.ZeroAddress, false
	}

	return types.BytesToAddress(b.Bytes()), true
}

func (c *state) top() *big.Int {
	if c.sp == 0 {
		return nil
	}

	return c.stack[c.sp-1]
}

func (c *state) pop() *big.Int {
	if c.sp == 0 {
		return nil
	}

	o := c.stack[c.sp-1]
	c.sp--

	return o
}

func (c *state) peekAt(n int) *big.Int {
	return c.stack[c.sp-n]
}

func (c *state) swap(n int) {
	c.stack[c.sp-1], c.stack[c.sp-n-1] = c.stack[c.sp-n-1], c.stack[c.sp-1]
}

func (c *state) consumeGas(gas uint64) bool {
	if c.gas < gas {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	c.gas -= gas

	return true
}

func (c *state) resetReturnData() {
	c.returnData = c.returnData[:0]
}

// Run executes the program to one terminal outcome
func (c *state) Run() ([]byte, error) {
	codeSize := len(c.code)

	for !c.stop {
		if c.ip >= codeSize {
			// fetching at or past the end of the program is an
			// implicit STOP
			c.halt()

			break
		}

		op := OpCode(c.code[c.ip])

		inst := dispatchTable[op]
		if inst.inst == nil {
			c.exit(runtime.ErrInvalidInstruction)

			break
		}

		// the mode gate rejects mutating instructions up front, before
		// any of their effects. Value-transferring calls are the one
		// operand-dependent case, checked inside the CALL handler.
		if inst.class == classMutate && c.readOnly() {
			c.exit(runtime.ErrInvalidInstruction)

			break
		}

		// check if the depth of the stack is enough for the instruction
		if c.sp < inst.stack {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: inst.stack})

			break
		}

		// consume the fixed gas of the instruction
		if !c.consumeGas(inst.gas) {
			break
		}

		// execute the instruction
		inst.inst(c)

		// check if the stack size exceeds the max size
		if c.sp > stackSize {
			c.exit(&runtime.StackOverflowError{StackLen: c.sp, Limit: stackSize})

			break
		}

		c.ip++
	}

	return c.ret, c.err
}

func bigToHash(b *big.Int) types.Hash {
	return types.BytesToHash(b.Bytes())
}

// checkMemory expands the memory to the smallest word-aligned size covering
// offset+size, charging the quadratic cost difference versus the size
// already paid for. Memory never shrinks within one execution.
func (c *state) checkMemory(offset, size *big.Int) bool {
	if size.Sign() == 0 {
		return true
	}

	if !offset.IsUint64() || !size.IsUint64() {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	o := offset.Uint64()
	s := size.Uint64()

	if o > 0xffffffffe0 || s > 0xffffffffe0 {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	if newSize := o + s; uint64(len(c.memory)) < newSize {
		w := (newSize + 31) / 32
		newCost := MemoryGas*w + w*w/QuadCoeffDiv

		cost := newCost - c.lastGasCost
		c.lastGasCost = newCost

		if !c.consumeGas(cost) {
			return false
		}

		c.memory = common.ExtendByteSlice(c.memory, int(w*32))
	}

	return true
}

// calcMemSize returns the memory size required to cover the access
func calcMemSize(off, l *big.Int) *big.Int {
	if l.Sign() == 0 {
		return zero
	}

	return new(big.Int).Add(off, l)
}

// get2 appends the designated memory slice to dst, expanding (and charging
// for) memory first
func (c *state) get2(dst []byte, offset, length *big.Int) ([]byte, bool) {
	if length.Sign() == 0 {
		return nil, true
	}

	if !c.checkMemory(offset, length) {
		return nil, false
	}

	o := offset.Uint64()
	l := length.Uint64()

	dst = append(dst, c.memory[o:o+l]...)

	return dst, true
}

var errRevert = runtime.ErrExecutionReverted
