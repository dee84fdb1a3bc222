package evm

import (
	"math/big"
	"math/bits"
	"sync"

	"github.com/Analog-Labs/evm-interpreter/helper/common"
	"github.com/Analog-Labs/evm-interpreter/helper/keccak"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/Analog-Labs/evm-interpreter/types"
)

type instruction func(c *state)

var (
	zero     = big.NewInt(0)
	one      = big.NewInt(1)
	wordSize = big.NewInt(32)
)

func opAdd(c *state) {
	a := c.pop()
	b := c.top()

	b.Add(a, b)
	toU256(b)
}

func opMul(c *state) {
	a := c.pop()
	b := c.top()

	b.Mul(a, b)
	toU256(b)
}

func opSub(c *state) {
	a := c.pop()
	b := c.top()

	b.Sub(a, b)
	toU256(b)
}

func opDiv(c *state) {
	a := c.pop()
	b := c.top()

	if b.Sign() == 0 {
		// division by zero yields zero
		b.Set(zero)
	} else {
		b.Div(a, b)
		toU256(b)
	}
}

func opSDiv(c *state) {
	a := to256(c.pop())
	b := to256(c.top())

	if b.Sign() == 0 {
		// division by zero yields zero
		b.Set(zero)
	} else {
		neg := a.Sign() != b.Sign()
		b.Div(a.Abs(a), b.Abs(b))

		if neg {
			b.Neg(b)
		}
		toU256(b)
	}
}

func opMod(c *state) {
	a := c.pop()
	b := c.top()

	if b.Sign() == 0 {
		b.Set(zero)
	} else {
		b.Mod(a, b)
		toU256(b)
	}
}

func opSMod(c *state) {
	a := to256(c.pop())
	b := to256(c.top())

	if b.Sign() == 0 {
		b.Set(zero)

		return
	}

	neg := a.Sign() < 0
	b.Mod(a.Abs(a), b.Abs(b))

	if neg {
		b.Neg(b)
	}
	toU256(b)
}

var bigPool = sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

func acquireBig() *big.Int {
	b, ok := bigPool.Get().(*big.Int)
	if !ok {
		return new(big.Int)
	}

	return b
}

func releaseBig(b *big.Int) {
	bigPool.Put(b)
}

func opExp(c *state) {
	x := c.pop()
	y := c.top()

	gas := uint64((y.BitLen()+7)/8) * ExpByteGas
	if !c.consumeGas(gas) {
		return
	}

	z := acquireBig().Set(one)

	for _, d := range y.Bits() {
		for i := 0; i < wordBits; i++ {
			if d&1 == 1 {
				toU256(z.Mul(z, x))
			}

			d >>= 1

			toU256(x.Mul(x, x))
		}
	}

	y.Set(z)
	releaseBig(z)
}

func opAddMod(c *state) {
	a := c.pop()
	b := c.pop()
	z := c.top()

	if z.Sign() == 0 {
		// modulo by zero yields zero
		z.Set(zero)
	} else {
		a = a.Add(a, b)
		z = z.Mod(a, z)
		toU256(z)
	}
}

func opMulMod(c *state) {
	a := c.pop()
	b := c.pop()
	z := c.top()

	if z.Sign() == 0 {
		z.Set(zero)
	} else {
		a = a.Mul(a, b)
		z = z.Mod(a, z)
		toU256(z)
	}
}

func opAnd(c *state) {
	a := c.pop()
	b := c.top()

	b.And(a, b)
}

func opOr(c *state) {
	a := c.pop()
	b := c.top()

	b.Or(a, b)
}

func opXor(c *state) {
	a := c.pop()
	b := c.top()

	b.Xor(a, b)
}

var opByteMask = big.NewInt(255)

func opByte(c *state) {
	x := c.pop()
	y := c.top()

	if !x.IsUint64() || x.Uint64() > 31 {
		y.Set(zero)
	} else {
		sh := (31 - x.Uint64()) * 8
		y.Rsh(y, uint(sh))
		y.And(y, opByteMask)
	}
}

func opNot(c *state) {
	a := c.top()

	a.Not(a)
	toU256(a)
}

func opIsZero(c *state) {
	a := c.top()

	if a.Sign() == 0 {
		a.Set(one)
	} else {
		a.Set(zero)
	}
}

func opEq(c *state) {
	a := c.pop()
	b := c.top()

	if a.Cmp(b) == 0 {
		b.Set(one)
	} else {
		b.Set(zero)
	}
}

func opLt(c *state) {
	a := c.pop()
	b := c.top()

	if a.Cmp(b) < 0 {
		b.Set(one)
	} else {
		b.Set(zero)
	}
}

func opGt(c *state) {
	a := c.pop()
	b := c.top()

	if a.Cmp(b) > 0 {
		b.Set(one)
	} else {
		b.Set(zero)
	}
}

func opSlt(c *state) {
	a := to256(c.pop())
	b := to256(c.top())

	if a.Cmp(b) < 0 {
		b.Set(one)
	} else {
		b.Set(zero)
	}
}

func opSgt(c *state) {
	a := to256(c.pop())
	b := to256(c.top())

	if a.Cmp(b) > 0 {
		b.Set(one)
	} else {
		b.Set(zero)
	}
}

func opSignExtension(c *state) {
	ext := c.pop()
	x := c.top()

	if ext.Cmp(wordSize) > 0 {
		return
	}

	if x == nil {
		return
	}

	bit := uint(ext.Uint64()*8 + 7)

	mask := acquireBig().Set(one)

	mask.Lsh(mask, bit)
	mask.Sub(mask, one)

	if x.Bit(int(bit)) > 0 {
		mask.Not(mask)
		x.Or(x, mask)
	} else {
		x.And(x, mask)
	}

	toU256(x)
	releaseBig(mask)
}

func equalOrOverflowsUint256(b *big.Int) bool {
	return b.BitLen() > 8
}

func opShl(c *state) {
	shift := c.pop()
	value := c.top()

	if equalOrOverflowsUint256(shift) {
		value.Set(zero)
	} else {
		value.Lsh(value, uint(shift.Uint64()))
		toU256(value)
	}
}

func opShr(c *state) {
	shift := c.pop()
	value := c.top()

	if equalOrOverflowsUint256(shift) {
		value.Set(zero)
	} else {
		value.Rsh(value, uint(shift.Uint64()))
		toU256(value)
	}
}

func opSar(c *state) {
	shift := c.pop()
	value := to256(c.top())

	if equalOrOverflowsUint256(shift) {
		if value.Sign() >= 0 {
			value.Set(zero)
		} else {
			value.Set(tt256m1)
		}
	} else {
		value.Rsh(value, uint(shift.Uint64()))
		toU256(value)
	}
}

// memory operations

var bufPool = sync.Pool{
	New: func() interface{} {
		// Store pointer to avoid heap allocation in caller
		// Please check SA6002 in StaticCheck for details
		buf := make([]byte, 128)

		return &buf
	},
}

func opMload(c *state) {
	offset := c.pop()

	bufPtr, ok := bufPool.Get().(*[]byte)
	if !ok {
		c.exit(runtime.ErrInvalidInstruction)

		return
	}

	buf := *bufPtr

	buf, ok = c.get2(buf[:0], offset, wordSize)
	if !ok {
		return
	}

	c.push1().SetBytes(buf)
	bufPool.Put(bufPtr)
}

var (
	wordBits  = bits.UintSize
	wordBytes = wordBits / 8
)

func opMStore(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, wordSize) {
		return
	}

	o := offset.Uint64()
	buf := c.memory[o : o+32]

	i := 32

	// big.Int bytes, least significant word first
	for _, d := range val.Bits() {
		for j := 0; j < wordBytes; j++ {
			i--
			buf[i] = byte(d)
			d >>= 8
		}
	}

	// fill the rest of the slot with zeros
	for i > 0 {
		i--
		buf[i] = 0
	}
}

func opMStore8(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, one) {
		return
	}

	c.memory[offset.Uint64()] = byte(val.Uint64() & 0xff)
}

func opMCopy(c *state) {
	dst := c.pop()
	src := c.pop()
	length := c.pop()

	if length.Sign() == 0 {
		return
	}

	// expand over the furthest of the source and destination windows
	dstEnd := calcMemSize(dst, length)
	srcEnd := calcMemSize(src, length)

	max := dstEnd
	if dstEnd.Cmp(srcEnd) < 0 {
		max = srcEnd
	}

	if !max.IsUint64() {
		c.exit(runtime.ErrOutOfGas)

		return
	}

	if !c.checkMemory(zero, max) {
		return
	}

	words := (length.Uint64() + 31) / 32
	if !c.consumeGas(words * CopyGas) {
		return
	}

	l := length.Uint64()
	copy(c.memory[dst.Uint64():dst.Uint64()+l], c.memory[src.Uint64():src.Uint64()+l])
}

// storage operations

func opSload(c *state) {
	loc := c.top()
	key := bigToHash(loc)

	// cold slots cost more, the access itself warms them
	gas := ColdSloadGas
	if c.host.AccessSlot(c.msg.Address, key) {
		gas = WarmStorageReadGas
	}

	if !c.consumeGas(gas) {
		return
	}

	val := c.host.GetStorage(c.msg.Address, key)
	loc.SetBytes(val.Bytes())
}

func opSStore(c *state) {
	key := c.popHash()
	val := c.popHash()

	gas := SstoreResetGas

	current := c.host.GetStorage(c.msg.Address, key)
	if current == types.ZeroHash && val != types.ZeroHash {
		gas = SstoreSetGas
	}

	if !c.host.AccessSlot(c.msg.Address, key) {
		gas += ColdSloadGas
	}

	if !c.consumeGas(gas) {
		return
	}

	c.host.SetStorage(c.msg.Address, key, val)
}

// transient storage operations. A host without the capability fails them as
// unsupported instructions, there is no emulated fallback.

func opTLoad(c *state) {
	if !c.host.SupportsTransient() {
		c.exit(runtime.ErrCapabilityUnsupported)

		return
	}

	loc := c.top()

	val := c.host.GetTransientStorage(bigToHash(loc))
	loc.SetBytes(val.Bytes())
}

func opTStore(c *state) {
	if !c.host.SupportsTransient() {
		c.exit(runtime.ErrCapabilityUnsupported)

		return
	}

	key := c.popHash()
	val := c.popHash()

	c.host.SetTransientStorage(key, val)
}

func opSha3(c *state) {
	offset := c.pop()
	length := c.pop()

	var ok bool
	if c.tmp, ok = c.get2(c.tmp[:0], offset, length); !ok {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(((size + 31) / 32) * Sha3WordGas) {
		return
	}

	hash := keccak.Keccak256(nil, c.tmp)

	c.push1().SetBytes(hash)
}

func opPop(c *state) {
	c.pop()
}

// context operations

func opAddress(c *state) {
	c.push1().SetBytes(c.msg.Address.Bytes())
}

func opBalance(c *state) {
	addr, _ := c.popAddr()

	c.push1().Set(c.host.GetBalance(addr))
}

func opSelfBalance(c *state) {
	c.push1().Set(c.host.GetBalance(c.msg.Address))
}

func opOrigin(c *state) {
	c.push1().SetBytes(c.msg.Origin.Bytes())
}

func opCaller(c *state) {
	c.push1().SetBytes(c.msg.Caller.Bytes())
}

func opCallValue(c *state) {
	v := c.push1()
	if value := c.msg.Value; value != nil {
		v.Set(value)
	} else {
		v.Set(zero)
	}
}

func opCodeSize(c *state) {
	c.push1().SetUint64(uint64(len(c.code)))
}

func opExtCodeSize(c *state) {
	addr, _ := c.popAddr()

	c.push1().SetUint64(uint64(c.host.GetCodeSize(addr)))
}

func opGasPrice(c *state) {
	c.push1().SetBytes(c.host.GetTxContext().GasPrice.Bytes())
}

func opReturnDataSize(c *state) {
	c.push1().SetUint64(uint64(len(c.returnData)))
}

func opExtCodeHash(c *state) {
	addr, _ := c.popAddr()

	c.push1().SetBytes(c.host.GetCodeHash(addr).Bytes())
}

func opChainID(c *state) {
	c.push1().SetUint64(uint64(c.host.GetTxContext().ChainID))
}

func opPC(c *state) {
	c.push1().SetUint64(uint64(c.ip))
}

func opMSize(c *state) {
	c.push1().SetUint64(uint64(len(c.memory)))
}

func opGas(c *state) {
	c.push1().SetUint64(c.gas)
}

// setBytes copies size bytes of input starting at dataOffset into dst,
// zero-filling anything the input cannot cover
func (c *state) setBytes(dst, input []byte, size uint64, dataOffset *big.Int) {
	if !dataOffset.IsUint64() {
		// overflow, copy 'size' 0 bytes to dst
		for i := uint64(0); i < size; i++ {
			dst[i] = 0
		}

		return
	}

	inputSize := uint64(len(input))
	begin := common.Min(dataOffset.Uint64(), inputSize)

	copySize := common.Min(size, inputSize-begin)
	if copySize > 0 {
		copy(dst, input[begin:begin+copySize])
	}

	if size-copySize > 0 {
		dst = dst[copySize:]
		for i := uint64(0); i < size-copySize; i++ {
			dst[i] = 0
		}
	}
}

func opExtCodeCopy(c *state) {
	address, _ := c.popAddr()
	memOffset := c.pop()
	codeOffset := c.pop()
	length := c.pop()

	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(((size + 31) / 32) * CopyGas) {
		return
	}

	code := c.host.GetCode(address)
	if size != 0 {
		c.setBytes(c.memory[memOffset.Uint64():], code, size, codeOffset)
	}
}

func opCodeCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(((size + 31) / 32) * CopyGas) {
		return
	}

	if size != 0 {
		c.setBytes(c.memory[memOffset.Uint64():], c.code, size, dataOffset)
	}
}

func opReturnDataCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(((size + 31) / 32) * CopyGas) {
		return
	}

	end := new(big.Int).Add(dataOffset, length)
	if !end.IsUint64() {
		c.exit(runtime.ErrReturnDataOutOfBounds)

		return
	}

	if uint64(len(c.returnData)) < end.Uint64() {
		c.exit(runtime.ErrReturnDataOutOfBounds)

		return
	}

	if size != 0 {
		data := c.returnData[dataOffset.Uint64():end.Uint64()]
		copy(c.memory[memOffset.Uint64():], data)
	}
}

// block information

func opBlockHash(c *state) {
	num := c.top()

	if !num.IsUint64() {
		num.Set(zero)

		return
	}

	n := int64(num.Uint64())
	lastBlock := c.host.GetTxContext().Number

	if n >= lastBlock-256 && n < lastBlock {
		num.SetBytes(c.host.GetBlockHash(n).Bytes())
	} else {
		num.Set(zero)
	}
}

func opCoinbase(c *state) {
	c.push1().SetBytes(c.host.GetTxContext().Coinbase.Bytes())
}

func opTimestamp(c *state) {
	c.push1().SetInt64(c.host.GetTxContext().Timestamp)
}

func opNumber(c *state) {
	c.push1().SetInt64(c.host.GetTxContext().Number)
}

func opDifficulty(c *state) {
	c.push1().SetBytes(c.host.GetTxContext().Difficulty.Bytes())
}

func opGasLimit(c *state) {
	c.push1().SetInt64(c.host.GetTxContext().GasLimit)
}

// control flow

func opJump(c *state) {
	dest := c.pop()

	if c.validJumpdest(dest) {
		c.ip = int(dest.Uint64() - 1)
	} else {
		c.exit(runtime.ErrInvalidJump)
	}
}

func opJumpi(c *state) {
	dest := c.pop()
	cond := c.pop()

	if cond.Sign() != 0 {
		if c.validJumpdest(dest) {
			c.ip = int(dest.Uint64() - 1)
		} else {
			c.exit(runtime.ErrInvalidJump)
		}
	}
}

func opJumpDest(c *state) {
}

func opPush0(c *state) {
	c.push1().Set(zero)
}

func opPush(n int) instruction {
	return func(c *state) {
		ins := c.code
		ip := c.ip

		v := c.push1()
		if ip+1+n > len(ins) {
			// operands truncated by the program end are implicitly
			// zero-extended
			v.SetBytes(common.RightPadBytes(ins[ip+1:], n))
		} else {
			v.SetBytes(ins[ip+1 : ip+1+n])
		}

		c.ip += n
	}
}

func opDup(n int) instruction {
	return func(c *state) {
		if !c.stackAtLeast(n) {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: n})
		} else {
			val := c.peekAt(n)
			c.push1().Set(val)
		}
	}
}

func opSwap(n int) instruction {
	return func(c *state) {
		if !c.stackAtLeast(n + 1) {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: n + 1})
		} else {
			c.swap(n)
		}
	}
}

func opLog(size int) instruction {
	return func(c *state) {
		if !c.stackAtLeast(2 + size) {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: 2 + size})

			return
		}

		mStart := c.pop()
		mSize := c.pop()

		topics := make([]types.Hash, size)
		for i := 0; i < size; i++ {
			topics[i] = bigToHash(c.pop())
		}

		data, ok := c.get2(nil, mStart, mSize)
		if !ok {
			return
		}

		if !c.consumeGas(uint64(size) * LogTopicGas) {
			return
		}

		if !c.consumeGas(mSize.Uint64() * LogDataGas) {
			return
		}

		c.host.EmitLog(c.msg.Address, topics, data)
	}
}

func opStop(c *state) {
	c.halt()
}

func opInvalid(c *state) {
	c.exit(runtime.ErrInvalidInstruction)
}

func opHalt(op OpCode) instruction {
	return func(c *state) {
		offset := c.pop()
		size := c.pop()

		var ok bool
		c.ret, ok = c.get2(c.ret[:0], offset, size)

		if !ok {
			return
		}

		if op == REVERT {
			c.exit(errRevert)
		} else {
			c.halt()
		}
	}
}

// calls

func opCall(op OpCode) instruction {
	return func(c *state) {
		c.resetReturnData()

		// a value transfer is the one operand-dependent mode violation:
		// the classification table cannot see the operand, so it is
		// rejected here
		if op == CALL && c.readOnly() {
			if val := c.peekAt(3); val != nil && val.Sign() != 0 {
				c.exit(runtime.ErrInvalidInstruction)

				return
			}
		}

		contract, ok := c.buildCallProgram(op)
		if !ok {
			return
		}

		if contract == nil {
			// call depth exceeded, the sub-call never starts
			c.push1().Set(zero)

			return
		}

		res := c.host.Callx(contract, c.host)

		v := c.push1()
		if res.Succeeded() {
			v.Set(one)
		} else {
			v.Set(zero)
		}

		if (res.Succeeded() || res.Reverted()) && len(res.ReturnValue) != 0 {
			offset := contract.RetOffset
			size := common.Min(contract.RetSize, uint64(len(res.ReturnValue)))
			copy(c.memory[offset:offset+size], res.ReturnValue)
		}

		c.gas += res.GasLeft
		c.returnData = append(c.returnData[:0], res.ReturnValue...)
	}
}

// buildCallProgram pops the call operands and builds the sub-program. A
// (nil, true) result means the depth limit was hit: the forwarded gas has
// been refunded and the caller only pushes the failure flag.
func (c *state) buildCallProgram(op OpCode) (*runtime.Program, bool) {
	initialGas := c.pop()
	addr, _ := c.popAddr()

	var value *big.Int
	if op == CALL {
		value = c.pop()
	}

	// input range
	inOffset := c.pop()
	inSize := c.pop()

	// output range
	retOffset := c.pop()
	retSize := c.pop()

	// expand memory over both the input and the output windows before
	// anything is copied
	in := calcMemSize(inOffset, inSize)
	ret := calcMemSize(retOffset, retSize)

	max := in
	if in.Cmp(ret) < 0 {
		max = ret
	}

	if !max.IsUint64() {
		c.exit(runtime.ErrOutOfGas)

		return nil, false
	}

	if !c.checkMemory(zero, max) {
		return nil, false
	}

	var gasCost uint64

	transfersValue := op == CALL && value != nil && value.Sign() != 0
	if transfersValue {
		gasCost += CallValueTransferGas
	}

	gas, ok := callGas(c.gas, gasCost, initialGas)
	if !ok {
		c.exit(runtime.ErrOutOfGas)

		return nil, false
	}

	if !c.consumeGas(gasCost + gas) {
		return nil, false
	}

	if transfersValue {
		gas += CallStipend
	}

	if c.msg.Depth >= CallDepth {
		c.gas += gas

		return nil, true
	}

	// the sub-program's instruction stream is the code registered at the
	// target address. The input window was expanded like any other memory
	// access but is not delivered to the callee: there is no structured
	// input channel in this instruction set.
	code := c.host.GetCode(addr)

	contract := &runtime.Program{
		Code:      code,
		Address:   addr,
		Origin:    c.msg.Origin,
		Caller:    c.msg.Address,
		Value:     value,
		Gas:       gas,
		Depth:     c.msg.Depth + 1,
		Mode:      c.msg.Mode,
		Transfer:  op == CALL,
		RetOffset: retOffset.Uint64(),
		RetSize:   retSize.Uint64(),
	}

	switch op {
	case STATICCALL:
		// everything below a static frame stays read-only
		contract.Mode = runtime.ModeReadOnly

	case DELEGATECALL:
		contract.Address = c.msg.Address
		contract.Caller = c.msg.Caller
		contract.Value = c.msg.Value
	}

	return contract, true
}

// callGas applies the 63/64 forwarding rule: the parent always retains at
// least 1/64 of its remaining budget
func callGas(availableGas, base uint64, requested *big.Int) (uint64, bool) {
	if availableGas < base {
		return 0, false
	}

	availableGas -= base
	gas := availableGas - availableGas/64

	if requested.BitLen() > 64 || gas < requested.Uint64() {
		return gas, true
	}

	return requested.Uint64(), true
}

var (
	tt256   = new(big.Int).Lsh(big.NewInt(1), 256)   // 2 ** 256
	tt256m1 = new(big.Int).Sub(tt256, big.NewInt(1)) // 2 ** 256 - 1
)

// toU256 reduces x modulo 2**256, the implicit wraparound of every
// arithmetic instruction
func toU256(x *big.Int) *big.Int {
	if x.Sign() < 0 || x.BitLen() > 256 {
		x.And(x, tt256m1)
	}

	return x
}

func to256(x *big.Int) *big.Int {
	if x.BitLen() > 255 {
		x.Sub(x, tt256)
	}

	return x
}
