package evm

// opClass is the execution-mode classification of one opcode. It is kept as
// a declarative per-opcode table (consulted once per dispatched instruction)
// rather than as conditionals spread through the handlers, so the set of
// instructions rejected in read-only mode stays auditable in one place.
type opClass int

const (
	// classPure instructions touch only stack, memory and control flow
	classPure opClass = iota

	// classRead instructions read host state
	classRead

	// classMutate instructions write host state, emit logs or create
	// sub-contexts; the mode gate rejects them in read-only mode
	classMutate

	// classCall instructions enter a synchronous sub-context. Plain
	// calls are legal in read-only mode, a non-zero value transfer is
	// rejected by the handler (it is the one operand-dependent case).
	classCall
)

type operation struct {
	// inst is the instruction handler; nil marks an unassigned opcode
	inst instruction

	// stack is the minimum stack depth the instruction requires
	stack int

	// gas is the fixed cost, charged before execution. Dynamic costs
	// (memory expansion, copies, cold slots, forwarded call gas) are
	// charged by the handlers.
	gas uint64

	// class is the execution-mode classification
	class opClass
}

// dispatchTable maps every value of the full 0-255 opcode space to its
// handler. Unassigned values keep the zero entry and resolve to an invalid
// instruction abort that consumes all remaining gas: in this instruction
// set failures are expensive, not free.
//
// CALLDATALOAD/CALLDATASIZE/CALLDATACOPY are deliberately unassigned: there
// is no structured input channel, any values a program needs must be
// embedded in its own bytes. CREATE/CREATE2/CALLCODE/SELFDESTRUCT are
// unassigned because the host borrows a single storage context and owns no
// account namespace to deploy into or destroy.
var dispatchTable [256]operation

func register(op OpCode, inst instruction, stack int, gas uint64, class opClass) {
	dispatchTable[op] = operation{inst: inst, stack: stack, gas: gas, class: class}
}

func init() {
	register(STOP, opStop, 0, GasStop, classPure)

	// arithmetic
	register(ADD, opAdd, 2, GasFastestStep, classPure)
	register(MUL, opMul, 2, GasFastStep, classPure)
	register(SUB, opSub, 2, GasFastestStep, classPure)
	register(DIV, opDiv, 2, GasFastStep, classPure)
	register(SDIV, opSDiv, 2, GasFastStep, classPure)
	register(MOD, opMod, 2, GasFastStep, classPure)
	register(SMOD, opSMod, 2, GasFastStep, classPure)
	register(ADDMOD, opAddMod, 3, GasMidStep, classPure)
	register(MULMOD, opMulMod, 3, GasMidStep, classPure)
	register(EXP, opExp, 2, ExpGas, classPure)
	register(SIGNEXTEND, opSignExtension, 2, GasFastStep, classPure)

	// comparison and bitwise
	register(LT, opLt, 2, GasFastestStep, classPure)
	register(GT, opGt, 2, GasFastestStep, classPure)
	register(SLT, opSlt, 2, GasFastestStep, classPure)
	register(SGT, opSgt, 2, GasFastestStep, classPure)
	register(EQ, opEq, 2, GasFastestStep, classPure)
	register(ISZERO, opIsZero, 1, GasFastestStep, classPure)
	register(AND, opAnd, 2, GasFastestStep, classPure)
	register(OR, opOr, 2, GasFastestStep, classPure)
	register(XOR, opXor, 2, GasFastestStep, classPure)
	register(NOT, opNot, 1, GasFastestStep, classPure)
	register(BYTE, opByte, 2, GasFastestStep, classPure)
	register(SHL, opShl, 2, GasFastestStep, classPure)
	register(SHR, opShr, 2, GasFastestStep, classPure)
	register(SAR, opSar, 2, GasFastestStep, classPure)

	register(SHA3, opSha3, 2, Sha3Gas, classPure)

	// execution context
	register(ADDRESS, opAddress, 0, GasQuickStep, classPure)
	register(BALANCE, opBalance, 1, BalanceGas, classRead)
	register(ORIGIN, opOrigin, 0, GasQuickStep, classPure)
	register(CALLER, opCaller, 0, GasQuickStep, classPure)
	register(CALLVALUE, opCallValue, 0, GasQuickStep, classPure)
	register(CODESIZE, opCodeSize, 0, GasQuickStep, classPure)
	register(CODECOPY, opCodeCopy, 3, GasFastestStep, classPure)
	register(GASPRICE, opGasPrice, 0, GasQuickStep, classPure)
	register(EXTCODESIZE, opExtCodeSize, 1, ExtCodeGas, classRead)
	register(EXTCODECOPY, opExtCodeCopy, 4, ExtCodeGas, classRead)
	register(RETURNDATASIZE, opReturnDataSize, 0, GasQuickStep, classPure)
	register(RETURNDATACOPY, opReturnDataCopy, 3, GasFastestStep, classPure)
	register(EXTCODEHASH, opExtCodeHash, 1, ExtCodeGas, classRead)

	// block information
	register(BLOCKHASH, opBlockHash, 1, BlockHashGas, classRead)
	register(COINBASE, opCoinbase, 0, GasQuickStep, classPure)
	register(TIMESTAMP, opTimestamp, 0, GasQuickStep, classPure)
	register(NUMBER, opNumber, 0, GasQuickStep, classPure)
	register(DIFFICULTY, opDifficulty, 0, GasQuickStep, classPure)
	register(GASLIMIT, opGasLimit, 0, GasQuickStep, classPure)
	register(CHAINID, opChainID, 0, GasQuickStep, classPure)
	register(SELFBALANCE, opSelfBalance, 0, GasFastStep, classRead)

	// stack, memory, storage and control flow
	register(POP, opPop, 1, GasQuickStep, classPure)
	register(MLOAD, opMload, 1, GasFastestStep, classPure)
	register(MSTORE, opMStore, 2, GasFastestStep, classPure)
	register(MSTORE8, opMStore8, 2, GasFastestStep, classPure)
	register(SLOAD, opSload, 1, 0, classRead)
	register(SSTORE, opSStore, 2, 0, classMutate)
	register(JUMP, opJump, 1, GasMidStep, classPure)
	register(JUMPI, opJumpi, 2, GasSlowStep, classPure)
	register(PC, opPC, 0, GasQuickStep, classPure)
	register(MSIZE, opMSize, 0, GasQuickStep, classPure)
	register(GAS, opGas, 0, GasQuickStep, classPure)
	register(JUMPDEST, opJumpDest, 0, 1, classPure)
	register(TLOAD, opTLoad, 1, TLoadGas, classRead)
	register(TSTORE, opTStore, 2, TStoreGas, classMutate)
	register(MCOPY, opMCopy, 3, GasFastestStep, classPure)
	register(PUSH0, opPush0, 0, GasQuickStep, classPure)

	// push, dup, swap and log families
	for i := 1; i <= 32; i++ {
		register(OpCode(PUSH1+i-1), opPush(i), 0, GasFastestStep, classPure)
	}

	for i := 1; i <= 16; i++ {
		register(OpCode(DUP1+i-1), opDup(i), i, GasFastestStep, classPure)
		register(OpCode(SWAP1+i-1), opSwap(i), i+1, GasFastestStep, classPure)
	}

	for i := 0; i <= 4; i++ {
		register(OpCode(LOG0+i), opLog(i), i+2, LogGas, classMutate)
	}

	// calls and halts
	register(CALL, opCall(CALL), 7, CallGas, classCall)
	register(DELEGATECALL, opCall(DELEGATECALL), 6, CallGas, classCall)
	register(STATICCALL, opCall(STATICCALL), 6, CallGas, classCall)
	register(RETURN, opHalt(RETURN), 2, GasReturn, classPure)
	register(REVERT, opHalt(REVERT), 2, GasReturn, classPure)
	register(INVALID, opInvalid, 0, 0, classPure)
}
