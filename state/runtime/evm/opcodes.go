package evm

import (
	"strconv"
)

// OpCode is a single byte selecting one VM operation
type OpCode int

const (
	// STOP halts execution of the program
	STOP = 0x0

	// ADD performs (u)int256 addition modulo 2**256
	ADD = 0x01

	// MUL performs (u)int256 multiplication modulo 2**256
	MUL = 0x02

	// SUB performs (u)int256 subtraction modulo 2**256
	SUB = 0x03

	// DIV performs uint256 division
	DIV = 0x04

	// SDIV performs int256 division
	SDIV = 0x05

	// MOD performs uint256 modulo
	MOD = 0x06

	// SMOD performs int256 modulo
	SMOD = 0x07

	// ADDMOD performs addition modulo an arbitrary number
	ADDMOD = 0x08

	// MULMOD performs multiplication modulo an arbitrary number
	MULMOD = 0x09

	// EXP performs exponentiation modulo 2**256
	EXP = 0x0A

	// SIGNEXTEND extends the length of a two's complement signed integer
	SIGNEXTEND = 0x0B

	// LT performs less-than comparison
	LT = 0x10

	// GT performs greater-than comparison
	GT = 0x11

	// SLT performs signed less-than comparison
	SLT = 0x12

	// SGT performs signed greater-than comparison
	SGT = 0x13

	// EQ performs equality comparison
	EQ = 0x14

	// ISZERO checks if the top word is zero
	ISZERO = 0x15

	// AND performs bitwise AND
	AND = 0x16

	// OR performs bitwise OR
	OR = 0x17

	// XOR performs bitwise XOR
	XOR = 0x18

	// NOT performs bitwise NOT
	NOT = 0x19

	// BYTE retrieves a single byte from a word
	BYTE = 0x1A

	// SHL performs a left shift
	SHL = 0x1B

	// SHR performs a logical right shift
	SHR = 0x1C

	// SAR performs an arithmetic right shift
	SAR = 0x1D

	// SHA3 computes the keccak-256 hash of a memory slice
	SHA3 = 0x20

	// ADDRESS returns the address of the executing context
	ADDRESS = 0x30

	// BALANCE returns the balance of the given account
	BALANCE = 0x31

	// ORIGIN returns the top-level invoker address
	ORIGIN = 0x32

	// CALLER returns the direct caller address
	CALLER = 0x33

	// CALLVALUE returns the value attached to the invocation
	CALLVALUE = 0x34

	// CODESIZE returns the size of the executing program
	CODESIZE = 0x38

	// CODECOPY copies a program slice into memory
	CODECOPY = 0x39

	// GASPRICE returns the gas price of the enclosing context
	GASPRICE = 0x3A

	// EXTCODESIZE returns the code size of the given account
	EXTCODESIZE = 0x3B

	// EXTCODECOPY copies an account's code into memory
	EXTCODECOPY = 0x3C

	// RETURNDATASIZE returns the size of the last sub-call return data
	RETURNDATASIZE = 0x3D

	// RETURNDATACOPY copies sub-call return data into memory
	RETURNDATACOPY = 0x3E

	// EXTCODEHASH returns the code hash of the given account
	EXTCODEHASH = 0x3F

	// BLOCKHASH returns the hash of one of the most recent blocks
	BLOCKHASH = 0x40

	// COINBASE returns the block beneficiary address
	COINBASE = 0x41

	// TIMESTAMP returns the block timestamp
	TIMESTAMP = 0x42

	// NUMBER returns the block number
	NUMBER = 0x43

	// DIFFICULTY returns the block difficulty
	DIFFICULTY = 0x44

	// GASLIMIT returns the block gas limit
	GASLIMIT = 0x45

	// CHAINID returns the chain identifier of the host
	CHAINID = 0x46

	// SELFBALANCE returns the balance of the executing context
	SELFBALANCE = 0x47

	// POP removes the top stack word
	POP = 0x50

	// MLOAD loads a word from memory
	MLOAD = 0x51

	// MSTORE stores a word to memory
	MSTORE = 0x52

	// MSTORE8 stores a single byte to memory
	MSTORE8 = 0x53

	// SLOAD loads a word from persistent storage
	SLOAD = 0x54

	// SSTORE stores a word to persistent storage
	SSTORE = 0x55

	// JUMP unconditionally alters the program counter
	JUMP = 0x56

	// JUMPI conditionally alters the program counter
	JUMPI = 0x57

	// PC returns the current program counter
	PC = 0x58

	// MSIZE returns the active memory size
	MSIZE = 0x59

	// GAS returns the remaining gas
	GAS = 0x5A

	// JUMPDEST marks a valid jump destination
	JUMPDEST = 0x5B

	// TLOAD loads a word from transient storage
	TLOAD = 0x5C

	// TSTORE stores a word to transient storage
	TSTORE = 0x5D

	// MCOPY copies one memory area onto another
	MCOPY = 0x5E

	// PUSH0 places a zero word on the stack
	PUSH0 = 0x5F

	// PUSH1 places a 1-byte immediate on the stack; PUSH2..PUSH32 follow
	PUSH1  = 0x60
	PUSH2  = 0x61
	PUSH17 = 0x70
	PUSH32 = 0x7F

	// DUP1 duplicates the top stack word; DUP2..DUP16 follow
	DUP1  = 0x80
	DUP2  = 0x81
	DUP16 = 0x8F

	// SWAP1 exchanges the two top stack words; SWAP2..SWAP16 follow
	SWAP1  = 0x90
	SWAP2  = 0x91
	SWAP5  = 0x94
	SWAP16 = 0x9F

	// LOG0 emits a log record with no topics; LOG1..LOG4 follow
	LOG0 = 0xA0
	LOG1 = 0xA1
	LOG3 = 0xA3
	LOG4 = 0xA4

	// CALL message-calls into another program
	CALL = 0xF1

	// RETURN halts execution returning a memory slice
	RETURN = 0xF3

	// DELEGATECALL message-calls into another program reusing the
	// current context
	DELEGATECALL = 0xF4

	// STATICCALL message-calls into another program in read-only mode
	STATICCALL = 0xFA

	// REVERT halts execution discarding state changes and returning a
	// caller-defined reason
	REVERT = 0xFD

	// INVALID is the designated invalid instruction
	INVALID = 0xFE
)

var opCodeToString = map[OpCode]string{
	STOP:           "STOP",
	ADD:            "ADD",
	MUL:            "MUL",
	SUB:            "SUB",
	DIV:            "DIV",
	SDIV:           "SDIV",
	MOD:            "MOD",
	SMOD:           "SMOD",
	ADDMOD:         "ADDMOD",
	MULMOD:         "MULMOD",
	EXP:            "EXP",
	SIGNEXTEND:     "SIGNEXTEND",
	LT:             "LT",
	GT:             "GT",
	SLT:            "SLT",
	SGT:            "SGT",
	EQ:             "EQ",
	ISZERO:         "ISZERO",
	AND:            "AND",
	OR:             "OR",
	XOR:            "XOR",
	NOT:            "NOT",
	BYTE:           "BYTE",
	SHL:            "SHL",
	SHR:            "SHR",
	SAR:            "SAR",
	SHA3:           "SHA3",
	ADDRESS:        "ADDRESS",
	BALANCE:        "BALANCE",
	ORIGIN:         "ORIGIN",
	CALLER:         "CALLER",
	CALLVALUE:      "CALLVALUE",
	CODESIZE:       "CODESIZE",
	CODECOPY:       "CODECOPY",
	GASPRICE:       "GASPRICE",
	EXTCODESIZE:    "EXTCODESIZE",
	EXTCODECOPY:    "EXTCODECOPY",
	RETURNDATASIZE: "RETURNDATASIZE",
	RETURNDATACOPY: "RETURNDATACOPY",
	EXTCODEHASH:    "EXTCODEHASH",
	BLOCKHASH:      "BLOCKHASH",
	COINBASE:       "COINBASE",
	TIMESTAMP:      "TIMESTAMP",
	NUMBER:         "NUMBER",
	DIFFICULTY:     "DIFFICULTY",
	GASLIMIT:       "GASLIMIT",
	CHAINID:        "CHAINID",
	SELFBALANCE:    "SELFBALANCE",
	POP:            "POP",
	MLOAD:          "MLOAD",
	MSTORE:         "MSTORE",
	MSTORE8:        "MSTORE8",
	SLOAD:          "SLOAD",
	SSTORE:         "SSTORE",
	JUMP:           "JUMP",
	JUMPI:          "JUMPI",
	PC:             "PC",
	MSIZE:          "MSIZE",
	GAS:            "GAS",
	JUMPDEST:       "JUMPDEST",
	TLOAD:          "TLOAD",
	TSTORE:         "TSTORE",
	MCOPY:          "MCOPY",
	PUSH0:          "PUSH0",
	CALL:           "CALL",
	RETURN:         "RETURN",
	DELEGATECALL:   "DELEGATECALL",
	STATICCALL:     "STATICCALL",
	REVERT:         "REVERT",
	INVALID:        "INVALID",
}

func init() {
	// PUSH1..PUSH32, DUP1..DUP16, SWAP1..SWAP16 and LOG0..LOG4 are
	// generated, the names follow their offset within the family
	for i := 1; i <= 32; i++ {
		opCodeToString[OpCode(PUSH1+i-1)] = "PUSH" + strconv.Itoa(i)
	}

	for i := 1; i <= 16; i++ {
		opCodeToString[OpCode(DUP1+i-1)] = "DUP" + strconv.Itoa(i)
		opCodeToString[OpCode(SWAP1+i-1)] = "SWAP" + strconv.Itoa(i)
	}

	for i := 0; i <= 4; i++ {
		opCodeToString[OpCode(LOG0+i)] = "LOG" + strconv.Itoa(i)
	}
}

func (op OpCode) String() string {
	return opCodeToString[op]
}
