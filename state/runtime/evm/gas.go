package evm

// Fixed gas costs shared by most instructions. Executing through the
// interpreter adds a roughly constant dispatch overhead per instruction on
// top of these; that overhead is the cost of running non-deployed code
// through an extra dispatch layer and is accepted, not corrected for.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasReturn      uint64 = 0
	GasStop        uint64 = 0

	// MemoryGas is the linear coefficient of the memory expansion cost
	MemoryGas uint64 = 3
	// QuadCoeffDiv is the divisor of the quadratic coefficient of the
	// memory expansion cost
	QuadCoeffDiv uint64 = 512
)

// Keccak gas prices
const (
	// Sha3Gas once per SHA3 operation
	Sha3Gas uint64 = 30
	// Sha3WordGas once per word of the SHA3 operation's data
	Sha3WordGas uint64 = 6
)

// Persistent storage gas prices. Slots are warm once accessed within one
// top-level invocation, cold otherwise.
const (
	// WarmStorageReadGas for an SLOAD of an already accessed slot
	WarmStorageReadGas uint64 = 100
	// ColdSloadGas for the first SLOAD of a slot in the invocation
	ColdSloadGas uint64 = 2100

	// SstoreSetGas once per SSTORE operation writing a zero slot
	SstoreSetGas uint64 = 20000
	// SstoreResetGas once per SSTORE operation updating a non-zero slot
	SstoreResetGas uint64 = 5000
)

// Transient storage gas prices
const (
	// TLoadGas once per TLOAD operation
	TLoadGas uint64 = 100
	// TStoreGas once per TSTORE operation
	TStoreGas uint64 = 100
)

const (
	// ExpGas is the static portion of an EXP operation
	ExpGas uint64 = 10
	// ExpByteGas once per byte of the EXP exponent
	ExpByteGas uint64 = 50
	// CopyGas multiplied by the number of words copied
	CopyGas uint64 = 3
	// BalanceGas once per BALANCE or SELFBALANCE operation
	BalanceGas uint64 = 100
	// ExtCodeGas once per EXTCODESIZE/EXTCODECOPY/EXTCODEHASH operation
	ExtCodeGas uint64 = 700
	// BlockHashGas once per BLOCKHASH operation
	BlockHashGas uint64 = 20
)

const (
	// CallGas is the base price of a CALL family operation
	CallGas uint64 = 700
	// CallValueTransferGas paid for CALL when the value transfer is non-zero
	CallValueTransferGas uint64 = 9000
	// CallStipend is the free gas given at the beginning of a value call
	CallStipend uint64 = 2300
	// CallDepth is the maximum depth of the synchronous sub-call stack
	CallDepth = 1024
)

const (
	// LogGas per LOG* operation
	LogGas uint64 = 375
	// LogTopicGas multiplied by the topic count of the LOG* operation
	LogTopicGas uint64 = 375
	// LogDataGas per byte of the LOG* operation's data
	LogDataGas uint64 = 8
)
