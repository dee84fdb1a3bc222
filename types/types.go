package types

import (
	"strings"

	"github.com/Analog-Labs/evm-interpreter/helper/hex"
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash is the fixed 256-bit word used for storage keys and values
type Hash [HashLength]byte

// Address is a 20-byte account identifier
type Address [AddressLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

// BytesToHash converts a byte slice to a Hash, left-padding with zeroes
func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

// BytesToAddress converts a byte slice to an Address, left-padding with zeroes
func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToHex(a[:])
}

func stringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

// StringToHash parses a hex string into a Hash
func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

// StringToAddress parses a hex string into an Address
func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}
