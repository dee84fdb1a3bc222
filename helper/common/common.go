package common

// Min returns the strictly lower number
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}

	return b
}

// ExtendByteSlice extends given byte slice to the given length,
// reusing the underlying array when the capacity allows it
func ExtendByteSlice(b []byte, needLength int) []byte {
	b = b[:cap(b)]

	if n := needLength - cap(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:needLength]
}

// RightPadBytes zero-pads the slice on the right up to the given length
func RightPadBytes(b []byte, size int) []byte {
	if size <= len(b) {
		return b
	}

	padded := make([]byte, size)
	copy(padded, b)

	return padded
}
