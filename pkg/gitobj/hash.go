// Package gitobj provides the object identity and tree encoding primitives
// shared by the object store and the diff engine.
package gitobj

// Constants for hash operations.
const (
	// HashSize is the size of a SHA-1 hash in bytes.
	HashSize = 20
	// HashHexSize is the size of a hex-encoded SHA-1 hash.
	HashHexSize = 40
	// hexBase is the base for hexadecimal digits a-f.
	hexBase = 10
	// hexShift is the bit shift for the high nibble.
	hexShift = 4
)

// Hash identifies an object by the SHA-1 of its content.
type Hash [HashSize]byte

// ZeroHash returns the zero value hash.
func ZeroHash() Hash {
	return Hash{}
}

// NewHash creates a Hash from a hex string.
// Malformed characters decode as zero nibbles; use ParseHash to reject them.
func NewHash(hexStr string) Hash {
	var hash Hash

	for i := 0; i < HashSize && i*2+1 < len(hexStr); i++ {
		c1, c2 := hexStr[i*2], hexStr[i*2+1]
		hash[i] = hexCharToNibble(c1)<<hexShift | hexCharToNibble(c2)
	}

	return hash
}

// ParseHash creates a Hash from a hex string, validating length and characters.
func ParseHash(hexStr string) (Hash, error) {
	if len(hexStr) != HashHexSize {
		return Hash{}, &InvalidHashError{Input: hexStr}
	}

	for i := range len(hexStr) {
		if !isHexChar(hexStr[i]) {
			return Hash{}, &InvalidHashError{Input: hexStr}
		}
	}

	return NewHash(hexStr), nil
}

// InvalidHashError reports a string that is not a valid hex object hash.
type InvalidHashError struct {
	Input string
}

func (e *InvalidHashError) Error() string {
	return "invalid object hash: " + e.Input
}

func isHexChar(char byte) bool {
	return (char >= '0' && char <= '9') ||
		(char >= 'a' && char <= 'f') ||
		(char >= 'A' && char <= 'F')
}

// hexCharToNibble converts a hex character to its 4-bit value.
func hexCharToNibble(char byte) byte {
	switch {
	case char >= '0' && char <= '9':
		return char - '0'
	case char >= 'a' && char <= 'f':
		return char - 'a' + hexBase
	case char >= 'A' && char <= 'F':
		return char - 'A' + hexBase
	default:
		return 0
	}
}

// String returns the hex representation of the hash.
func (h Hash) String() string {
	const hexChars = "0123456789abcdef"

	buf := make([]byte, HashHexSize)

	for i, byteVal := range h {
		buf[i*2] = hexChars[byteVal>>hexShift]
		buf[i*2+1] = hexChars[byteVal&0x0f]
	}

	return string(buf)
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}

	return true
}
