// Package bitutil converts between unpacked bit slices (one 0/1 value per
// byte) and integers or packed bytes.
package bitutil

// ToUint interprets bits as an unsigned integer, most significant bit first.
func ToUint(bits []byte) uint64 {
	var v uint64
	for _, b := range bits {
		v = (v << 1) | uint64(b&1)
	}
	return v
}

// FromUint returns the n low bits of v, most significant bit first.
func FromUint(v uint64, n int) []byte {
	bits := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		bits[i] = byte(v & 1)
		v >>= 1
	}
	return bits
}

// PackLSB packs groups of 8 bits into bytes, first bit of each group being
// the least significant. A trailing partial group is dropped.
func PackLSB(bits []byte) []byte {
	numBytes := len(bits) / 8
	data := make([]byte, numBytes)
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b |= (bits[i*8+j] & 1) << uint(j)
		}
		data[i] = b
	}
	return data
}

// UnpackLSB is the inverse of PackLSB.
func UnpackLSB(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> uint(j)) & 1
		}
	}
	return bits
}

// Parity returns the XOR of all bits.
func Parity(bits []byte) byte {
	var p byte
	for _, b := range bits {
		p ^= b & 1
	}
	return p
}
