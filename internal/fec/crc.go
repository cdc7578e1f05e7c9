package fec

import (
	"errors"
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
)

// ErrUnsupportedCRC is returned for CRC widths without a generator.
var ErrUnsupportedCRC = errors.New("unsupported CRC width")

// CRC generator polynomials, leading term implicit.
const (
	CRC8Poly  = 0x9B   // D^8+D^7+D^4+D^3+D+1
	CRC16Poly = 0x1021 // D^16+D^12+D^5+1
)

func crcPoly(width int) (uint64, error) {
	switch width {
	case 8:
		return CRC8Poly, nil
	case 16:
		return CRC16Poly, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedCRC, width)
	}
}

// ComputeCRC returns the width-bit CRC of bits, MSB-first, zero initial
// value, no reflection and no final XOR.
func ComputeCRC(bits []byte, width int) ([]byte, error) {
	poly, err := crcPoly(width)
	if err != nil {
		return nil, err
	}

	top := uint64(1) << (width - 1)
	mask := uint64(1)<<width - 1
	var reg uint64
	for _, b := range bits {
		fb := (reg&top != 0) != (b&1 == 1)
		reg = (reg << 1) & mask
		if fb {
			reg ^= poly
		}
	}
	return bitutil.FromUint(reg, width), nil
}

// AppendCRC returns bits followed by their CRC.
func AppendCRC(bits []byte, width int) ([]byte, error) {
	crc, err := ComputeCRC(bits, width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(bits)+width)
	out = append(out, bits...)
	return append(out, crc...), nil
}

// ValidateCRC reports whether the trailing width bits of bits are the CRC
// of the bits before them. A sequence shorter than the CRC never validates.
func ValidateCRC(bits []byte, width int) (bool, error) {
	if _, err := crcPoly(width); err != nil {
		return false, err
	}
	if len(bits) < width {
		return false, nil
	}

	data := bits[:len(bits)-width]
	expected := bits[len(bits)-width:]
	actual, err := ComputeCRC(data, width)
	if err != nil {
		return false, err
	}
	for i := range actual {
		if actual[i] != expected[i]&1 {
			return false, nil
		}
	}
	return true, nil
}
