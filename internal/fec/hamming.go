package fec

import (
	"errors"
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
)

var (
	// ErrInvalidLength is returned when an input is not a whole number of
	// code blocks.
	ErrInvalidLength = errors.New("invalid length")
	// ErrUncorrectable is returned when a Hamming block carries two errors.
	ErrUncorrectable = errors.New("uncorrectable block")
)

// Hamming(7,4) extended with an overall parity bit.
const (
	HammingBlockLen = 8
	HammingDataLen  = 4
)

// hammingH is the parity-check matrix. Column j (1-based) is j written in
// binary, so a non-zero syndrome is the position of a single error.
var hammingH = [3][7]byte{
	{0, 0, 0, 1, 1, 1, 1},
	{0, 1, 1, 0, 0, 1, 1},
	{1, 0, 1, 0, 1, 0, 1},
}

// DecodeHamming748 decodes consecutive 8-bit blocks into 4 data bits each,
// correcting single errors in the first 7 bits of a block.
func DecodeHamming748(bits []byte) ([]byte, error) {
	if len(bits)%HammingBlockLen != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a multiple of %d", ErrInvalidLength, len(bits), HammingBlockLen)
	}

	numBlocks := len(bits) / HammingBlockLen
	out := make([]byte, 0, numBlocks*HammingDataLen)
	for k := 0; k < numBlocks; k++ {
		data, err := decodeHammingBlock(bits[k*HammingBlockLen : (k+1)*HammingBlockLen])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", k, err)
		}
		out = append(out, data...)
	}
	return out, nil
}

func decodeHammingBlock(block []byte) ([]byte, error) {
	var cw [7]byte
	copy(cw[:], block[:7])

	syndrome := hammingSyndrome(cw)
	if syndrome != 0 {
		if bitutil.Parity(cw[:]) == block[7]&1 {
			return nil, ErrUncorrectable
		}
		cw[syndrome-1] ^= 1
	}

	data := make([]byte, HammingDataLen)
	copy(data, cw[:HammingDataLen])
	return data, nil
}

func hammingSyndrome(cw [7]byte) int {
	s := 0
	for _, row := range hammingH {
		var acc byte
		for j, h := range row {
			acc ^= h & cw[j]
		}
		s = (s << 1) | int(acc&1)
	}
	return s
}

// EncodeHamming748 encodes groups of 4 data bits into systematic 8-bit
// blocks: data, three parity bits, overall parity.
func EncodeHamming748(bits []byte) ([]byte, error) {
	if len(bits)%HammingDataLen != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a multiple of %d", ErrInvalidLength, len(bits), HammingDataLen)
	}

	out := make([]byte, 0, len(bits)*2)
	for k := 0; k < len(bits); k += HammingDataLen {
		d1, d2, d3, d4 := bits[k]&1, bits[k+1]&1, bits[k+2]&1, bits[k+3]&1
		block := []byte{
			d1, d2, d3, d4,
			d2 ^ d3 ^ d4,
			d1 ^ d3 ^ d4,
			d1 ^ d2 ^ d4,
		}
		block = append(block, bitutil.Parity(block))
		out = append(out, block...)
	}
	return out, nil
}
