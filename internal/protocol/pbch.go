package protocol

import (
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

// PBCH block geometry: each block is 48 BPSK samples carrying 24 bits
// after Hamming decoding.
const (
	PBCHBlockSamples = 48
	PBCHBlockBits    = 24
)

// Header is the first PBCH block.
type Header struct {
	CellIdent int // 18 bits
	UserCount int // 6 bits
}

// UserDescriptor is one per-user PBCH block.
type UserDescriptor struct {
	Index     int // slot in the PBCH, 0-based
	UserIdent int // 8 bits
	MCS       int // 2 bits, PDCCHU modulation
	SymbStart int // 4 bits
	RBStart   int // 6 bits
	HARQ      int // 4 bits
}

func decodePBCHBlock(s grid.Stream, offset int) ([]byte, error) {
	block, err := s.Block(offset, PBCHBlockSamples)
	if err != nil {
		return nil, err
	}
	bits, err := modem.Demodulate(block, modem.ModBPSK)
	if err != nil {
		return nil, err
	}
	return fec.DecodeHamming748(bits)
}

// DecodeHeader decodes the cell identity and the user count.
func DecodeHeader(s grid.Stream) (Header, error) {
	bits, err := decodePBCHBlock(s, 0)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return Header{
		CellIdent: int(bitutil.ToUint(bits[:18])),
		UserCount: int(bitutil.ToUint(bits[18:24])),
	}, nil
}

// DecodeUserDescriptor decodes the descriptor in PBCH slot index.
func DecodeUserDescriptor(s grid.Stream, index int) (UserDescriptor, error) {
	bits, err := decodePBCHBlock(s, (index+1)*PBCHBlockSamples)
	if err != nil {
		return UserDescriptor{}, fmt.Errorf("user descriptor %d: %w", index, err)
	}
	return UserDescriptor{
		Index:     index,
		UserIdent: int(bitutil.ToUint(bits[0:8])),
		MCS:       int(bitutil.ToUint(bits[8:10])),
		SymbStart: int(bitutil.ToUint(bits[10:14])),
		RBStart:   int(bitutil.ToUint(bits[14:20])),
		HARQ:      int(bitutil.ToUint(bits[20:24])),
	}, nil
}

// FindUser scans the userCount descriptors and returns the first one
// carrying ident.
func FindUser(s grid.Stream, userCount, ident int) (UserDescriptor, error) {
	for u := 0; u < userCount; u++ {
		d, err := DecodeUserDescriptor(s, u)
		if err != nil {
			return UserDescriptor{}, err
		}
		if d.UserIdent == ident {
			return d, nil
		}
	}
	return UserDescriptor{}, &UserNotFoundError{Ident: ident, UserCount: userCount}
}

// DecodeUserDescriptors decodes every descriptor announced by h.
func DecodeUserDescriptors(s grid.Stream, h Header) ([]UserDescriptor, error) {
	users := make([]UserDescriptor, 0, h.UserCount)
	for u := 0; u < h.UserCount; u++ {
		d, err := DecodeUserDescriptor(s, u)
		if err != nil {
			return nil, err
		}
		users = append(users, d)
	}
	return users, nil
}
