package protocol

import (
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

// GrantBits is the number of decoded PDCCHU bits that carry grant fields.
const GrantBits = 36

// Grant is a decoded PDCCHU block.
type Grant struct {
	UserIdent int // 8 bits
	MCS       int // 6 bits, PDSCH mcs
	SymbStart int // 4 bits
	RBStart   int // 6 bits
	RBSize    int // 10 bits
	CRCFlag   int // 2 bits
}

// CRCWidth is the PDSCH CRC length in bits.
func (g Grant) CRCWidth() int {
	return 8 * (g.CRCFlag + 1)
}

// GrantSamples returns the PDCCHU length: 3 resource blocks when the
// descriptor selects 16-QAM, 6 otherwise.
func GrantSamples(descMCS int) int {
	if descMCS == 2 {
		return 3 * grid.RBSize
	}
	return 6 * grid.RBSize
}

// DecodeGrant locates and decodes the PDCCHU named by d.
func DecodeGrant(s grid.Stream, d UserDescriptor) (Grant, error) {
	mod, err := ControlModulation(d.MCS)
	if err != nil {
		return Grant{}, err
	}

	offset := grid.ResourceOffset(d.SymbStart, d.RBStart)
	block, err := s.Block(offset, GrantSamples(d.MCS))
	if err != nil {
		return Grant{}, fmt.Errorf("PDCCHU user %d: %w", d.UserIdent, err)
	}
	bits, err := modem.Demodulate(block, mod)
	if err != nil {
		return Grant{}, err
	}
	data, err := fec.DecodeHamming748(bits)
	if err != nil {
		return Grant{}, fmt.Errorf("PDCCHU user %d: %w", d.UserIdent, err)
	}
	if len(data) < GrantBits {
		return Grant{}, fmt.Errorf("%w: PDCCHU carries %d bits, need %d", fec.ErrInvalidLength, len(data), GrantBits)
	}

	g := Grant{
		UserIdent: int(bitutil.ToUint(data[0:8])),
		MCS:       int(bitutil.ToUint(data[8:14])),
		SymbStart: int(bitutil.ToUint(data[14:18])),
		RBStart:   int(bitutil.ToUint(data[18:24])),
		RBSize:    int(bitutil.ToUint(data[24:34])),
		CRCFlag:   int(bitutil.ToUint(data[34:36])),
	}
	if g.UserIdent != d.UserIdent {
		return Grant{}, fmt.Errorf("%w: descriptor %d, grant %d", ErrIdentMismatch, d.UserIdent, g.UserIdent)
	}
	return g, nil
}
