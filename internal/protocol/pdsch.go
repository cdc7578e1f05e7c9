package protocol

import (
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

// Payload is a CRC-validated PDSCH payload.
type Payload struct {
	UserIdent int
	MCS       MCS
	CRCWidth  int
	Bits      []byte // data bits, CRC removed
	Coded     []byte // data bits followed by the CRC
}

// Validate re-checks the CRC over Coded.
func (p Payload) Validate() error {
	ok, err := fec.ValidateCRC(p.Coded, p.CRCWidth)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", ErrCRCMismatch, p.UserIdent)
	}
	return nil
}

// DecodePayload extracts, decodes and validates the PDSCH named by g.
func DecodePayload(s grid.Stream, g Grant) (Payload, error) {
	m, err := ParseMCS(g.MCS)
	if err != nil {
		return Payload{}, err
	}

	offset := grid.ResourceOffset(g.SymbStart, g.RBStart)
	block, err := s.Block(offset, grid.RBSize*g.RBSize)
	if err != nil {
		return Payload{}, fmt.Errorf("PDSCH user %d: %w", g.UserIdent, err)
	}
	bits, err := modem.Demodulate(block, m.Modulation)
	if err != nil {
		return Payload{}, err
	}
	decoded, err := m.decode(bits)
	if err != nil {
		return Payload{}, fmt.Errorf("PDSCH user %d (%s): %w", g.UserIdent, m, err)
	}

	p := Payload{
		UserIdent: g.UserIdent,
		MCS:       m,
		CRCWidth:  g.CRCWidth(),
		Coded:     decoded,
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	n := len(decoded) - p.CRCWidth
	p.Bits = decoded[:n:n]
	return p, nil
}
