package protocol

import (
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

// Coding is the channel coding selected by mcs / 5.
type Coding int

const (
	CodingConvolutional Coding = 1 // rate 1/2, K=7
	CodingHamming       Coding = 5 // Hamming(8,4)
)

// String returns the coding name.
func (c Coding) String() string {
	switch c {
	case CodingConvolutional:
		return "conv-1/2"
	case CodingHamming:
		return "hamming-8/4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// MCS is a parsed modulation and coding scheme.
type MCS struct {
	Value      int
	Modulation modem.Modulation
	Coding     Coding
}

// ParseMCS splits a PDSCH mcs value into modulation (mcs % 5) and coding
// (mcs / 5). Reserved values of either part are errors.
func ParseMCS(v int) (MCS, error) {
	m := MCS{Value: v}

	switch v % 5 {
	case 0:
		m.Modulation = modem.ModBPSK
	case 1:
		m.Modulation = modem.ModQPSK
	case 2:
		m.Modulation = modem.Mod16QAM
	default:
		return MCS{}, fmt.Errorf("mcs %d: %w", v, modem.ErrUnsupportedModulation)
	}

	switch c := Coding(v / 5); c {
	case CodingConvolutional, CodingHamming:
		m.Coding = c
	default:
		return MCS{}, fmt.Errorf("mcs %d: %w", v, fec.ErrUnsupportedCodingRate)
	}
	return m, nil
}

// String returns e.g. "16-QAM/hamming-8/4".
func (m MCS) String() string {
	return m.Modulation.String() + "/" + m.Coding.String()
}

// DataBits returns the decoded bit count (payload plus CRC) carried by
// rbSize resource blocks.
func (m MCS) DataBits(rbSize int) (int, error) {
	coded := grid.RBSize * rbSize * m.Modulation.BitsPerSymbol()
	switch m.Coding {
	case CodingHamming:
		if coded%fec.HammingBlockLen != 0 {
			return 0, fmt.Errorf("%w: %d coded bits for %s", fec.ErrInvalidLength, coded, m)
		}
		return coded / 2, nil
	default:
		if coded < 2*fec.ConvMemory {
			return 0, fmt.Errorf("%w: %d coded bits for %s", fec.ErrInvalidLength, coded, m)
		}
		return coded/2 - fec.ConvMemory, nil
	}
}

func (m MCS) decode(coded []byte) ([]byte, error) {
	if m.Coding == CodingHamming {
		return fec.DecodeHamming748(coded)
	}
	return fec.DecodeConvolutional(coded, fec.RateHalf)
}

func (m MCS) encode(data []byte) ([]byte, error) {
	if m.Coding == CodingHamming {
		return fec.EncodeHamming748(data)
	}
	return fec.EncodeConvolutional(data), nil
}

// ControlModulation maps the 2-bit PBCH descriptor mcs to the PDCCHU
// modulation. Value 3 is reserved.
func ControlModulation(v int) (modem.Modulation, error) {
	switch v {
	case 0:
		return modem.ModBPSK, nil
	case 1:
		return modem.ModQPSK, nil
	case 2:
		return modem.Mod16QAM, nil
	default:
		return 0, fmt.Errorf("control mcs %d: %w", v, modem.ErrUnsupportedModulation)
	}
}
