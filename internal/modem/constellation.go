package modem

import (
	"errors"
	"fmt"
	"math"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
)

// ErrUnsupportedModulation is returned for modulation values outside the
// implemented set.
var ErrUnsupportedModulation = errors.New("unsupported modulation")

// Modulation represents a hard-decision modulation scheme.
type Modulation int

const (
	ModBPSK  Modulation = 1 // 1 bit per symbol
	ModQPSK  Modulation = 2 // 2 bits per symbol
	Mod16QAM Modulation = 4 // 4 bits per symbol
)

// QAM16Scale normalises a unit average power 16-QAM sample so that the
// constellation levels become -3, -1, 1, 3.
var QAM16Scale = math.Sqrt(2.0 / 3.0 * (16 - 1))

// BitsPerSymbol returns the number of bits per constellation symbol.
func (m Modulation) BitsPerSymbol() int {
	return int(m)
}

// Valid reports whether m is one of the implemented schemes.
func (m Modulation) Valid() bool {
	switch m {
	case ModBPSK, ModQPSK, Mod16QAM:
		return true
	}
	return false
}

// String returns the modulation name.
func (m Modulation) String() string {
	switch m {
	case ModBPSK:
		return "BPSK"
	case ModQPSK:
		return "QPSK"
	case Mod16QAM:
		return "16-QAM"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Constellation holds the points used to modulate bit labels. Demapping
// does not search the points: it uses the fixed decision regions of each
// scheme, so any sample is accepted.
type Constellation struct {
	Mod    Modulation
	points []complex128 // indexed by label, MSB-first
}

// NewConstellation creates the constellation for mod.
func NewConstellation(mod Modulation) (*Constellation, error) {
	c := &Constellation{Mod: mod}
	switch mod {
	case ModBPSK:
		c.points = []complex128{complex(-1, 0), complex(1, 0)}
	case ModQPSK:
		c.generateQPSK()
	case Mod16QAM:
		c.generateQAM16()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModulation, mod)
	}
	return c, nil
}

func (c *Constellation) generateQPSK() {
	a := 1 / math.Sqrt2
	c.points = make([]complex128, 4)
	for i := range c.points {
		c.points[i] = complex(axisLevel(i>>1, a), axisLevel(i&1, a))
	}
}

// generateQAM16 places label b1 b2 b3 b4 at (re(b1,b3), im(b2,b4)). The high
// bit selects the half plane (1 = negative), the low bit selects the inner
// ring (1 = |level| 1).
func (c *Constellation) generateQAM16() {
	c.points = make([]complex128, 16)
	for i := range c.points {
		b1 := (i >> 3) & 1
		b2 := (i >> 2) & 1
		b3 := (i >> 1) & 1
		b4 := i & 1
		re := qamLevel(b1, b3) / QAM16Scale
		im := qamLevel(b2, b4) / QAM16Scale
		c.points[i] = complex(re, im)
	}
}

func axisLevel(bit int, a float64) float64 {
	if bit == 1 {
		return a
	}
	return -a
}

func qamLevel(hi, lo int) float64 {
	level := 3.0
	if lo == 1 {
		level = 1
	}
	if hi == 1 {
		level = -level
	}
	return level
}

// Points returns a copy of the constellation points indexed by label.
func (c *Constellation) Points() []complex128 {
	out := make([]complex128, len(c.points))
	copy(out, c.points)
	return out
}

// Map maps one label of BitsPerSymbol bits to a constellation point.
func (c *Constellation) Map(bits []byte) complex128 {
	return c.points[bitutil.ToUint(bits)]
}

// Demap returns the hard-decision bits of one sample.
func (c *Constellation) Demap(symbol complex128) []byte {
	switch c.Mod {
	case ModBPSK:
		return []byte{sign(real(symbol))}
	case ModQPSK:
		return []byte{sign(real(symbol)), sign(imag(symbol))}
	default:
		re := real(symbol) * QAM16Scale
		im := imag(symbol) * QAM16Scale
		reHi, reLo := qamDecide(re)
		imHi, imLo := qamDecide(im)
		return []byte{reHi, imHi, reLo, imLo}
	}
}

// sign maps strictly positive values to 1; zero maps to 0.
func sign(v float64) byte {
	if v > 0 {
		return 1
	}
	return 0
}

func qamDecide(v float64) (hi, lo byte) {
	switch {
	case v < -2:
		return 1, 0
	case v < 0:
		return 1, 1
	case v < 2:
		return 0, 1
	default:
		return 0, 0
	}
}

// MapBits maps a bit slice to constellation symbols. The length must be a
// multiple of BitsPerSymbol.
func (c *Constellation) MapBits(bits []byte) ([]complex128, error) {
	bps := c.Mod.BitsPerSymbol()
	if len(bits)%bps != 0 {
		return nil, fmt.Errorf("bit count %d is not multiple of %d", len(bits), bps)
	}
	numSymbols := len(bits) / bps
	symbols := make([]complex128, numSymbols)

	for i := 0; i < numSymbols; i++ {
		symbols[i] = c.Map(bits[i*bps : (i+1)*bps])
	}
	return symbols, nil
}

// DemapSymbols demaps constellation symbols back to bits.
func (c *Constellation) DemapSymbols(symbols []complex128) []byte {
	bps := c.Mod.BitsPerSymbol()
	bits := make([]byte, 0, len(symbols)*bps)

	for _, s := range symbols {
		bits = append(bits, c.Demap(s)...)
	}
	return bits
}

// Demodulate converts samples to hard-decision bits for mod.
func Demodulate(samples []complex128, mod Modulation) ([]byte, error) {
	c, err := NewConstellation(mod)
	if err != nil {
		return nil, err
	}
	return c.DemapSymbols(samples), nil
}

// Modulate maps bits to samples for mod.
func Modulate(bits []byte, mod Modulation) ([]complex128, error) {
	c, err := NewConstellation(mod)
	if err != nil {
		return nil, err
	}
	return c.MapBits(bits)
}
