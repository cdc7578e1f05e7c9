package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShape is returned when a matrix does not have the frame geometry.
	ErrShape = errors.New("bad matrix shape")
	// ErrOutOfRange is returned when a block extends past the stream.
	ErrOutOfRange = errors.New("block out of range")
)

// Grid is a Rows x Width resource-element matrix.
type Grid struct {
	m *mat.CDense
}

// New returns an all-zero frame.
func New() *Grid {
	return &Grid{m: mat.NewCDense(Rows, Width, nil)}
}

// FromRows builds a grid from the first Rows rows, each Width samples long.
func FromRows(rows [][]complex128) (*Grid, error) {
	if len(rows) < Rows {
		return nil, fmt.Errorf("%w: %d rows, need %d", ErrShape, len(rows), Rows)
	}
	data := make([]complex128, 0, Rows*Width)
	for i, row := range rows[:Rows] {
		if len(row) != Width {
			return nil, fmt.Errorf("%w: row %d has %d columns, need %d", ErrShape, i, len(row), Width)
		}
		data = append(data, row...)
	}
	return &Grid{m: mat.NewCDense(Rows, Width, data)}, nil
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) complex128 {
	return g.m.At(row, col)
}

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v complex128) {
	g.m.Set(row, col, v)
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) []complex128 {
	raw := g.m.RawCMatrix()
	out := make([]complex128, Width)
	copy(out, raw.Data[i*raw.Stride:i*raw.Stride+Width])
	return out
}

// Matrix exposes the underlying dense matrix.
func (g *Grid) Matrix() *mat.CDense {
	return g.m
}

// Stream returns the non-sync rows flattened row-major.
func (g *Grid) Stream() Stream {
	s := make(Stream, 0, (Rows-SyncRows)*Width)
	for i := SyncRows; i < Rows; i++ {
		s = append(s, g.Row(i)...)
	}
	return s
}

// WriteStream stores samples into the non-sync rows starting at stream
// index offset.
func (g *Grid) WriteStream(offset int, samples []complex128) error {
	if offset < 0 || offset+len(samples) > (Rows-SyncRows)*Width {
		return fmt.Errorf("%w: [%d, %d) in %d samples", ErrOutOfRange, offset, offset+len(samples), (Rows-SyncRows)*Width)
	}
	for k, v := range samples {
		row, col := Unflatten(offset+k, Width)
		g.m.Set(row+SyncRows, col, v)
	}
	return nil
}

// Stream is the flattened data region of a frame. It is never modified
// after it is derived.
type Stream []complex128

// Block returns the n samples starting at offset.
func (s Stream) Block(offset, n int) ([]complex128, error) {
	if offset < 0 || n < 0 || offset+n > len(s) {
		return nil, fmt.Errorf("%w: [%d, %d) in %d samples", ErrOutOfRange, offset, offset+n, len(s))
	}
	return s[offset : offset+n], nil
}

// SymbolPower summarises the power of one OFDM symbol.
type SymbolPower struct {
	Symbol int
	Mean   float64
	StdDev float64
	Max    float64
}

// PowerProfile returns per-symbol power statistics over all subcarriers.
func (g *Grid) PowerProfile() []SymbolPower {
	profile := make([]SymbolPower, Rows)
	power := make([]float64, Width)
	for i := 0; i < Rows; i++ {
		for j, z := range g.Row(i) {
			power[j] = real(z)*real(z) + imag(z)*imag(z)
		}
		mean, std := stat.MeanStdDev(power, nil)
		profile[i] = SymbolPower{
			Symbol: i,
			Mean:   mean,
			StdDev: std,
			Max:    floats.Max(power),
		}
	}
	return profile
}
