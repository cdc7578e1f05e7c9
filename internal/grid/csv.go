package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Subcarrier ranges kept from a full-band row: 312 below DC and 312 above,
// DC itself excluded.
const (
	lowStart  = 1
	lowEnd    = Width/2 + 1
	highStart = FFTSize - Width/2
)

func isZstd(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// LoadCSV reads a matrix file. Paths ending in .zst are zstd-compressed.
func LoadCSV(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix: %w", err)
	}
	defer f.Close()

	g, err := ReadNamed(f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadNamed reads a matrix from r, decompressing it when name ends in .zst.
func ReadNamed(r io.Reader, name string) (*Grid, error) {
	if !isZstd(name) {
		return ReadCSV(r)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	return ReadCSV(dec)
}

// ReadCSV parses ';'-separated rows of interleaved real and imaginary
// values. Rows of FFTSize complex values are trimmed to the allocated
// subcarriers; rows of Width values are used as they are.
func ReadCSV(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]complex128
	for len(rows) < Rows {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) > 0 && strings.TrimSpace(record[len(record)-1]) == "" {
			record = record[:len(record)-1]
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

func parseRow(record []string) ([]complex128, error) {
	if len(record)%2 != 0 {
		return nil, fmt.Errorf("%w: odd value count %d", ErrShape, len(record))
	}

	full := make([]complex128, len(record)/2)
	for k := range full {
		re, err := strconv.ParseFloat(strings.TrimSpace(record[2*k]), 64)
		if err != nil {
			return nil, err
		}
		im, err := strconv.ParseFloat(strings.TrimSpace(record[2*k+1]), 64)
		if err != nil {
			return nil, err
		}
		full[k] = complex(re, im)
	}

	switch len(full) {
	case Width:
		return full, nil
	case FFTSize:
		row := make([]complex128, 0, Width)
		row = append(row, full[lowStart:lowEnd]...)
		return append(row, full[highStart:]...), nil
	default:
		return nil, fmt.Errorf("%w: %d columns, need %d or %d", ErrShape, len(full), Width, FFTSize)
	}
}

// WriteCSV writes g in the Width-column form. Paths ending in .zst are
// zstd-compressed.
func WriteCSV(path string, g *Grid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create matrix: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !isZstd(path) {
		return EncodeCSV(f, g)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := EncodeCSV(enc, g); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// EncodeCSV writes g to w, one row per OFDM symbol.
func EncodeCSV(w io.Writer, g *Grid) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	record := make([]string, 2*Width)
	for i := 0; i < Rows; i++ {
		for j, z := range g.Row(i) {
			record[2*j] = strconv.FormatFloat(real(z), 'g', -1, 64)
			record[2*j+1] = strconv.FormatFloat(imag(z), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
