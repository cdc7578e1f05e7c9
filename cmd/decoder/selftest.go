package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
	"github.com/jeongseonghan/nr-downlink/internal/protocol"
	"github.com/jeongseonghan/nr-downlink/internal/render"
)

var (
	passLabel = color.New(color.Bold, color.FgGreen).Sprint("PASS")
	failLabel = color.New(color.Bold, color.FgRed).Sprint("FAIL")
)

type check struct {
	name string
	run  func() error
}

// runSelfTest prints one line per check and returns the failure count.
func runSelfTest(workers int) int {
	checks := []check{
		{"hamming(8,4) round trip and single-error correction", checkHamming},
		{"convolutional round trip", checkConvolutional},
		{"modulation round trip", checkModulation},
		{"synthetic frame decode", func() error { return checkFrame(workers) }},
		{"zstd matrix file round trip", func() error { return checkMatrixFile(workers) }},
	}

	fmt.Println(color.New(color.Bold, color.FgCyan).Sprint("=== decoder self-test ==="))
	failed := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			failed++
			fmt.Printf("  %s  %s: %v\n", failLabel, c.name, err)
			continue
		}
		fmt.Printf("  %s  %s\n", passLabel, c.name)
	}
	return failed
}

func checkHamming() error {
	for v := uint64(0); v < 16; v++ {
		data := bitutil.FromUint(v, 4)
		coded, err := fec.EncodeHamming748(data)
		if err != nil {
			return err
		}
		for pos := -1; pos < 7; pos++ {
			rx := append([]byte(nil), coded...)
			if pos >= 0 {
				rx[pos] ^= 1
			}
			got, err := fec.DecodeHamming748(rx)
			if err != nil {
				return fmt.Errorf("value %d flip %d: %w", v, pos+1, err)
			}
			if !bytes.Equal(got, data) {
				return fmt.Errorf("value %d flip %d: got %v", v, pos+1, got)
			}
		}
	}
	return nil
}

func checkConvolutional() error {
	data := render.Bits("viterbi", 1)
	got, err := fec.DecodeConvolutional(fec.EncodeConvolutional(data), fec.RateHalf)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, data) {
		return fmt.Errorf("decoded bits differ")
	}
	return nil
}

func checkModulation() error {
	bits := bitutil.UnpackLSB([]byte{0xA5, 0x3C, 0x0F})
	for _, mod := range []modem.Modulation{modem.ModBPSK, modem.ModQPSK, modem.Mod16QAM} {
		symbols, err := modem.Modulate(bits, mod)
		if err != nil {
			return err
		}
		got, err := modem.Demodulate(symbols, mod)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, bits) {
			return fmt.Errorf("%s: bits differ", mod)
		}
	}
	return nil
}

func checkFrame(workers int) error {
	g, err := protocol.BuildFrame(demoSpec())
	if err != nil {
		return err
	}
	return verifyDemo(g, workers)
}

func checkMatrixFile(workers int) error {
	dir, err := os.MkdirTemp("", "decoder-selftest")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	g, err := protocol.BuildFrame(demoSpec())
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "tfMatrix.csv.zst")
	if err := grid.WriteCSV(path, g); err != nil {
		return err
	}
	loaded, err := grid.LoadCSV(path)
	if err != nil {
		return err
	}
	return verifyDemo(loaded, workers)
}

func verifyDemo(g *grid.Grid, workers int) error {
	s, err := protocol.NewSession(g, protocol.WithWorkers(workers))
	if err != nil {
		return err
	}
	if h := s.Header(); h.CellIdent != 1 || h.UserCount != len(demoUsers()) {
		return fmt.Errorf("header %+v", h)
	}

	results, err := s.DecodeAll(context.Background())
	if err != nil {
		return err
	}
	for i, u := range demoUsers() {
		r := results[i]
		if r.Err != nil {
			return fmt.Errorf("user %d: %w", u.spec.Ident, r.Err)
		}
		if text := render.Text(r.Payload.Bits, r.UserIdent); text != u.message {
			return fmt.Errorf("user %d: %q != %q", u.spec.Ident, text, u.message)
		}
	}

	if _, err := s.DecodeUser(99); err == nil {
		return fmt.Errorf("user 99 decoded from a frame without it")
	}
	return nil
}
