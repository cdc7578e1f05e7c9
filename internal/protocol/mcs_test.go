package protocol

import (
	"errors"
	"testing"

	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

func TestParseMCS(t *testing.T) {
	tests := []struct {
		v       int
		mod     modem.Modulation
		coding  Coding
		wantErr error
	}{
		{5, modem.ModBPSK, CodingConvolutional, nil},
		{6, modem.ModQPSK, CodingConvolutional, nil},
		{7, modem.Mod16QAM, CodingConvolutional, nil},
		{25, modem.ModBPSK, CodingHamming, nil},
		{26, modem.ModQPSK, CodingHamming, nil},
		{27, modem.Mod16QAM, CodingHamming, nil},
		{8, 0, 0, modem.ErrUnsupportedModulation},
		{29, 0, 0, modem.ErrUnsupportedModulation},
		{0, 0, 0, fec.ErrUnsupportedCodingRate},
		{10, 0, 0, fec.ErrUnsupportedCodingRate},
		{62, 0, 0, fec.ErrUnsupportedCodingRate},
	}

	for _, tt := range tests {
		m, err := ParseMCS(tt.v)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseMCS(%d): expected %v, got %v", tt.v, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMCS(%d) error: %v", tt.v, err)
			continue
		}
		if m.Modulation != tt.mod || m.Coding != tt.coding {
			t.Errorf("ParseMCS(%d) = %s, want %s/%s", tt.v, m, tt.mod, tt.coding)
		}
	}
}

func TestMCS_DataBits(t *testing.T) {
	tests := []struct {
		mcs, rbSize, want int
		wantErr           bool
	}{
		{25, 4, 24, false},
		{25, 3, 0, true}, // 36 coded bits is not whole Hamming blocks
		{26, 3, 36, false},
		{27, 2, 48, false},
		{5, 1, 0, false},
		{6, 4, 42, false},
		{7, 10, 234, false},
	}

	for _, tt := range tests {
		m, err := ParseMCS(tt.mcs)
		if err != nil {
			t.Fatalf("ParseMCS(%d) error: %v", tt.mcs, err)
		}
		n, err := m.DataBits(tt.rbSize)
		if tt.wantErr {
			if !errors.Is(err, fec.ErrInvalidLength) {
				t.Errorf("mcs %d rb %d: expected ErrInvalidLength, got %v", tt.mcs, tt.rbSize, err)
			}
			continue
		}
		if err != nil || n != tt.want {
			t.Errorf("mcs %d rb %d: %d (%v) != %d", tt.mcs, tt.rbSize, n, err, tt.want)
		}
	}
}

func TestControlModulation(t *testing.T) {
	for v, want := range []modem.Modulation{modem.ModBPSK, modem.ModQPSK, modem.Mod16QAM} {
		got, err := ControlModulation(v)
		if err != nil || got != want {
			t.Errorf("ControlModulation(%d) = %s (%v), want %s", v, got, err, want)
		}
	}
	if _, err := ControlModulation(3); !errors.Is(err, modem.ErrUnsupportedModulation) {
		t.Errorf("ControlModulation(3): expected ErrUnsupportedModulation, got %v", err)
	}
}

func TestGrantSamples(t *testing.T) {
	if n := GrantSamples(2); n != 36 {
		t.Errorf("GrantSamples(2) = %d, want 36", n)
	}
	for _, v := range []int{0, 1} {
		if n := GrantSamples(v); n != 72 {
			t.Errorf("GrantSamples(%d) = %d, want 72", v, n)
		}
	}
}
