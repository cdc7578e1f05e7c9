package fec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
)

func TestHamming748_NoError(t *testing.T) {
	tests := []struct {
		in   []byte
		want []byte
	}{
		{[]byte{1, 1, 0, 1, 0, 0, 1, 0}, []byte{1, 1, 0, 1}},
		{[]byte{1, 1, 0, 0, 1, 1, 0, 0}, []byte{1, 1, 0, 0}},
		{[]byte{1, 1, 1, 1, 1, 1, 1, 1}, []byte{1, 1, 1, 1}},
		{[]byte{0, 1, 1, 1, 1, 0, 0, 0}, []byte{0, 1, 1, 1}},
		{[]byte{0, 1, 1, 0, 0, 1, 1, 0}, []byte{0, 1, 1, 0}},
		{[]byte{0, 0, 1, 1, 0, 0, 1, 1}, []byte{0, 0, 1, 1}},
		{[]byte{0, 0, 1, 0, 1, 1, 0, 1}, []byte{0, 0, 1, 0}},
		{[]byte{0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1}, []byte{0, 0, 1, 1, 0, 0, 1, 0}},
	}

	for _, tt := range tests {
		got, err := DecodeHamming748(tt.in)
		if err != nil {
			t.Errorf("DecodeHamming748(%v) error: %v", tt.in, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("DecodeHamming748(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHamming748_SingleError(t *testing.T) {
	tests := []struct {
		in   []byte
		want []byte
	}{
		{[]byte{1, 1, 0, 1, 0, 0, 0, 0}, []byte{1, 1, 0, 1}},
		{[]byte{1, 1, 0, 0, 1, 1, 0, 0}, []byte{1, 1, 0, 0}},
		{[]byte{1, 0, 1, 1, 1, 1, 1, 1}, []byte{1, 1, 1, 1}},
		{[]byte{0, 1, 1, 1, 1, 0, 0, 0}, []byte{0, 1, 1, 1}},
		{[]byte{0, 1, 1, 0, 0, 1, 1, 0}, []byte{0, 1, 1, 0}},
		{[]byte{0, 0, 1, 1, 0, 0, 1, 0}, []byte{0, 0, 1, 1}},
		{[]byte{0, 0, 1, 0, 1, 1, 0, 1}, []byte{0, 0, 1, 0}},
	}

	for _, tt := range tests {
		got, err := DecodeHamming748(tt.in)
		if err != nil {
			t.Errorf("DecodeHamming748(%v) error: %v", tt.in, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("DecodeHamming748(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHamming748_DoubleError(t *testing.T) {
	vectors := [][]byte{
		{1, 0, 1, 1, 0, 0, 1, 0},
		{1, 1, 1, 1, 1, 1, 0, 0},
		{0, 1, 1, 0, 1, 1, 1, 1},
		{1, 0, 1, 1, 1, 0, 0, 0},
		{1, 1, 1, 1, 0, 1, 1, 0},
		{0, 1, 0, 1, 0, 0, 1, 1},
		{0, 1, 0, 0, 1, 1, 0, 1},
	}

	for _, v := range vectors {
		_, err := DecodeHamming748(v)
		if !errors.Is(err, ErrUncorrectable) {
			t.Errorf("DecodeHamming748(%v): expected ErrUncorrectable, got %v", v, err)
		}
	}
}

func TestHamming748_InvalidLength(t *testing.T) {
	for _, n := range []int{1, 7, 9, 23} {
		_, err := DecodeHamming748(make([]byte, n))
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("%d bits: expected ErrInvalidLength, got %v", n, err)
		}
	}
	if _, err := EncodeHamming748(make([]byte, 6)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("encode 6 bits: expected ErrInvalidLength, got %v", err)
	}
}

func TestHamming748_RoundTrip(t *testing.T) {
	for v := uint64(0); v < 16; v++ {
		data := bitutil.FromUint(v, 4)
		coded, err := EncodeHamming748(data)
		if err != nil {
			t.Fatalf("EncodeHamming748(%v) error: %v", data, err)
		}
		if len(coded) != 8 {
			t.Fatalf("coded length %d, want 8", len(coded))
		}

		decoded, err := DecodeHamming748(coded)
		if err != nil {
			t.Errorf("value %d: decode error: %v", v, err)
		} else if !bytes.Equal(decoded, data) {
			t.Errorf("value %d: %v != %v", v, decoded, data)
		}

		// every single flip of bits 1-7 is corrected
		for pos := 0; pos < 7; pos++ {
			corrupted := append([]byte(nil), coded...)
			corrupted[pos] ^= 1
			decoded, err := DecodeHamming748(corrupted)
			if err != nil {
				t.Errorf("value %d flip %d: error %v", v, pos+1, err)
				continue
			}
			if !bytes.Equal(decoded, data) {
				t.Errorf("value %d flip %d: %v != %v", v, pos+1, decoded, data)
			}
		}
	}
}

func TestHamming748_EncodeKnown(t *testing.T) {
	got, _ := EncodeHamming748([]byte{1, 1, 0, 1, 1, 1, 0, 0})
	want := []byte{1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeHamming748 = %v, want %v", got, want)
	}
}

func TestConvolutional_EncodeKnown(t *testing.T) {
	// impulse response reads the generators from the current input tap
	got := EncodeConvolutional([]byte{1})
	want := []byte{1, 1, 0, 1, 1, 1, 1, 1, 0, 0, 1, 0, 1, 1}
	if !bytes.Equal(got, want) {
		t.Errorf("impulse %v != %v", got, want)
	}

	got = EncodeConvolutional([]byte{1, 0, 1, 1})
	want = []byte{1, 1, 0, 1, 0, 0, 0, 1, 1, 0, 1, 0, 0, 0, 1, 0, 0, 1, 1, 1}
	if !bytes.Equal(got, want) {
		t.Errorf("1011 %v != %v", got, want)
	}
}

func TestConvolutional_RoundTrip(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte((i*7 + i/3) % 2)
	}

	coded := EncodeConvolutional(data)
	if len(coded) != 2*(len(data)+ConvMemory) {
		t.Fatalf("coded length %d, want %d", len(coded), 2*(len(data)+ConvMemory))
	}

	decoded, err := DecodeConvolutional(coded, RateHalf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("decoded %v != %v", decoded, data)
	}
}

func TestConvolutional_CorrectsErrors(t *testing.T) {
	data := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1, 0, 1, 0, 1, 1, 0, 0, 1}
	coded := EncodeConvolutional(data)
	coded[3] ^= 1
	coded[40] ^= 1

	v := NewViterbi()
	decoded, err := v.Decode(coded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("decoded %v != %v", decoded, data)
	}
	if v.Metric() != 2 {
		t.Errorf("path metric %d, want 2", v.Metric())
	}
}

func TestConvolutional_Lengths(t *testing.T) {
	tests := []struct {
		n       int
		wantLen int
		wantErr error
	}{
		{13, 0, ErrInvalidLength},
		{10, 0, ErrInvalidLength},
		{12, 0, nil},
		{20, 4, nil},
	}

	for _, tt := range tests {
		out, err := DecodeConvolutional(make([]byte, tt.n), RateHalf)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%d bits: expected %v, got %v", tt.n, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%d bits: unexpected error %v", tt.n, err)
			continue
		}
		if len(out) != tt.wantLen {
			t.Errorf("%d bits: output length %d != %d", tt.n, len(out), tt.wantLen)
		}
	}
}

func TestConvolutional_UnsupportedRate(t *testing.T) {
	_, err := DecodeConvolutional(make([]byte, 24), CodeRate(3))
	if !errors.Is(err, ErrUnsupportedCodingRate) {
		t.Errorf("expected ErrUnsupportedCodingRate, got %v", err)
	}
}

func msbBits(data []byte) []byte {
	var bits []byte
	for _, b := range data {
		bits = append(bits, bitutil.FromUint(uint64(b), 8)...)
	}
	return bits
}

func TestCRC_CheckValues(t *testing.T) {
	tests := []struct {
		width int
		want  uint64
	}{
		{8, 0xEA},
		{16, 0x31C3},
	}

	data := msbBits([]byte("123456789"))
	for _, tt := range tests {
		crc, err := ComputeCRC(data, tt.width)
		if err != nil {
			t.Fatalf("CRC%d error: %v", tt.width, err)
		}
		if got := bitutil.ToUint(crc); got != tt.want {
			t.Errorf("CRC%d: %#x != %#x", tt.width, got, tt.want)
		}
	}
}

func TestCRC_AppendValidate(t *testing.T) {
	data := msbBits([]byte("Test data"))

	for _, width := range []int{8, 16} {
		withCRC, err := AppendCRC(data, width)
		if err != nil {
			t.Fatalf("AppendCRC error: %v", err)
		}
		if len(withCRC) != len(data)+width {
			t.Fatalf("Expected length %d, got %d", len(data)+width, len(withCRC))
		}

		ok, err := ValidateCRC(withCRC, width)
		if err != nil || !ok {
			t.Errorf("CRC%d: valid data rejected (%v)", width, err)
		}

		for _, pos := range []int{0, len(data) / 2, len(withCRC) - 1} {
			corrupted := append([]byte(nil), withCRC...)
			corrupted[pos] ^= 1
			ok, _ := ValidateCRC(corrupted, width)
			if ok {
				t.Errorf("CRC%d: flip at %d not detected", width, pos)
			}
		}
	}
}

func TestCRC_ShortInput(t *testing.T) {
	ok, err := ValidateCRC([]byte{1, 0, 1}, 8)
	if err != nil || ok {
		t.Errorf("short input: ok=%v err=%v", ok, err)
	}
}

func TestCRC_UnsupportedWidth(t *testing.T) {
	for _, width := range []int{0, 24, 32} {
		if _, err := ValidateCRC(make([]byte, 64), width); !errors.Is(err, ErrUnsupportedCRC) {
			t.Errorf("width %d: expected ErrUnsupportedCRC, got %v", width, err)
		}
		if _, err := AppendCRC(nil, width); !errors.Is(err, ErrUnsupportedCRC) {
			t.Errorf("append width %d: expected ErrUnsupportedCRC, got %v", width, err)
		}
	}
}
