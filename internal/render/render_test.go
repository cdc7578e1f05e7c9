package render

import (
	"bytes"
	"testing"
)

func TestCaesarKey(t *testing.T) {
	tests := []struct {
		ident, key int
	}{
		{1, 5},
		{2, 6},
		{13, 0},
		{26, 16},
		{27, 5},
		{0, 16},
		{-25, 5},
	}
	for _, tt := range tests {
		if k := CaesarKey(tt.ident); k != tt.key {
			t.Errorf("CaesarKey(%d) = %d, want %d", tt.ident, k, tt.key)
		}
	}
}

func TestDecipher(t *testing.T) {
	got := Decipher([]byte{10, 2, 0, 254}, 1)
	want := []byte{5, 252, 250, 249}
	if !bytes.Equal(got, want) {
		t.Errorf("Decipher = %v, want %v", got, want)
	}
}

func TestEncipher_RoundTrip(t *testing.T) {
	data := make([]byte, 255)
	for i := range data {
		data[i] = byte(i)
	}
	for _, ident := range []int{1, 4, 13, 200} {
		if got := Decipher(Encipher(data, ident), ident); !bytes.Equal(got, data) {
			t.Errorf("ident %d: round trip mismatch", ident)
		}
	}
}

func TestText(t *testing.T) {
	bits := Bits("Hello, user 3!", 3)
	if len(bits) != 14*8 {
		t.Fatalf("bit count %d", len(bits))
	}
	if got := Text(bits, 3); got != "Hello, user 3!" {
		t.Errorf("Text = %q", got)
	}
	// a partial trailing byte is ignored
	if got := Text(append(bits, 1, 0, 1), 3); got != "Hello, user 3!" {
		t.Errorf("Text with tail = %q", got)
	}
	if got := Text(bits, 4); got == "Hello, user 3!" {
		t.Error("wrong key decoded the message")
	}
}

func TestBytes(t *testing.T) {
	got := Bytes([]byte{1, 0, 1, 0, 1, 0, 1, 1})
	if !bytes.Equal(got, []byte{213}) {
		t.Errorf("Bytes = %v, want [213]", got)
	}
}
