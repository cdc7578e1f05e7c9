// Package render turns validated payload bits into bytes and text.
package render

import (
	"strings"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
)

var caesarKeys = [26]int{5, 6, 10, 23, 18, 3, 9, 14, 2, 13, 8, 17, 0, 12, 4, 22, 11, 7, 20, 25, 15, 19, 24, 21, 1, 16}

const cipherModulus = 255

// CaesarKey returns the substitution key of a user identity.
func CaesarKey(ident int) int {
	return caesarKeys[((ident-1)%26+26)%26]
}

// Bytes packs bits LSB-first into bytes, dropping a trailing partial byte.
func Bytes(bits []byte) []byte {
	return bitutil.PackLSB(bits)
}

// Decipher removes the user's key from every byte, modulo 255.
func Decipher(data []byte, ident int) []byte {
	key := CaesarKey(ident)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = byte(((int(b)-key)%cipherModulus + cipherModulus) % cipherModulus)
	}
	return out
}

// Encipher is the inverse of Decipher for byte values below 255.
func Encipher(data []byte, ident int) []byte {
	key := CaesarKey(ident)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = byte((int(b) + key) % cipherModulus)
	}
	return out
}

// Text renders payload bits of user ident as a string, one rune per byte.
func Text(bits []byte, ident int) string {
	var sb strings.Builder
	for _, b := range Decipher(Bytes(bits), ident) {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// Bits is the inverse of Text for messages of runes below 255.
func Bits(msg string, ident int) []byte {
	data := make([]byte, 0, len(msg))
	for _, r := range msg {
		data = append(data, byte(r))
	}
	return bitutil.UnpackLSB(Encipher(data, ident))
}
