// Package base58 implements the Bitcoin-alphabet Base58 encoding used for
// Solana and Bitcoin addresses.
//
// The conversion is a plain multiply-and-carry over a variable-length digit
// array, so inputs of any length are supported without math/big. Leading zero
// bytes map one-to-one onto leading '1' characters in both directions.
package base58

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Alphabet is the Base58 digit set in value order. Digit 0 is '1'.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	radix    = 58
	zeroChar = '1'
	invalid  = 0xff
)

// ErrInvalidCharacter is matched (via errors.Is) by every decode failure
// caused by a character outside Alphabet.
var ErrInvalidCharacter = errors.New("invalid base58 character")

// InvalidCharacterError reports the first offending character in a Decode
// input.
type InvalidCharacterError struct {
	Char   rune
	Offset int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("%s %q at offset %d", ErrInvalidCharacter.Error(), e.Char, e.Offset)
}

func (e *InvalidCharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

// decodeTable maps a byte to its digit value, or invalid.
var decodeTable [256]byte

func init() {
	for i := range decodeTable {
		decodeTable[i] = invalid
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeTable[Alphabet[i]] = byte(i)
	}
}

// Encode returns the Base58 text for b. An empty slice encodes to "".
func Encode(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	// log(256)/log(58) ~= 1.37
	digits := make([]byte, 0, (len(b)-zeros)*138/100+1)
	for _, v := range b[zeros:] {
		carry := uint32(v)
		for j := range digits {
			x := uint32(digits[j])<<8 + carry
			digits[j] = byte(x % radix)
			carry = x / radix
		}
		for carry > 0 {
			digits = append(digits, byte(carry%radix))
			carry /= radix
		}
	}

	out := make([]byte, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = zeroChar
	}
	for i, d := range digits {
		out[len(out)-1-i] = Alphabet[d]
	}
	return string(out)
}

// Decode returns the bytes encoded by s. An empty string decodes to an empty,
// non-nil slice. Any character outside Alphabet yields an
// *InvalidCharacterError and no output.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return []byte{}, nil
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == zeroChar {
		zeros++
	}

	// log(58)/log(256) ~= 0.733
	mag := make([]byte, 0, (len(s)-zeros)*733/1000+1)
	for i := zeros; i < len(s); i++ {
		d := decodeTable[s[i]]
		if d == invalid {
			r, _ := utf8.DecodeRuneInString(s[i:])
			return nil, &InvalidCharacterError{Char: r, Offset: i}
		}
		carry := uint32(d)
		for j := range mag {
			x := uint32(mag[j])*radix + carry
			mag[j] = byte(x)
			carry = x >> 8
		}
		for carry > 0 {
			mag = append(mag, byte(carry))
			carry >>= 8
		}
	}

	out := make([]byte, zeros+len(mag))
	for i, v := range mag {
		out[len(out)-1-i] = v
	}
	return out, nil
}

// IsValid reports whether every byte of s is a Base58 digit. The empty
// string is valid.
func IsValid(s string) bool {
	for i := 0; i < len(s); i++ {
		if decodeTable[s[i]] == invalid {
			return false
		}
	}
	return true
}

// InvalidChars returns the distinct characters of s that are not Base58
// digits, in the order they first appear.
func InvalidChars(s string) []rune {
	var bad []rune
	seen := make(map[rune]struct{})
	for _, r := range s {
		if r < utf8.RuneSelf && decodeTable[r] != invalid {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		bad = append(bad, r)
	}
	return bad
}
