package main

import (
	"errors"
	"fmt"

	"goSolTools/base58"
)

const checksumLen = 4

var (
	errCheckTooShort    = errors.New("base58check: decoded data shorter than version and checksum")
	errChecksumMismatch = errors.New("base58check: checksum mismatch")
)

func checksum(b []byte) [checksumLen]byte {
	var out [checksumLen]byte
	h := doubleSHA256(b)
	copy(out[:], h[:checksumLen])
	return out
}

// checkEncode prepends version and appends the first four bytes of
// double-SHA256 before Base58 encoding.
func checkEncode(version byte, payload []byte) string {
	b := make([]byte, 0, 1+len(payload)+checksumLen)
	b = append(b, version)
	b = append(b, payload...)
	sum := checksum(b)
	b = append(b, sum[:]...)
	return base58.Encode(b)
}

func checkDecode(s string) (byte, []byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("base58check: %w", err)
	}
	if len(b) < 1+checksumLen {
		return 0, nil, errCheckTooShort
	}
	body := b[:len(b)-checksumLen]
	if sum := checksum(body); string(sum[:]) != string(b[len(b)-checksumLen:]) {
		return 0, nil, errChecksumMismatch
	}
	return body[0], body[1:], nil
}
