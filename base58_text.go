package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"goSolTools/base58"
)

const (
	inputFormatText = "text"
	inputFormatHex  = "hex"

	modeEncode = "encode"
	modeDecode = "decode"
)

var (
	errUnknownMode        = errors.New("mode must be encode or decode")
	errUnknownInputFormat = errors.New("input_format must be text or hex")
	errInputTooLarge      = errors.New("input too large")
)

// checkInputSize rejects inputs longer than maxBytes. A non-positive
// maxBytes means no limit.
func checkInputSize(input string, maxBytes int) error {
	if maxBytes > 0 && len(input) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit is %d", errInputTooLarge, len(input), maxBytes)
	}
	return nil
}

// base58Result is what the page and the JSON API show for one run of the
// Base58 tool.
type base58Result struct {
	Output    string
	OutputHex string
	ValidUTF8 bool
}

// inputBytes converts tool input into the bytes handed to the codec. Text is
// used as UTF-8 as-is; hex may contain whitespace and an optional 0x prefix.
func inputBytes(input, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", inputFormatText:
		return []byte(input), nil
	case inputFormatHex:
		h := strings.Join(strings.Fields(input), "")
		h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return b, nil
	}
	return nil, errUnknownInputFormat
}

func encodeText(s string) string {
	return base58.Encode([]byte(s))
}

// decodeText decodes s and renders the bytes as text. Bytes that are not
// valid UTF-8 are replaced with U+FFFD in Output and ValidUTF8 is false;
// OutputHex always carries the exact bytes.
func decodeText(s string) (base58Result, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return base58Result{}, err
	}
	res := base58Result{
		OutputHex: hex.EncodeToString(b),
		ValidUTF8: utf8.Valid(b),
	}
	if res.ValidUTF8 {
		res.Output = string(b)
	} else {
		res.Output = lenientUTF8(b)
	}
	return res, nil
}

// lenientUTF8 converts b to a string, writing one U+FFFD for each maximal
// subpart of an ill-formed sequence the way a non-fatal TextDecoder does:
// "\xff\xfe" becomes two replacement characters, a truncated "\xe2\x82"
// becomes one.
func lenientUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[invalidSubpartLen(b):]
			continue
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// invalidSubpartLen returns how many bytes at the start of b form the
// maximal prefix of a well-formed sequence. b must not start with a valid
// rune.
func invalidSubpartLen(b []byte) int {
	need, lo, hi := 0, byte(0x80), byte(0xbf)
	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		need = 2
	case c == 0xe0:
		need, lo = 3, 0xa0
	case c == 0xed:
		need, hi = 3, 0x9f
	case c >= 0xe1 && c <= 0xef:
		need = 3
	case c == 0xf0:
		need, lo = 4, 0x90
	case c == 0xf4:
		need, hi = 4, 0x8f
	case c >= 0xf1 && c <= 0xf3:
		need = 4
	default:
		return 1
	}
	n := 1
	for n < need && n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		lo, hi = 0x80, 0xbf
	}
	return n
}

// runBase58Tool executes one encode or decode request. Inputs longer than
// maxInput bytes are rejected before any conversion work.
func runBase58Tool(mode, input, format string, maxInput int) (base58Result, error) {
	if err := checkInputSize(input, maxInput); err != nil {
		return base58Result{}, err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", modeEncode:
		b, err := inputBytes(input, format)
		if err != nil {
			return base58Result{}, err
		}
		return base58Result{
			Output:    base58.Encode(b),
			OutputHex: hex.EncodeToString(b),
			ValidUTF8: utf8.Valid(b),
		}, nil
	case modeDecode:
		return decodeText(strings.TrimSpace(input))
	}
	return base58Result{}, errUnknownMode
}
