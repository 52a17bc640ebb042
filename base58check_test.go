package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	btcbase58 "github.com/btcsuite/btcd/btcutil/base58"

	"goSolTools/base58"
)

// TestCheckEncodeGenesisAddress encodes the genesis coinbase pubkey hash as
// a mainnet P2PKH address.
func TestCheckEncodeGenesisAddress(t *testing.T) {
	hash, _ := hex.DecodeString("62e907b15cbf27d5425399ebf6f0fb50ebb88f18")
	got := checkEncode(0x00, hash)
	if got != "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa" {
		t.Fatalf("checkEncode = %q", got)
	}
	version, payload, err := checkDecode(got)
	if err != nil {
		t.Fatalf("checkDecode error: %v", err)
	}
	if version != 0 || !bytes.Equal(payload, hash) {
		t.Fatalf("checkDecode = (%d, %x), want (0, %x)", version, payload, hash)
	}
}

// TestCheckEncodeMatchesBtcutil cross-checks both hash implementations
// against btcutil's CheckEncode.
func TestCheckEncodeMatchesBtcutil(t *testing.T) {
	defer setSha256Implementation(false)
	payloads := [][]byte{
		{},
		{0},
		[]byte("Test data"),
		bytes.Repeat([]byte{0xab}, 32),
	}
	for _, simd := range []bool{false, true} {
		setSha256Implementation(simd)
		for _, p := range payloads {
			for _, v := range []byte{0, 5, 111, 255} {
				want := btcbase58.CheckEncode(p, v)
				if got := checkEncode(v, p); got != want {
					t.Fatalf("simd=%v checkEncode(%d, %x) = %q, btcutil = %q", simd, v, p, got, want)
				}
			}
		}
	}
}

func TestCheckDecodeErrors(t *testing.T) {
	if _, _, err := checkDecode("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb"); !errors.Is(err, errChecksumMismatch) {
		t.Fatalf("corrupted checksum: err = %v", err)
	}
	if _, _, err := checkDecode(base58.Encode([]byte{1, 2, 3})); !errors.Is(err, errCheckTooShort) {
		t.Fatalf("short input: err = %v", err)
	}
	if _, _, err := checkDecode("0abc"); !errors.Is(err, base58.ErrInvalidCharacter) {
		t.Fatalf("bad character: err = %v", err)
	}
}
