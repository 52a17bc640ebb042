package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"

	"goSolTools/base58"
)

var (
	errEmptyAddress   = errors.New("address is empty")
	errUnknownNetwork = errors.New("unknown address network")
)

// addressRules bounds the Solana heuristic. Defaults match a 32-byte
// ed25519 public key written in Base58 (32 to 44 characters).
type addressRules struct {
	MinLength       int
	MaxLength       int
	MinDecodedBytes int
	MaxDecodedBytes int
}

func defaultAddressRules() addressRules {
	return addressRules{
		MinLength:       32,
		MaxLength:       44,
		MinDecodedBytes: 32,
		MaxDecodedBytes: 64,
	}
}

// AddressCheck is the outcome of validating one address. For solana it is a
// shape heuristic only: no curve point or checksum is verified, so many
// strings that are not real public keys pass.
type AddressCheck struct {
	Address      string   `json:"address"`
	Network      string   `json:"network"`
	Valid        bool     `json:"valid"`
	CharsetOK    bool     `json:"charset_ok"`
	LengthOK     bool     `json:"length_ok"`
	DecodeOK     bool     `json:"decode_ok"`
	DecodedBytes int      `json:"decoded_bytes,omitempty"`
	InvalidChars []string `json:"invalid_chars,omitempty"`
	Kind         string   `json:"kind,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// validateAddress runs the checks for network. Whitespace around the input
// is ignored.
func validateAddress(input, network string, rules addressRules) (AddressCheck, error) {
	addr := strings.TrimSpace(input)
	if addr == "" {
		return AddressCheck{}, errEmptyAddress
	}
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "", networkSolana:
		return checkSolanaAddress(addr, rules), nil
	case networkBitcoin:
		return checkBitcoinAddress(addr), nil
	}
	return AddressCheck{}, fmt.Errorf("%w: %q", errUnknownNetwork, network)
}

func checkSolanaAddress(addr string, rules addressRules) AddressCheck {
	res := AddressCheck{
		Address:   addr,
		Network:   networkSolana,
		CharsetOK: base58.IsValid(addr),
		LengthOK:  len(addr) >= rules.MinLength && len(addr) <= rules.MaxLength,
	}
	if !res.CharsetOK {
		res.InvalidChars = runeStrings(base58.InvalidChars(addr))
		res.Reason = "contains characters outside the base58 alphabet"
		return res
	}
	if !res.LengthOK {
		res.Reason = fmt.Sprintf("length %d outside %d-%d characters", len(addr), rules.MinLength, rules.MaxLength)
		return res
	}
	b, err := base58.Decode(addr)
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	res.DecodedBytes = len(b)
	res.DecodeOK = len(b) >= rules.MinDecodedBytes && len(b) <= rules.MaxDecodedBytes
	if !res.DecodeOK {
		res.Reason = fmt.Sprintf("decodes to %d bytes, want %d-%d", len(b), rules.MinDecodedBytes, rules.MaxDecodedBytes)
		return res
	}
	res.Kind = "pubkey"
	res.Valid = true
	return res
}

// checkBitcoinAddress defers to btcutil, which verifies the Base58Check or
// bech32 checksum and the network prefix.
func checkBitcoinAddress(addr string) AddressCheck {
	params := ChainParams()
	res := AddressCheck{
		Address:   addr,
		Network:   networkBitcoin,
		CharsetOK: true,
		LengthOK:  len(addr) >= 26 && len(addr) <= 90,
	}
	// Only legacy addresses are base58; segwit addresses use the bech32 charset.
	segwit := strings.HasPrefix(strings.ToLower(addr), params.Bech32HRPSegwit+"1")
	if bad := base58.InvalidChars(addr); !segwit && len(bad) > 0 {
		res.CharsetOK = false
		res.InvalidChars = runeStrings(bad)
	}
	if !res.LengthOK {
		res.Reason = fmt.Sprintf("length %d outside 26-90 characters", len(addr))
		return res
	}
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	if !decoded.IsForNet(params) {
		res.Reason = fmt.Sprintf("address is not for %s", params.Name)
		return res
	}
	res.DecodeOK = true
	res.DecodedBytes = len(decoded.ScriptAddress())
	res.Kind = bitcoinAddressKind(decoded)
	res.Valid = true
	return res
}

func bitcoinAddressKind(a btcutil.Address) string {
	switch a.(type) {
	case *btcutil.AddressPubKeyHash:
		return "p2pkh"
	case *btcutil.AddressScriptHash:
		return "p2sh"
	case *btcutil.AddressWitnessPubKeyHash:
		return "p2wpkh"
	case *btcutil.AddressWitnessScriptHash:
		return "p2wsh"
	case *btcutil.AddressTaproot:
		return "p2tr"
	case *btcutil.AddressPubKey:
		return "p2pk"
	}
	return "unknown"
}

func runeStrings(rs []rune) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}
	return out
}
