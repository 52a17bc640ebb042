package main

import (
	"fmt"
	"io"
	"strings"
)

// oneShotFlags holds the CLI modes that print a single result and exit.
type oneShotFlags struct {
	encode    string
	encodeHex string
	decode    string
	validate  string
	sol       string
	lamports  string
	set       map[string]bool
}

func (o *oneShotFlags) markSet(name string) {
	switch name {
	case "encode", "encode-hex", "decode", "validate", "sol", "lamports":
		if o.set == nil {
			o.set = make(map[string]bool)
		}
		o.set[name] = true
	}
}

func (o oneShotFlags) requested() bool {
	return len(o.set) > 0
}

// runOneShot executes every requested mode in a fixed order and returns the
// process exit code: 0 when all succeeded, 1 otherwise.
func runOneShot(stdout, stderr io.Writer, cfg Config, o oneShotFlags) int {
	code := 0
	fail := func(what string, err error) {
		fmt.Fprintf(stderr, "Error: %s: %v\n", what, err)
		code = 1
	}

	if o.set["encode"] {
		fmt.Fprintln(stdout, encodeText(o.encode))
	}
	if o.set["encode-hex"] {
		if res, err := runBase58Tool(modeEncode, o.encodeHex, inputFormatHex, 0); err != nil {
			fail("encode-hex", err)
		} else {
			fmt.Fprintln(stdout, res.Output)
		}
	}
	if o.set["decode"] {
		if res, err := decodeText(strings.TrimSpace(o.decode)); err != nil {
			fail("decode", err)
		} else {
			fmt.Fprintln(stdout, res.Output)
			note := ""
			if !res.ValidUTF8 {
				note = " (not valid UTF-8)"
			}
			fmt.Fprintf(stdout, "hex: %s%s\n", res.OutputHex, note)
		}
	}
	if o.set["validate"] {
		check, err := validateAddress(o.validate, cfg.AddressNetwork, cfg.AddressRules)
		switch {
		case err != nil:
			fail("validate", err)
		case check.Valid:
			fmt.Fprintf(stdout, "valid %s address (%s, %d bytes)\n", check.Network, check.Kind, check.DecodedBytes)
		default:
			fmt.Fprintf(stdout, "invalid %s address: %s\n", check.Network, check.Reason)
			code = 1
		}
	}
	if o.set["sol"] {
		if n, err := solToLamports(o.sol); err != nil {
			fail("sol", err)
		} else {
			fmt.Fprintf(stdout, "%d lamports\n", n)
		}
	}
	if o.set["lamports"] {
		if sol, err := lamportsToSOL(o.lamports); err != nil {
			fail("lamports", err)
		} else {
			fmt.Fprintf(stdout, "%s SOL\n", sol)
		}
	}
	return code
}
