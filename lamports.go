package main

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

const (
	LamportsPerSOL = 1_000_000_000
	solDecimals    = 9
)

var (
	errEmptyAmount    = errors.New("amount is empty")
	errNegativeAmount = errors.New("amount must not be negative")
	errBadAmount      = errors.New("amount is not a decimal number")
	errAmountOverflow = errors.New("amount is too large")
)

// cleanAmount strips whitespace, a leading '+', '_' digit separators and
// ',' thousands separators. A comma is only accepted between groups of
// exactly three integer digits, so "0,25" is rejected rather than read as 25.
func cleanAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return "", errNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, "_", "")
	if strings.Contains(s, ",") {
		whole, frac, hasFrac := strings.Cut(s, ".")
		if !validThousands(whole) || strings.Contains(frac, ",") {
			return "", errBadAmount
		}
		s = strings.ReplaceAll(whole, ",", "")
		if hasFrac {
			s += "." + frac
		}
	}
	if s == "" || s == "." {
		return "", errBadAmount
	}
	return s, nil
}

// validThousands reports whether s is 1-3 digits followed by ",ddd" groups.
func validThousands(s string) bool {
	groups := strings.Split(s, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 || !allDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return false
		}
	}
	return true
}

// solToLamports parses a decimal SOL amount exactly. Fractional digits past
// the ninth are truncated, so "0.0000000019" is 1 lamport.
func solToLamports(s string) (uint64, error) {
	s, err := cleanAmount(s)
	if err != nil {
		return 0, err
	}
	whole, frac, _ := strings.Cut(s, ".")
	if !allDigits(whole) || !allDigits(frac) {
		return 0, errBadAmount
	}
	if len(frac) > solDecimals {
		frac = frac[:solDecimals]
	}
	frac += strings.Repeat("0", solDecimals-len(frac))

	var w uint64
	if whole != "" {
		w, err = strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, errAmountOverflow
		}
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, errBadAmount
	}
	hi, lo := bits.Mul64(w, LamportsPerSOL)
	if hi != 0 || lo > math.MaxUint64-f {
		return 0, errAmountOverflow
	}
	return lo + f, nil
}

// lamportsToSOL renders an integer lamport amount as SOL without trailing
// fractional zeros.
func lamportsToSOL(s string) (string, error) {
	n, err := parseLamports(s)
	if err != nil {
		return "", err
	}
	return formatSOL(n), nil
}

// parseLamports parses an integer lamport amount.
func parseLamports(s string) (uint64, error) {
	s, err := cleanAmount(s)
	if err != nil {
		return 0, err
	}
	if !allDigits(s) {
		return 0, errBadAmount
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errAmountOverflow
	}
	return n, nil
}

func formatSOL(lamports uint64) string {
	whole := lamports / LamportsPerSOL
	frac := lamports % LamportsPerSOL
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fs := fmt.Sprintf("%09d", frac)
	return strconv.FormatUint(whole, 10) + "." + strings.TrimRight(fs, "0")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
