package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
)

const (
	networkSolana  = "solana"
	networkBitcoin = "bitcoin"
)

var (
	chainParamsMu sync.RWMutex
	chainParams   = &chaincfg.MainNetParams
)

// SetChainParams selects the Bitcoin parameters used when validating
// bitcoin addresses. Call once at startup after flags and config are
// resolved.
func SetChainParams(network string) error {
	params, err := chainParamsFor(network)
	if err != nil {
		return err
	}
	chainParamsMu.Lock()
	chainParams = params
	chainParamsMu.Unlock()
	return nil
}

// ChainParams returns the active Bitcoin network parameters.
func ChainParams() *chaincfg.Params {
	chainParamsMu.RLock()
	defer chainParamsMu.RUnlock()
	return chainParams
}

func chainParamsFor(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "mainnet", "", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest", "regressiontest":
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, fmt.Errorf("unknown bitcoin network %q", network)
}
