package main

import (
	"fmt"
	"net"
	"strings"
)

// runtimeOverrides carries command-line values that win over config.toml.
type runtimeOverrides struct {
	bind           string
	listenAddr     string
	addressNetwork string
	bitcoinNetwork string
	logDir         string
	debug          bool
	stdout         bool
}

func applyRuntimeOverrides(cfg *Config, o runtimeOverrides) error {
	if o.bind != "" {
		_, port, err := net.SplitHostPort(cfg.ListenAddr)
		if err != nil {
			port = strings.TrimPrefix(cfg.ListenAddr, ":")
		}
		cfg.ListenAddr = net.JoinHostPort(o.bind, port)
	}
	// Explicit listener override wins over -bind.
	if v := strings.TrimSpace(o.listenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.ToLower(strings.TrimSpace(o.addressNetwork)); v != "" {
		if v != networkSolana && v != networkBitcoin {
			return fmt.Errorf("-network %q: %w", v, errUnknownNetwork)
		}
		cfg.AddressNetwork = v
	}
	if v := strings.TrimSpace(o.bitcoinNetwork); v != "" {
		if _, err := chainParamsFor(v); err != nil {
			return fmt.Errorf("-bitcoin-network: %w", err)
		}
		cfg.BitcoinNetwork = v
	}
	if v := strings.TrimSpace(o.logDir); v != "" {
		cfg.LogDir = v
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	if o.stdout {
		cfg.LogStdout = true
	}
	return nil
}
