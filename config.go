package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	defaultDataDir         = "data"
	defaultListenAddr      = ":8080"
	defaultMaxBodyBytes    = 64 << 10
	defaultMaxInputBytes   = 16 << 10
	defaultShutdownTimeout = 5 * time.Second
	// Request line plus headers. Room for a GET carrying a percent-encoded
	// input of defaultMaxInputBytes.
	defaultMaxHeaderBytes = 64 << 10
	// Accept guardrail for the HTTP listener. A browser opens a handful of
	// connections per page view, so this is generous for a tools page.
	defaultMaxAcceptsPerSecond = 200
	defaultMaxAcceptBurst      = 400
	defaultAPIRateLimit        = 120
	defaultAPIRateWindow       = time.Minute
	defaultBatchWorkers        = 4
	defaultBatchMaxItems       = 256
)

type Config struct {
	DataDir    string
	ListenAddr string
	BrandName  string
	Tagline    string
	// MaxBodyBytes caps JSON request bodies on the API.
	MaxBodyBytes int64
	// MaxInputBytes caps a single codec input (query, JSON field, batch item
	// or form value). The codec is quadratic in input length.
	MaxInputBytes   int
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
	// MaxAcceptsPerSecond limits new TCP connections. Zero disables it.
	MaxAcceptsPerSecond int
	MaxAcceptBurst      int
	// APIRateLimitRequests is the per-client request budget for /api/*
	// within APIRateLimitWindow. Zero disables it.
	APIRateLimitRequests int
	APIRateLimitWindow   time.Duration
	BatchWorkers         int
	BatchMaxItems        int
	// AddressNetwork is the default network for the validator
	// ("solana" or "bitcoin"); BitcoinNetwork picks the chain params.
	AddressNetwork string
	BitcoinNetwork string
	AddressRules   addressRules
	UseSha256SIMD  bool
	LogDir         string
	LogLevel       string
	LogStdout      bool
	QuickLinks     []QuickLink
}

type serverFileConfig struct {
	Listen                 *string `toml:"listen"`
	BrandName              *string `toml:"brand_name"`
	Tagline                *string `toml:"tagline"`
	MaxBodyBytes           *int64  `toml:"max_body_bytes"`
	MaxHeaderBytes         *int    `toml:"max_header_bytes"`
	ShutdownTimeoutSeconds *int    `toml:"shutdown_timeout_seconds"`
	MaxAcceptsPerSecond    *int    `toml:"max_accepts_per_second"`
	MaxAcceptBurst         *int    `toml:"max_accept_burst"`
}

type apiFileConfig struct {
	RateLimitRequests      *int `toml:"rate_limit_requests"`
	MaxInputBytes          *int `toml:"max_input_bytes"`
	RateLimitWindowSeconds *int `toml:"rate_limit_window_seconds"`
	BatchWorkers           *int `toml:"batch_workers"`
	BatchMaxItems          *int `toml:"batch_max_items"`
}

type addressFileConfig struct {
	Network         *string `toml:"network"`
	BitcoinNetwork  *string `toml:"bitcoin_network"`
	MinLength       *int    `toml:"min_length"`
	MaxLength       *int    `toml:"max_length"`
	MinDecodedBytes *int    `toml:"min_decoded_bytes"`
	MaxDecodedBytes *int    `toml:"max_decoded_bytes"`
}

type hashingFileConfig struct {
	UseSha256SIMD *bool `toml:"use_sha256_simd"`
}

type loggingFileConfig struct {
	Dir    *string `toml:"dir"`
	Level  *string `toml:"level"`
	Stdout *bool   `toml:"stdout"`
}

// fileConfig mirrors config.toml. Pointer fields distinguish "unset" from
// zero so unset keys keep their defaults.
type fileConfig struct {
	Server  serverFileConfig  `toml:"server"`
	API     apiFileConfig     `toml:"api"`
	Address addressFileConfig `toml:"address"`
	Hashing hashingFileConfig `toml:"hashing"`
	Logging loggingFileConfig `toml:"logging"`
	Links   []QuickLink       `toml:"links"`
}

func defaultConfig() Config {
	return Config{
		DataDir:              defaultDataDir,
		ListenAddr:           defaultListenAddr,
		BrandName:            "goSolTools",
		Tagline:              "Address, unit and Base58 utilities",
		MaxBodyBytes:         defaultMaxBodyBytes,
		MaxInputBytes:        defaultMaxInputBytes,
		MaxHeaderBytes:       defaultMaxHeaderBytes,
		ShutdownTimeout:      defaultShutdownTimeout,
		MaxAcceptsPerSecond:  defaultMaxAcceptsPerSecond,
		MaxAcceptBurst:       defaultMaxAcceptBurst,
		APIRateLimitRequests: defaultAPIRateLimit,
		APIRateLimitWindow:   defaultAPIRateWindow,
		BatchWorkers:         defaultBatchWorkers,
		BatchMaxItems:        defaultBatchMaxItems,
		AddressNetwork:       networkSolana,
		BitcoinNetwork:       "mainnet",
		AddressRules:         defaultAddressRules(),
		UseSha256SIMD:        true,
		LogDir:               filepath.Join(defaultDataDir, "logs"),
		LogLevel:             "info",
		LogStdout:            true,
		QuickLinks:           defaultQuickLinks(),
	}
}

func defaultConfigPath(dataDir string) string {
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	return filepath.Join(dataDir, "config.toml")
}

// loadConfig reads path on top of the defaults. A missing file is created
// from the defaults so operators have something to edit.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	fc, ok, err := loadConfigFile(path)
	if err != nil {
		return cfg, err
	}
	if !ok {
		if err := rewriteConfigFile(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		logger.Info("created default config file", "path", path)
		return cfg, nil
	}
	applyFileConfig(&cfg, *fc)
	return cfg, nil
}

func loadConfigFile(path string) (*fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, true, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setSeconds := func(dst *time.Duration, v *int) {
		if v != nil {
			*dst = time.Duration(*v) * time.Second
		}
	}

	setString(&cfg.ListenAddr, fc.Server.Listen)
	setString(&cfg.BrandName, fc.Server.BrandName)
	setString(&cfg.Tagline, fc.Server.Tagline)
	if fc.Server.MaxBodyBytes != nil {
		cfg.MaxBodyBytes = *fc.Server.MaxBodyBytes
	}
	setInt(&cfg.MaxHeaderBytes, fc.Server.MaxHeaderBytes)
	setSeconds(&cfg.ShutdownTimeout, fc.Server.ShutdownTimeoutSeconds)
	setInt(&cfg.MaxAcceptsPerSecond, fc.Server.MaxAcceptsPerSecond)
	setInt(&cfg.MaxAcceptBurst, fc.Server.MaxAcceptBurst)

	setInt(&cfg.APIRateLimitRequests, fc.API.RateLimitRequests)
	setInt(&cfg.MaxInputBytes, fc.API.MaxInputBytes)
	setSeconds(&cfg.APIRateLimitWindow, fc.API.RateLimitWindowSeconds)
	setInt(&cfg.BatchWorkers, fc.API.BatchWorkers)
	setInt(&cfg.BatchMaxItems, fc.API.BatchMaxItems)

	setString(&cfg.AddressNetwork, fc.Address.Network)
	setString(&cfg.BitcoinNetwork, fc.Address.BitcoinNetwork)
	setInt(&cfg.AddressRules.MinLength, fc.Address.MinLength)
	setInt(&cfg.AddressRules.MaxLength, fc.Address.MaxLength)
	setInt(&cfg.AddressRules.MinDecodedBytes, fc.Address.MinDecodedBytes)
	setInt(&cfg.AddressRules.MaxDecodedBytes, fc.Address.MaxDecodedBytes)

	if fc.Hashing.UseSha256SIMD != nil {
		cfg.UseSha256SIMD = *fc.Hashing.UseSha256SIMD
	}

	setString(&cfg.LogDir, fc.Logging.Dir)
	setString(&cfg.LogLevel, fc.Logging.Level)
	if fc.Logging.Stdout != nil {
		cfg.LogStdout = *fc.Logging.Stdout
	}

	if fc.Links != nil {
		cfg.QuickLinks = sanitizeQuickLinks(fc.Links)
	}
}

func buildFileConfig(cfg Config) fileConfig {
	intPtr := func(v int) *int { return &v }
	int64Ptr := func(v int64) *int64 { return &v }
	boolPtr := func(v bool) *bool { return &v }
	stringPtr := func(v string) *string { return &v }

	return fileConfig{
		Server: serverFileConfig{
			Listen:                 stringPtr(cfg.ListenAddr),
			BrandName:              stringPtr(cfg.BrandName),
			Tagline:                stringPtr(cfg.Tagline),
			MaxBodyBytes:           int64Ptr(cfg.MaxBodyBytes),
			MaxHeaderBytes:         intPtr(cfg.MaxHeaderBytes),
			ShutdownTimeoutSeconds: intPtr(int(cfg.ShutdownTimeout / time.Second)),
			MaxAcceptsPerSecond:    intPtr(cfg.MaxAcceptsPerSecond),
			MaxAcceptBurst:         intPtr(cfg.MaxAcceptBurst),
		},
		API: apiFileConfig{
			RateLimitRequests:      intPtr(cfg.APIRateLimitRequests),
			MaxInputBytes:          intPtr(cfg.MaxInputBytes),
			RateLimitWindowSeconds: intPtr(int(cfg.APIRateLimitWindow / time.Second)),
			BatchWorkers:           intPtr(cfg.BatchWorkers),
			BatchMaxItems:          intPtr(cfg.BatchMaxItems),
		},
		Address: addressFileConfig{
			Network:         stringPtr(cfg.AddressNetwork),
			BitcoinNetwork:  stringPtr(cfg.BitcoinNetwork),
			MinLength:       intPtr(cfg.AddressRules.MinLength),
			MaxLength:       intPtr(cfg.AddressRules.MaxLength),
			MinDecodedBytes: intPtr(cfg.AddressRules.MinDecodedBytes),
			MaxDecodedBytes: intPtr(cfg.AddressRules.MaxDecodedBytes),
		},
		Hashing: hashingFileConfig{
			UseSha256SIMD: boolPtr(cfg.UseSha256SIMD),
		},
		Logging: loggingFileConfig{
			Dir:    stringPtr(cfg.LogDir),
			Level:  stringPtr(cfg.LogLevel),
			Stdout: boolPtr(cfg.LogStdout),
		},
		Links: append([]QuickLink(nil), cfg.QuickLinks...),
	}
}

// rewriteConfigFile writes cfg to path via a temp file and rename, keeping
// the previous file as path.bak.
func rewriteConfigFile(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	data, err := toml.Marshal(buildFileConfig(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmpFile.Name()
	removeTemp := true
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if removeTemp {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	bakPath := path + ".bak"
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(bakPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", bakPath, err)
		}
		if err := os.Rename(path, bakPath); err != nil {
			return fmt.Errorf("rename %s to %s: %w", path, bakPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	removeTemp = false
	return nil
}

func validateConfig(cfg Config) error {
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("server.listen %q: %w", cfg.ListenAddr, err)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be > 0, got %d", cfg.MaxBodyBytes)
	}
	if cfg.MaxHeaderBytes <= 0 {
		return fmt.Errorf("server.max_header_bytes must be > 0, got %d", cfg.MaxHeaderBytes)
	}
	if cfg.MaxInputBytes <= 0 {
		return fmt.Errorf("api.max_input_bytes must be > 0, got %d", cfg.MaxInputBytes)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be > 0")
	}
	if cfg.MaxAcceptsPerSecond < 0 || cfg.MaxAcceptBurst < 0 {
		return fmt.Errorf("server accept limits must be >= 0")
	}
	if cfg.APIRateLimitRequests < 0 {
		return fmt.Errorf("api.rate_limit_requests must be >= 0, got %d", cfg.APIRateLimitRequests)
	}
	if cfg.APIRateLimitRequests > 0 && cfg.APIRateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window_seconds must be > 0 when rate limiting is on")
	}
	if cfg.BatchWorkers <= 0 {
		return fmt.Errorf("api.batch_workers must be > 0, got %d", cfg.BatchWorkers)
	}
	if cfg.BatchMaxItems <= 0 {
		return fmt.Errorf("api.batch_max_items must be > 0, got %d", cfg.BatchMaxItems)
	}
	switch cfg.AddressNetwork {
	case networkSolana, networkBitcoin:
	default:
		return fmt.Errorf("address.network %q: %w", cfg.AddressNetwork, errUnknownNetwork)
	}
	if _, err := chainParamsFor(cfg.BitcoinNetwork); err != nil {
		return fmt.Errorf("address.bitcoin_network: %w", err)
	}
	r := cfg.AddressRules
	if r.MinLength <= 0 || r.MaxLength < r.MinLength {
		return fmt.Errorf("address length bounds invalid: %d-%d", r.MinLength, r.MaxLength)
	}
	if r.MinDecodedBytes <= 0 || r.MaxDecodedBytes < r.MinDecodedBytes {
		return fmt.Errorf("address decoded bounds invalid: %d-%d", r.MinDecodedBytes, r.MaxDecodedBytes)
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
