package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoadConfigCreatesDefaultFile verifies a missing config.toml is written
// from the defaults and can be read back unchanged.
func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "config.toml")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	again, err := loadConfig(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	want := defaultConfig()
	if again.ListenAddr != want.ListenAddr ||
		again.APIRateLimitWindow != want.APIRateLimitWindow ||
		again.AddressRules != want.AddressRules ||
		again.MaxInputBytes != want.MaxInputBytes ||
		again.UseSha256SIMD != want.UseSha256SIMD ||
		len(again.QuickLinks) != len(want.QuickLinks) {
		t.Fatalf("reloaded config differs from defaults: %+v", again)
	}
}

func TestLoadConfigPartialOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
listen = " :9090 "
shutdown_timeout_seconds = 2

[api]
batch_workers = 8
max_input_bytes = 4096

[address]
network = "bitcoin"
bitcoin_network = "signet"

[hashing]
use_sha256_simd = false

[[links]]
label = "Docs"
url = "https://example.com/docs"

[[links]]
label = "Bad"
url = "ftp://example.com"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("server section not applied: %q %s", cfg.ListenAddr, cfg.ShutdownTimeout)
	}
	if cfg.BatchWorkers != 8 || cfg.BatchMaxItems != defaultBatchMaxItems || cfg.MaxInputBytes != 4096 {
		t.Fatalf("api section: workers=%d max=%d input=%d", cfg.BatchWorkers, cfg.BatchMaxItems, cfg.MaxInputBytes)
	}
	if cfg.MaxHeaderBytes != defaultMaxHeaderBytes {
		t.Fatalf("MaxHeaderBytes = %d, want default", cfg.MaxHeaderBytes)
	}
	if cfg.AddressNetwork != networkBitcoin || cfg.BitcoinNetwork != "signet" {
		t.Fatalf("address section: %q %q", cfg.AddressNetwork, cfg.BitcoinNetwork)
	}
	if cfg.UseSha256SIMD {
		t.Fatalf("hashing section not applied")
	}
	if len(cfg.QuickLinks) != 1 || cfg.QuickLinks[0].Label != "Docs" {
		t.Fatalf("links = %+v, want only Docs", cfg.QuickLinks)
	}
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("validateConfig: %v", err)
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nlisten="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("err = %v, want parse error", err)
	}
}

// TestRewriteConfigFileKeepsBackup verifies the previous file survives as
// config.toml.bak and no temp files are left behind.
func TestRewriteConfigFileKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := defaultConfig()
	if err := rewriteConfigFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)

	cfg.ListenAddr = ":7070"
	if err := rewriteConfigFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected backup: %v", err)
	}
	if string(bak) != string(first) {
		t.Fatalf("backup does not match previous file")
	}
	reloaded, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ListenAddr != ":7070" {
		t.Fatalf("ListenAddr = %q, want :7070", reloaded.ListenAddr)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "config-*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(defaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad listen", func(c *Config) { c.ListenAddr = "8080" }},
		{"zero body", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"zero input cap", func(c *Config) { c.MaxInputBytes = 0 }},
		{"zero header cap", func(c *Config) { c.MaxHeaderBytes = 0 }},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"negative accepts", func(c *Config) { c.MaxAcceptsPerSecond = -1 }},
		{"rate without window", func(c *Config) { c.APIRateLimitWindow = 0 }},
		{"zero workers", func(c *Config) { c.BatchWorkers = 0 }},
		{"zero batch items", func(c *Config) { c.BatchMaxItems = 0 }},
		{"unknown network", func(c *Config) { c.AddressNetwork = "eth" }},
		{"unknown bitcoin network", func(c *Config) { c.BitcoinNetwork = "litecoin" }},
		{"length bounds", func(c *Config) { c.AddressRules.MaxLength = 10 }},
		{"decoded bounds", func(c *Config) { c.AddressRules.MinDecodedBytes = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	cfg := defaultConfig()
	cfg.APIRateLimitRequests = 0
	cfg.APIRateLimitWindow = 0
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("disabled rate limit should validate: %v", err)
	}
}

func TestEnsureExampleFiles(t *testing.T) {
	dir := t.TempDir()
	ensureExampleFiles(dir)
	data, err := os.ReadFile(filepath.Join(dir, "config", "examples", "config.toml.example"))
	if err != nil {
		t.Fatalf("example not written: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, exampleHeader) {
		t.Fatalf("missing header")
	}
	for _, key := range []string{"rate_limit_requests", "max_input_bytes", "max_header_bytes", "bitcoin_network", "use_sha256_simd", "[[links]]"} {
		if !strings.Contains(text, key) {
			t.Fatalf("example missing %q", key)
		}
	}
}

func TestApplyRuntimeOverrides(t *testing.T) {
	cfg := defaultConfig()
	cfg.ListenAddr = ":8080"
	err := applyRuntimeOverrides(&cfg, runtimeOverrides{
		bind:           "127.0.0.1",
		addressNetwork: "Bitcoin",
		bitcoinNetwork: "regtest",
		logDir:         "/tmp/logs",
		debug:          true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AddressNetwork != networkBitcoin || cfg.BitcoinNetwork != "regtest" {
		t.Fatalf("network overrides: %q %q", cfg.AddressNetwork, cfg.BitcoinNetwork)
	}
	if cfg.LogDir != "/tmp/logs" || cfg.LogLevel != "debug" {
		t.Fatalf("log overrides: %q %q", cfg.LogDir, cfg.LogLevel)
	}

	cfg = defaultConfig()
	_ = applyRuntimeOverrides(&cfg, runtimeOverrides{bind: "10.0.0.1", listenAddr: ":9999"})
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("-listen should win over -bind, got %q", cfg.ListenAddr)
	}

	if err := applyRuntimeOverrides(&cfg, runtimeOverrides{addressNetwork: "eth"}); err == nil {
		t.Fatalf("expected error for unknown network")
	}
	if err := applyRuntimeOverrides(&cfg, runtimeOverrides{bitcoinNetwork: "nope"}); err == nil {
		t.Fatalf("expected error for unknown bitcoin network")
	}
}
