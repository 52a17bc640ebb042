package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	debugpkg "runtime/debug"
	"syscall"
	"time"
)

func main() {
	// Capture unexpected panics to panic.log with a stack trace.
	defer func() {
		if r := recover(); r != nil {
			if f, err := os.OpenFile("panic.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				ts := time.Now().UTC().Format(time.RFC3339)
				fmt.Fprintf(f, "[%s] panic: %v\n%s\n\n", ts, r, debugpkg.Stack())
				_ = f.Close()
			}
			panic(r)
		}
	}()

	configFlag := flag.String("config", "", "path to config.toml (default <data-dir>/config.toml)")
	dataDirFlag := flag.String("data-dir", defaultDataDir, "data directory")
	bindFlag := flag.String("bind", "", "bind IP for the HTTP listener")
	listenFlag := flag.String("listen", "", "override HTTP listen address (e.g. :8080)")
	networkFlag := flag.String("network", "", "default address network: solana or bitcoin")
	btcNetworkFlag := flag.String("bitcoin-network", "", "bitcoin params: mainnet, testnet3, signet, regtest")
	logDirFlag := flag.String("log-dir", "", "override log directory")
	stdoutLogFlag := flag.Bool("stdout", false, "mirror logs to stdout")
	debugFlag := flag.Bool("debug", false, "enable debug logging (includes per-request access lines)")
	rewriteConfigFlag := flag.Bool("rewrite-config", false, "rewrite config.toml with all keys on startup")

	var oneShot oneShotFlags
	flag.StringVar(&oneShot.encode, "encode", "", "print the Base58 encoding of the UTF-8 text and exit")
	flag.StringVar(&oneShot.encodeHex, "encode-hex", "", "print the Base58 encoding of the hex bytes and exit")
	flag.StringVar(&oneShot.decode, "decode", "", "print the text and hex decoded from Base58 and exit")
	flag.StringVar(&oneShot.validate, "validate", "", "validate an address and exit")
	flag.StringVar(&oneShot.sol, "sol", "", "convert SOL to lamports and exit")
	flag.StringVar(&oneShot.lamports, "lamports", "", "convert lamports to SOL and exit")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) { oneShot.markSet(f.Name) })

	overrides := runtimeOverrides{
		bind:           *bindFlag,
		listenAddr:     *listenFlag,
		addressNetwork: *networkFlag,
		bitcoinNetwork: *btcNetworkFlag,
		logDir:         *logDirFlag,
		debug:          *debugFlag || debugEnabled(),
		stdout:         *stdoutLogFlag,
	}

	// One-shot modes use defaults plus flags and never touch the data dir.
	if oneShot.requested() {
		cfg := defaultConfig()
		if err := applyRuntimeOverrides(&cfg, overrides); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if err := SetChainParams(cfg.BitcoinNetwork); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		logger.configureWriters(nil, nil, nil, nil)
		code := runOneShot(os.Stdout, os.Stderr, cfg, oneShot)
		logger.Stop()
		os.Exit(code)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = defaultConfigPath(*dataDirFlag)
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatal("config", err, "path", cfgPath)
	}
	cfg.DataDir = *dataDirFlag
	if err := applyRuntimeOverrides(&cfg, overrides); err != nil {
		fatal("config", err)
	}
	if err := validateConfig(cfg); err != nil {
		fatal("config", err)
	}
	if *rewriteConfigFlag {
		if err := rewriteConfigFile(cfgPath, cfg); err != nil {
			fatal("rewrite config", err, "path", cfgPath)
		}
		logger.Info("config rewritten", "path", cfgPath)
	}

	level, _ := parseLogLevel(cfg.LogLevel)
	setLogLevel(level)
	configureFileLogging(cfg.LogDir, cfg.LogStdout)
	defer logger.Stop()

	if err := SetChainParams(cfg.BitcoinNetwork); err != nil {
		fatal("bitcoin network", err)
	}
	setSha256Implementation(cfg.UseSha256SIMD)
	ensureExampleFiles(cfg.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		fatal("http server", err)
	}
	logger.Info("shutdown complete", "component", "startup")
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within cfg.ShutdownTimeout.
func serve(ctx context.Context, cfg Config) error {
	server, err := NewToolsServer(cfg, NewToolsMetrics())
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	limiter := newAcceptRateLimiter(cfg.MaxAcceptsPerSecond, cfg.MaxAcceptBurst)
	ln = newRateLimitedListener(ctx, ln, limiter)

	httpServer := newHTTPServer(cfg, server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tools page listening", "component", "http", "kind", "listen", "addr", ln.Addr().String(),
			"network", cfg.AddressNetwork, "bitcoin_network", ChainParams().Name)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http shutdown error", "component", "http", "kind", "shutdown", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// newHTTPServer applies the listener-independent limits. MaxHeaderBytes also
// bounds GET inputs, which travel in the request line.
func newHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
