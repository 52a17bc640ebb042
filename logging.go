package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var logger = newToolsLogger()

const (
	logLevelDebug logLevel = iota
	logLevelInfo
	logLevelWarn
	logLevelError
)

var levelNames = []string{
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
}

type logLevel int

func (l logLevel) String() string {
	if int(l) >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// parseLogLevel accepts the names used in config.toml ("debug", "info", ...).
func parseLogLevel(s string) (logLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logLevelDebug, nil
	case "", "info":
		return logLevelInfo, nil
	case "warn", "warning":
		return logLevelWarn, nil
	case "error":
		return logLevelError, nil
	}
	return logLevelInfo, fmt.Errorf("unknown log level %q", s)
}

type logEvent struct {
	at    time.Time
	level logLevel
	msg   string
	attrs []any
}

// toolsLogger is a small leveled logger with a background writer goroutine
// so request handlers never block on disk.
type toolsLogger struct {
	level       atomic.Int32
	queue       chan logEvent
	done        chan struct{}
	writerMu    sync.RWMutex
	mainWriter  io.Writer
	errorWriter io.Writer
	debugWriter io.Writer
	stdout      io.Writer
	wg          sync.WaitGroup
	stopOnce    sync.Once
	closing     atomic.Bool
}

func newToolsLogger() *toolsLogger {
	l := &toolsLogger{
		queue:       make(chan logEvent, 1024),
		done:        make(chan struct{}),
		mainWriter:  os.Stdout,
		errorWriter: io.Discard,
		debugWriter: io.Discard,
	}
	l.level.Store(int32(logLevelInfo))
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *toolsLogger) run() {
	defer l.wg.Done()
	for {
		select {
		case evt := <-l.queue:
			l.writeEntry(evt)
		case <-l.done:
			for {
				select {
				case evt := <-l.queue:
					l.writeEntry(evt)
				default:
					return
				}
			}
		}
	}
}

func (l *toolsLogger) log(level logLevel, msg string, attrs ...any) {
	if int32(level) < l.level.Load() || l.closing.Load() {
		return
	}
	evt := logEvent{at: time.Now(), level: level, msg: msg, attrs: append([]any(nil), attrs...)}
	select {
	case l.queue <- evt:
	case <-l.done:
	}
}

func (l *toolsLogger) Debug(msg string, attrs ...any) { l.log(logLevelDebug, msg, attrs...) }
func (l *toolsLogger) Info(msg string, attrs ...any)  { l.log(logLevelInfo, msg, attrs...) }
func (l *toolsLogger) Warn(msg string, attrs ...any)  { l.log(logLevelWarn, msg, attrs...) }
func (l *toolsLogger) Error(msg string, attrs ...any) { l.log(logLevelError, msg, attrs...) }

func (l *toolsLogger) setLevel(level logLevel) {
	l.level.Store(int32(level))
}

func (l *toolsLogger) enabled(level logLevel) bool {
	return int32(level) >= l.level.Load()
}

// configureWriters swaps the destinations. Nil writers discard.
func (l *toolsLogger) configureWriters(main, errWriter, debug, stdout io.Writer) {
	if main == nil {
		main = io.Discard
	}
	if errWriter == nil {
		errWriter = io.Discard
	}
	if debug == nil {
		debug = io.Discard
	}
	l.writerMu.Lock()
	l.mainWriter = main
	l.errorWriter = errWriter
	l.debugWriter = debug
	l.stdout = stdout
	l.writerMu.Unlock()
}

// Stop drains queued events and closes any file writers. Safe to call more
// than once.
func (l *toolsLogger) Stop() {
	l.stopOnce.Do(func() {
		l.closing.Store(true)
		close(l.done)
		l.wg.Wait()
		l.writerMu.Lock()
		closeWriter(l.mainWriter)
		closeWriter(l.errorWriter)
		closeWriter(l.debugWriter)
		l.mainWriter = io.Discard
		l.errorWriter = io.Discard
		l.debugWriter = io.Discard
		l.writerMu.Unlock()
	})
}

func closeWriter(w io.Writer) {
	if w == os.Stdout || w == os.Stderr {
		return
	}
	if closer, ok := w.(io.Closer); ok {
		_ = closer.Close()
	}
}

func formatLogLine(evt logEvent) string {
	var entry strings.Builder
	entry.WriteString(evt.at.UTC().Format(time.RFC3339Nano))
	entry.WriteString(" [")
	entry.WriteString(evt.level.String())
	entry.WriteString("] ")
	entry.WriteString(evt.msg)
	if attrs := formatAttrs(evt.attrs); attrs != "" {
		entry.WriteByte(' ')
		entry.WriteString(attrs)
	}
	entry.WriteByte('\n')
	return entry.String()
}

func (l *toolsLogger) writeEntry(evt logEvent) {
	line := []byte(formatLogLine(evt))

	l.writerMu.RLock()
	mainOut := l.mainWriter
	errWriter := l.errorWriter
	debugWriter := l.debugWriter
	stdout := l.stdout
	l.writerMu.RUnlock()

	if stdout != nil {
		_, _ = stdout.Write(line)
	}
	if evt.level == logLevelDebug {
		_, _ = debugWriter.Write(line)
		return
	}
	_, _ = mainOut.Write(line)
	if evt.level >= logLevelError {
		_, _ = errWriter.Write(line)
	}
}

// formatAttrs renders key/value pairs as "k=v k2=v2". A trailing key
// without a value is written bare. Values containing spaces are quoted.
func formatAttrs(attrs []any) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(attrs); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fmt.Sprint(attrs[i]))
		if i+1 >= len(attrs) {
			break
		}
		value := fmt.Sprint(attrs[i+1])
		b.WriteByte('=')
		if strings.ContainsAny(value, " \t\n\"") {
			fmt.Fprintf(&b, "%q", value)
		} else {
			b.WriteString(value)
		}
		i++
	}
	return b.String()
}

func newLogFileWriter(path string) io.Writer {
	if path == "" {
		return io.Discard
	}
	return &logFileWriter{path: path}
}

// logFileWriter reopens its file if it disappears (logrotate with
// copytruncate is not required).
type logFileWriter struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

func (w *logFileWriter) ensureFile() error {
	if _, err := os.Stat(w.path); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if w.f != nil {
			_ = w.f.Close()
			w.f = nil
		}
	}
	if w.f == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w.f = f
	}
	return nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureFile(); err != nil {
		return 0, err
	}
	return w.f.Write(p)
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func setLogLevel(level logLevel) {
	logger.setLevel(level)
}

// configureFileLogging points the logger at tools.log, errors.log and
// debug.log under dir. An empty dir keeps logging on stdout only.
func configureFileLogging(dir string, stdout bool) {
	if dir == "" {
		logger.configureWriters(os.Stdout, nil, nil, nil)
		return
	}
	var mirror io.Writer
	if stdout {
		mirror = os.Stdout
	}
	logger.configureWriters(
		newLogFileWriter(filepath.Join(dir, "tools.log")),
		newLogFileWriter(filepath.Join(dir, "errors.log")),
		newLogFileWriter(filepath.Join(dir, "debug.log")),
		mirror,
	)
}

func fatal(msg string, err error, attrs ...any) {
	attrPairs := append(attrs, "error", err)
	logger.Error(msg, attrPairs...)
	logger.Stop()
	os.Exit(1)
}
