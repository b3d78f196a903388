// Package log provides the debug log used by gitdeck. Messages are
// buffered in memory until a log file is configured, then flushed to it.
package log

import (
	"log"
	"os"
	"sync"
)

type debugWriter struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
}

var (
	writer    = &debugWriter{}
	stdLogger = log.New(writer, "", log.LstdFlags|log.Lmicroseconds)
)

// Write implements io.Writer. Output goes to the configured file, or is
// buffered until SetFile decides whether logging is enabled.
func (w *debugWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.discard {
		return len(p), nil
	}

	if w.file != nil {
		n, err := w.file.Write(p)
		// Sync so messages survive a crash mid-refresh.
		_ = w.file.Sync()
		return n, err
	}

	// p may be reused by the caller, copy before buffering.
	b := make([]byte, len(p))
	copy(b, p)
	w.buffer = append(w.buffer, b...)
	return len(p), nil
}

// SetFile directs debug output to path, creating the file if needed and
// flushing anything buffered so far. An empty path discards buffered and
// future messages.
func SetFile(path string) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.file != nil {
		_ = writer.file.Close()
		writer.file = nil
	}

	if path == "" {
		writer.discard = true
		writer.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		writer.discard = true
		writer.buffer = nil
		return err
	}

	writer.file = f
	writer.discard = false

	if len(writer.buffer) > 0 {
		_, _ = f.Write(writer.buffer)
		_ = f.Sync()
		writer.buffer = nil
	}

	return nil
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Close closes the debug log file if one is open.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.file == nil {
		return nil
	}

	err := writer.file.Close()
	writer.file = nil
	return err
}
