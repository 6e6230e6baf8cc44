// Package debug holds the process-wide logger. The terminal belongs to the
// UI, so log records go to a file.
package debug

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var (
	out    = &switchWriter{w: io.Discard}
	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
)

// switchWriter lets the logger be created before its destination is known.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) swap(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if closer, ok := s.w.(io.Closer); ok {
		closer.Close()
	}
	s.w = w
}

// DefaultPath is where the debug log is written unless configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "forge-debug.log")
}

// SetOutput appends log records to the file at path from now on. Until it
// is called, records are discarded.
func SetOutput(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return errors.Wrap(err, "opening debug log")
	}
	out.swap(f)
	return nil
}

// GetLogger returns the process-wide logger. Loggers obtained before
// SetOutput follow the new destination.
func GetLogger() *slog.Logger {
	return logger
}
