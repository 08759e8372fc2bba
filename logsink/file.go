// Package logsink is the append-only log file behind the process logger.
//
// Writes are queued and flushed by a single goroutine, so a slow disk never
// stalls polling. When the queue is full the line is dropped and counted.
package logsink

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sig-0/ratewatch/storage/types"
)

// DefaultQueueSize is the number of pending lines the sink buffers
const DefaultQueueSize = 1024

// File is a bounded, asynchronous log file writer
type File struct {
	out    io.WriteCloser
	errOut io.Writer

	queue chan []byte
	done  chan struct{}

	dropped atomic.Int64
	closed  bool
	mu      sync.RWMutex
}

// Open opens (or creates) the log file at path for appending
func Open(path string, queueSize int) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // log file
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	return newFile(f, os.Stderr, queueSize), nil
}

func newFile(out io.WriteCloser, errOut io.Writer, queueSize int) *File {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	f := &File{
		out:    out,
		errOut: errOut,
		queue:  make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}

	go f.run()

	return f
}

// Write queues p for writing. It never blocks and never fails
func (f *File) Write(p []byte) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		f.dropped.Add(1)

		return len(p), nil
	}

	line := make([]byte, len(p))
	copy(line, p)

	select {
	case f.queue <- line:
	default:
		f.dropped.Add(1)
	}

	return len(p), nil
}

// Dropped returns the number of lines dropped so far
func (f *File) Dropped() int64 {
	return f.dropped.Load()
}

// Close flushes the queued lines and closes the file
func (f *File) Close() error {
	f.mu.Lock()

	if f.closed {
		f.mu.Unlock()

		return nil
	}

	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	<-f.done

	if dropped := f.dropped.Load(); dropped > 0 {
		_, _ = fmt.Fprintf(f.errOut, "log sink dropped %d lines\n", dropped)
	}

	return f.out.Close()
}

func (f *File) run() {
	defer close(f.done)

	for line := range f.queue {
		if _, err := f.out.Write(line); err != nil {
			_, _ = fmt.Fprintf(f.errOut, "unable to write to log file: %v\n", err)
		}
	}
}

// ReplaceTime renders the slog time attribute as YYYY-MM-DD HH:mm:ss
func ReplaceTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, types.Timestamp(a.Value.Time()).String())
	}

	return a
}

// NewLogger creates a text logger writing to every given writer
func NewLogger(level slog.Leveler, writers ...io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: ReplaceTime,
	}))
}
