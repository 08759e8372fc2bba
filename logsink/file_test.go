package logsink

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingWriter blocks every write until released
type blockingWriter struct {
	started chan struct{}
	release chan struct{}

	buf  bytes.Buffer
	once sync.Once
	mu   sync.Mutex
}

func newBlockingWriter() *blockingWriter {
	return &blockingWriter{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
	})

	<-w.release

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.buf.Write(p)
}

func (w *blockingWriter) Close() error {
	return nil
}

func (w *blockingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.buf.String()
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("flush on close", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "logs.txt")

		f, err := Open(path, 16)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			_, err = f.Write([]byte("line\n"))
			require.NoError(t, err)
		}

		require.NoError(t, f.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 10, strings.Count(string(content), "line\n"))
		assert.Zero(t, f.Dropped())
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "logs.txt")
		require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o600))

		f, err := Open(path, 0)
		require.NoError(t, err)

		_, _ = f.Write([]byte("next\n"))
		require.NoError(t, f.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "previous\nnext\n", string(content))
	})

	t.Run("drops when full", func(t *testing.T) {
		t.Parallel()

		var (
			out    = newBlockingWriter()
			errOut bytes.Buffer
			f      = newFile(out, &errOut, 1)
		)

		_, _ = f.Write([]byte("a\n"))

		select {
		case <-out.started:
		case <-time.After(5 * time.Second):
			t.Fatal("sink did not start writing")
		}

		_, _ = f.Write([]byte("b\n")) // queued
		n, err := f.Write([]byte("c\n"))

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, int64(1), f.Dropped())

		close(out.release)
		require.NoError(t, f.Close())

		assert.Equal(t, "a\nb\n", out.String())
		assert.Contains(t, errOut.String(), "dropped 1 lines")
	})

	t.Run("write after close", func(t *testing.T) {
		t.Parallel()

		f, err := Open(filepath.Join(t.TempDir(), "logs.txt"), 4)
		require.NoError(t, err)

		require.NoError(t, f.Close())
		require.NoError(t, f.Close())

		n, err := f.Write([]byte("late\n"))

		assert.NoError(t, err)
		assert.Equal(t, 5, n)
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := NewLogger(slog.LevelInfo, &buf)
	logger.Info("Endpoint called", "endpoint", "Lemfi", "status", 200)
	logger.Debug("hidden")

	line := buf.String()

	assert.Regexp(t, `^time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}" level=INFO`, line)
	assert.Contains(t, line, `endpoint=Lemfi status=200`)
	assert.NotContains(t, line, "hidden")
}
