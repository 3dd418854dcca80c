package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	seen  []string
	fail  bool
	calls chan string
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	r.seen = append(r.seen, filepath.Base(path))
	fail := r.fail
	r.mu.Unlock()
	r.calls <- filepath.Base(path)
	if fail {
		return errors.New("handler failed")
	}
	return nil
}

func (r *recorder) waitFor(t *testing.T, name string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.calls:
			if got == name {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s to be processed", name)
		}
	}
}

func TestRunDrainsExistingFiles(t *testing.T) {
	inbox := t.TempDir()
	archive := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "invoice1.txt"), []byte("Total: 100"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.pdf"), []byte("skip me"), 0o600))

	rec := newRecorder()
	w := New(inbox, archive, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	rec.waitFor(t, "invoice1.txt")
	cancel()
	<-done

	assert.Equal(t, []string{"invoice1.txt"}, rec.seen)

	entries, err := os.ReadDir(archive)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "invoice1.txt")

	_, err = os.Stat(filepath.Join(inbox, "notes.pdf"))
	assert.NoError(t, err, "non-txt files stay in the inbox")
}

func TestRunPicksUpNewFiles(t *testing.T) {
	inbox := t.TempDir()
	archive := t.TempDir()

	rec := newRecorder()
	w := New(inbox, archive, rec.handle)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watch loop register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "late.txt"), []byte("Total: 5"), 0o600))

	rec.waitFor(t, "late.txt")
	w.Stop()
	<-done

	_, err := os.Stat(filepath.Join(inbox, "late.txt"))
	assert.True(t, os.IsNotExist(err), "processed file is moved out of the inbox")
}

func TestFailedFilesStayInInbox(t *testing.T) {
	inbox := t.TempDir()
	archive := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "bad.txt"), []byte("x"), 0o600))

	rec := newRecorder()
	rec.fail = true
	w := New(inbox, archive, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	rec.waitFor(t, "bad.txt")
	cancel()
	<-done

	_, err := os.Stat(filepath.Join(inbox, "bad.txt"))
	assert.NoError(t, err, "failed files are retried on the next run")

	entries, err := os.ReadDir(archive)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsInvoiceFile(t *testing.T) {
	assert.True(t, isInvoiceFile("/inbox/a.txt"))
	assert.True(t, isInvoiceFile("/inbox/A.TXT"))
	assert.False(t, isInvoiceFile("/inbox/a.pdf"))
	assert.False(t, isInvoiceFile("/inbox/.hidden.txt"))
}
