package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// lineReader reads lines from a terminal while respecting context
// cancellation. A canceled read returns immediately even though the
// underlying goroutine may still be blocked on the terminal.
type lineReader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

func newLineReader(reader io.Reader) *lineReader {
	return &lineReader{reader: bufio.NewReader(reader)}
}

// ReadLine reads one trimmed line, or ErrInputCancelled if ctx ends first.
func (r *lineReader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && res.value == "" {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
