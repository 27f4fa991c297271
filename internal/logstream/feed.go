package logstream

import (
	"bufio"
	"errors"
	"io"
)

// Feed is a non-restartable source of log lines.
type Feed interface {
	// ReadLine blocks until a line is available. It returns "" and a non-nil
	// error once the feed has ended.
	ReadLine() (string, error)
	Close() error
}

// ReaderFeed reads lines from an io.Reader.
type ReaderFeed struct {
	r      *bufio.Reader
	closer io.Closer
}

// NewReaderFeed wraps r. If r is an io.Closer it is closed by Close.
func NewReaderFeed(r io.Reader) *ReaderFeed {
	f := &ReaderFeed{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		f.closer = c
	}
	return f
}

// ReadLine returns the next line including its newline.
func (f *ReaderFeed) ReadLine() (string, error) {
	return readLine(f.r)
}

// Close closes the underlying reader if it is closable.
func (f *ReaderFeed) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// readLine returns a partial final line before reporting the error, so the
// last unterminated line is never lost.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if line != "" {
		return line, nil
	}
	if err == nil {
		err = errors.New("empty read")
	}
	return "", err
}
