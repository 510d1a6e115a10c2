package main

import (
	"io"
)

// lazyWriteCloser delays opening its destination until the first write, so
// a failed run never leaves an empty output file behind.
type lazyWriteCloser struct {
	open   func() (io.WriteCloser, error)
	writer io.WriteCloser
}

func newLazyWriteCloser(open func() (io.WriteCloser, error)) *lazyWriteCloser {
	return &lazyWriteCloser{open: open}
}

func (l *lazyWriteCloser) Write(p []byte) (int, error) {
	if l.writer == nil {
		w, err := l.open()
		if err != nil {
			return 0, err
		}
		l.writer = w
	}
	return l.writer.Write(p)
}

func (l *lazyWriteCloser) Close() error {
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
