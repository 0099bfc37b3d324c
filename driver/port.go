package driver

import (
	"io"
	"time"
)

// Port defines the byte-level interface to a scanner, whether it sits on a
// physical serial line or behind a TCP bridge. Read must not block past the
// configured read timeout; a timed-out read returns (0, nil).
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
}
