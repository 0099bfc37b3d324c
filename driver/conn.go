package driver

import (
	"bytes"
	"strings"
	"time"
	"unicode/utf8"

	"scanner-server/logger"
	"scanner-server/protocol"
)

// pollInterval is the sleep between read attempts while waiting for data
const pollInterval = 10 * time.Millisecond

// Conn is an open command/response channel to one scanner endpoint.
// It owns the Port exclusively; close it on every exit path.
type Conn struct {
	port    Port
	timeout time.Duration

	// pending holds bytes observed by WaitForData, or trailing bytes past
	// a terminator, that the next ReadLine must consume first
	pending []byte
}

// NewConn wraps an open port with the command read timeout
func NewConn(port Port, timeout time.Duration) *Conn {
	return &Conn{port: port, timeout: timeout}
}

// Close releases the underlying port
func (c *Conn) Close() error {
	return c.port.Close()
}

// Clear discards buffered-but-unread input and unflushed output.
// Call before control commands that expect a clean request/response pairing;
// a stale byte in the input buffer desynchronizes the line parser.
func (c *Conn) Clear() {
	c.pending = nil
	if err := c.port.ResetInputBuffer(); err != nil {
		logger.Debug("reset input buffer: %v", err)
	}
	if err := c.port.ResetOutputBuffer(); err != nil {
		logger.Debug("reset output buffer: %v", err)
	}
}

// ReadLine reads until a CR terminator or until timeout elapses, returning
// the trimmed text before the terminator. Timeout and undecodable bytes both
// yield "" - callers treat empty as "no data", never as a protocol error.
func (c *Conn) ReadLine(timeout time.Duration) string {
	deadline := time.Now().Add(timeout)

	buf := c.pending
	c.pending = nil

	chunk := make([]byte, 256)
	c.port.SetReadTimeout(pollInterval)

	for {
		if i := bytes.IndexByte(buf, protocol.Terminator); i >= 0 {
			// Bytes past the terminator stay buffered for the next read
			if i+1 < len(buf) {
				c.pending = append(c.pending, buf[i+1:]...)
			}
			return decodeLine(buf[:i])
		}

		if !time.Now().Before(deadline) {
			// Partial line without a terminator stays buffered
			c.pending = buf
			return ""
		}

		n, err := c.port.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			continue
		}
		if err != nil {
			logger.Debug("read error: %v", err)
			c.pending = buf
			return ""
		}
		time.Sleep(pollInterval)
	}
}

// SendCommand writes cmd followed by a single CR, then reads one response
// line with the connection's configured timeout.
func (c *Conn) SendCommand(cmd string) string {
	if _, err := c.port.Write(append([]byte(cmd), protocol.Terminator)); err != nil {
		logger.Debug("write %q failed: %v", cmd, err)
		return ""
	}
	return c.ReadLine(c.timeout)
}

// WaitForData polls every 10 ms until inbound bytes are available or maxWait
// elapses. Bytes seen here are stashed for the next ReadLine, so the check
// detects presence without losing data.
func (c *Conn) WaitForData(maxWait time.Duration) bool {
	if len(c.pending) > 0 {
		return true
	}

	deadline := time.Now().Add(maxWait)
	buf := make([]byte, 64)
	c.port.SetReadTimeout(pollInterval)

	for time.Now().Before(deadline) {
		n, err := c.port.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
			return true
		}
		if err != nil {
			logger.Debug("read error while waiting: %v", err)
			return false
		}
		time.Sleep(pollInterval)
	}
	return false
}

// decodeLine turns raw line bytes into trimmed text. Non-text bytes degrade
// to "" - the same value as a timeout, never an error.
func decodeLine(raw []byte) string {
	if !utf8.Valid(raw) {
		logger.Debug("discarding undecodable response (%d bytes)", len(raw))
		return ""
	}
	return strings.TrimSpace(string(raw))
}
