package driver

import (
	"fmt"
	"net"
	"sync"
	"time"

	"scanner-server/logger"
)

// TCPPort wraps a TCP connection as a Port interface.
// Used for serial-over-TCP bridges and the mock scanner.
type TCPPort struct {
	conn    net.Conn
	address string

	mu          sync.Mutex
	readTimeout time.Duration
}

var _ Port = (*TCPPort)(nil)

// OpenTCP opens a TCP connection to a scanner endpoint
func OpenTCP(address string) (Port, error) {
	conn, err := net.DialTimeout("tcp", address, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", address, err)
	}

	logger.Debug("Connected to %s (TCP)", address)
	return &TCPPort{conn: conn, address: address, readTimeout: 100 * time.Millisecond}, nil
}

func (t *TCPPort) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	timeout := t.readTimeout
	t.mu.Unlock()

	t.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err = t.conn.Read(p)

	// A deadline hit is the serial timeout equivalent, not an error
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return n, nil
	}
	return n, err
}

func (t *TCPPort) Write(p []byte) (n int, err error) {
	return t.conn.Write(p)
}

func (t *TCPPort) Close() error {
	return t.conn.Close()
}

func (t *TCPPort) ResetInputBuffer() error {
	buf := make([]byte, 1024)
	t.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
	for {
		n, _ := t.conn.Read(buf)
		if n == 0 {
			break
		}
	}
	return nil
}

func (t *TCPPort) ResetOutputBuffer() error {
	// TCP has no discardable output queue
	return nil
}

func (t *TCPPort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	t.readTimeout = timeout
	t.mu.Unlock()
	return nil
}

// GetAddress returns the TCP address for logging
func (t *TCPPort) GetAddress() string {
	return t.address
}
