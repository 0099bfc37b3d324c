package driver

import (
	"bytes"
	"io"
	"sync"
	"time"

	"scanner-server/protocol"
)

// MockPort simulates a scanner on the other end of a serial line.
// Commands written to it are matched against the Responses table and the
// scripted reply (CR-terminated) becomes readable. Commands without an entry
// produce no reply, like an unresponsive port.
type MockPort struct {
	mu      sync.Mutex
	readBuf bytes.Buffer
	lineBuf []byte
	closed  bool

	// Responses maps a received command to its reply (terminator appended
	// automatically). Reply bytes pass through verbatim, so invalid text
	// and embedded whitespace are representable.
	Responses map[string]string

	// Received records every CR-terminated command in arrival order
	Received []string
}

var _ Port = (*MockPort)(nil)

func NewMockPort() *MockPort {
	return &MockPort{Responses: make(map[string]string)}
}

func (m *MockPort) Read(p []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.EOF
	}

	if m.readBuf.Len() == 0 {
		// Behaves like a serial read timeout
		return 0, nil
	}
	return m.readBuf.Read(p)
}

func (m *MockPort) Write(p []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.ErrClosedPipe
	}

	m.lineBuf = append(m.lineBuf, p...)
	for {
		i := bytes.IndexByte(m.lineBuf, protocol.Terminator)
		if i < 0 {
			break
		}
		cmd := string(m.lineBuf[:i])
		m.lineBuf = m.lineBuf[i+1:]
		m.Received = append(m.Received, cmd)

		if reply, ok := m.Responses[cmd]; ok {
			m.readBuf.WriteString(reply)
			m.readBuf.WriteByte(protocol.Terminator)
		}
	}
	return len(p), nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called
func (m *MockPort) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readBuf.Reset()
	return nil
}

func (m *MockPort) ResetOutputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineBuf = nil
	return nil
}

func (m *MockPort) SetReadTimeout(time.Duration) error {
	return nil
}

// InjectRaw makes raw bytes readable without a command being sent,
// simulating unsolicited or stale scanner output.
func (m *MockPort) InjectRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readBuf.Write(data)
}
