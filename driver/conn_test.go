package driver

import (
	"testing"
	"time"
)

func TestSendCommandReadsOneLine(t *testing.T) {
	port := NewMockPort()
	port.Responses["MDL"] = "MDL,BCD436HP"

	conn := NewConn(port, 500*time.Millisecond)
	defer conn.Close()

	resp := conn.SendCommand("MDL")
	if resp != "MDL,BCD436HP" {
		t.Errorf("response = %q, want %q", resp, "MDL,BCD436HP")
	}
	if len(port.Received) != 1 || port.Received[0] != "MDL" {
		t.Errorf("port received %v, want [MDL]", port.Received)
	}
}

func TestReadLineTrimsWhitespace(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte("  AR-DV1  \r"))

	conn := NewConn(port, time.Second)
	if got := conn.ReadLine(200 * time.Millisecond); got != "AR-DV1" {
		t.Errorf("ReadLine = %q, want %q", got, "AR-DV1")
	}
}

func TestReadLineTimeoutReturnsEmpty(t *testing.T) {
	port := NewMockPort()
	conn := NewConn(port, time.Second)

	timeout := 100 * time.Millisecond
	start := time.Now()
	got := conn.ReadLine(timeout)
	elapsed := time.Since(start)

	if got != "" {
		t.Errorf("ReadLine on silent port = %q, want empty", got)
	}
	if elapsed < timeout {
		t.Errorf("returned after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+100*time.Millisecond {
		t.Errorf("returned after %v, well past the %v timeout", elapsed, timeout)
	}
}

func TestReadLinePartialWithoutTerminator(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte("MDL,BCD4"))

	conn := NewConn(port, time.Second)
	if got := conn.ReadLine(50 * time.Millisecond); got != "" {
		t.Errorf("ReadLine on partial line = %q, want empty", got)
	}

	// The partial bytes must survive for the next read
	port.InjectRaw([]byte("36HP\r"))
	if got := conn.ReadLine(200 * time.Millisecond); got != "MDL,BCD436HP" {
		t.Errorf("ReadLine after completion = %q, want %q", got, "MDL,BCD436HP")
	}
}

func TestReadLineUndecodableBytes(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte{0xFF, 0xFE, 0x80, 0x0D})

	conn := NewConn(port, time.Second)
	if got := conn.ReadLine(200 * time.Millisecond); got != "" {
		t.Errorf("ReadLine on binary garbage = %q, want empty", got)
	}
}

func TestReadLineKeepsTrailingBytes(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte("MDL,SDS100\rVER,1.0\r"))

	conn := NewConn(port, time.Second)
	if got := conn.ReadLine(200 * time.Millisecond); got != "MDL,SDS100" {
		t.Errorf("first line = %q, want %q", got, "MDL,SDS100")
	}
	if got := conn.ReadLine(200 * time.Millisecond); got != "VER,1.0" {
		t.Errorf("second line = %q, want %q", got, "VER,1.0")
	}
}

func TestClearDiscardsBufferedInput(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte("stale response\r"))
	port.Responses["MDL"] = "MDL,BCD325P2"

	conn := NewConn(port, 500*time.Millisecond)
	conn.Clear()

	if got := conn.SendCommand("MDL"); got != "MDL,BCD325P2" {
		t.Errorf("response after Clear = %q, want %q", got, "MDL,BCD325P2")
	}
}

func TestWaitForDataTrue(t *testing.T) {
	port := NewMockPort()
	conn := NewConn(port, time.Second)

	go func() {
		time.Sleep(30 * time.Millisecond)
		port.InjectRaw([]byte("X"))
	}()

	if !conn.WaitForData(300 * time.Millisecond) {
		t.Fatal("WaitForData = false with data arriving inside the window")
	}
}

func TestWaitForDataTimeout(t *testing.T) {
	port := NewMockPort()
	conn := NewConn(port, time.Second)

	maxWait := 100 * time.Millisecond
	start := time.Now()
	ok := conn.WaitForData(maxWait)
	elapsed := time.Since(start)

	if ok {
		t.Error("WaitForData = true on silent port")
	}
	if elapsed > maxWait+50*time.Millisecond {
		t.Errorf("blocked for %v, want at most maxWait plus one poll interval", elapsed)
	}
}

func TestWaitForDataDoesNotLoseBytes(t *testing.T) {
	port := NewMockPort()
	port.InjectRaw([]byte("MDL,SDS200\r"))

	conn := NewConn(port, time.Second)
	if !conn.WaitForData(100 * time.Millisecond) {
		t.Fatal("WaitForData = false with data already buffered")
	}

	// Bytes consumed by the liveness check feed the next ReadLine
	if got := conn.ReadLine(200 * time.Millisecond); got != "MDL,SDS200" {
		t.Errorf("ReadLine after WaitForData = %q, want %q", got, "MDL,SDS200")
	}
}
