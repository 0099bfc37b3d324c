package driver

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	"scanner-server/logger"
)

// SerialPort wraps go.bug.st/serial for physical RS232/USB-serial scanners
type SerialPort struct {
	serial.Port
	portName string
}

var _ Port = (*SerialPort)(nil)

// openSerialPort opens a physical serial port at 8N1
func openSerialPort(portName string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	// Default read timeout; Conn adjusts it per read
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %v", err)
	}

	logger.Debug("Serial port %s opened at %d bps (8N1)", portName, baudRate)
	return &SerialPort{Port: port, portName: portName}, nil
}

func (p *SerialPort) GetPortName() string {
	return p.portName
}

// OpenSerial opens an endpoint - either physical serial or TCP based on the
// address format. TCP addresses use "tcp://host:port"; everything else is
// treated as a serial device name ("COM3", "/dev/ttyUSB0", ...).
func OpenSerial(portName string, baudRate int) (Port, error) {
	if strings.HasPrefix(portName, "tcp://") {
		addr := strings.TrimPrefix(portName, "tcp://")
		return OpenTCP(addr)
	}
	return openSerialPort(portName, baudRate)
}
