package discovery

import (
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"scanner-server/logger"
)

// Endpoint is one candidate serial interface seen during a discovery pass.
// Endpoints carry no identity across passes; the list is rebuilt every time.
type Endpoint struct {
	// Device is the platform-specific name ("COM3", "/dev/ttyUSB0",
	// "tcp://host:port" for bridged devices)
	Device string
	// Description is the human-readable adapter name when the platform
	// exposes one
	Description string
}

// ListEndpoints enumerates the currently attached serial interfaces.
// The detailed enumerator supplies USB product descriptions; when it is
// unavailable the plain port list is used and descriptions stay empty.
func ListEndpoints() ([]Endpoint, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		endpoints := make([]Endpoint, 0, len(details))
		for _, d := range details {
			endpoints = append(endpoints, Endpoint{Device: d.Name, Description: d.Product})
		}
		return endpoints, nil
	}
	logger.Debug("detailed port enumeration unavailable: %v", err)

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	endpoints := make([]Endpoint, 0, len(names))
	for _, name := range names {
		endpoints = append(endpoints, Endpoint{Device: name})
	}
	return endpoints, nil
}
