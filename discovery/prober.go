package discovery

import (
	"time"

	"scanner-server/config"
	"scanner-server/driver"
	"scanner-server/logger"
	"scanner-server/protocol"
)

// Dialect is the command-protocol family a detected device speaks
type Dialect string

const (
	DialectUniden  Dialect = "uniden"
	DialectAORDV1  Dialect = "aordv1"
	DialectUnknown Dialect = "unknown"
)

// ProbeResult identifies one classified device from a discovery pass
type ProbeResult struct {
	Device  string  `json:"device"`
	Model   string  `json:"model"`
	Dialect Dialect `json:"dialect"`
}

// Prober walks all enumerable endpoints looking for scanner-class receivers.
// Probing is strictly sequential: at most one port is open at any instant.
type Prober struct {
	cfg   *config.Config
	state *stateTracker

	// enumeration and port opening are swappable for tests
	list func() ([]Endpoint, error)
	open func(device string, baudRate int) (driver.Port, error)
}

func NewProber(cfg *config.Config) *Prober {
	return &Prober{
		cfg:   cfg,
		state: newStateTracker(cfg.MaxRetries + 1),
		list:  ListEndpoints,
		open:  driver.OpenSerial,
	}
}

// SetStatusCallback registers a listener for scan state transitions
func (p *Prober) SetStatusCallback(cb StatusCallback) {
	p.state.setCallback(cb)
}

// Status returns the current scan progress snapshot
func (p *Prober) Status() StatusInfo {
	return p.state.status()
}

// FindScanners scans all endpoints for responding devices, retrying up to
// MaxRetries additional passes with RetryDelay between them. It returns the
// results of the first pass that detects anything, or an empty list once the
// retry budget is exhausted - exhaustion is an empty success, not an error.
func (p *Prober) FindScanners() []ProbeResult {
	detected := []ProbeResult{}

	for pass := 1; pass <= p.cfg.MaxRetries+1; pass++ {
		p.state.transition(StateScanning, pass, 0)

		endpoints := p.candidates()
		logger.Info("Discovery pass %d/%d over %d endpoints",
			pass, p.cfg.MaxRetries+1, len(endpoints))

		for _, ep := range endpoints {
			if result, ok := p.probeEndpoint(ep); ok {
				logger.Info("Detected %s scanner %q on %s", result.Dialect, result.Model, ep.Device)
				detected = append(detected, result)
			}
		}

		if len(detected) > 0 {
			p.state.transition(StateFound, pass, len(detected))
			return detected
		}

		if pass <= p.cfg.MaxRetries {
			p.state.transition(StateRetrying, pass, 0)
			logger.Info("No scanners found. Retrying in %v...", p.cfg.RetryDelay)
			time.Sleep(p.cfg.RetryDelay)
		}
	}

	p.state.transition(StateExhausted, p.cfg.MaxRetries+1, 0)
	logger.Error("No scanners found after maximum retries")
	return detected
}

// candidates re-enumerates endpoints for one pass. The mock scanner address,
// when configured, joins the candidate list like any hardware port.
func (p *Prober) candidates() []Endpoint {
	endpoints, err := p.list()
	if err != nil {
		logger.Error("Failed to list serial ports: %v", err)
		endpoints = nil
	}
	if p.cfg.MockAddr != "" {
		endpoints = append(endpoints, Endpoint{
			Device:      "tcp://" + p.cfg.MockAddr,
			Description: "mock scanner",
		})
	}
	return endpoints
}

// probeEndpoint opens one endpoint, issues the identification probes and
// classifies the response. The connection is closed on every path, and any
// failure means "not a scanner" - it never aborts the scan.
func (p *Prober) probeEndpoint(ep Endpoint) (ProbeResult, bool) {
	logger.Debug("Probing %s (%s)", ep.Device, ep.Description)

	port, err := p.open(ep.Device, p.cfg.ProbeBaudRate)
	if err != nil {
		logger.Warn("Error checking port %s: %v", ep.Device, err)
		return ProbeResult{}, false
	}

	conn := driver.NewConn(port, p.cfg.ProbeTimeout)
	defer conn.Close()

	conn.Clear()

	// Uniden check first; a match short-circuits the secondary probe
	resp := conn.SendCommand(protocol.CmdModelProbe)
	logger.Debug("Response from %s: %q", ep.Device, resp)
	if model, ok := protocol.ParseModelResponse(resp); ok {
		return ProbeResult{Device: ep.Device, Model: model, Dialect: DialectUniden}, true
	}

	resp = conn.SendCommand(protocol.CmdWhoAmI)
	logger.Debug("Response from %s: %q", ep.Device, resp)
	if protocol.IsAORIdentity(resp) {
		return ProbeResult{Device: ep.Device, Model: protocol.AORIdentity, Dialect: DialectAORDV1}, true
	}

	return ProbeResult{}, false
}
