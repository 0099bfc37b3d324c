package discovery

import (
	"sync"
	"time"
)

// ScanState represents where the discovery loop currently is
type ScanState int

const (
	StateIdle ScanState = iota
	StateScanning
	StateRetrying
	StateFound
	StateExhausted
)

// String returns the string representation of the state
func (s ScanState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateScanning:
		return "SCANNING"
	case StateRetrying:
		return "RETRYING"
	case StateFound:
		return "FOUND"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// StatusInfo is a snapshot of discovery progress for broadcasting
type StatusInfo struct {
	State     string    `json:"state"`
	Message   string    `json:"message"`
	Pass      int       `json:"pass"`
	MaxPasses int       `json:"max_passes"`
	Found     int       `json:"found"`
	StartedAt time.Time `json:"started_at,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// StatusCallback is called on every state transition
type StatusCallback func(info StatusInfo)

// stateTracker keeps the scan state with thread-safety so a websocket
// broadcaster can observe a scan driven from another goroutine
type stateTracker struct {
	mu sync.Mutex

	state     ScanState
	started   time.Time
	pass      int
	maxPasses int
	found     int
	onChange  StatusCallback
}

func newStateTracker(maxPasses int) *stateTracker {
	return &stateTracker{state: StateIdle, maxPasses: maxPasses}
}

func (t *stateTracker) setCallback(cb StatusCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = cb
}

func (t *stateTracker) transition(state ScanState, pass, found int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state == StateScanning && pass == 1 {
		t.started = time.Now()
	}
	t.state = state
	t.pass = pass
	t.found = found

	if t.onChange != nil {
		t.onChange(t.snapshotLocked())
	}
}

func (t *stateTracker) status() StatusInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *stateTracker) snapshotLocked() StatusInfo {
	info := StatusInfo{
		State:     t.state.String(),
		Pass:      t.pass,
		MaxPasses: t.maxPasses,
		Found:     t.found,
	}
	if t.state != StateIdle {
		info.StartedAt = t.started
		info.ElapsedMs = time.Since(t.started).Milliseconds()
	}

	switch t.state {
	case StateIdle:
		info.Message = "Ready to scan"
	case StateScanning:
		info.Message = "Probing serial endpoints..."
	case StateRetrying:
		info.Message = "No scanners found, retrying..."
	case StateFound:
		info.Message = "Scanner detected"
	case StateExhausted:
		info.Message = "No scanners found after maximum retries"
	}
	return info
}
