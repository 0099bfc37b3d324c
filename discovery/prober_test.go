package discovery

import (
	"errors"
	"testing"
	"time"

	"scanner-server/config"
	"scanner-server/driver"
)

func testConfig() *config.Config {
	return &config.Config{
		BaudRate:       115200,
		CommandTimeout: time.Second,
		ProbeBaudRate:  115200,
		ProbeTimeout:   30 * time.Millisecond,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		MaxWait:        300 * time.Millisecond,
	}
}

// testProber wires a Prober to scripted ports. ports maps device name to a
// MockPort; devices absent from the map fail to open.
func testProber(cfg *config.Config, order []string, ports map[string]*driver.MockPort) (*Prober, *int) {
	passes := 0
	p := NewProber(cfg)
	p.list = func() ([]Endpoint, error) {
		passes++
		eps := make([]Endpoint, 0, len(order))
		for _, d := range order {
			eps = append(eps, Endpoint{Device: d})
		}
		return eps, nil
	}
	p.open = func(device string, baudRate int) (driver.Port, error) {
		port, ok := ports[device]
		if !ok {
			return nil, errors.New("permission denied")
		}
		return port, nil
	}
	return p, &passes
}

func TestFindScannersUniden(t *testing.T) {
	port := driver.NewMockPort()
	port.Responses["MDL"] = "MDL,BCD436HP"
	port.Responses["WI"] = "AR-DV1" // must never be consulted

	p, _ := testProber(testConfig(), []string{"/dev/ttyUSB0"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": port,
	})

	results := p.FindScanners()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := ProbeResult{Device: "/dev/ttyUSB0", Model: "BCD436HP", Dialect: DialectUniden}
	if results[0] != want {
		t.Errorf("result = %+v, want %+v", results[0], want)
	}

	// Uniden match short-circuits the secondary probe
	for _, cmd := range port.Received {
		if cmd == "WI" {
			t.Error("secondary WI probe was sent after a Uniden match")
		}
	}
	if !port.Closed() {
		t.Error("port left open after probing")
	}
}

func TestFindScannersAORDV1(t *testing.T) {
	port := driver.NewMockPort()
	port.Responses["MDL"] = "?" // garbage, not the model grammar
	port.Responses["WI"] = "AR-DV1"

	p, _ := testProber(testConfig(), []string{"/dev/ttyUSB1"}, map[string]*driver.MockPort{
		"/dev/ttyUSB1": port,
	})

	results := p.FindScanners()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := ProbeResult{Device: "/dev/ttyUSB1", Model: "AR-DV1", Dialect: DialectAORDV1}
	if results[0] != want {
		t.Errorf("result = %+v, want %+v", results[0], want)
	}
}

func TestFindScannersExhaustsRetries(t *testing.T) {
	silent := driver.NewMockPort() // replies to nothing

	cfg := testConfig()
	cfg.MaxRetries = 2
	p, passes := testProber(cfg, []string{"/dev/ttyUSB0"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": silent,
	})

	results := p.FindScanners()
	if len(results) != 0 {
		t.Errorf("got %d results from silent port, want 0", len(results))
	}
	if *passes != 3 {
		t.Errorf("performed %d passes, want exactly max_retries+1 = 3", *passes)
	}
	if got := p.Status().State; got != StateExhausted.String() {
		t.Errorf("final state = %s, want EXHAUSTED", got)
	}
}

func TestFindScannersStopsAfterFirstHit(t *testing.T) {
	port := driver.NewMockPort()
	port.Responses["MDL"] = "MDL,SDS200"

	p, passes := testProber(testConfig(), []string{"/dev/ttyUSB0"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": port,
	})

	p.FindScanners()
	if *passes != 1 {
		t.Errorf("performed %d passes, want 1 after a successful pass", *passes)
	}
	if got := p.Status().State; got != StateFound.String() {
		t.Errorf("final state = %s, want FOUND", got)
	}
}

func TestFindScannersSkipsUnopenablePorts(t *testing.T) {
	good := driver.NewMockPort()
	good.Responses["MDL"] = "MDL,BCD325P2"

	cfg := testConfig()
	cfg.MaxRetries = 0
	// ttyS0 is not in the port map, so opening it fails; the scan must
	// carry on to the next endpoint
	p, _ := testProber(cfg, []string{"/dev/ttyS0", "/dev/ttyUSB0"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": good,
	})

	results := p.FindScanners()
	if len(results) != 1 || results[0].Device != "/dev/ttyUSB0" {
		t.Fatalf("results = %+v, want single hit on /dev/ttyUSB0", results)
	}
}

func TestFindScannersMultipleDevices(t *testing.T) {
	uniden := driver.NewMockPort()
	uniden.Responses["MDL"] = "MDL,BCD436HP"
	aor := driver.NewMockPort()
	aor.Responses["WI"] = "  AR-DV1  "

	cfg := testConfig()
	cfg.MaxRetries = 0
	p, _ := testProber(cfg, []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": uniden,
		"/dev/ttyUSB1": aor,
	})

	results := p.FindScanners()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Dialect != DialectUniden || results[1].Dialect != DialectAORDV1 {
		t.Errorf("dialects = %s, %s; want uniden, aordv1", results[0].Dialect, results[1].Dialect)
	}
	if !uniden.Closed() || !aor.Closed() {
		t.Error("a probe connection was left open")
	}
}

func TestFindScannersClosesPortOnMismatch(t *testing.T) {
	port := driver.NewMockPort()
	port.Responses["MDL"] = "garbage"
	port.Responses["WI"] = "also garbage"

	cfg := testConfig()
	cfg.MaxRetries = 0
	p, _ := testProber(cfg, []string{"/dev/ttyUSB0"}, map[string]*driver.MockPort{
		"/dev/ttyUSB0": port,
	})

	p.FindScanners()
	if !port.Closed() {
		t.Error("port left open after classification mismatch")
	}
}

func TestProberIncludesMockEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.MockAddr = "localhost:9898"

	p := NewProber(cfg)
	p.list = func() ([]Endpoint, error) { return nil, nil }

	var probed []string
	p.open = func(device string, baudRate int) (driver.Port, error) {
		probed = append(probed, device)
		return nil, errors.New("unreachable")
	}

	p.FindScanners()
	if len(probed) != 1 || probed[0] != "tcp://localhost:9898" {
		t.Errorf("probed %v, want the mock endpoint tcp://localhost:9898", probed)
	}
}
