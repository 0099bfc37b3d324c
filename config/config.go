package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunables for the serial layer and the server surface
type Config struct {
	// BaudRate is used for command sessions with a detected scanner
	BaudRate int
	// CommandTimeout bounds each response read during normal operation
	CommandTimeout time.Duration

	// ProbeBaudRate and ProbeTimeout apply while probing unknown ports;
	// probes use a shorter window so a full pass stays fast
	ProbeBaudRate int
	ProbeTimeout  time.Duration

	// MaxRetries is the number of additional discovery passes after the
	// first one comes up empty
	MaxRetries int
	// RetryDelay is the pause between discovery passes
	RetryDelay time.Duration
	// MaxWait bounds the liveness poll for unsolicited data
	MaxWait time.Duration

	// MockAddr, when set, adds tcp://MockAddr to the discovery candidates
	MockAddr string

	WSAddr string
	LogDir string
}

// Load reads configuration from an optional file and the environment.
// Env overrides use the SCANNER_ prefix (SCANNER_BAUD_RATE, ...). A missing
// config file is fine; defaults cover everything.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("baud_rate", 115200)
	v.SetDefault("command_timeout", "1s")
	v.SetDefault("probe_baud_rate", 115200)
	v.SetDefault("probe_timeout", "500ms")
	v.SetDefault("max_retries", 2)
	v.SetDefault("retry_delay", "3s")
	v.SetDefault("max_wait", "300ms")
	v.SetDefault("mock_addr", "")
	v.SetDefault("ws_addr", ":8989")
	v.SetDefault("log_dir", "logs")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("scanner-server")
		v.AddConfigPath(".")
		// config file is optional when not named explicitly
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix("SCANNER")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaudRate:       v.GetInt("baud_rate"),
		CommandTimeout: v.GetDuration("command_timeout"),
		ProbeBaudRate:  v.GetInt("probe_baud_rate"),
		ProbeTimeout:   v.GetDuration("probe_timeout"),
		MaxRetries:     v.GetInt("max_retries"),
		RetryDelay:     v.GetDuration("retry_delay"),
		MaxWait:        v.GetDuration("max_wait"),
		MockAddr:       v.GetString("mock_addr"),
		WSAddr:         v.GetString("ws_addr"),
		LogDir:         v.GetString("log_dir"),
	}

	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("baud_rate must be positive, got %d", cfg.BaudRate)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.CommandTimeout <= 0 || cfg.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}
	return cfg, nil
}
