package config

import (
	"time"
)

type Config struct {
	Interface  string
	Wordlist   string
	TargetSSID string

	Integration bool
	AutoMode    bool
	CheckOnly   bool
	RandomMAC   bool

	Scan    ScanConfig
	Capture CaptureConfig
	Output  OutputConfig
}

type ScanConfig struct {
	// Timeout is the scan window. Zero means the mode default.
	Timeout time.Duration
}

type CaptureConfig struct {
	Timeout         time.Duration
	Warmup          time.Duration
	DeauthCount     int
	NoDeauth        bool
	HandshakeMarker string
}

type OutputConfig struct {
	Verbose int
}

const (
	interactiveScanTimeout = 15 * time.Second
	automatedScanTimeout   = 30 * time.Second
)

func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Timeout:         60 * time.Second,
			Warmup:          5 * time.Second,
			DeauthCount:     5,
			HandshakeMarker: "1 handshake",
		},
		Output: OutputConfig{
			Verbose: 1,
		},
	}
}

// Normalize resolves defaults that depend on other flags. It is called once
// after flag parsing; the config is treated as read-only afterwards.
func (c *Config) Normalize() {
	if c.Scan.Timeout <= 0 {
		if c.Automated() {
			c.Scan.Timeout = automatedScanTimeout
		} else {
			c.Scan.Timeout = interactiveScanTimeout
		}
	}
	if c.Capture.DeauthCount <= 0 {
		c.Capture.DeauthCount = 5
	}
	if c.Capture.HandshakeMarker == "" {
		c.Capture.HandshakeMarker = "1 handshake"
	}
}

// Automated reports whether prompts are bypassed.
func (c *Config) Automated() bool {
	return c.AutoMode
}
