package tools

import (
	"context"
	"fmt"
	"path/filepath"
)

// AirodumpNG wraps airodump-ng for packet capture.
type AirodumpNG struct {
	tool *ExternalTool
}

func NewAirodumpNG() *AirodumpNG {
	return &AirodumpNG{
		tool: &ExternalTool{Name: "airodump-ng", Required: true},
	}
}

// CaptureSession is a running airodump-ng writing files under a prefix.
type CaptureSession struct {
	proc   *Process
	prefix string
}

// StartScan starts a general scan (all channels) writing only the CSV dump.
func (a *AirodumpNG) StartScan(ctx context.Context, iface, dir string) (*CaptureSession, error) {
	prefix := filepath.Join(dir, "scan")
	args := []string{
		"-w", prefix,
		"--output-format", "csv",
		"--write-interval", "1",
		iface,
	}

	proc, err := StartProcess(ctx, "airodump-ng", args...)
	if err != nil {
		return nil, fmt.Errorf("start airodump scan: %w", err)
	}

	return &CaptureSession{proc: proc, prefix: prefix}, nil
}

// StartCapture begins capturing on a specific channel and BSSID.
func (a *AirodumpNG) StartCapture(ctx context.Context, iface, bssid, channel, dir string) (*CaptureSession, error) {
	prefix := filepath.Join(dir, "capture")
	args := []string{
		"-c", channel,
		"--bssid", bssid,
		"-w", prefix,
		iface,
	}

	proc, err := StartProcess(ctx, "airodump-ng", args...)
	if err != nil {
		return nil, fmt.Errorf("start airodump capture: %w", err)
	}

	return &CaptureSession{proc: proc, prefix: prefix}, nil
}

// CapFile returns the path to the .cap file.
func (cs *CaptureSession) CapFile() string {
	return cs.prefix + "-01.cap"
}

// CSVFile returns the path to the .csv file.
func (cs *CaptureSession) CSVFile() string {
	return cs.prefix + "-01.csv"
}

// Stop terminates the capture process group.
func (cs *CaptureSession) Stop() error {
	return cs.proc.Stop()
}

// Process returns the underlying process.
func (cs *CaptureSession) Process() *Process {
	return cs.proc
}
