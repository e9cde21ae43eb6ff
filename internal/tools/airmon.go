package tools

import (
	"context"
	"fmt"
)

// AirmonNG wraps airmon-ng for monitor mode management.
type AirmonNG struct {
	tool *ExternalTool
}

func NewAirmonNG() *AirmonNG {
	return &AirmonNG{
		tool: &ExternalTool{Name: "airmon-ng", Required: true},
	}
}

// Start enables monitor mode on the given interface. airmon-ng does not
// reliably report the resulting interface name, so callers look it up with
// iwconfig afterwards.
func (a *AirmonNG) Start(ctx context.Context, iface string) (string, error) {
	out, err := RunCapture(ctx, "airmon-ng", "start", iface)
	if err != nil {
		return out, fmt.Errorf("airmon-ng start %s: %w", iface, err)
	}
	return out, nil
}

// Stop disables monitor mode.
func (a *AirmonNG) Stop(ctx context.Context, iface string) error {
	if _, err := RunCapture(ctx, "airmon-ng", "stop", iface); err != nil {
		return fmt.Errorf("airmon-ng stop %s: %w", iface, err)
	}
	return nil
}

// CheckKill kills interfering processes.
func (a *AirmonNG) CheckKill(ctx context.Context) error {
	return RunSilent(ctx, "airmon-ng", "check", "kill")
}
