package tools

import (
	"context"
	"fmt"
	"strconv"
)

// AireplayNG wraps the aireplay-ng binary.
type AireplayNG struct {
	tool *ExternalTool
}

func NewAireplayNG() *AireplayNG {
	return &AireplayNG{
		tool: &ExternalTool{Name: "aireplay-ng", Required: true},
	}
}

func (a *AireplayNG) Available() bool {
	return a.tool.Exists()
}

// Deauth sends a fixed burst of deauthentication frames and waits for
// aireplay-ng to finish. If clientMAC is empty, it broadcasts to all clients.
func (a *AireplayNG) Deauth(ctx context.Context, iface, bssid, clientMAC string, count int) error {
	args := []string{
		"--deauth", strconv.Itoa(count),
		"-a", bssid,
	}
	if clientMAC != "" {
		args = append(args, "-c", clientMAC)
	}
	args = append(args, iface)

	if out, err := RunCapture(ctx, "aireplay-ng", args...); err != nil {
		return fmt.Errorf("aireplay-ng deauth: %w (%s)", err, lastLine(out))
	}
	return nil
}
