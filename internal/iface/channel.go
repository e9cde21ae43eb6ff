package iface

import (
	"context"
	"fmt"

	"github.com/wifibear/wifiaudit/internal/tools"
)

// SetChannel locks the monitor interface to a channel.
func SetChannel(ctx context.Context, iface string, channel string) error {
	// Use iwconfig to set channel (most compatible)
	_, err := tools.RunCapture(ctx, "iwconfig", iface, "channel", channel)
	if err != nil {
		// Fallback to iw
		_, err = tools.RunCapture(ctx, "iw", "dev", iface, "set", "channel", channel)
	}
	if err != nil {
		return fmt.Errorf("set channel %s on %s: %w", channel, iface, err)
	}
	return nil
}
