package tools

import "context"

// RestartNetworkService restarts the host's network manager so the adapter
// returns to normal use. Best effort: NetworkManager first, then the
// Debian-style networking service.
func RestartNetworkService(ctx context.Context) error {
	if err := RunSilent(ctx, "service", "NetworkManager", "restart"); err == nil {
		return nil
	}
	return RunSilent(ctx, "service", "networking", "restart")
}
