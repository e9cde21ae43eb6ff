package tools

import (
	"context"
	"fmt"
	"regexp"
)

var macAddrRe = regexp.MustCompile(`([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})`)

// Macchanger wraps the macchanger utility.
type Macchanger struct {
	tool *ExternalTool
}

func NewMacchanger() *Macchanger {
	return &Macchanger{
		tool: &ExternalTool{Name: "macchanger", Required: false},
	}
}

func (m *Macchanger) Available() bool {
	return m.tool.Exists()
}

// Randomize sets a random MAC address on the interface and returns it.
func (m *Macchanger) Randomize(ctx context.Context, iface string) (string, error) {
	out, err := m.withIfaceDown(ctx, iface, "-r")
	if err != nil {
		return "", err
	}

	// macchanger prints current, permanent and new; the new one is last.
	matches := macAddrRe.FindAllString(out, -1)
	if len(matches) > 0 {
		return matches[len(matches)-1], nil
	}

	return "", fmt.Errorf("could not parse new MAC from output")
}

// Restore restores the permanent hardware MAC.
func (m *Macchanger) Restore(ctx context.Context, iface string) error {
	_, err := m.withIfaceDown(ctx, iface, "-p")
	return err
}

func (m *Macchanger) withIfaceDown(ctx context.Context, iface, flag string) (string, error) {
	if err := RunSilent(ctx, "ip", "link", "set", iface, "down"); err != nil {
		return "", fmt.Errorf("interface down: %w", err)
	}

	out, err := RunCapture(ctx, "macchanger", flag, iface)

	// Bring interface back up regardless of macchanger result
	_ = RunSilent(ctx, "ip", "link", "set", iface, "up")

	if err != nil {
		return "", fmt.Errorf("macchanger %s: %w", flag, err)
	}
	return out, nil
}
