package iface

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/internal/tools"
)

// ProcWireless is the kernel wireless status file used as a fallback when
// iwconfig lists nothing.
const ProcWireless = "/proc/net/wireless"

var (
	ErrNoInterface = errors.New("no wireless interfaces found")
	ErrNoMonitor   = errors.New("no interface in monitor mode")
)

// Manager handles wireless interface discovery and monitor mode.
type Manager struct {
	airmon       *tools.AirmonNG
	procWireless string
}

func NewManager() *Manager {
	return &Manager{
		airmon:       tools.NewAirmonNG(),
		procWireless: ProcWireless,
	}
}

// ListWirelessInterfaces returns 802.11 interfaces in detection order with
// duplicates removed. iwconfig is authoritative; the kernel status file is
// consulted only when iwconfig yields nothing.
func (m *Manager) ListWirelessInterfaces(ctx context.Context) []string {
	// iwconfig prints "no wireless extensions" for other links and may exit
	// non-zero; whatever it printed is still usable.
	out, err := tools.RunCapture(ctx, "iwconfig")
	if err != nil {
		log.Debug("iwconfig failed", "err", err)
	}
	ifaces := ParseIwconfig(out)

	if len(ifaces) == 0 {
		f, err := os.Open(m.procWireless)
		if err != nil {
			log.Debug("no kernel wireless status", "path", m.procWireless, "err", err)
		} else {
			defer f.Close()
			ifaces = append(ifaces, ParseProcWireless(f)...)
		}
	}

	return dedupe(ifaces)
}

// EnableMonitorMode kills interfering processes, starts monitor mode on
// iface and returns the resulting monitor interface as iwconfig reports it.
func (m *Manager) EnableMonitorMode(ctx context.Context, iface string) (string, error) {
	if err := m.airmon.CheckKill(ctx); err != nil {
		log.Debug("airmon-ng check kill failed", "err", err)
	}

	if out, err := m.airmon.Start(ctx, iface); err != nil {
		// Some drivers make airmon-ng exit non-zero even though the monitor
		// interface came up; iwconfig decides.
		log.Warn("airmon-ng start reported an error", "iface", iface, "err", err, "output", out)
	}

	out, err := tools.RunCapture(ctx, "iwconfig")
	if err != nil && out == "" {
		return "", fmt.Errorf("iwconfig: %w", err)
	}

	mon := ParseMonitorInterface(out)
	if mon == "" {
		return "", ErrNoMonitor
	}
	return mon, nil
}

// DisableMonitorMode returns the monitor interface to managed mode.
func (m *Manager) DisableMonitorMode(ctx context.Context, mon string) error {
	return m.airmon.Stop(ctx, mon)
}

// Probe reports whether iwconfig can query the interface. It does not
// change the interface state.
func (m *Manager) Probe(ctx context.Context, iface string) bool {
	return tools.RunSilent(ctx, "iwconfig", iface) == nil
}

// ParseIwconfig returns the interface names of iwconfig lines marked as
// 802.11 capable.
func ParseIwconfig(out string) []string {
	var ifaces []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "IEEE 802.11") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			ifaces = append(ifaces, fields[0])
		}
	}
	return ifaces
}

// ParseProcWireless extracts interface names from /proc/net/wireless,
// skipping its two header lines.
func ParseProcWireless(r io.Reader) []string {
	var ifaces []string
	scanner := bufio.NewScanner(r)
	for n := 0; scanner.Scan(); n++ {
		if n < 2 {
			continue
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, _, _ := strings.Cut(line, ":")
		if name = strings.TrimSpace(name); name != "" {
			ifaces = append(ifaces, name)
		}
	}
	return ifaces
}

// ParseMonitorInterface returns the first token of the first iwconfig line
// containing "Mode:Monitor", or "" if there is none.
func ParseMonitorInterface(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(strings.ToLower(line), "mode:monitor") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
