// Package preflight checks that the host can run an audit: external tools,
// privileges and wireless hardware.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/ui"
)

var (
	ErrMissingTools = errors.New("missing required tools")
	ErrNotRoot      = errors.New("root privileges required")
)

// Requirements is the outcome of the tool check.
type Requirements struct {
	Available []string `json:"available"`
	Missing   []string `json:"missing"`
	Ready     bool     `json:"ready"`
}

// Compatibility describes the host beyond the tool list.
type Compatibility struct {
	RootPrivileges     bool       `json:"root_privileges"`
	WirelessInterfaces []string   `json:"wireless_interfaces"`
	AircrackSuite      bool       `json:"aircrack_suite"`
	MonitorModeSupport bool       `json:"monitor_mode_support"`
	SystemInfo         SystemInfo `json:"system_info"`
}

type SystemInfo struct {
	Platform  string `json:"platform"`
	GoVersion string `json:"go_version"`
	UID       int    `json:"uid"`
}

// Prober runs the environment checks and reports each finding.
type Prober struct {
	rep    *ui.Reporter
	deps   *tools.DependencyChecker
	ifaces *iface.Manager

	geteuid func() int
}

// NewProber builds a prober. geteuid reports the effective user ID; nil
// means os.Geteuid.
func NewProber(rep *ui.Reporter, ifaces *iface.Manager, geteuid func() int) *Prober {
	if geteuid == nil {
		geteuid = os.Geteuid
	}
	return &Prober{
		rep:     rep,
		deps:    tools.NewDependencyChecker(),
		ifaces:  ifaces,
		geteuid: geteuid,
	}
}

// CheckRequirements looks every tool up on PATH. Outside check-only a
// missing required tool is returned as ErrMissingTools.
func (p *Prober) CheckRequirements(checkOnly bool) (Requirements, error) {
	p.rep.Info("Checking required tools...")

	req := Requirements{Available: []string{}, Missing: []string{}}
	for _, st := range p.deps.CheckAll() {
		switch {
		case st.Available:
			req.Available = append(req.Available, st.Name)
			p.rep.Report(ui.KindSuccess, st.Name+" found", map[string]any{"tool": st.Name, "path": st.Path})
		case st.Required:
			req.Missing = append(req.Missing, st.Name)
			p.rep.Report(ui.KindError, st.Name+" not found", map[string]any{"tool": st.Name})
		default:
			p.rep.Report(ui.KindWarning, st.Name+" not found (optional)", map[string]any{"tool": st.Name})
		}
	}
	req.Ready = len(req.Missing) == 0

	if req.Ready {
		p.rep.Success("All required tools are installed")
		return req, nil
	}

	p.rep.Warn("Missing required tools: %s", strings.Join(req.Missing, ", "))
	p.rep.Info("Install with: %s", tools.InstallHint())
	if checkOnly {
		return req, nil
	}
	return req, fmt.Errorf("%w: %s", ErrMissingTools, strings.Join(req.Missing, ", "))
}

// CheckRoot reports whether the effective user is root. Outside check-only
// a non-root user is returned as ErrNotRoot.
func (p *Prober) CheckRoot(checkOnly bool) (bool, error) {
	if p.geteuid() == 0 {
		return true, nil
	}
	if checkOnly {
		p.rep.Warn("Not running as root, a full run requires root privileges")
		return false, nil
	}
	p.rep.Error("This tool must be run as root")
	return false, ErrNotRoot
}

// Compatibility gathers host facts. The monitor-mode probe only queries the
// first interface and is skipped without root.
func (p *Prober) Compatibility(ctx context.Context) Compatibility {
	uid := p.geteuid()
	c := Compatibility{
		RootPrivileges:     uid == 0,
		WirelessInterfaces: p.ifaces.ListWirelessInterfaces(ctx),
		AircrackSuite:      p.deps.IsAvailable("aircrack-ng"),
		SystemInfo: SystemInfo{
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			GoVersion: runtime.Version(),
			UID:       uid,
		},
	}
	if c.WirelessInterfaces == nil {
		c.WirelessInterfaces = []string{}
	}
	if c.RootPrivileges && len(c.WirelessInterfaces) > 0 {
		c.MonitorModeSupport = p.ifaces.Probe(ctx, c.WirelessInterfaces[0])
	}

	if len(c.WirelessInterfaces) == 0 {
		p.rep.Warn("No wireless interfaces detected")
	} else {
		p.rep.Report(ui.KindInfo, "Wireless interfaces: "+strings.Join(c.WirelessInterfaces, ", "), c)
	}
	return c
}
