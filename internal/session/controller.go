package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/internal/attack"
	"github.com/wifibear/wifiaudit/internal/config"
	"github.com/wifibear/wifiaudit/internal/handshake"
	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/result"
	"github.com/wifibear/wifiaudit/internal/scan"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/pkg/wifi"
	"github.com/wifibear/wifiaudit/ui"
)

var (
	ErrTargetNotFound = errors.New("target network not found")
	ErrNoNetworks     = errors.New("no networks found")
	ErrNoHandshake    = errors.New("no handshake captured")
	ErrNoChannel      = errors.New("target has no usable channel")
)

// maxListed caps the per-network lines reported after a scan.
const maxListed = 10

// Controller drives one audit from interface selection to cracking.
type Controller struct {
	cfg    *config.Config
	rep    *ui.Reporter
	prompt ui.Prompter
	sess   *Session
	ifaces *iface.Manager

	airodump *tools.AirodumpNG
	mac      *tools.Macchanger
	capture  *attack.HandshakeCapture
	cracker  *attack.Cracker

	// Result is set once a crack attempt has completed.
	Result *result.CrackResult
}

func NewController(cfg *config.Config, rep *ui.Reporter, prompt ui.Prompter, sess *Session, ifaces *iface.Manager) *Controller {
	return &Controller{
		cfg:      cfg,
		rep:      rep,
		prompt:   prompt,
		sess:     sess,
		ifaces:   ifaces,
		airodump: tools.NewAirodumpNG(),
		mac:      tools.NewMacchanger(),
		capture:  attack.NewHandshakeCapture(cfg, rep, prompt, sess),
		cracker:  attack.NewCracker(cfg, rep, prompt),
	}
}

// Run executes the workflow and returns the terminal state. The error is
// nil for Done and carries the cause for Failed and Interrupted. Cleanup is
// the caller's job.
func (c *Controller) Run(ctx context.Context) (State, error) {
	err := c.run(ctx)
	switch {
	case err == nil:
		c.sess.Transition(StateDone)
	case ctx.Err() != nil || errors.Is(err, ui.ErrInterrupted):
		if cause := context.Cause(ctx); cause != nil {
			err = cause
		}
		c.sess.Transition(StateInterrupted)
		c.rep.Warn("Session interrupted")
	default:
		c.sess.Transition(StateFailed)
		c.rep.Error("%s", failureMessage(err))
	}
	return c.sess.State(), err
}

func (c *Controller) run(ctx context.Context) error {
	name, err := c.selectInterface(ctx)
	if err != nil {
		return err
	}
	c.sess.Interface = name

	if err := c.enableMonitor(ctx, name); err != nil {
		return err
	}
	c.sess.Transition(StateMonitorEnabled)

	if c.cfg.RandomMAC {
		c.randomizeMAC(ctx)
	}

	c.sess.Transition(StateScanning)
	aps, err := c.scan(ctx)
	if err != nil {
		return err
	}

	ap, ok, err := c.selectTarget(ctx, aps)
	if err != nil || !ok {
		return err
	}
	c.sess.Transition(StateTargetSelected)

	if ap.ChannelNumber() == 0 {
		return fmt.Errorf("%w: %q", ErrNoChannel, ap.Channel)
	}
	if !ap.IsWPA() {
		c.rep.Warn("%s advertises %q, a WPA handshake may never appear", ap.ESSID, ap.Privacy)
	}

	dir, err := c.sess.EnsureWorkDir()
	if err != nil {
		return err
	}

	c.sess.Transition(StateCapturing)
	capFile, err := c.capture.Run(ctx, c.sess.MonitorIface, ap, dir)
	if err != nil {
		return err
	}

	if err := c.verify(ctx, capFile, ap); err != nil {
		return err
	}
	c.sess.Transition(StateHandshakeVerified)

	c.sess.Transition(StateCracking)
	res, err := c.cracker.Run(ctx, capFile, ap, dir)
	c.Result = res
	return err
}

func (c *Controller) selectInterface(ctx context.Context) (string, error) {
	ifaces := c.ifaces.ListWirelessInterfaces(ctx)
	if len(ifaces) == 0 {
		return "", iface.ErrNoInterface
	}
	c.rep.Report(ui.KindInfo, "Available wireless interfaces: "+strings.Join(ifaces, ", "),
		map[string]any{"interfaces": ifaces})

	if want := c.cfg.Interface; want != "" {
		if slices.Contains(ifaces, want) {
			c.rep.Success("Using interface: %s", want)
			return want, nil
		}
		c.rep.Warn("Interface %s not found", want)
	}

	if c.cfg.Automated() {
		c.rep.Success("Auto-selected interface: %s", ifaces[0])
		return ifaces[0], nil
	}

	idx, err := c.prompt.Choose(ctx, "Select wireless interface:", ifaces, true)
	if err != nil {
		return "", err
	}
	c.rep.Success("Using interface: %s", ifaces[idx])
	return ifaces[idx], nil
}

func (c *Controller) enableMonitor(ctx context.Context, name string) error {
	c.rep.Info("Putting %s into monitor mode...", name)
	mon, err := c.ifaces.EnableMonitorMode(ctx, name)
	if err != nil {
		return fmt.Errorf("enable monitor mode on %s: %w", name, err)
	}
	c.sess.MonitorIface = mon
	c.rep.Success("Monitor mode enabled on %s", mon)
	return nil
}

func (c *Controller) randomizeMAC(ctx context.Context) {
	if !c.mac.Available() {
		c.rep.Warn("macchanger not installed, keeping the hardware MAC address")
		return
	}
	addr, err := c.mac.Randomize(ctx, c.sess.MonitorIface)
	if err != nil {
		c.rep.Warn("MAC randomization failed: %v", err)
		return
	}
	c.sess.RandomizedMAC = true
	c.rep.Success("MAC address randomized: %s", addr)
}

func (c *Controller) scan(ctx context.Context) ([]wifi.AccessPoint, error) {
	dir, err := c.sess.EnsureWorkDir()
	if err != nil {
		return nil, err
	}

	window := c.cfg.Scan.Timeout
	c.rep.Info("Scanning for WiFi networks for %s...", window)
	cs, err := c.airodump.StartScan(ctx, c.sess.MonitorIface, dir)
	if err != nil {
		return nil, err
	}
	proc := cs.Process()
	c.sess.Track(proc)

	err = attack.Await(ctx, proc, window, func(ctx context.Context) error {
		return c.prompt.AwaitStop(ctx, "Scanning, press Enter to stop")
	})
	_ = cs.Stop()
	c.sess.Untrack(proc)
	if err != nil {
		return nil, err
	}

	aps := scan.ParseScanDump(cs.CSVFile())
	c.rep.Report(ui.KindSuccess, fmt.Sprintf("Found %d networks", len(aps)),
		map[string]any{"networks": aps, "count": len(aps)})
	if !c.rep.Integration() && !c.cfg.Automated() && len(aps) > 0 {
		c.rep.Print(scan.FormatTable(aps))
	} else {
		for i, ap := range aps {
			if i == maxListed {
				c.rep.Info("... and %d more", len(aps)-maxListed)
				break
			}
			c.rep.Info("Network %d: %s", i+1, ap)
		}
	}
	return aps, nil
}

// selectTarget returns ok=false with a nil error when the scan was only
// informational.
func (c *Controller) selectTarget(ctx context.Context, aps []wifi.AccessPoint) (wifi.AccessPoint, bool, error) {
	if ssid := c.cfg.TargetSSID; ssid != "" {
		ap, ok := scan.FindBySSID(aps, ssid)
		if !ok {
			return ap, false, fmt.Errorf("%w: %s", ErrTargetNotFound, ssid)
		}
		c.rep.Report(ui.KindSuccess, "Selected target: "+ap.String(), ap)
		return ap, true, nil
	}

	if c.cfg.Automated() {
		if len(aps) == 0 {
			c.rep.Warn("No networks found in scan")
		}
		c.rep.Info("No target SSID given, scan results are informational")
		return wifi.AccessPoint{}, false, nil
	}

	if len(aps) == 0 {
		return wifi.AccessPoint{}, false, ErrNoNetworks
	}

	idx, err := c.prompt.Choose(ctx, "Select network number to target:", scan.Labels(aps), false)
	if err != nil {
		return wifi.AccessPoint{}, false, err
	}
	ap := aps[idx]
	c.rep.Report(ui.KindSuccess, "Selected target: "+ap.String(), ap)
	return ap, true, nil
}

// verify asks aircrack-ng for the verdict. The native summary rides along
// as evidence only.
func (c *Controller) verify(ctx context.Context, capFile string, ap wifi.AccessPoint) error {
	c.rep.Info("Verifying handshake...")
	if _, err := os.Stat(capFile); err != nil {
		return fmt.Errorf("%w: %s", attack.ErrNoCapture, capFile)
	}

	av := handshake.NewAircrackValidator(c.cfg.Capture.HandshakeMarker)
	ok, err := av.Validate(ctx, capFile, ap.BSSID)
	if err != nil {
		return fmt.Errorf("verify handshake: %w", err)
	}

	payload := map[string]any{
		"capture_file": capFile,
		"bssid":        ap.BSSID,
		"handshakes":   tools.HandshakeCount(av.Output),
	}
	pv := handshake.NewPcapValidator()
	if complete, err := pv.Validate(ctx, capFile, ap.BSSID); err != nil {
		log.Debug("native capture summary failed", "file", capFile, "err", err)
	} else {
		payload["eapol_frames"] = pv.Summary.EAPOLFrames
		payload["clients"] = pv.Summary.Clients
		payload["complete_exchange"] = complete
	}

	if !ok {
		c.rep.Report(ui.KindError, "No handshake was captured, try again", payload)
		return ErrNoHandshake
	}
	c.rep.Report(ui.KindSuccess, "WPA handshake successfully captured", payload)
	return nil
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, iface.ErrNoInterface):
		return "No wireless interfaces found: " + err.Error()
	case errors.Is(err, iface.ErrNoMonitor):
		return "Failed to enable monitor mode"
	case errors.Is(err, ErrTargetNotFound):
		return "Target network not found: " + strings.TrimPrefix(err.Error(), ErrTargetNotFound.Error()+": ")
	case errors.Is(err, ErrNoNetworks):
		return "No networks found"
	case errors.Is(err, attack.ErrNoCapture):
		return "Capture file not found, try again"
	case errors.Is(err, ErrNoHandshake):
		return "Session failed: no handshake captured"
	default:
		return "Session failed: " + err.Error()
	}
}
