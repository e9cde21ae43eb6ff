package attack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/internal/config"
	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/pkg/wifi"
	"github.com/wifibear/wifiaudit/ui"
)

// ErrNoCapture means airodump-ng stopped without leaving a capture file.
var ErrNoCapture = errors.New("capture file not found")

// HandshakeCapture records WPA/WPA2 4-way handshakes for one access point
// with airodump-ng, optionally nudging clients with a deauth burst.
type HandshakeCapture struct {
	cfg      *config.Config
	airodump *tools.AirodumpNG
	aireplay *tools.AireplayNG
	rep      *ui.Reporter
	prompt   ui.Prompter
	tracker  Tracker
}

func NewHandshakeCapture(cfg *config.Config, rep *ui.Reporter, prompt ui.Prompter, tracker Tracker) *HandshakeCapture {
	return &HandshakeCapture{
		cfg:      cfg,
		airodump: tools.NewAirodumpNG(),
		aireplay: tools.NewAireplayNG(),
		rep:      rep,
		prompt:   prompt,
		tracker:  tracker,
	}
}

// Run captures traffic for ap on the monitor interface and returns the path
// of the capture file once the capture has stopped.
func (h *HandshakeCapture) Run(ctx context.Context, mon string, ap wifi.AccessPoint, dir string) (string, error) {
	// airodump-ng pins the channel itself with -c; this just avoids a hop
	// before it starts.
	if err := iface.SetChannel(ctx, mon, ap.Channel); err != nil {
		log.Warn("could not set channel", "iface", mon, "channel", ap.Channel, "err", err)
	}

	h.rep.Info("Starting handshake capture on %s (channel %s)...", ap.ESSID, ap.Channel)
	cs, err := h.airodump.StartCapture(ctx, mon, ap.BSSID, ap.Channel, dir)
	if err != nil {
		return "", err
	}
	proc := cs.Process()
	h.tracker.Track(proc)
	defer func() {
		_ = cs.Stop()
		h.tracker.Untrack(proc)
	}()

	if err := sleep(ctx, h.cfg.Capture.Warmup); err != nil {
		return "", err
	}

	if err := h.deauth(ctx, mon, ap); err != nil {
		return "", err
	}

	var window time.Duration
	if h.cfg.Automated() {
		window = h.cfg.Capture.Timeout
		h.rep.Info("Capturing for %s...", window)
	} else {
		h.rep.Info("Waiting for handshake...")
	}
	err = Await(ctx, proc, window, func(ctx context.Context) error {
		return h.prompt.AwaitStop(ctx, "Press Enter once a handshake has been captured")
	})
	if err != nil {
		return "", err
	}

	// Stop before reading so airodump-ng flushes the file.
	_ = cs.Stop()

	capFile := cs.CapFile()
	if _, err := os.Stat(capFile); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoCapture, capFile)
	}
	h.rep.Success("Capture stopped, saved to %s", capFile)
	return capFile, nil
}

func (h *HandshakeCapture) deauth(ctx context.Context, mon string, ap wifi.AccessPoint) error {
	if h.cfg.Capture.NoDeauth {
		h.rep.Info("Deauthentication disabled, waiting for a client to reconnect")
		return nil
	}

	if !h.aireplay.Available() {
		h.rep.Warn("aireplay-ng not installed, skipping deauthentication")
		return nil
	}

	ok, err := h.prompt.Confirm(ctx, "Send deauthentication packets to speed up capture", true)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ui.ErrInterrupted) {
			return err
		}
		ok = false
	}
	if !ok {
		return nil
	}

	count := h.cfg.Capture.DeauthCount
	h.rep.Info("Sending %d deauthentication packets to %s...", count, ap.BSSID)
	if err := h.aireplay.Deauth(ctx, mon, ap.BSSID, "", count); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		h.rep.Warn("Deauthentication failed: %v", err)
		return nil
	}
	h.rep.Success("Deauthentication packets sent")
	return nil
}
