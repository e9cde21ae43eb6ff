package session

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/ui"
)

// cleanupTimeout bounds the whole restore sequence.
const cleanupTimeout = 60 * time.Second

// Cleanup restores the host after a run. Every exit path calls Run; only
// the first call does anything.
type Cleanup struct {
	sess   *Session
	ifaces *iface.Manager
	mac    *tools.Macchanger
	rep    *ui.Reporter

	once sync.Once
}

func NewCleanup(sess *Session, ifaces *iface.Manager, rep *ui.Reporter) *Cleanup {
	return &Cleanup{
		sess:   sess,
		ifaces: ifaces,
		mac:    tools.NewMacchanger(),
		rep:    rep,
	}
}

// Run stops background tools, restores the MAC address, leaves monitor
// mode, restarts networking and removes temporary files. Failures are
// reported and never abort the remaining steps. It runs to completion even
// when ctx is already cancelled.
func (c *Cleanup) Run(ctx context.Context) {
	c.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		c.run(ctx)
	})
}

func (c *Cleanup) run(ctx context.Context) {
	s := c.sess
	c.rep.Info("Cleaning up and restoring normal wireless operation...")

	for _, p := range s.Processes() {
		log.Debug("stopping", "cmd", p.Name(), "pid", p.Pid())
		if err := p.Stop(); err != nil {
			log.Debug("process exited with error", "cmd", p.Name(), "err", err)
		}
		s.Untrack(p)
	}

	if s.RandomizedMAC && s.MonitorIface != "" {
		if err := c.mac.Restore(ctx, s.MonitorIface); err != nil {
			c.rep.Warn("Could not restore MAC address on %s: %v", s.MonitorIface, err)
		} else {
			c.rep.Success("Restored original MAC address")
		}
		s.RandomizedMAC = false
	}

	if s.MonitorIface != "" {
		mon := s.MonitorIface
		if err := c.ifaces.DisableMonitorMode(ctx, mon); err != nil {
			c.rep.Warn("Could not disable monitor mode on %s: %v", mon, err)
		} else {
			c.rep.Success("Disabled monitor mode on %s", mon)
		}
		s.MonitorIface = ""
	}

	if err := tools.RestartNetworkService(ctx); err != nil {
		log.Debug("network service restart failed", "err", err)
	}

	if s.WorkDir != "" {
		if err := os.RemoveAll(s.WorkDir); err != nil {
			c.rep.Warn("Could not remove temporary files in %s: %v", s.WorkDir, err)
		} else {
			log.Debug("removed work dir", "path", s.WorkDir)
		}
		s.WorkDir = ""
	}

	c.rep.Success("Cleanup complete")
}
