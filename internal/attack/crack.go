package attack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/wifibear/wifiaudit/internal/config"
	"github.com/wifibear/wifiaudit/internal/result"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/pkg/wifi"
	"github.com/wifibear/wifiaudit/ui"
)

const wordlistAttempts = 3

// Cracker runs an aircrack-ng dictionary attack against a verified capture.
type Cracker struct {
	cfg      *config.Config
	aircrack *tools.AircrackNG
	rep      *ui.Reporter
	prompt   ui.Prompter
}

func NewCracker(cfg *config.Config, rep *ui.Reporter, prompt ui.Prompter) *Cracker {
	return &Cracker{
		cfg:      cfg,
		aircrack: tools.NewAircrackNG(),
		rep:      rep,
		prompt:   prompt,
	}
}

// ResolveWordlist picks the wordlist: the configured one, then an operator
// supplied path, then (automated runs only) a generated sample list in dir.
func (c *Cracker) ResolveWordlist(ctx context.Context, dir string) (string, error) {
	if c.cfg.Wordlist != "" {
		if err := checkWordlist(c.cfg.Wordlist); err != nil {
			return "", err
		}
		return c.cfg.Wordlist, nil
	}

	if c.cfg.Automated() {
		path, n, err := WriteSampleWordlist(dir)
		if err != nil {
			return "", err
		}
		c.rep.Warn("No wordlist given, using a sample list of %d common passwords", n)
		return path, nil
	}

	for i := 0; i < wordlistAttempts; i++ {
		path, err := c.prompt.Path(ctx, "Enter path to wordlist file")
		if err != nil {
			if errors.Is(err, ui.ErrNoAnswer) {
				break
			}
			return "", err
		}
		if err := checkWordlist(path); err == nil {
			return path, nil
		}
		c.rep.Error("Wordlist file not found: %s", path)
	}
	return "", ErrNoWordlist
}

// Run cracks capFile for ap. An exhausted wordlist is a normal outcome and
// yields a result without a key.
func (c *Cracker) Run(ctx context.Context, capFile string, ap wifi.AccessPoint, dir string) (*result.CrackResult, error) {
	wordlist, err := c.ResolveWordlist(ctx, dir)
	if err != nil {
		if errors.Is(err, ErrNoWordlist) {
			c.rep.Error("Wordlist file not found")
			c.rep.Info("Common wordlist locations: /usr/share/wordlists/rockyou.txt, /usr/share/seclists/Passwords/")
		}
		return nil, err
	}

	c.rep.Info("Starting dictionary attack using %s...", wordlist)
	c.rep.Warn("This may take a long time depending on wordlist size")

	start := time.Now()
	key, err := c.aircrack.CrackStream(ctx, capFile, ap.BSSID, wordlist, func(line string) {
		line = strings.TrimSpace(ansi.Strip(line))
		if line != "" {
			c.rep.Info("%s", line)
		}
	})

	res := &result.CrackResult{
		BSSID:       ap.BSSID,
		ESSID:       ap.ESSID,
		Key:         key,
		Wordlist:    wordlist,
		CaptureFile: capFile,
		Duration:    result.Duration(time.Since(start)),
		Timestamp:   time.Now(),
	}
	if err != nil {
		return res, err
	}

	if res.Cracked() {
		c.rep.Report(ui.KindSuccess, fmt.Sprintf("KEY FOUND: %s", key), res)
	} else {
		c.rep.Report(ui.KindWarning, "Password not found in wordlist", res)
	}
	return res, nil
}
