package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/wifibear/wifiaudit/internal/config"
	"github.com/wifibear/wifiaudit/internal/handshake"
	"github.com/wifibear/wifiaudit/internal/iface"
	"github.com/wifibear/wifiaudit/internal/preflight"
	"github.com/wifibear/wifiaudit/internal/result"
	"github.com/wifibear/wifiaudit/internal/session"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/ui"
)

const banner = `
 __      __ _  __  _                  _  _  _
 \ \    / /(_)/ _|(_)  __ _  _  _  __| |(_)| |_
  \ \/\/ / | |  _|| | / _' || || |/ _' || ||  _|
   \_/\_/  |_||_|  |_| \__,_| \_,_|\__,_||_| \__|
`

const disclaimer = "For authorized security testing only. Only audit networks you own or have written permission to test."

// geteuid is swapped in tests to run the privileged path unprivileged.
var geteuid = os.Geteuid

// ExitError carries a process exit code to main. The reason has already
// been reported on the status stream.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "wifiaudit",
		Short: "Guided WPA handshake audit built on the aircrack-ng suite",
		Long:  banner + "\n  wifiaudit v" + version + " - " + disclaimer + "\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Normalize()
			return runMain(cmd, cfg, version)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := rootCmd.Flags()
	f.BoolVar(&cfg.Integration, "integration", false, "Emit structured status lines for a supervising process")
	f.BoolVar(&cfg.AutoMode, "auto-mode", false, "Run without prompts, using defaults")
	f.StringVar(&cfg.TargetSSID, "target-ssid", "", "ESSID of the network to audit")
	f.StringVarP(&cfg.Wordlist, "wordlist", "w", "", "Path to wordlist for cracking")
	f.BoolVar(&cfg.CheckOnly, "check-only", false, "Check the environment and exit")
	f.StringVarP(&cfg.Interface, "interface", "i", "", "Wireless interface to use")

	// Scan and capture
	f.DurationVar(&cfg.Scan.Timeout, "scan-time", 0, "Scan duration (default 15s, 30s with --auto-mode)")
	f.DurationVar(&cfg.Capture.Timeout, "capture-time", cfg.Capture.Timeout, "Capture window in auto mode")
	f.IntVar(&cfg.Capture.DeauthCount, "deauth-count", cfg.Capture.DeauthCount, "Deauthentication frames per burst")
	f.BoolVar(&cfg.Capture.NoDeauth, "no-deauth", false, "Never send deauthentication frames")
	f.BoolVar(&cfg.RandomMAC, "random-mac", false, "Randomize the monitor interface MAC address")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.Capture.HandshakeMarker, "handshake-marker", cfg.Capture.HandshakeMarker, "Text in aircrack-ng output that confirms a handshake")
	pf.IntVarP(&cfg.Output.Verbose, "verbose", "v", cfg.Output.Verbose, "Diagnostic log level (0-3)")

	rootCmd.AddCommand(depsCmd())
	rootCmd.AddCommand(checkCmd(cfg))

	return rootCmd
}

func runMain(cmd *cobra.Command, cfg *config.Config, version string) error {
	setupLogging(cmd.ErrOrStderr(), cfg.Output.Verbose)

	rep := ui.NewReporter(cmd.OutOrStdout(), cfg.Integration)
	if !cfg.Integration {
		rep.Print(ui.Banner(rep.Renderer(), banner+"  wifiaudit v"+version, disclaimer))
	}

	ctx, cancel := context.WithCancelCause(cmd.Context())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go watchSignals(ctx, sigCh, cancel, func() {
		signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	})

	ifaces := iface.NewManager()
	prober := preflight.NewProber(rep, ifaces, geteuid)

	// Cleanup is armed before the first gate so every exit path below,
	// including a failed environment check, restores the host.
	sess := session.New()
	cleanup := session.NewCleanup(sess, ifaces, rep)
	defer cleanup.Run(ctx)

	if cfg.CheckOnly {
		return runCheckOnly(ctx, cfg, rep, prober, cleanup)
	}

	if _, err := prober.CheckRoot(false); err != nil {
		return &ExitError{Code: 1}
	}
	if _, err := prober.CheckRequirements(false); err != nil {
		return &ExitError{Code: 1}
	}

	prompter := newPrompter(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	state, res, err := runSession(ctx, cfg, rep, prompter, sess, ifaces, cleanup)

	summary := map[string]any{
		"state":  state.String(),
		"result": res,
	}
	if err != nil {
		summary["error"] = err.Error()
	}
	if ferr := rep.Final(summary); ferr != nil {
		log.Error("final result", "err", ferr)
	}

	switch state {
	case session.StateDone, session.StateInterrupted:
		return nil
	default:
		return &ExitError{Code: 1}
	}
}

// watchSignals cancels the run on the first signal, then calls reset so a
// second signal terminates the process while cleanup is still running.
func watchSignals(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelCauseFunc, reset func()) {
	select {
	case sig := <-sigCh:
		log.Warn("interrupted, cleaning up (signal again to force quit)", "signal", sig)
		cancel(fmt.Errorf("%w: %s", ui.ErrInterrupted, sig))
		reset()
	case <-ctx.Done():
	}
}

// runSession drives the workflow. Cleanup has run, including after a
// panic, by the time this returns, so the final line comes last.
func runSession(ctx context.Context, cfg *config.Config, rep *ui.Reporter, prompter ui.Prompter, sess *session.Session, ifaces *iface.Manager, cleanup *session.Cleanup) (state session.State, res *result.CrackResult, err error) {
	defer cleanup.Run(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic", "value", r, "stack", string(debug.Stack()))
			rep.Error("Unexpected error: %v", r)
			sess.Transition(session.StateFailed)
			state = session.StateFailed
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ctrl := session.NewController(cfg, rep, prompter, sess, ifaces)
	state, err = ctrl.Run(ctx)
	return state, ctrl.Result, err
}

func runCheckOnly(ctx context.Context, cfg *config.Config, rep *ui.Reporter, prober *preflight.Prober, cleanup *session.Cleanup) error {
	root, _ := prober.CheckRoot(true)
	req, _ := prober.CheckRequirements(true)
	compat := prober.Compatibility(ctx)

	ready := req.Ready && root
	if ready {
		rep.Success("Environment ready for testing")
	} else {
		rep.Warn("Environment not ready for testing")
	}
	cleanup.Run(ctx)

	if err := rep.Final(map[string]any{
		"requirements":      req,
		"compatibility":     compat,
		"integration_mode":  cfg.Integration,
		"ready_for_testing": ready,
	}); err != nil {
		log.Error("final result", "err", err)
	}
	return nil
}

// newPrompter picks the prompt adapter once at startup.
func newPrompter(cfg *config.Config, in io.Reader, out io.Writer) ui.Prompter {
	if cfg.Automated() {
		return &ui.AutoPrompter{Wordlist: cfg.Wordlist}
	}
	if !cfg.Integration && isTerminal(in) && isTerminal(out) {
		return ui.NewTerminalPrompter(in, out)
	}
	return ui.NewLinePrompter(in, out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func setupLogging(w io.Writer, verbose int) {
	level := log.WarnLevel
	switch {
	case verbose <= 0:
		level = log.ErrorLevel
	case verbose == 2:
		level = log.InfoLevel
	case verbose >= 3:
		level = log.DebugLevel
	}
	log.SetDefault(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "wifiaudit",
		Level:           level,
	}))
}

// checkCmd validates a handshake capture file. aircrack-ng gives the
// verdict when installed; the gopacket summary is always printed.
func checkCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check [cap-file] [bssid]",
		Short: "Check a capture file for valid handshakes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Normalize()
			setupLogging(cmd.ErrOrStderr(), cfg.Output.Verbose)

			capFile, bssid := args[0], args[1]
			out := cmd.OutOrStdout()
			if _, err := os.Stat(capFile); err != nil {
				return err
			}
			fmt.Fprintf(out, "Checking %s for BSSID %s...\n", capFile, bssid)

			var verdict *bool
			av := handshake.NewAircrackValidator(cfg.Capture.HandshakeMarker)
			if av.Available() {
				ok, err := av.Validate(cmd.Context(), capFile, bssid)
				if err != nil {
					return err
				}
				verdict = &ok
				printVerdict(out, av.Name(), ok)
			} else {
				fmt.Fprintln(out, "  aircrack-ng not available, using gopacket validator...")
			}

			pv := handshake.NewPcapValidator()
			complete, err := pv.Validate(cmd.Context(), capFile, bssid)
			if err != nil {
				fmt.Fprintf(out, "  [-] %s: %v\n", pv.Name(), err)
			} else {
				printVerdict(out, pv.Name(), complete)
				fmt.Fprint(out, formatSummary(pv.Summary))
			}
			if verdict == nil && err == nil {
				verdict = &complete
			}

			if verdict == nil || !*verdict {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

func printVerdict(w io.Writer, name string, ok bool) {
	if ok {
		fmt.Fprintf(w, "  [+] %s: valid handshake found\n", name)
	} else {
		fmt.Fprintf(w, "  [-] %s: no valid handshake found\n", name)
	}
}

func formatSummary(sum *handshake.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "      %d packets, %d EAPOL key frames\n", sum.Packets, sum.EAPOLFrames)
	clients := make([]string, 0, len(sum.Clients))
	for c := range sum.Clients {
		clients = append(clients, c)
	}
	sort.Strings(clients)
	for _, c := range clients {
		hs := sum.Clients[c]
		var msgs []string
		for i, seen := range hs.Messages {
			if seen {
				msgs = append(msgs, fmt.Sprintf("M%d", i+1))
			}
		}
		fmt.Fprintf(&sb, "      client %s: %s\n", c, strings.Join(msgs, " "))
	}
	return sb.String()
}

// depsCmd shows dependency status.
func depsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check tool dependencies",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, banner)
			fmt.Fprintln(out, "\n  Dependency Check:")
			deps := tools.NewDependencyChecker()
			fmt.Fprint(out, tools.FormatStatus(deps.CheckAll()))
			if missing := deps.MissingRequired(); len(missing) > 0 {
				fmt.Fprintf(out, "\n  Install with: %s\n", tools.InstallHint())
			}
		},
	}
}
