package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/wifibear/wifiaudit/internal/testutil"
	"github.com/wifibear/wifiaudit/ui"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd("test")
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckOnlyWithoutAircrack(t *testing.T) {
	bin := testutil.NewBin(t)
	for _, name := range []string{"airmon-ng", "airodump-ng", "aireplay-ng", "macchanger", "iwconfig", "service"} {
		bin.Add(name, "exit 0")
	}

	out, err := execute(t, "--integration", "--auto-mode", "--check-only")
	if err != nil {
		t.Fatalf("check-only must exit cleanly, got %v", err)
	}

	var sawError bool
	var final map[string]any
	for _, line := range strings.Split(out, "\n") {
		if payload, ok := strings.CutPrefix(line, ui.StatusPrefix); ok {
			var ev ui.Event
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				t.Fatalf("bad status line %q: %v", line, err)
			}
			if ev.Kind == ui.KindError && strings.Contains(ev.Message, "aircrack-ng") {
				sawError = true
			}
		}
		if payload, ok := strings.CutPrefix(line, ui.FinalPrefix); ok {
			if final != nil {
				t.Fatalf("more than one final line")
			}
			if err := json.Unmarshal([]byte(payload), &final); err != nil {
				t.Fatalf("bad final line %q: %v", line, err)
			}
		}
	}

	if !sawError {
		t.Fatalf("no error event naming aircrack-ng:\n%s", out)
	}
	if final == nil {
		t.Fatalf("no final result:\n%s", out)
	}
	if final["ready_for_testing"] != false || final["integration_mode"] != true {
		t.Fatalf("unexpected final result: %v", final)
	}
	req := final["requirements"].(map[string]any)
	missing := req["missing"].([]any)
	if len(missing) != 1 || missing[0] != "aircrack-ng" || req["ready"] != false {
		t.Fatalf("unexpected requirements: %v", req)
	}
	if _, ok := final["compatibility"].(map[string]any)["system_info"]; !ok {
		t.Fatalf("compatibility lacks system info: %v", final["compatibility"])
	}

	if calls := bin.Calls("airodump-ng"); len(calls) != 0 {
		t.Fatalf("check-only ran airodump-ng: %v", calls)
	}
	if !strings.HasPrefix(lastLine(out), ui.FinalPrefix) {
		t.Fatalf("final result is not the last line:\n%s", out)
	}
	if !strings.Contains(out, "Cleanup complete") {
		t.Fatalf("check-only should still clean up:\n%s", out)
	}
}

func TestMissingToolsExitNonZero(t *testing.T) {
	bin := testutil.NewBin(t)
	bin.Add("service", "exit 0")

	out, err := execute(t, "--integration", "--auto-mode")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if strings.Contains(out, ui.FinalPrefix) {
		t.Fatalf("no session summary expected before the session starts:\n%s", out)
	}
	if !strings.Contains(out, "Cleanup complete") {
		t.Fatalf("a failed environment check must still clean up:\n%s", out)
	}
	if want := []string{"NetworkManager restart"}; !reflect.DeepEqual(bin.Calls("service"), want) {
		t.Fatalf("service calls: got %v want %v", bin.Calls("service"), want)
	}
}

const fakeIwconfig = `case "$1" in
'') cat <<'OUT'
wlan0     IEEE 802.11  ESSID:off/any
          Mode:Managed  Access Point: Not-Associated

wlan0mon  IEEE 802.11  Mode:Monitor  Frequency:2.437 GHz
OUT
;;
esac
exit 0`

func TestSignalInterruptsAndCleansUp(t *testing.T) {
	bin := testutil.NewBin(t)
	for _, name := range []string{"aircrack-ng", "aireplay-ng", "airmon-ng", "macchanger", "service"} {
		bin.Add(name, "exit 0")
	}
	bin.Add("iwconfig", fakeIwconfig)
	bin.Add("airodump-ng", "exec sleep 30")

	geteuid = func() int { return 0 }
	t.Cleanup(func() { geteuid = os.Geteuid })

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := execute(t, "--integration", "--auto-mode", "--target-ssid", "HomeNet", "--scan-time", "30s")
		done <- outcome{out, err}
	}()

	deadline := time.Now().Add(10 * time.Second)
	for len(bin.Calls("airodump-ng")) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("scan never started")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("send signal: %v", err)
	}

	var res outcome
	select {
	case res = <-done:
	case <-time.After(20 * time.Second):
		t.Fatalf("run did not stop after the signal")
	}

	if res.err != nil {
		t.Fatalf("an interrupted run exits cleanly, got %v", res.err)
	}
	if !strings.Contains(res.out, `"type":"warning","message":"Session interrupted"`) {
		t.Fatalf("missing interrupt warning:\n%s", res.out)
	}
	if !strings.Contains(res.out, "Cleanup complete") {
		t.Fatalf("cleanup did not run:\n%s", res.out)
	}
	if want := "stop wlan0mon"; !slices.Contains(bin.Calls("airmon-ng"), want) {
		t.Fatalf("monitor mode not disabled, airmon-ng calls: %v", bin.Calls("airmon-ng"))
	}
	final, ok := strings.CutPrefix(lastLine(res.out), ui.FinalPrefix)
	if !ok || !strings.Contains(final, `"state":"interrupted"`) {
		t.Fatalf("unexpected final line: %q", lastLine(res.out))
	}
}

func TestWatchSignals(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- syscall.SIGTERM

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	reset := false
	watchSignals(ctx, sigCh, cancel, func() { reset = true })

	if !errors.Is(context.Cause(ctx), ui.ErrInterrupted) {
		t.Fatalf("cause: got %v", context.Cause(ctx))
	}
	if !reset {
		t.Fatalf("default signal handling should be restored after the first signal")
	}
}

func TestWatchSignalsStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(nil)

	reset := false
	watchSignals(ctx, make(chan os.Signal), cancel, func() { reset = true })
	if reset {
		t.Fatalf("reset without a signal")
	}
}

func TestCheckCommandWithAircrack(t *testing.T) {
	bin := testutil.NewBin(t)
	bin.Add("aircrack-ng", "echo '   1  AA:BB:CC:DD:EE:01  HomeNet  WPA (1 handshake)'; exit 1")
	capFile := writeEmptyCapture(t)

	out, err := execute(t, "check", capFile, "AA:BB:CC:DD:EE:01")
	if err != nil {
		t.Fatalf("returned error: %v\n%s", err, out)
	}
	for _, want := range []string{
		"[+] aircrack-ng: valid handshake found",
		"[-] gopacket: no valid handshake found",
		"0 packets, 0 EAPOL key frames",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
	if want := []string{"-w /dev/null -b AA:BB:CC:DD:EE:01 " + capFile}; !reflect.DeepEqual(bin.Calls("aircrack-ng"), want) {
		t.Fatalf("aircrack-ng calls: got %v want %v", bin.Calls("aircrack-ng"), want)
	}
}

func TestCheckCommandWithoutAircrack(t *testing.T) {
	testutil.NewBin(t)
	capFile := writeEmptyCapture(t)

	out, err := execute(t, "check", capFile, "AA:BB:CC:DD:EE:01")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(out, "aircrack-ng not available") || !strings.Contains(out, "[-] gopacket") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckCommandMissingFile(t *testing.T) {
	testutil.NewBin(t)

	_, err := execute(t, "check", filepath.Join(t.TempDir(), "nope.cap"), "AA:BB:CC:DD:EE:01")
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		t.Fatalf("expected a plain error for a missing file, got %v", err)
	}
}

func writeEmptyCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture-01.cap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pcapgo.NewWriter(f).WriteFileHeader(65536, layers.LinkTypeIEEE802_11); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHumanModeBanner(t *testing.T) {
	testutil.NewBin(t)

	out, err := execute(t, "--check-only")
	if err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if !strings.Contains(out, disclaimer) {
		t.Fatalf("banner missing:\n%s", out)
	}
	if strings.Contains(out, ui.StatusPrefix) || strings.Contains(out, ui.FinalPrefix) {
		t.Fatalf("structured lines outside integration mode:\n%s", out)
	}
}

func TestDepsCommand(t *testing.T) {
	bin := testutil.NewBin(t)
	bin.Add("aircrack-ng", "exit 0")

	out, err := execute(t, "deps")
	if err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if !strings.Contains(out, "aircrack-ng") || !strings.Contains(out, "(REQUIRED)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if len(bin.Calls("aircrack-ng")) != 0 {
		t.Fatalf("deps must not execute tools")
	}
}

func TestSetupLoggingLevels(t *testing.T) {
	tests := []struct {
		verbose int
		want    log.Level
	}{
		{0, log.ErrorLevel},
		{1, log.WarnLevel},
		{2, log.InfoLevel},
		{3, log.DebugLevel},
		{9, log.DebugLevel},
	}
	for _, tt := range tests {
		setupLogging(io.Discard, tt.verbose)
		if got := log.GetLevel(); got != tt.want {
			t.Errorf("verbose %d: got %s want %s", tt.verbose, got, tt.want)
		}
	}
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
