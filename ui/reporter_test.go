package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestReportIntegrationPair(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)
	r.now = func() time.Time { return time.Unix(1700000000, 500000000) }

	r.Report(KindError, "aircrack-ng not found", map[string]any{"tool": "aircrack-ng"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}

	payload, ok := strings.CutPrefix(lines[0], StatusPrefix)
	if !ok {
		t.Fatalf("first line is not a status line: %q", lines[0])
	}
	var ev struct {
		Type      string         `json:"type"`
		Message   string         `json:"message"`
		Timestamp float64        `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("decode status line: %v", err)
	}
	if ev.Type != "error" || ev.Message != "aircrack-ng not found" || ev.Data["tool"] != "aircrack-ng" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Timestamp != 1700000000.5 {
		t.Fatalf("unexpected timestamp: %v", ev.Timestamp)
	}

	if !strings.Contains(lines[1], "[ERROR] aircrack-ng not found") {
		t.Fatalf("unexpected human line: %q", lines[1])
	}
}

func TestReportHumanOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.Info("Scanning %s", "wlan0mon")

	out := buf.String()
	if strings.Contains(out, StatusPrefix) {
		t.Fatalf("status line emitted outside integration mode: %q", out)
	}
	if !strings.Contains(out, "[INFO] Scanning wlan0mon") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestReportNilPayload(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.Warn("interrupted")

	line, _, _ := strings.Cut(buf.String(), "\n")
	if !strings.Contains(line, `"data":{}`) {
		t.Fatalf("expected empty object payload, got %q", line)
	}
	if !strings.Contains(line, `"type":"warning"`) {
		t.Fatalf("expected warning kind, got %q", line)
	}
}

func TestFinal(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(&buf, false).Final(map[string]bool{"ready_for_testing": true}); err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("final line written outside integration mode: %q", buf.String())
	}

	if err := NewReporter(&buf, true).Final(map[string]bool{"ready_for_testing": false}); err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if got, want := buf.String(), FinalPrefix+`{"ready_for_testing":false}`+"\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReportConcurrentPairsStayTogether(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Info("event")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
	for i := 0; i < len(lines); i += 2 {
		if !strings.HasPrefix(lines[i], StatusPrefix) || strings.HasPrefix(lines[i+1], StatusPrefix) {
			t.Fatalf("pair %d interleaved: %q / %q", i/2, lines[i], lines[i+1])
		}
	}
}
