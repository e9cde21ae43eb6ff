package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestResolveChoice(t *testing.T) {
	options := []string{"wlan0", "wlan1"}

	tests := []struct {
		input  string
		byName bool
		want   int
		ok     bool
	}{
		{"1", false, 0, true},
		{" 2 ", false, 1, true},
		{"0", false, -1, false},
		{"3", false, -1, false},
		{"wlan1", true, 1, true},
		{"wlan1", false, -1, false},
		{"wlan9", true, -1, false},
	}

	for _, tt := range tests {
		got, err := ResolveChoice(tt.input, options, tt.byName)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ResolveChoice(%q, byName=%v) = %d, %v; want %d ok=%v", tt.input, tt.byName, got, err, tt.want, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidChoice) {
			t.Errorf("expected ErrInvalidChoice, got %v", err)
		}
	}
}

func TestLinePrompterChooseReprompts(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("7\nabc\n2\n"), &out)

	idx, err := p.Choose(context.Background(), "Select network number to target:", []string{"a", "b"}, false)
	if err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("got %d want 1", idx)
	}
	if n := strings.Count(out.String(), "Enter number: "); n != 3 {
		t.Fatalf("expected 3 prompts, got %d:\n%s", n, out.String())
	}
}

func TestLinePrompterConfirmAndPath(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("\nn\n/tmp/words.txt\n"), io.Discard)
	ctx := context.Background()

	if ok, err := p.Confirm(ctx, "Send deauth", true); err != nil || !ok {
		t.Fatalf("empty answer should take the default, got %v, %v", ok, err)
	}
	if ok, err := p.Confirm(ctx, "Send deauth", true); err != nil || ok {
		t.Fatalf("expected no, got %v, %v", ok, err)
	}
	if path, err := p.Path(ctx, "Wordlist"); err != nil || path != "/tmp/words.txt" {
		t.Fatalf("got %q, %v", path, err)
	}
	if _, err := p.Path(ctx, "Wordlist"); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer at end of input, got %v", err)
	}
}

func TestLinePrompterAwaitStopClosedInputWaitsForDeadline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.AwaitStop(ctx, "Press Enter to stop")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("returned before the deadline")
	}
}

func TestAutoPrompter(t *testing.T) {
	p := &AutoPrompter{}
	ctx := context.Background()

	if idx, err := p.Choose(ctx, "x", []string{"a", "b"}, true); err != nil || idx != 0 {
		t.Fatalf("Choose = %d, %v", idx, err)
	}
	if _, err := p.Choose(ctx, "x", nil, true); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer for empty options, got %v", err)
	}
	if ok, _ := p.Confirm(ctx, "x", true); !ok {
		t.Fatalf("Confirm should return the default")
	}
	if _, err := p.Path(ctx, "x"); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer without a wordlist, got %v", err)
	}

	p.Wordlist = "/w.txt"
	if path, _ := p.Path(ctx, "x"); path != "/w.txt" {
		t.Fatalf("got %q", path)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := p.AwaitStop(cctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
