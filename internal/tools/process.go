package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// stopGrace is how long a process group gets between SIGTERM and SIGKILL.
const stopGrace = 3 * time.Second

// Process is a backgrounded external tool running in its own process group.
// Stopping it signals the whole group, so helpers the tool forks die with it.
type Process struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	mu      sync.Mutex
	stopped bool
}

// StartProcess launches a command in a new process group. Its output is
// discarded so it never interleaves with the status stream.
func StartProcess(ctx context.Context, name string, args ...string) (*Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	// Use process groups so we can kill the entire tree
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd, syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	log.Debug("start", "cmd", name, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	p := &Process{
		name: name,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go func() {
		p.err = cmd.Wait()
		log.Debug("exited", "cmd", name, "pid", cmd.Process.Pid, "err", p.err)
		close(p.done)
	}()

	return p, nil
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its wait error.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Stop sends SIGTERM to the process group, escalating to SIGKILL after a
// grace period. Exits caused by Stop are not reported as errors. Safe to call
// more than once.
func (p *Process) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	select {
	case <-p.done:
		return p.exitErr()
	default:
	}

	_ = signalGroup(p.cmd, syscall.SIGTERM)

	select {
	case <-p.done:
	case <-time.After(stopGrace):
		log.Warn("process ignored SIGTERM, killing", "cmd", p.name, "pid", p.Pid())
		_ = signalGroup(p.cmd, syscall.SIGKILL)
		<-p.done
	}
	return nil
}

func (p *Process) exitErr() error {
	var exitErr *exec.ExitError
	if errors.As(p.err, &exitErr) {
		return fmt.Errorf("%s exited: %w", p.name, p.err)
	}
	return p.err
}

// Name returns the tool name.
func (p *Process) Name() string {
	return p.name
}

// Pid returns the process ID.
func (p *Process) Pid() int {
	if p.cmd.Process != nil {
		return p.cmd.Process.Pid
	}
	return 0
}

// Running returns true if the process has not exited.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	// Setpgid makes the child its own group leader, so pgid == pid.
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// RunCapture executes a command and returns its combined output.
func RunCapture(ctx context.Context, name string, args ...string) (string, error) {
	log.Debug("exec", "cmd", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Debug("command failed", "cmd", name, "err", err)
	}
	return strings.TrimSpace(string(out)), err
}

// RunSilent executes a command and discards output.
func RunSilent(ctx context.Context, name string, args ...string) error {
	log.Debug("exec", "cmd", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Run()
}

// RunStream executes a command and hands every stdout line to fn as it is
// produced. Stderr is merged into the same stream.
func RunStream(ctx context.Context, fn func(line string), name string, args ...string) error {
	log.Debug("exec", "cmd", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd, syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLinesCR)
	for scanner.Scan() {
		fn(scanner.Text())
	}

	return cmd.Wait()
}

// scanLinesCR splits on \n and on bare \r, since the aircrack tools redraw
// progress lines with carriage returns.
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
