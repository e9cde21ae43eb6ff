package session

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/wifibear/wifiaudit/internal/tools"
)

// Session is the state of one audit run. It is owned by the Controller and
// handed to Cleanup; only the main goroutine touches it.
type Session struct {
	Interface     string
	MonitorIface  string
	WorkDir       string
	RandomizedMAC bool

	state State
	procs []*tools.Process
}

func New() *Session {
	return &Session{}
}

// State returns the current workflow state.
func (s *Session) State() State {
	return s.state
}

// Transition moves to the next state. Terminal states are final.
func (s *Session) Transition(to State) {
	if s.state.Terminal() {
		log.Debug("ignoring transition from terminal state", "from", s.state, "to", to)
		return
	}
	log.Debug("session transition", "from", s.state, "to", to)
	s.state = to
}

// EnsureWorkDir creates the run's temporary directory on first use.
func (s *Session) EnsureWorkDir() (string, error) {
	if s.WorkDir != "" {
		return s.WorkDir, nil
	}
	dir, err := os.MkdirTemp("", "wifiaudit-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	s.WorkDir = dir
	return dir, nil
}

// Track records a backgrounded tool so cleanup can stop it.
func (s *Session) Track(p *tools.Process) {
	s.procs = append(s.procs, p)
}

// Untrack forgets a process that has been stopped.
func (s *Session) Untrack(p *tools.Process) {
	for i, q := range s.procs {
		if q == p {
			s.procs = append(s.procs[:i], s.procs[i+1:]...)
			return
		}
	}
}

// Processes returns the tracked background processes.
func (s *Session) Processes() []*tools.Process {
	out := make([]*tools.Process, len(s.procs))
	copy(out, s.procs)
	return out
}
