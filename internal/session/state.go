package session

// State is a step of the audit workflow.
type State int

const (
	StateIdle State = iota
	StateMonitorEnabled
	StateScanning
	StateTargetSelected
	StateCapturing
	StateHandshakeVerified
	StateCracking
	StateDone
	StateFailed
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMonitorEnabled:
		return "monitor_enabled"
	case StateScanning:
		return "scanning"
	case StateTargetSelected:
		return "target_selected"
	case StateCapturing:
		return "capturing"
	case StateHandshakeVerified:
		return "handshake_verified"
	case StateCracking:
		return "cracking"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateInterrupted
}
