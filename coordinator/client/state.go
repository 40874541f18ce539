package client

// State is the connection lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingChallenge
	StateAuthenticating
	StateOpen
	StateReconnecting
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateAuthenticating:
		return "authenticating"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// handshaking reports whether the state is part of the authentication
// exchange, before the session is Open.
func (s State) handshaking() bool {
	switch s {
	case StateConnecting, StateAwaitingChallenge, StateAuthenticating:
		return true
	}
	return false
}
