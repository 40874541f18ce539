package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by Call when the session is not Open.
	// The envelope is never transmitted.
	ErrNotAuthenticated = errors.New("client: session not authenticated")

	// ErrTimeout rejects a pending call whose deadline elapsed without a
	// reply. Retry is the caller's responsibility.
	ErrTimeout = errors.New("client: call timed out")

	// ErrConnectionClosed rejects all pending calls when the socket
	// closes unexpectedly.
	ErrConnectionClosed = errors.New("client: connection closed")

	// ErrCancelled rejects pending calls ended by the caller or by a
	// manual Disconnect, as opposed to a transport-level closure.
	ErrCancelled = errors.New("client: call cancelled")

	// ErrReconnectExhausted is surfaced as a terminal error event after
	// the maximum reconnect attempt count is exceeded.
	ErrReconnectExhausted = errors.New("client: reconnect attempts exhausted")
)

// AuthError reports a challenge-response rejected by the coordinator.
// It is terminal for the Connect call that triggered the handshake; the
// client never silently retries bad credentials.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "client: authentication rejected"
	}
	return "client: authentication rejected: " + e.Reason
}

// TransportError reports a socket-level failure (dial refused, DNS, TLS,
// broken write).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
