package client

import (
	"encoding/json"
	"sync"
	"time"
)

// callResult carries the terminal outcome of one pending call. Exactly
// one of result and err is meaningful.
type callResult struct {
	result json.RawMessage
	err    error
}

// pendingCall is one outstanding request awaiting its reply.
type pendingCall struct {
	id     uint64
	method string
	done   chan callResult
	timer  *time.Timer
}

// correlator assigns identifiers to outbound calls and settles the
// matching caller when a reply with the same identifier arrives.
// Identifiers increase monotonically and are never reused while pending.
type correlator struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*pendingCall

	// timerFn schedules the timeout for a pending entry. Swapped for a
	// manual trigger in tests.
	timerFn func(d time.Duration, f func()) *time.Timer
}

func newCorrelator() *correlator {
	return &correlator{
		pending: make(map[uint64]*pendingCall),
		timerFn: time.AfterFunc,
	}
}

// allocID hands out the next identifier without registering a pending
// entry. Used for fire-and-forget envelopes such as the auth request.
func (c *correlator) allocID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return c.nextID
}

// register allocates the next identifier and stores a pending entry with
// a deadline of now + timeout. On expiry the entry is removed and the
// caller rejected with ErrTimeout.
func (c *correlator) register(method string, timeout time.Duration) *pendingCall {
	c.mu.Lock()
	c.nextID++
	call := &pendingCall{
		id:     c.nextID,
		method: method,
		done:   make(chan callResult, 1),
	}
	c.pending[call.id] = call
	c.mu.Unlock()

	call.timer = c.timerFn(timeout, func() {
		c.resolve(call.id, nil, ErrTimeout)
	})
	return call
}

// resolve settles the pending entry for id at most once. A duplicate or
// late reply finds no entry and is a no-op; the bool reports whether the
// entry was still pending.
func (c *correlator) resolve(id uint64, result json.RawMessage, err error) bool {
	c.mu.Lock()
	call, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if call.timer != nil {
		call.timer.Stop()
	}
	call.done <- callResult{result: result, err: err}
	return true
}

// failAll rejects every pending entry with err. Used when the socket
// closes (ErrConnectionClosed) or on manual disconnect (ErrCancelled).
func (c *correlator) failAll(err error) {
	c.mu.Lock()
	drained := make([]*pendingCall, 0, len(c.pending))
	for id, call := range c.pending {
		drained = append(drained, call)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	for _, call := range drained {
		if call.timer != nil {
			call.timer.Stop()
		}
		call.done <- callResult{err: err}
	}
}

// size returns the number of outstanding entries.
func (c *correlator) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
