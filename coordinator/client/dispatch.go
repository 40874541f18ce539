package client

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// CategoryAll subscribes a handler to every push category.
const CategoryAll = "*"

// CategoryError carries unsolicited failures, including the terminal
// event fired when reconnect attempts are exhausted.
const CategoryError = "error"

// PushHandler receives the payload of an unsolicited coordinator event.
type PushHandler func(category string, payload json.RawMessage)

type subEntry struct {
	id      int64
	fnPtr   uintptr
	handler PushHandler
}

// dispatcher routes push envelopes to registered listeners by category.
// Subscriptions for the same category are invoked in registration order;
// a panicking handler never prevents the remaining handlers from running.
type dispatcher struct {
	mu     sync.RWMutex
	subs   map[string][]subEntry
	nextID int64
	log    zerolog.Logger
}

func newDispatcher(log zerolog.Logger) *dispatcher {
	return &dispatcher{
		subs: make(map[string][]subEntry),
		log:  log,
	}
}

// subscribe registers handler for category and returns its unsubscribe
// function. Registration is idempotent per (category, handler identity):
// re-registering the same function on the same category returns an
// unsubscribe for the existing entry. Unsubscribe is safe to call more
// than once.
func (d *dispatcher) subscribe(category string, handler PushHandler) func() {
	fnPtr := reflect.ValueOf(handler).Pointer()

	d.mu.Lock()
	for _, entry := range d.subs[category] {
		if entry.fnPtr == fnPtr {
			id := entry.id
			d.mu.Unlock()
			return d.unsubscriber(category, id)
		}
	}
	d.nextID++
	id := d.nextID
	d.subs[category] = append(d.subs[category], subEntry{
		id:      id,
		fnPtr:   fnPtr,
		handler: handler,
	})
	d.mu.Unlock()

	return d.unsubscriber(category, id)
}

func (d *dispatcher) unsubscriber(category string, id int64) func() {
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		entries := d.subs[category]
		for i, entry := range entries {
			if entry.id == id {
				d.subs[category] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
		// Already removed; repeated unsubscribe is a no-op.
	}
}

// dispatch invokes every handler subscribed to category, then every
// wildcard handler, in subscription order.
func (d *dispatcher) dispatch(category string, payload json.RawMessage) {
	d.mu.RLock()
	matched := make([]subEntry, 0, len(d.subs[category])+len(d.subs[CategoryAll]))
	matched = append(matched, d.subs[category]...)
	if category != CategoryAll {
		matched = append(matched, d.subs[CategoryAll]...)
	}
	d.mu.RUnlock()

	for _, entry := range matched {
		d.invoke(entry, category, payload)
	}
}

func (d *dispatcher) invoke(entry subEntry, category string, payload json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("category", category).
				Interface("panic", r).
				Msg("push handler panicked")
		}
	}()
	entry.handler(category, payload)
}

// count returns the number of handlers registered for category.
func (d *dispatcher) count(category string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[category])
}
