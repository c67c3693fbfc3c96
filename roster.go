package meetsync

import (
	"sort"
	"sync"

	"github.com/anumularoots-svg/pro-sub003/models"
)

// RemoteRoster is the live participant set of the real-time SDK.
type RemoteRoster interface {
	// Snapshot returns the current participants keyed by session id.
	Snapshot() map[string]models.RemoteParticipant
	// OnChange registers a callback invoked after every change.
	// The returned function unregisters it.
	OnChange(func()) (cancel func())
}

// LiveRoster is a [RemoteRoster] fed by SDK glue code.
//
// It is safe for concurrent use. Callbacks run on the goroutine that made the change.
type LiveRoster struct {
	participants SyncMap[string, models.RemoteParticipant]

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

// NewLiveRoster creates an empty LiveRoster.
func NewLiveRoster() *LiveRoster {
	return &LiveRoster{
		participants: NewSyncMap[string, models.RemoteParticipant](),
		listeners:    make(map[int]func()),
	}
}

// Upsert adds or replaces a session.
func (r *LiveRoster) Upsert(p models.RemoteParticipant) {
	old, existed := r.participants.Update(p.SessionID, func(models.RemoteParticipant, bool) (models.RemoteParticipant, bool) {
		return p, true
	})
	if !existed || old != p {
		r.notify()
	}
}

// Remove drops a session.
func (r *LiveRoster) Remove(sessionID string) {
	_, existed := r.participants.Update(sessionID, func(old models.RemoteParticipant, _ bool) (models.RemoteParticipant, bool) {
		return old, false
	})
	if existed {
		r.notify()
	}
}

// Clear drops every session, e.g. after the SDK disconnected.
func (r *LiveRoster) Clear() {
	if r.participants.Len() == 0 {
		return
	}
	r.participants.Clear()
	r.notify()
}

// Snapshot returns the current participants keyed by session id.
func (r *LiveRoster) Snapshot() map[string]models.RemoteParticipant {
	return r.participants.Snapshot()
}

// SessionIDs returns the sorted session ids.
func (r *LiveRoster) SessionIDs() []string {
	ids := r.participants.Keys()
	sort.Strings(ids)
	return ids
}

// OnChange registers a callback invoked after every change.
func (r *LiveRoster) OnChange(fn func()) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		delete(r.listeners, id)
	}
}

func (r *LiveRoster) notify() {
	r.mu.Lock()
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
