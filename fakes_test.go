package meetsync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/anumularoots-svg/pro-sub003/models"
)

// fakeChannel is an in-memory DataChannel.
type fakeChannel struct {
	mu     sync.Mutex
	sent   []ControlMessage
	err    error
	in     chan []byte
	closer sync.Once
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{in: make(chan []byte, EVENT_BUFFER_SIZE)}
}

func (c *fakeChannel) Publish(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	var m ControlMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.sent = append(c.sent, m)
	return nil
}

func (c *fakeChannel) Messages() <-chan []byte {
	return c.in
}

func (c *fakeChannel) Close() error {
	c.closer.Do(func() { close(c.in) })
	return nil
}

func (c *fakeChannel) deliver(m ControlMessage) {
	data, _ := json.Marshal(m)
	c.in <- data
}

func (c *fakeChannel) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *fakeChannel) Sent() []ControlMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ControlMessage(nil), c.sent...)
}

func (c *fakeChannel) sentTypes() (out []ControlMessageType) {
	for _, m := range c.Sent() {
		out = append(out, m.Type)
	}
	return
}

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu           sync.Mutex
	participants []models.BackendParticipant
	cohosts      []string
	summary      models.RosterSummary

	fetchErr  error
	writeErr  error
	assigned  []string
	revoked   []string
	removed   []string
	fetches   int
	coFetches int
}

func (b *fakeBackend) FetchParticipants(ctx context.Context, meetingID string) (*models.BackendRoster, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return &models.BackendRoster{
		Success:      true,
		Participants: append([]models.BackendParticipant(nil), b.participants...),
		Summary:      b.summary,
	}, nil
}

func (b *fakeBackend) FetchCoHosts(ctx context.Context, meetingID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.coFetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return append([]string(nil), b.cohosts...), nil
}

func (b *fakeBackend) AssignCoHost(ctx context.Context, req CoHostRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeErr != nil {
		return b.writeErr
	}
	b.assigned = append(b.assigned, req.UserID)
	b.cohosts = append(b.cohosts, req.UserID)
	return nil
}

func (b *fakeBackend) RemoveCoHost(ctx context.Context, req CoHostRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeErr != nil {
		return b.writeErr
	}
	b.revoked = append(b.revoked, req.UserID)
	var kept []string
	for _, id := range b.cohosts {
		if id != req.UserID {
			kept = append(kept, id)
		}
	}
	b.cohosts = kept
	return nil
}

func (b *fakeBackend) RemoveParticipant(ctx context.Context, req RemovalRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeErr != nil {
		return b.writeErr
	}
	b.removed = append(b.removed, req.UserID)
	return nil
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}
