package meetsync

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/net/websocket"
)

// WebSocket represents a WebSocket connection.
// It implements `golang.org/x/net/websocket` under the hood and wraps it into a channel,
// allowing it to be select-able along with other channels.
type WebSocket struct {
	Connected    atomic.Bool
	Events       chan string
	OnError      func(error)
	PingInterval time.Duration // Keep-alive interval, PING_INTERVAL when zero.

	url        string
	client     *websocket.Conn
	runCtx     context.Context
	cancelFunc context.CancelFunc
}

// Connect establishes a WebSocket connection to the specified URL.
func (w *WebSocket) Connect(url string) (err error) {
	if w.Connected.Load() {
		return ErrAlreadyConnected
	}

	w.url = url
	w.client, err = websocket.Dial(url, "", WEBSOCKET_ORIGIN)
	if err != nil {
		return err
	}

	w.Events = make(chan string, EVENT_BUFFER_SIZE)
	w.Connected.Store(true)
	return
}

// Close closes the WebSocket connection.
// It is safe to call Close more than once and from several goroutines.
func (w *WebSocket) Close() {
	if w.Connected.CompareAndSwap(true, false) {
		if w.cancelFunc != nil {
			w.cancelFunc()
		}
		w.client.Close()
	}
}

// Sustain starts pumping events and keeps the WebSocket connection alive.
func (w *WebSocket) Sustain(ctx context.Context) {
	w.runCtx, w.cancelFunc = context.WithCancel(ctx)
	go w.pumpEvent()
	go w.keepAlive()
}

// pumpEvent pumps incoming events to the Events channel.
func (w *WebSocket) pumpEvent() {
	defer func() {
		w.Close()
		close(w.Events)
	}()

	var msg string
	var err error
	for {
		if msg, err = w.Recv(); err != nil {
			if w.OnError != nil && w.runCtx.Err() == nil {
				w.OnError(err)
			}
			return
		}
		select {
		case w.Events <- msg:
		case <-w.runCtx.Done():
			return
		}
	}
}

// keepAlive sends periodic ping messages to keep the WebSocket connection alive.
func (w *WebSocket) keepAlive() {
	interval := w.PingInterval
	if interval <= 0 {
		interval = PING_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// The parent context may be canceled before `w.Close()` is called.
	defer w.Close()

	for {
		select {
		case <-ticker.C:
			if w.Send("\r\n") != nil {
				return
			}
		case <-w.runCtx.Done():
			return
		}
	}
}

// Send sends a message over the WebSocket connection.
func (w *WebSocket) Send(msg string) (err error) {
	if w.Connected.Load() {
		err = websocket.Message.Send(w.client, msg)
	} else {
		err = ErrNotConnected
	}
	return
}

// Recv receives a message from the WebSocket connection.
func (w *WebSocket) Recv() (msg string, err error) {
	if w.Connected.Load() {
		err = websocket.Message.Receive(w.client, &msg)
	} else {
		err = ErrNotConnected
	}
	return
}
