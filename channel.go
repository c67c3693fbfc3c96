package meetsync

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// DataChannel is the transport of control messages between meeting participants.
//
// Delivery is best effort and at most once.
type DataChannel interface {
	// Publish sends a payload to every other participant.
	Publish(ctx context.Context, data []byte) error
	// Messages returns the received payloads. The channel is closed when the transport ends.
	Messages() <-chan []byte
	// Close releases the transport.
	Close() error
}

// WebSocketChannel is a [DataChannel] backed by a websocket relay.
//
// Every frame published by a client is forwarded by the relay to the other clients of the
// meeting. A lost connection is re-established with an exponential backoff.
type WebSocketChannel struct {
	URL          string
	PingInterval time.Duration
	Backoff      *Backoff

	ws       *WebSocket
	messages chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
	mu       sync.Mutex
}

// NewWebSocketChannel returns a WebSocketChannel for the relay at url.
func NewWebSocketChannel(url string) *WebSocketChannel {
	return &WebSocketChannel{
		URL:      url,
		Backoff:  NewBackoff(BASE_BACKOFF_DUR, MAX_BACKOFF_DUR),
		messages: make(chan []byte, EVENT_BUFFER_SIZE),
	}
}

// Connect dials the relay and starts receiving.
//
// Args:
//   - ctx: The context bounding the lifetime of the channel.
//
// Returns:
//   - error: An error if the first dial fails.
func (c *WebSocketChannel) Connect(ctx context.Context) (err error) {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	if c.current() != nil {
		return ErrAlreadyConnected
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	log.Debug().Str("URL", c.URL).Msg("Connecting control channel")

	if err = c.dial(); err != nil {
		c.cancel()
		log.Debug().Str("URL", c.URL).Err(err).Msg("Connect failed")
		return
	}

	go c.listen()

	log.Debug().Str("URL", c.URL).Msg("Control channel connected")

	return
}

func (c *WebSocketChannel) dial() error {
	ws := &WebSocket{PingInterval: c.PingInterval}
	if err := ws.Connect(c.URL); err != nil {
		return err
	}
	ws.Sustain(c.ctx)

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()

	return nil
}

func (c *WebSocketChannel) current() *WebSocket {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws
}

// listen forwards frames until the channel is closed or reconnection gives up.
func (c *WebSocketChannel) listen() {
	defer close(c.messages)

	for {
		c.pump(c.current())
		if c.closed.Load() || c.ctx.Err() != nil {
			return
		}

		log.Debug().Str("URL", c.URL).Msg("Control channel lost")

		if err := c.reconnect(); err != nil {
			log.Error().Str("URL", c.URL).Err(err).Msg("Control channel gave up")
			return
		}

		log.Debug().Str("URL", c.URL).Msg("Control channel reconnected")
	}
}

func (c *WebSocketChannel) pump(ws *WebSocket) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case frame, ok := <-ws.Events:
			if !ok {
				return
			}
			// Blank frames are keep-alives.
			if strings.TrimSpace(frame) == "" {
				continue
			}
			select {
			case c.messages <- []byte(frame):
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// reconnect dials again with a backoff.
//
// Returns:
//   - error: ErrRetryEnds if cancelled or out of retries.
func (c *WebSocketChannel) reconnect() error {
	c.Backoff.Reset()
	for retries := 0; retries < MAX_RETRIES && !c.Backoff.Sleep(c.ctx); retries++ {
		if err := c.dial(); err == nil {
			c.Backoff.Reset()
			return nil
		}
	}

	// Either canceled or reached the maximum retries.
	return ErrRetryEnds
}

// Publish sends a payload to the relay.
func (c *WebSocketChannel) Publish(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ws := c.current()
	if ws == nil || c.closed.Load() {
		return ErrNotConnected
	}
	return ws.Send(string(data))
}

// Messages returns the received payloads.
func (c *WebSocketChannel) Messages() <-chan []byte {
	return c.messages
}

// Close stops the channel and closes the connection.
func (c *WebSocketChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.Backoff.Cancel()
	if c.cancel != nil {
		c.cancel()
	}
	if ws := c.current(); ws != nil {
		ws.Close()
	} else {
		// Never connected, nobody else will close it.
		close(c.messages)
	}

	return nil
}
