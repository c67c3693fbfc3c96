package meetsync

import (
	"time"
)

// Option represents a configurable parameter for the Session.
type Option func(*Session)

// WithDebug enables debug mode for the session.
//
// When debug mode is enabled, the global zerolog level is lowered to debug.
//
// Returns:
//   - Option: A function that enables debug mode for the Session.
func WithDebug() Option {
	return func(s *Session) {
		s.isDebug = true
	}
}

// WithBackend replaces the HTTP backend client.
//
// Args:
//   - backend: The backend to poll and write to.
//
// Returns:
//   - Option: A function that sets the backend of the Session.
func WithBackend(backend Backend) Option {
	return func(s *Session) {
		s.backend = backend
	}
}

// WithRemoteRoster connects the live roster of the real-time SDK.
//
// Returns:
//   - Option: A function that sets the remote roster of the Session.
func WithRemoteRoster(roster RemoteRoster) Option {
	return func(s *Session) {
		s.roster = roster
	}
}

// WithDataChannel replaces the websocket control channel, e.g. with the data channel of the
// real-time SDK. The session closes it on Stop.
//
// Returns:
//   - Option: A function that sets the data channel of the Session.
func WithDataChannel(channel DataChannel) Option {
	return func(s *Session) {
		s.channel = channel
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}
