package meetsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// IssuerVerifier reports whether a user may issue a privileged control message.
//
// Args:
//   - issuer: The user id found in the message.
//   - requireHost: Only the host is accepted.
type IssuerVerifier func(issuer string, requireHost bool) bool

// Dispatcher encodes, sends, receives and filters control messages for one local user.
type Dispatcher struct {
	channel DataChannel
	localID string
	verify  IssuerVerifier
	now     func() time.Time
	seen    *ttlcache.Cache[string, struct{}]
}

// NewDispatcher creates a Dispatcher.
//
// Args:
//   - channel: The transport.
//   - localID: The user id of the local user.
//   - verify: The issuer check of privileged messages. Nil accepts every issuer.
func NewDispatcher(channel DataChannel, localID string, verify IssuerVerifier) *Dispatcher {
	return &Dispatcher{
		channel: channel,
		localID: localID,
		verify:  verify,
		now:     time.Now,
		seen: ttlcache.New[string, struct{}](
			ttlcache.WithTTL[string, struct{}](time.Minute),
			ttlcache.WithDisableTouchOnHit[string, struct{}](),
		),
	}
}

// Publish stamps and sends a control message.
//
// Returns:
//   - error: An error if the message is invalid or the transport fails.
func (d *Dispatcher) Publish(ctx context.Context, m *ControlMessage) error {
	if m.IssuedBy == "" {
		m.IssuedBy = d.localID
	}
	if m.Timestamp == 0 {
		m.Timestamp = d.now().UnixMilli()
	}

	data, err := EncodeControlMessage(m)
	if err != nil {
		return err
	}

	log.Debug().Str("Type", string(m.Type)).Str("Target", m.TargetUserID).Msg("Publishing control message")

	if err = d.channel.Publish(ctx, data); err != nil {
		log.Warn().Str("Type", string(m.Type)).Err(err).Msg("Control message not sent")
		return errors.Wrap(err, "failed to publish control message")
	}

	return nil
}

// Receive decodes a payload and decides whether the local user acts on it.
//
// Returns:
//   - *ControlMessage: The message, nil when it is not meant for the local user,
//     is an echo of a local message or a duplicate.
//   - error: ErrInvalidMessage or ErrUnverifiedIssuer.
func (d *Dispatcher) Receive(data []byte) (*ControlMessage, error) {
	m, err := DecodeControlMessage(data)
	if err != nil {
		return nil, err
	}

	if m.IssuedBy == d.localID || !m.Targets(d.localID) {
		return nil, nil
	}

	if m.Type.IsPrivileged() && d.verify != nil && !d.verify(m.IssuedBy, m.Type.RequiresHost()) {
		return m, errors.Wrapf(ErrUnverifiedIssuer, "%s from %s", m.Type, m.IssuedBy)
	}

	// At-most-once delivery may still repeat a frame after a relay reconnect.
	d.seen.DeleteExpired()
	key := fmt.Sprintf("%s|%s|%s|%d|%s", m.Type, m.IssuedBy, m.TargetUserID, m.Timestamp, m.RequestID)
	if d.seen.Has(key) {
		return nil, nil
	}
	d.seen.Set(key, struct{}{}, ttlcache.DefaultTTL)

	return m, nil
}

// Run consumes the transport until it closes or ctx is done.
//
// Args:
//   - ctx: The context bounding the loop.
//   - handle: Called with every message the local user acts on.
//   - reject: Called with every message that failed decoding or verification.
func (d *Dispatcher) Run(ctx context.Context, handle func(*ControlMessage), reject func(*ControlMessage, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-d.channel.Messages():
			if !ok {
				log.Debug().Msg("Control channel closed")
				return
			}

			m, err := d.Receive(data)
			if err != nil {
				log.Warn().Err(err).Msg("Control message rejected")
				if reject != nil {
					reject(m, err)
				}
				continue
			}
			if m != nil {
				handle(m)
			}
		}
	}
}
