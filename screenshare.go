package meetsync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// ScreenShareState is the approval state of the local user's screen share.
type ScreenShareState int

const (
	ScreenShareIdle ScreenShareState = iota
	ScreenShareRequested
	ScreenShareApprovedState
	ScreenShareDeniedState
	ScreenShareTimedOut
)

// String returns a string of said ScreenShareState.
func (s ScreenShareState) String() string {
	switch s {
	case ScreenShareIdle:
		return "idle"
	case ScreenShareRequested:
		return "requested"
	case ScreenShareApprovedState:
		return "approved"
	case ScreenShareDeniedState:
		return "denied"
	case ScreenShareTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// ScreenShareRequest is a request to share the screen, as seen by both sides.
type ScreenShareRequest struct {
	ID          string    `json:"request_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	RequestedAt time.Time `json:"requested_at"`
}

// ScreenShare runs the approval state machine of the local user and keeps the queue of
// requests awaiting a decision by the local user.
//
// Denied and timed out requests return to idle. An approval lasts for the session.
type ScreenShare struct {
	mu       sync.Mutex
	state    ScreenShareState
	current  ScreenShareRequest
	waits    *ttlcache.Cache[string, ScreenShareRequest] // Own requests keyed by request id.
	pending  *ttlcache.Cache[string, ScreenShareRequest] // Others' requests keyed by user id.
	onExpire func(ScreenShareRequest)
	now      func() time.Time
	stopOnce sync.Once
}

// NewScreenShare creates the state machine and starts the expiry janitors.
//
// Args:
//   - wait: How long a request waits for a decision.
//   - onExpire: Called on its own goroutine when the local request times out.
func NewScreenShare(wait time.Duration, onExpire func(ScreenShareRequest)) *ScreenShare {
	if wait <= 0 {
		wait = SCREEN_SHARE_WAIT
	}

	s := &ScreenShare{
		waits: ttlcache.New[string, ScreenShareRequest](
			ttlcache.WithTTL[string, ScreenShareRequest](wait),
			ttlcache.WithDisableTouchOnHit[string, ScreenShareRequest](),
		),
		pending: ttlcache.New[string, ScreenShareRequest](
			ttlcache.WithTTL[string, ScreenShareRequest](wait),
			ttlcache.WithDisableTouchOnHit[string, ScreenShareRequest](),
		),
		onExpire: onExpire,
		now:      time.Now,
	}

	s.waits.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, ScreenShareRequest]) {
		if reason == ttlcache.EvictionReasonExpired {
			go s.expire(item.Value())
		}
	})

	go s.waits.Start()
	go s.pending.Start()

	return s
}

// State returns the current state.
func (s *ScreenShare) State() ScreenShareState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Current returns the outstanding request of the local user.
func (s *ScreenShare) Current() (ScreenShareRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.state == ScreenShareRequested
}

// Request opens a new request for the local user.
//
// Returns:
//   - ScreenShareRequest: The request to publish.
//   - error: ErrRequestPending or ErrAlreadyApproved.
func (s *ScreenShare) Request(userID, displayName string) (ScreenShareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case ScreenShareRequested:
		return s.current, ErrRequestPending
	case ScreenShareApprovedState:
		return s.current, ErrAlreadyApproved
	}

	s.current = ScreenShareRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		RequestedAt: s.now(),
	}
	s.state = ScreenShareRequested
	s.waits.Set(s.current.ID, s.current, ttlcache.DefaultTTL)

	return s.current, nil
}

// Cancel withdraws the outstanding request, e.g. after it could not be sent.
func (s *ScreenShare) Cancel(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == ScreenShareRequested && s.current.ID == requestID {
		s.state = ScreenShareIdle
		s.waits.Delete(requestID)
	}
}

// Resolve applies a decision to the outstanding request.
//
// Decisions for any other request id are stale and ignored.
//
// Returns:
//   - ScreenShareState: The decided state, approved or denied.
//   - bool: False if the decision was ignored.
func (s *ScreenShare) Resolve(requestID string, approved bool) (ScreenShareState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != ScreenShareRequested || s.current.ID != requestID {
		return s.state, false
	}
	s.waits.Delete(requestID)

	if approved {
		s.state = ScreenShareApprovedState
		return ScreenShareApprovedState, true
	}
	s.state = ScreenShareIdle
	return ScreenShareDeniedState, true
}

func (s *ScreenShare) expire(req ScreenShareRequest) {
	s.mu.Lock()
	if s.state != ScreenShareRequested || s.current.ID != req.ID {
		s.mu.Unlock()
		return
	}
	s.state = ScreenShareIdle
	s.mu.Unlock()

	if s.onExpire != nil {
		s.onExpire(req)
	}
}

// Enqueue records a request from another participant awaiting the local user's decision.
// A newer request from the same user replaces the older one.
func (s *ScreenShare) Enqueue(req ScreenShareRequest) {
	s.pending.Set(req.UserID, req, ttlcache.DefaultTTL)
}

// Take removes and returns the pending request of the user.
func (s *ScreenShare) Take(userID string) (ScreenShareRequest, bool) {
	item, ok := s.pending.GetAndDelete(userID)
	if !ok || item == nil {
		return ScreenShareRequest{}, false
	}
	return item.Value(), true
}

// Pending returns the pending requests, oldest first.
func (s *ScreenShare) Pending() []ScreenShareRequest {
	s.pending.DeleteExpired()

	items := s.pending.Items()
	out := make([]ScreenShareRequest, 0, len(items))
	for _, item := range items {
		out = append(out, item.Value())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Reset returns to idle and drops every request.
func (s *ScreenShare) Reset() {
	s.mu.Lock()
	s.state = ScreenShareIdle
	s.current = ScreenShareRequest{}
	s.mu.Unlock()

	s.waits.DeleteAll()
	s.pending.DeleteAll()
}

// Stop stops the expiry janitors.
func (s *ScreenShare) Stop() {
	s.stopOnce.Do(func() {
		s.waits.Stop()
		s.pending.Stop()
	})
}
