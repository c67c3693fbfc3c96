package meetsync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/anumularoots-svg/pro-sub003/models"
	"github.com/anumularoots-svg/pro-sub003/utils"
)

// Session reconciles the participant view of one meeting for the local user.
//
// It polls the backend roster and the co-host registry, listens to the live roster and the
// control channel, merges everything into one ordered view and dispatches events describing
// every change. Host and co-host actions are applied optimistically and confirmed by the
// next reconciliation pass.
type Session struct {
	Config *Config // Config holds the configuration for the session.

	backend     Backend          // backend is the REST backend.
	roster      RemoteRoster     // roster is the live roster of the real-time SDK.
	channel     DataChannel      // channel carries the control messages.
	ownsChannel bool             // ownsChannel is set when the session dialed the channel itself.
	now         func() time.Time // now is the clock.

	eventHandlers []Handler // eventHandlers contains the registered event handlers for the session.
	errorHandlers []Handler // errorHandlers contains the registered error handlers for the session.

	mu            sync.Mutex
	reconciler    *Reconciler
	optimistic    *OptimisticState
	notifier      *Notifier
	screen        *ScreenShare
	dispatcher    *Dispatcher
	backendRoster []models.BackendParticipant
	summary       models.RosterSummary
	cohosts       map[string]struct{}
	warnings      map[string]struct{} // warnings reported by the last pass, to report each one once.

	coHostPrivilegesActive bool   // A co-host grant arrived and no registry poll issued after it completed.
	grantEpoch             uint64 // grantEpoch counts the co-host grants of the local user.

	localMedia  models.MediaState
	localVolume int
	view        []models.Participant
	privileges  Privileges
	recording   bool
	localSeen   bool // The backend has listed the local user as present.

	participantPoller *Poller
	cohostPoller      *Poller
	debounced         func(func())
	cancelRoster      func()

	started     atomic.Bool // started is set between Start and the teardown.
	resetting   atomic.Bool // resetting is set once a forced teardown is scheduled.
	initialized bool        // initialized indicates whether the session has been initialized.
	isDebug     bool

	parent    context.Context    // parent is the context given to Start.
	context   context.Context    // Context for running the session.
	cancelCtx context.CancelFunc // Function for stopping the session.
	wg        sync.WaitGroup
	stopped   chan struct{}
	stopOnce  sync.Once
}

// New creates a new instance of the [Session] with the provided configuration.
//
// Args:
//   - config: The configuration for the session.
//   - options: Options overriding the default collaborators.
//
// Returns:
//   - *Session: A new instance of the [Session].
func New(config *Config, options ...Option) *Session {
	s := &Session{
		Config:  config,
		now:     time.Now,
		stopped: make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// AddHandler adds a new handler to the session.
//
// Args:
//   - handler: The handler to add to the session.
//
// Returns:
//   - *Session: The session instance for method chaining.
func (s *Session) AddHandler(handler Handler) *Session {
	s.eventHandlers = append(s.eventHandlers, handler)

	return s
}

// RemoveHandler removes a handler from the session.
//
// Args:
//   - handler: The handler to remove from the session.
//
// Returns:
//   - *Session: The session instance for method chaining.
func (s *Session) RemoveHandler(handler Handler) *Session {
	s.eventHandlers = utils.Remove(s.eventHandlers, handler)

	return s
}

// AddErrorHandler adds a new error handler to the session.
//
// Error handlers receive the events whose handler panicked, with the panic in [Event.Error].
//
// Returns:
//   - *Session: The session instance for method chaining.
func (s *Session) AddErrorHandler(handler Handler) *Session {
	s.errorHandlers = append(s.errorHandlers, handler)

	return s
}

// RemoveErrorHandler removes an error handler from the session.
//
// Returns:
//   - *Session: The session instance for method chaining.
func (s *Session) RemoveErrorHandler(handler Handler) *Session {
	s.errorHandlers = utils.Remove(s.errorHandlers, handler)

	return s
}

// dispatchEvent dispatches an event to the appropriate handler.
//
// It must not be called while holding s.mu.
func (s *Session) dispatchEvent(event *Event) {
	var context *Context

	for _, handler := range s.eventHandlers {
		if handler.Check(event) {
			if context == nil {
				context = &Context{
					Session:    s,
					Privileges: s.Privileges(),
				}
			}

			func() {
				defer func() {
					if err := recover(); err != nil {
						event.Error = err

						s.dispatchError(event)
					}
				}()

				handler.Invoke(event, context)
			}()
		}
	}
}

// dispatchError dispatches an error event to the error handlers.
func (s *Session) dispatchError(event *Event) {
	var context *Context

	for _, handler := range s.errorHandlers {
		if handler.Check(event) {
			if context == nil {
				context = &Context{
					Session:    s,
					Privileges: s.Privileges(),
				}
			}

			func() {
				defer func() {
					if err := recover(); err != nil {
						log.Error().
							Str("Event", event.Type.String()).
							Interface("Origin", event.Error).
							Interface("Current", err).
							Msg("Another error occured during handling an error.")
					}
				}()

				handler.Invoke(event, context)
			}()
		}
	}
}

// Initialize initializes the session.
//
// Returns:
//   - *Session: The session instance for method chaining.
func (s *Session) Initialize() *Session {
	s.checkConfig()

	if s.isDebug || s.Config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	s.reconciler = NewReconciler(s.Config.Locale, s.Config.GraceWindow, s.now)
	s.optimistic = NewOptimisticState()
	s.notifier = NewNotifier(MAX_NOTIFICATIONS)
	s.notifier.now = s.now
	s.cohosts = make(map[string]struct{})
	s.localVolume = DEFAULT_VOLUME
	s.debounced = debounce.New(RECOMPUTE_DEBOUNCE)
	s.initialized = true

	return s
}

// checkConfig checks certain configurations and assigns default values if they are left unset.
func (s *Session) checkConfig() {
	if s.Config == nil {
		s.Config = &Config{}
	}
	if s.Config.Locale == "" {
		s.Config.Locale = DEFAULT_LOCALE
	}
	if s.Config.ParticipantPollInterval <= 0 {
		s.Config.ParticipantPollInterval = PARTICIPANT_POLL_INTERVAL
	}
	if s.Config.CoHostPollInterval <= 0 {
		s.Config.CoHostPollInterval = COHOST_POLL_INTERVAL
	}
	if s.Config.GraceWindow < 0 {
		s.Config.GraceWindow = 0
	} else if s.Config.GraceWindow == 0 {
		s.Config.GraceWindow = GRACE_WINDOW
	}
	if s.Config.ScreenShareWait <= 0 {
		s.Config.ScreenShareWait = SCREEN_SHARE_WAIT
	}
	if s.Config.ResetDelay <= 0 {
		s.Config.ResetDelay = RESET_DELAY
	}
}

// Start starts the session.
//
// It fetches both backend sources once before returning, so the first view is complete.
//
// Args:
//   - ctx: The context for running the session.
//
// Returns:
//   - error: ErrNotInitialized, ErrAlreadyConnected, a configuration error or a control channel
//     connection error.
func (s *Session) Start(ctx context.Context) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if err := s.Config.Validate(); err != nil && !(errors.Is(err, ErrMissingBackendURL) && s.backend != nil) {
		return err
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyConnected
	}

	if ctx == nil {
		ctx = context.Background()
	}
	s.parent = ctx
	s.context, s.cancelCtx = context.WithCancel(ctx)

	if s.backend == nil {
		s.backend = NewAPI(s.Config.BackendURL, nil)
	}
	if s.channel == nil && s.Config.ControlURL != "" {
		ws := NewWebSocketChannel(s.Config.ControlURL)
		if err := ws.Connect(s.context); err != nil {
			s.cancelCtx()
			s.started.Store(false)
			return errors.Wrap(err, "failed to connect control channel")
		}
		s.channel, s.ownsChannel = ws, true
	}

	screen := NewScreenShare(s.Config.ScreenShareWait, s.onScreenShareExpired)
	screen.now = s.now
	participantPoller := NewPoller(s.Config.ParticipantPollInterval, func(ctx context.Context) {
		s.detach(ctx, func() { s.RefreshParticipants(ctx) })
	})
	cohostPoller := NewPoller(s.Config.CoHostPollInterval, func(ctx context.Context) {
		s.detach(ctx, func() { s.RefreshCoHosts(ctx) })
	})

	s.mu.Lock()
	s.screen = screen
	s.participantPoller = participantPoller
	s.cohostPoller = cohostPoller
	if s.channel != nil {
		s.dispatcher = NewDispatcher(s.channel, s.Config.UserID, s.verifyIssuer)
		s.dispatcher.now = s.now
	}
	dispatcher := s.dispatcher
	s.mu.Unlock()

	log.Debug().Str("Meeting", s.Config.MeetingID).Str("User", s.Config.UserID).Msg("Starting session")

	if dispatcher != nil {
		ctx := s.context
		s.wg.Add(1)
		go func() {
			dispatcher.Run(ctx,
				func(m *ControlMessage) { s.detach(ctx, func() { s.onControl(m) }) },
				func(m *ControlMessage, err error) { s.detach(ctx, func() { s.onRejected(m, err) }) },
			)
			lost := ctx.Err() == nil
			s.wg.Done()

			// Handlers may call Stop, so the wait group is released first.
			if lost {
				log.Error().Str("Meeting", s.Config.MeetingID).Msg("Control channel lost")
				s.dispatchEvent(&Event{Type: OnError, Error: ErrConnectionClosed})
			}
		}()
	}
	if s.roster != nil {
		s.cancelRoster = s.roster.OnChange(func() { s.debounced(s.recompute) })
	}

	s.RefreshCoHosts(s.context)
	s.RefreshParticipants(s.context)

	for _, p := range []*Poller{participantPoller, cohostPoller} {
		s.wg.Add(1)
		go func(p *Poller) {
			defer s.wg.Done()
			p.Run(s.context)
		}(p)
	}

	s.dispatchEvent(&Event{Type: OnStart})

	return nil
}

// Park waits for the session to stop or receive an interrupt signal.
func (s *Session) Park() {
	intCh := make(chan os.Signal, 1)
	signal.Notify(intCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(intCh)

	select {
	case <-s.stopped:
	case <-intCh:
		s.Stop()
	}
}

// Stop stops the session and closes the control channel.
func (s *Session) Stop() {
	s.dispatchEvent(&Event{Type: OnStop})
	s.teardown(true)
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Reset discards all in-memory state and starts a fresh reconciliation session.
//
// An injected data channel is kept open and reused.
//
// Args:
//   - ctx: The context for running the new session, nil reuses the context given to Start.
func (s *Session) Reset(ctx context.Context) error {
	if ctx == nil {
		ctx = s.parent
	}

	s.teardown(false)
	s.resetting.Store(false)
	s.dispatchEvent(&Event{Type: OnSessionReset})

	return s.Start(ctx)
}

// teardown stops every goroutine of the session and discards its state.
func (s *Session) teardown(closeInjected bool) {
	if !s.started.CompareAndSwap(true, false) {
		return
	}

	log.Debug().Str("Meeting", s.Config.MeetingID).Msg("Tearing down session")

	s.cancelCtx()
	if s.cancelRoster != nil {
		s.cancelRoster()
		s.cancelRoster = nil
	}
	if s.channel != nil && (s.ownsChannel || closeInjected) {
		if err := s.channel.Close(); err != nil {
			log.Debug().Err(err).Msg("Control channel close")
		}
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownsChannel {
		s.channel, s.ownsChannel = nil, false
	}
	if s.screen != nil {
		s.screen.Reset()
		s.screen.Stop()
	}
	s.dispatcher = nil
	s.participantPoller, s.cohostPoller = nil, nil

	s.reconciler.Reset()
	s.optimistic.Clear()
	s.notifier.Clear()
	s.backendRoster = nil
	s.summary = models.RosterSummary{}
	s.cohosts = make(map[string]struct{})
	s.warnings = nil
	s.coHostPrivilegesActive, s.grantEpoch = false, 0
	s.localMedia = models.MediaState{}
	s.localVolume = DEFAULT_VOLUME
	s.view = nil
	s.privileges = Privileges{}
	s.recording = false
	s.localSeen = false
}

// detach runs fn on its own goroutine and returns once fn is done or ctx is done.
//
// The background loops hand their work to detach, so a handler run by fn may call Stop or
// Reset, whose teardown waits for the loops but not for fn itself.
func (s *Session) detach(ctx context.Context, fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if ctx.Err() == nil {
			fn()
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// scheduleTeardown ends the session after the reset delay, e.g. once the local user was
// removed from the meeting.
func (s *Session) scheduleTeardown(reason string) {
	log.Warn().Str("Meeting", s.Config.MeetingID).Str("Reason", reason).Msg("Session will be torn down")

	ctx := s.context
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Config.ResetDelay):
		}

		s.teardown(true)
		s.dispatchEvent(&Event{Type: OnSessionReset, Warning: reason})
		s.stopOnce.Do(func() { close(s.stopped) })
	}()
}

// GetContext returns the [context.Context] of the session.
func (s *Session) GetContext() context.Context {
	return s.context
}

// RefreshParticipants fetches the backend roster and recomputes the view.
//
// A failed fetch keeps the previous roster and is reported with OnWarning.
func (s *Session) RefreshParticipants(ctx context.Context) error {
	roster, err := s.backend.FetchParticipants(ctx, s.Config.MeetingID)
	if err != nil {
		if ctx.Err() == nil {
			s.warn("participant poll failed", err)
		}
		return err
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		// The session was torn down while the poll was in flight.
		s.mu.Unlock()
		return ctx.Err()
	}
	s.backendRoster = roster.Participants
	s.summary = roster.Summary
	s.mu.Unlock()

	s.recompute()

	return nil
}

// RefreshCoHosts fetches the co-host registry and recomputes the view.
//
// A completed poll issued after a co-host grant of the local user hands the privileges
// over to the registry.
func (s *Session) RefreshCoHosts(ctx context.Context) error {
	s.mu.Lock()
	epoch := s.grantEpoch
	s.mu.Unlock()

	ids, err := s.backend.FetchCoHosts(ctx, s.Config.MeetingID)
	if err != nil {
		if ctx.Err() == nil {
			s.warn("co-host poll failed", err)
		}
		return err
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return ctx.Err()
	}
	s.cohosts = utils.Set(ids...)
	if s.coHostPrivilegesActive && epoch == s.grantEpoch {
		s.coHostPrivilegesActive = false
	}
	s.mu.Unlock()

	s.recompute()

	return nil
}

// recompute runs a reconciliation pass and dispatches the resulting events.
func (s *Session) recompute() {
	if !s.started.Load() {
		return
	}

	var remote map[string]models.RemoteParticipant
	if s.roster != nil {
		remote = s.roster.Snapshot()
	}

	s.mu.Lock()
	localID := s.Config.UserID
	left := LeftUsers(s.backendRoster)
	present := make(map[string]struct{})
	for _, rec := range s.backendRoster {
		present[rec.UserID.String()] = struct{}{}
	}
	for sid, rp := range remote {
		id, _ := remoteUserID(sid, rp)
		present[id] = struct{}{}
	}
	s.optimistic.Settle(present, left, s.cohosts)

	view, warnings := s.reconciler.Reconcile(Snapshot{
		Backend:   s.backendRoster,
		Remote:    remote,
		CoHosts:   s.cohosts,
		Overrides: s.optimistic.Snapshot(),
		Local: models.LocalUser{
			UserID:      localID,
			DisplayName: s.Config.DisplayName,
			Media:       s.localMedia,
			Volume:      s.localVolume,
		},
	})

	_, isCoHost := s.cohosts[localID]
	isHost := s.reconciler.HostID() == localID
	privileges := DerivePrivileges(isHost, isCoHost, s.coHostPrivilegesActive)

	oldView, oldPrivileges := s.view, s.privileges
	s.view, s.privileges = view, privileges

	var fresh []string
	seen := make(map[string]struct{}, len(warnings))
	for _, w := range warnings {
		if _, ok := s.warnings[w]; !ok {
			fresh = append(fresh, w)
		}
		seen[w] = struct{}{}
	}
	s.warnings = seen

	removed := false
	if _, gone := left[localID]; gone {
		removed = s.localSeen
	} else {
		for _, rec := range s.backendRoster {
			if rec.UserID.String() == localID {
				s.localSeen = true
				break
			}
		}
	}
	s.mu.Unlock()

	for _, w := range fresh {
		log.Warn().Str("Meeting", s.Config.MeetingID).Msg(w)
		s.dispatchEvent(&Event{Type: OnWarning, Warning: w})
	}
	for _, event := range DiffViews(oldView, view) {
		s.dispatchEvent(event)
	}
	if added, lost := CapabilityChanges(oldPrivileges, privileges); added != 0 || lost != 0 {
		log.Debug().Str("Added", added.String()).Str("Removed", lost.String()).Msg("Capabilities changed")
		s.dispatchEvent(&Event{Type: OnCapabilityChanged, CapabilityAdded: added, CapabilityRemoved: lost})
	}
	if removed {
		s.localRemoved("the backend reports that you left the meeting")
	}
}

// warn logs and dispatches a non-fatal failure.
func (s *Session) warn(text string, err error) {
	log.Warn().Str("Meeting", s.Config.MeetingID).Err(err).Msg(text)
	s.dispatchEvent(&Event{Type: OnWarning, Warning: text, Error: err})
}

// notify records and dispatches a notification.
func (s *Session) notify(level NotificationLevel, text, userID string) {
	note := s.notifier.Push(level, text, userID)
	s.dispatchEvent(&Event{Type: OnNotification, Notification: &note})
}

// actionFailed reports a failed user-initiated action and returns err.
func (s *Session) actionFailed(action, userID string, err error) error {
	log.Warn().Str("Action", action).Str("Target", userID).Err(err).Msg("Action failed")

	note := s.notifier.Push(LevelError, fmt.Sprintf("Could not %s: %v", action, err), userID)
	s.dispatchEvent(&Event{Type: OnActionFailed, Action: action, Notification: &note, Error: err})
	s.dispatchEvent(&Event{Type: OnNotification, Notification: &note})

	if errors.Is(err, ErrForbidden) {
		// The registry disagrees with the local view of our role.
		s.triggerCoHostRefresh()
	}

	return err
}

func (s *Session) triggerCoHostRefresh() {
	s.mu.Lock()
	p := s.cohostPoller
	s.mu.Unlock()

	if p != nil {
		p.Trigger()
	}
}

// verifyIssuer accepts the latched host and, unless requireHost is set, the registry co-hosts.
func (s *Session) verifyIssuer(issuer string, requireHost bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if host := s.reconciler.HostID(); host != "" && issuer == host {
		return true
	}
	if requireHost {
		return false
	}
	_, ok := s.cohosts[issuer]
	return ok
}

// publish sends a control message as the local user.
func (s *Session) publish(ctx context.Context, m *ControlMessage) error {
	s.mu.Lock()
	dispatcher := s.dispatcher
	m.IssuedByName = s.localNameLocked()
	s.mu.Unlock()

	if dispatcher == nil {
		return ErrNotConnected
	}
	return dispatcher.Publish(ctx, m)
}

func (s *Session) localNameLocked() string {
	for _, p := range s.view {
		if p.IsLocal {
			return p.DisplayName
		}
	}
	return s.Config.DisplayName
}

func findParticipant(view []models.Participant, userID string) (models.Participant, bool) {
	for _, p := range view {
		if p.UserID == userID {
			return p, true
		}
	}
	return models.Participant{}, false
}

// guardTarget checks a privileged action aimed at another participant.
//
// With strict set the target must be assignable by the local role, see [Privileges.CanTarget].
func (s *Session) guardTarget(userID string, strict bool) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return models.Participant{}, ErrNotStarted
	}
	if !s.privileges.HasHostPrivileges {
		return models.Participant{}, ErrNotPermitted
	}
	p, ok := findParticipant(s.view, userID)
	if !ok {
		return p, ErrUnknownUser
	}
	if !strict {
		return p, nil
	}
	if p.IsLocal {
		return p, ErrTargetIsSelf
	}
	if p.IsHost {
		return p, ErrTargetIsHost
	}
	if !s.privileges.CanTarget(p) {
		return p, ErrNotPermitted
	}
	return p, nil
}

// Participants returns a copy of the merged view.
func (s *Session) Participants() []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Participant(nil), s.view...)
}

// Participant returns the participant with the given user id.
func (s *Session) Participant(userID string) (models.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return findParticipant(s.view, userID)
}

// LocalParticipant returns the entry of the local user.
func (s *Session) LocalParticipant() (models.Participant, bool) {
	return s.Participant(s.Config.UserID)
}

// Privileges returns the privileges of the local user.
func (s *Session) Privileges() Privileges {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.privileges
}

// Summary returns the counters of the last backend roster.
func (s *Session) Summary() models.RosterSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.summary
}

// Recording reports whether the meeting is being recorded.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recording
}

// HostID returns the user id of the meeting host, empty until the backend reported one.
func (s *Session) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reconciler.HostID()
}

// Notifications returns the notification history, oldest first.
func (s *Session) Notifications() []Notification {
	return s.notifier.List()
}

// ScreenShareState returns the approval state of the local screen share.
func (s *Session) ScreenShareState() ScreenShareState {
	s.mu.Lock()
	screen := s.screen
	s.mu.Unlock()

	if screen == nil {
		return ScreenShareIdle
	}
	return screen.State()
}

// PendingScreenShares returns the requests awaiting a decision of the local user, oldest first.
func (s *Session) PendingScreenShares() []ScreenShareRequest {
	s.mu.Lock()
	screen := s.screen
	s.mu.Unlock()

	if screen == nil {
		return nil
	}
	return screen.Pending()
}

// SearchParticipants returns the participants whose display name matches the query,
// in view order. Substrings match, as do names within a small edit distance.
func (s *Session) SearchParticipants(query string) (out []models.Participant) {
	for _, p := range s.Participants() {
		if utils.NameDistance(query, p.DisplayName) <= SEARCH_DISTANCE_THRESHOLD {
			out = append(out, p)
		}
	}
	return
}

// MuteAudio force-mutes the microphone of a participant and locks it until
// [Session.AllowUnmuteAudio].
func (s *Session) MuteAudio(ctx context.Context, userID string) error {
	return s.forceMute(ctx, userID, "mute audio", ForceMuteAudio, models.Override{
		AudioEnabled: models.Bool(false),
		AudioLocked:  models.Bool(true),
	})
}

// MuteVideo force-stops the camera of a participant and locks it until
// [Session.AllowUnmuteVideo].
func (s *Session) MuteVideo(ctx context.Context, userID string) error {
	return s.forceMute(ctx, userID, "mute video", ForceMuteVideo, models.Override{
		VideoEnabled: models.Bool(false),
		VideoLocked:  models.Bool(true),
	})
}

// AllowUnmuteAudio lifts the microphone lock of a participant.
func (s *Session) AllowUnmuteAudio(ctx context.Context, userID string) error {
	return s.allowUnmute(ctx, userID, "allow unmute audio", AllowUnmuteAudio, func(o models.Override) models.Override {
		o.AudioEnabled, o.AudioLocked = nil, nil
		return o
	})
}

// AllowUnmuteVideo lifts the camera lock of a participant.
func (s *Session) AllowUnmuteVideo(ctx context.Context, userID string) error {
	return s.allowUnmute(ctx, userID, "allow unmute video", AllowUnmuteVideo, func(o models.Override) models.Override {
		o.VideoEnabled, o.VideoLocked = nil, nil
		return o
	})
}

// forceMute applies a mute override and notifies the target. A send failure keeps the override.
func (s *Session) forceMute(ctx context.Context, userID, action string, kind ControlMessageType, patch models.Override) error {
	if _, err := s.guardTarget(userID, true); err != nil {
		return s.actionFailed(action, userID, err)
	}

	s.optimistic.Apply(userID, patch)
	s.recompute()

	s.mu.Lock()
	name := s.localNameLocked()
	s.mu.Unlock()

	if err := s.publish(ctx, &ControlMessage{Type: kind, TargetUserID: userID, MutedByName: name}); err != nil {
		return s.actionFailed(action, userID, err)
	}
	return nil
}

func (s *Session) allowUnmute(ctx context.Context, userID, action string, kind ControlMessageType, fun func(models.Override) models.Override) error {
	if _, err := s.guardTarget(userID, true); err != nil {
		return s.actionFailed(action, userID, err)
	}

	s.optimistic.Update(userID, fun)
	s.recompute()

	if err := s.publish(ctx, &ControlMessage{Type: kind, TargetUserID: userID}); err != nil {
		return s.actionFailed(action, userID, err)
	}
	return nil
}

// Spotlight spotlights a participant for everyone, or clears the spotlight.
// At most one participant is spotlighted at a time.
func (s *Session) Spotlight(ctx context.Context, userID string, on bool) error {
	if _, err := s.guardTarget(userID, false); err != nil {
		return s.actionFailed("spotlight", userID, err)
	}

	s.optimistic.Spotlight(userID, on, s.Participants())
	s.recompute()

	if err := s.publish(ctx, &ControlMessage{Type: SpotlightParticipant, TargetUserID: userID, Spotlight: models.Bool(on)}); err != nil {
		return s.actionFailed("spotlight", userID, err)
	}
	return nil
}

// Pin pins a participant for everyone, or clears the pin.
// At most one participant is pinned at a time.
func (s *Session) Pin(ctx context.Context, userID string, on bool) error {
	if _, err := s.guardTarget(userID, false); err != nil {
		return s.actionFailed("pin", userID, err)
	}

	s.optimistic.Pin(userID, on, s.Participants())
	s.recompute()

	if err := s.publish(ctx, &ControlMessage{Type: PinParticipant, TargetUserID: userID, Pinned: models.Bool(on)}); err != nil {
		return s.actionFailed("pin", userID, err)
	}
	return nil
}

// SetVolume sets the playback volume of a participant, in percent between 0 and 100.
func (s *Session) SetVolume(ctx context.Context, userID string, volume int) error {
	p, err := s.guardTarget(userID, false)
	if err == nil && p.IsLocal {
		err = ErrTargetIsSelf
	}
	if err != nil {
		return s.actionFailed("set volume", userID, err)
	}

	volume = max(0, min(volume, 100))
	s.optimistic.Apply(userID, models.Override{Volume: models.Int(volume)})
	s.recompute()

	if err := s.publish(ctx, &ControlMessage{Type: SetVolume, TargetUserID: userID, Volume: models.Int(volume)}); err != nil {
		return s.actionFailed("set volume", userID, err)
	}
	return nil
}

// RemoveParticipant removes a participant from the meeting.
//
// The participant disappears from the view at once. A failed backend write brings them back.
//
// Args:
//   - ctx: The context of the backend request.
//   - userID: The participant to remove.
//   - reason: An optional reason shown to the participant.
func (s *Session) RemoveParticipant(ctx context.Context, userID, reason string) error {
	p, err := s.guardTarget(userID, true)
	if err != nil {
		return s.actionFailed("remove participant", userID, err)
	}

	rb := s.optimistic.Apply(userID, models.Override{Removed: true})
	s.recompute()

	err = s.backend.RemoveParticipant(ctx, RemovalRequest{
		MeetingID: s.Config.MeetingID,
		UserID:    userID,
		RemovedBy: s.Config.UserID,
		Reason:    reason,
	})
	if err != nil {
		s.optimistic.Rollback(rb)
		s.recompute()
		return s.actionFailed("remove participant", userID, err)
	}

	if err = s.publish(ctx, &ControlMessage{Type: ParticipantRemoved, TargetUserID: userID, Reason: reason}); err != nil {
		s.warn("removal notice not sent", err)
	}

	s.dispatchEvent(&Event{Type: OnParticipantRemoved, Participant: &p})
	s.notify(LevelInfo, fmt.Sprintf("%s was removed from the meeting", p.DisplayName), userID)

	return nil
}

// MakeCoHost grants the co-host role. Only the host may do this.
func (s *Session) MakeCoHost(ctx context.Context, userID string) error {
	return s.setCoHost(ctx, userID, true)
}

// RemoveCoHost revokes the co-host role. Only the host may do this.
func (s *Session) RemoveCoHost(ctx context.Context, userID string) error {
	return s.setCoHost(ctx, userID, false)
}

func (s *Session) setCoHost(ctx context.Context, userID string, grant bool) error {
	action, role := "remove co-host", models.RoleParticipant
	if grant {
		action, role = "make co-host", models.RoleCoHost
	}

	s.mu.Lock()
	allowed := s.privileges.CanRemoveCoHost
	if grant {
		allowed = s.privileges.CanMakeCoHost
	}
	p, ok := findParticipant(s.view, userID)
	started := s.started.Load()
	s.mu.Unlock()

	var err error
	switch {
	case !started:
		err = ErrNotStarted
	case !allowed:
		err = ErrNotPermitted
	case !ok:
		err = ErrUnknownUser
	case p.IsLocal:
		err = ErrTargetIsSelf
	case p.IsHost:
		err = ErrTargetIsHost
	}
	if err != nil {
		return s.actionFailed(action, userID, err)
	}

	rb := s.optimistic.Apply(userID, models.Override{IsCoHost: models.Bool(grant)})
	s.recompute()

	req := CoHostRequest{
		MeetingID:    s.Config.MeetingID,
		UserID:       userID,
		ActingUserID: s.Config.UserID,
		UserName:     p.DisplayName,
	}
	if grant {
		err = s.backend.AssignCoHost(ctx, req)
	} else {
		err = s.backend.RemoveCoHost(ctx, req)
	}
	if err != nil {
		s.optimistic.Rollback(rb)
		s.recompute()
		return s.actionFailed(action, userID, err)
	}

	if err = s.publish(ctx, &ControlMessage{Type: RoleChanged, TargetUserID: userID, Role: string(role)}); err != nil {
		s.warn("role change notice not sent", err)
	}
	s.triggerCoHostRefresh()

	return nil
}

// SetRecording broadcasts the recording status of the meeting.
func (s *Session) SetRecording(ctx context.Context, on bool) error {
	s.mu.Lock()
	allowed := s.privileges.HasHostPrivileges
	s.mu.Unlock()

	if !allowed {
		return s.actionFailed("change recording", "", ErrNotPermitted)
	}

	s.setRecording(on)

	if err := s.publish(ctx, &ControlMessage{Type: RecordingStatus, Recording: models.Bool(on)}); err != nil {
		return s.actionFailed("change recording", "", err)
	}
	return nil
}

func (s *Session) setRecording(on bool) {
	s.mu.Lock()
	changed := s.recording != on
	s.recording = on
	s.mu.Unlock()

	if changed {
		s.dispatchEvent(&Event{Type: OnRecordingStatus, Recording: on})
	}
}

// needsApproval reports whether the local user must ask before sharing the screen.
func (s *Session) needsApproval() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Config.ScreenShareRequiresApproval && !s.privileges.CanShareScreenDirectly
}

// RequestScreenShare asks the hosts for permission to share the screen.
//
// Returns:
//   - ScreenShareRequest: The published request.
//   - error: ErrApprovalNotNeeded when the local user may share directly, ErrRequestPending,
//     ErrAlreadyApproved or a send error.
func (s *Session) RequestScreenShare(ctx context.Context) (ScreenShareRequest, error) {
	if !s.started.Load() {
		return ScreenShareRequest{}, ErrNotStarted
	}
	if !s.needsApproval() {
		return ScreenShareRequest{}, ErrApprovalNotNeeded
	}

	s.mu.Lock()
	screen, name := s.screen, s.localNameLocked()
	s.mu.Unlock()

	req, err := screen.Request(s.Config.UserID, name)
	if err != nil {
		return req, err
	}

	if err = s.publish(ctx, &ControlMessage{Type: ScreenShareRequestType, RequestID: req.ID}); err != nil {
		screen.Cancel(req.ID)
		return req, s.actionFailed("request screen share", s.Config.UserID, err)
	}

	s.notify(LevelInfo, "Screen share requested, waiting for the host", s.Config.UserID)

	return req, nil
}

// ApproveScreenShare approves the pending request of a participant.
func (s *Session) ApproveScreenShare(ctx context.Context, userID string) error {
	return s.decideScreenShare(ctx, userID, true)
}

// DenyScreenShare denies the pending request of a participant.
func (s *Session) DenyScreenShare(ctx context.Context, userID string) error {
	return s.decideScreenShare(ctx, userID, false)
}

func (s *Session) decideScreenShare(ctx context.Context, userID string, approved bool) error {
	action, kind := "deny screen share", ScreenShareDenied
	if approved {
		action, kind = "approve screen share", ScreenShareApproved
	}

	s.mu.Lock()
	allowed := s.privileges.HasHostPrivileges
	screen := s.screen
	s.mu.Unlock()

	if screen == nil {
		return s.actionFailed(action, userID, ErrNotStarted)
	}
	if !allowed {
		return s.actionFailed(action, userID, ErrNotPermitted)
	}
	req, ok := screen.Take(userID)
	if !ok {
		return s.actionFailed(action, userID, ErrNoSuchRequest)
	}

	if err := s.publish(ctx, &ControlMessage{Type: kind, TargetUserID: userID, RequestID: req.ID}); err != nil {
		screen.Enqueue(req)
		return s.actionFailed(action, userID, err)
	}
	return nil
}

// StartScreenShare marks the local screen as shared.
//
// Returns:
//   - error: ErrApprovalRequired until a request was approved.
func (s *Session) StartScreenShare() error {
	if s.needsApproval() && s.ScreenShareState() != ScreenShareApprovedState {
		return s.actionFailed("share screen", s.Config.UserID, ErrApprovalRequired)
	}

	s.mu.Lock()
	s.localMedia.IsScreenSharing = true
	s.mu.Unlock()

	s.recompute()

	return nil
}

// StopScreenShare marks the local screen as no longer shared.
func (s *Session) StopScreenShare() {
	s.mu.Lock()
	s.localMedia.IsScreenSharing = false
	s.mu.Unlock()

	s.recompute()
}

// SetLocalMedia sets the local microphone and camera toggles.
//
// Returns:
//   - error: ErrNotPermitted when enabling a device a host has locked.
func (s *Session) SetLocalMedia(audio, video bool) error {
	s.mu.Lock()
	local, _ := findParticipant(s.view, s.Config.UserID)
	var err error
	switch {
	case audio && !s.localMedia.AudioEnabled && local.AudioLocked:
		err = errors.Wrap(ErrNotPermitted, "microphone is locked by the host")
	case video && !s.localMedia.VideoEnabled && local.VideoLocked:
		err = errors.Wrap(ErrNotPermitted, "camera is locked by the host")
	default:
		s.localMedia.AudioEnabled = audio
		s.localMedia.VideoEnabled = video
	}
	s.mu.Unlock()

	if err != nil {
		return s.actionFailed("change media", s.Config.UserID, err)
	}

	s.recompute()

	return nil
}

// onControl applies a control message received from another participant.
func (s *Session) onControl(m *ControlMessage) {
	localID := s.Config.UserID
	issuer := m.IssuedByName
	if issuer == "" {
		issuer = "the host"
	}

	log.Debug().Str("Type", string(m.Type)).Str("Issuer", m.IssuedBy).Str("Target", m.TargetUserID).Msg("Control message")

	switch m.Type {
	case ForceMuteAudio:
		s.mu.Lock()
		s.localMedia.AudioEnabled = false
		s.mu.Unlock()
		s.optimistic.Apply(localID, models.Override{AudioLocked: models.Bool(true)})
		s.notify(LevelWarning, fmt.Sprintf("You were muted by %s", issuer), localID)

	case ForceMuteVideo:
		s.mu.Lock()
		s.localMedia.VideoEnabled = false
		s.mu.Unlock()
		s.optimistic.Apply(localID, models.Override{VideoLocked: models.Bool(true)})
		s.notify(LevelWarning, fmt.Sprintf("Your camera was turned off by %s", issuer), localID)

	case AllowUnmuteAudio:
		s.optimistic.Update(localID, func(o models.Override) models.Override {
			o.AudioLocked = nil
			return o
		})
		s.notify(LevelInfo, fmt.Sprintf("%s allowed you to unmute", issuer), localID)

	case AllowUnmuteVideo:
		s.optimistic.Update(localID, func(o models.Override) models.Override {
			o.VideoLocked = nil
			return o
		})
		s.notify(LevelInfo, fmt.Sprintf("%s allowed you to turn on your camera", issuer), localID)

	case SetVolume:
		s.mu.Lock()
		s.localVolume = max(0, min(*m.Volume, 100))
		s.mu.Unlock()

	case SpotlightParticipant:
		on := m.Spotlight == nil || *m.Spotlight
		s.optimistic.Spotlight(m.TargetUserID, on, s.Participants())

	case PinParticipant:
		on := m.Pinned == nil || *m.Pinned
		s.optimistic.Pin(m.TargetUserID, on, s.Participants())

	case ParticipantRemoved:
		if m.TargetUserID == localID {
			s.dispatchEvent(&Event{Type: OnControlMessage, Control: m})
			reason := "you were removed from the meeting"
			if m.Reason != "" {
				reason += ": " + m.Reason
			}
			s.localRemoved(reason)
			return
		}
		p, ok := s.Participant(m.TargetUserID)
		s.optimistic.Apply(m.TargetUserID, models.Override{Removed: true})
		if ok {
			s.dispatchEvent(&Event{Type: OnParticipantRemoved, Participant: &p})
		}

	case RecordingStatus:
		s.setRecording(*m.Recording)
		if *m.Recording {
			s.notify(LevelInfo, "This meeting is being recorded", "")
		} else {
			s.notify(LevelInfo, "Recording stopped", "")
		}

	case RoleChanged:
		grant := m.Role == string(models.RoleCoHost)
		s.optimistic.Apply(m.TargetUserID, models.Override{IsCoHost: models.Bool(grant)})
		if m.TargetUserID == localID {
			s.mu.Lock()
			s.coHostPrivilegesActive = grant
			if grant {
				s.grantEpoch++
			}
			s.mu.Unlock()
			if grant {
				s.notify(LevelInfo, fmt.Sprintf("%s made you a co-host", issuer), localID)
			} else {
				s.notify(LevelInfo, fmt.Sprintf("%s removed your co-host role", issuer), localID)
			}
		}
		s.triggerCoHostRefresh()

	case ScreenShareRequestType:
		s.mu.Lock()
		allowed := s.privileges.HasHostPrivileges
		screen := s.screen
		s.mu.Unlock()
		if !allowed || screen == nil {
			break
		}
		req := ScreenShareRequest{
			ID:          m.RequestID,
			UserID:      m.IssuedBy,
			DisplayName: m.IssuedByName,
			RequestedAt: time.UnixMilli(m.Timestamp),
		}
		screen.Enqueue(req)
		s.dispatchEvent(&Event{Type: OnScreenShareRequested, Request: &req})
		s.notify(LevelInfo, fmt.Sprintf("%s wants to share their screen", utils.ResolveDisplayName(req.UserID, req.DisplayName)), req.UserID)

	case ScreenShareApproved, ScreenShareDenied:
		s.mu.Lock()
		screen := s.screen
		s.mu.Unlock()
		if screen == nil {
			break
		}
		req, _ := screen.Current()
		state, ok := screen.Resolve(m.RequestID, m.Type == ScreenShareApproved)
		if !ok {
			log.Debug().Str("Request", m.RequestID).Msg("Stale screen share decision ignored")
			break
		}
		if state == ScreenShareApprovedState {
			s.dispatchEvent(&Event{Type: OnScreenShareApproved, Request: &req, Control: m})
			s.notify(LevelInfo, "Your screen share request was approved", localID)
		} else {
			s.dispatchEvent(&Event{Type: OnScreenShareDenied, Request: &req, Control: m})
			s.notify(LevelWarning, "Your screen share request was denied", localID)
		}
	}

	s.recompute()
	s.dispatchEvent(&Event{Type: OnControlMessage, Control: m})
}

// onRejected handles a control message that failed decoding or verification.
func (s *Session) onRejected(m *ControlMessage, err error) {
	if errors.Is(err, ErrUnverifiedIssuer) {
		// Our registry snapshot may be older than the sender's grant.
		s.triggerCoHostRefresh()
	}
	s.dispatchEvent(&Event{Type: OnWarning, Warning: "control message rejected", Control: m, Error: err})
}

// onScreenShareExpired runs on the cache janitor when the local request got no answer.
func (s *Session) onScreenShareExpired(req ScreenShareRequest) {
	if !s.started.Load() {
		return
	}
	s.dispatchEvent(&Event{Type: OnScreenShareTimedOut, Request: &req})
	s.notify(LevelWarning, "Your screen share request timed out", req.UserID)
}

// localRemoved announces the removal of the local user and schedules the teardown.
func (s *Session) localRemoved(reason string) {
	if !s.resetting.CompareAndSwap(false, true) {
		return
	}

	local, _ := s.LocalParticipant()
	s.dispatchEvent(&Event{Type: OnParticipantRemoved, Participant: &local, Warning: reason})
	s.notify(LevelError, strings.ToUpper(reason[:1])+reason[1:], s.Config.UserID)
	s.scheduleTeardown(reason)
}
