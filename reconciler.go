package meetsync

import (
	"fmt"
	"sort"
	"time"

	"github.com/anumularoots-svg/pro-sub003/models"
	"github.com/anumularoots-svg/pro-sub003/utils"
)

// MergeInput holds every source the merge reads from.
type MergeInput struct {
	Backend   []models.BackendParticipant         // Backend roster snapshot, in backend order.
	Remote    map[string]models.RemoteParticipant // Live SDK roster keyed by session id.
	CoHosts   map[string]struct{}                 // Co-host registry snapshot.
	Overrides map[string]models.Override          // Local optimistic state keyed by user id.
	Previous  []models.Participant                // Previous merged view.
	Lingering []models.Participant                // Participants kept inside the grace window.
	Local     models.LocalUser                    // Local identity and media toggles.
	HostID    string                              // Latched host id, empty when unknown.
	Locale    string                              // Locale for display name collation.
}

// Merge produces the ordered, deduplicated participant view from its sources.
//
// Merge is pure: the same input always yields the same output. The returned warnings
// describe inconsistencies that were resolved, such as a second host claim.
//
// Args:
//   - in: The merge sources.
//
// Returns:
//   - []models.Participant: The merged and sorted view.
//   - []string: Non-fatal warnings.
func Merge(in MergeInput) (view []models.Participant, warnings []string) {
	previous := make(map[string]models.Participant, len(in.Previous))
	for _, p := range in.Previous {
		previous[p.UserID] = p
	}
	left := LeftUsers(in.Backend)
	entries := make(map[string]models.Participant)

	// Backend roster is the base set.
	for _, rec := range in.Backend {
		id := rec.UserID.String()
		if _, gone := left[id]; gone {
			continue
		}
		if id == "" {
			warnings = append(warnings, "backend record without user id skipped")
			continue
		}
		if _, dup := entries[id]; dup {
			continue
		}

		isHost := in.HostID != "" && id == in.HostID
		if rec.IsHostRole() && !isHost {
			warnings = append(warnings, fmt.Sprintf("user %s claims the host role held by %s", id, in.HostID))
		}
		_, isCoHost := in.CoHosts[id]

		state := models.ConnectionDisconnected
		if rec.LiveKitConnected {
			state = models.ConnectionConnecting
		}

		entries[id] = models.Participant{
			UserID:          id,
			DisplayName:     stableName(previous, id, utils.ResolveDisplayName(id, rec.FullName, rec.Name, rec.Username)),
			Role:            models.DeriveRole(isHost, isCoHost),
			IsHost:          isHost,
			IsCoHost:        isCoHost,
			ConnectionState: state,
			Media:           rec.Media(),
			Volume:          DEFAULT_VOLUME,
		}
	}

	// Overlay the live roster in a deterministic order.
	sessionIDs := make([]string, 0, len(in.Remote))
	for sid := range in.Remote {
		sessionIDs = append(sessionIDs, sid)
	}
	sort.Strings(sessionIDs)

	for _, sid := range sessionIDs {
		rp := in.Remote[sid]
		id, parsed := remoteUserID(sid, rp)
		if !parsed {
			warnings = append(warnings, fmt.Sprintf("identity %q of session %s is not correlated", rp.Identity, sid))
		}
		if _, gone := left[id]; gone {
			continue
		}
		if in.Local.UserID != "" && id == in.Local.UserID {
			continue
		}

		if p, ok := entries[id]; ok {
			if p.ConnectionState == models.ConnectionLive {
				// Several sessions of one user, any published track counts.
				p.Media.AudioEnabled = p.Media.AudioEnabled || rp.AudioPublished
				p.Media.VideoEnabled = p.Media.VideoEnabled || rp.VideoPublished
				p.Media.IsScreenSharing = p.Media.IsScreenSharing || rp.ScreenPublished
			} else {
				p.Media = rp.Media()
				p.ConnectionState = models.ConnectionLive
				p.Identity = rp.Identity
			}
			entries[id] = p
			continue
		}

		// Joined the real-time session before the backend caught up.
		isHost := in.HostID != "" && id == in.HostID
		_, isCoHost := in.CoHosts[id]
		fallback := rp.Identity
		if parsed {
			fallback = utils.FallbackName(id)
		}
		if fallback == "" {
			fallback = sid
		}
		name := rp.Name
		if name == "" {
			name = fallback
		}
		entries[id] = models.Participant{
			UserID:          id,
			Identity:        rp.Identity,
			DisplayName:     stableName(previous, id, name),
			Role:            models.DeriveRole(isHost, isCoHost),
			IsHost:          isHost,
			IsCoHost:        isCoHost,
			IsProvisional:   true,
			ConnectionState: models.ConnectionLive,
			Media:           rp.Media(),
			Volume:          DEFAULT_VOLUME,
		}
	}

	for _, lp := range in.Lingering {
		if _, ok := entries[lp.UserID]; ok || lp.IsLocal {
			continue
		}
		if _, gone := left[lp.UserID]; gone {
			continue
		}
		lp.ConnectionState = models.ConnectionDisconnected
		entries[lp.UserID] = lp
	}

	// Optimistic overrides take precedence over every network source.
	for id, o := range in.Overrides {
		if id == in.Local.UserID {
			continue
		}
		p, ok := entries[id]
		if !ok {
			continue
		}
		if o.Removed {
			delete(entries, id)
			continue
		}
		entries[id] = o.Apply(p)
	}

	// The local user is always built from local state.
	if local := in.Local; local.UserID != "" {
		names := []string{local.DisplayName}
		if p, ok := entries[local.UserID]; ok {
			names = append(names, p.DisplayName)
		}
		isHost := in.HostID != "" && local.UserID == in.HostID
		_, isCoHost := in.CoHosts[local.UserID]
		volume := local.Volume
		if volume == 0 {
			volume = DEFAULT_VOLUME
		}

		p := models.Participant{
			UserID:          local.UserID,
			Identity:        utils.FormatIdentity(local.UserID),
			DisplayName:     utils.ResolveDisplayName(local.UserID, names...),
			Role:            models.DeriveRole(isHost, isCoHost),
			IsHost:          isHost,
			IsCoHost:        isCoHost,
			IsLocal:         true,
			ConnectionState: models.ConnectionLive,
			Volume:          volume,
		}
		if o, ok := in.Overrides[local.UserID]; ok {
			p = o.Apply(p)
		}
		p.Media = local.Media
		entries[local.UserID] = p
	}

	view = make([]models.Participant, 0, len(entries))
	for _, p := range entries {
		view = append(view, p)
	}
	SortParticipants(view, in.Locale)

	return view, warnings
}

// SortParticipants orders the view: local user, host, co-hosts, then everyone else by
// display name. Ties are broken by user id so the order is total.
func SortParticipants(view []models.Participant, locale string) {
	nc := utils.NewNameCollator(locale)
	sort.SliceStable(view, func(i, j int) bool {
		a, b := view[i], view[j]
		if a.IsLocal != b.IsLocal {
			return a.IsLocal
		}
		if ra, rb := a.Role.Rank(), b.Role.Rank(); ra != rb {
			return ra < rb
		}
		if c := nc.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c < 0
		}
		return lessUserID(a.UserID, b.UserID)
	})
}

// LeftUsers returns the users for which any backend record carries a leave time.
// A leave time outranks every other record of the same user.
func LeftUsers(backend []models.BackendParticipant) map[string]struct{} {
	left := make(map[string]struct{})
	for _, rec := range backend {
		if rec.HasLeft() {
			left[rec.UserID.String()] = struct{}{}
		}
	}
	return left
}

// remoteUserID returns the merged-view key of a live SDK participant.
func remoteUserID(sessionID string, rp models.RemoteParticipant) (string, bool) {
	if id, ok := utils.ParseIdentity(rp.Identity); ok {
		return id, true
	}
	key := rp.Identity
	if key == "" {
		key = sessionID
	}
	return PROVISIONAL_USER_ID_PREFIX + key, false
}

// stableName keeps a previously resolved name when the new one degraded to the fallback.
func stableName(previous map[string]models.Participant, id, name string) string {
	if name != utils.FallbackName(id) {
		return name
	}
	if p, ok := previous[id]; ok && p.DisplayName != "" {
		return p.DisplayName
	}
	return name
}

// lessUserID orders numeric ids numerically, before every other id, and everything else lexically.
func lessUserID(a, b string) bool {
	numA, numB := utils.IsDigit(a), utils.IsDigit(b)
	switch {
	case numA != numB:
		return numA
	case numA && len(a) != len(b):
		return len(a) < len(b)
	}
	return a < b
}

// Snapshot is the current state of every source, as fed into a [Reconciler].
type Snapshot struct {
	Backend   []models.BackendParticipant
	Remote    map[string]models.RemoteParticipant
	CoHosts   map[string]struct{}
	Overrides map[string]models.Override
	Local     models.LocalUser
}

// Reconciler wraps [Merge] with the state that outlives a single pass:
// the latched host, the previous view and the grace window of absent participants.
//
// A Reconciler is not safe for concurrent use.
type Reconciler struct {
	Locale      string
	GraceWindow time.Duration

	now         func() time.Time
	hostID      string
	absentSince map[string]time.Time
	previous    []models.Participant
}

// NewReconciler creates a Reconciler.
//
// Args:
//   - locale: The locale used to sort display names.
//   - grace: How long a participant absent from every source stays in the view.
//   - now: The clock, nil means [time.Now].
func NewReconciler(locale string, grace time.Duration, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		Locale:      locale,
		GraceWindow: grace,
		now:         now,
		absentSince: make(map[string]time.Time),
	}
}

// Reconcile recomputes the merged view from full source snapshots.
//
// Returns:
//   - []models.Participant: The merged and sorted view.
//   - []string: Non-fatal warnings.
func (r *Reconciler) Reconcile(s Snapshot) ([]models.Participant, []string) {
	if r.hostID == "" {
		// The meeting creator is set once and never reassigned.
		for _, rec := range s.Backend {
			if rec.IsHostRole() && rec.UserID != "" {
				r.hostID = rec.UserID.String()
				break
			}
		}
	}

	view, warnings := Merge(MergeInput{
		Backend:   s.Backend,
		Remote:    s.Remote,
		CoHosts:   s.CoHosts,
		Overrides: s.Overrides,
		Previous:  r.previous,
		Lingering: r.lingering(s),
		Local:     s.Local,
		HostID:    r.hostID,
		Locale:    r.Locale,
	})
	r.previous = view

	return view, warnings
}

// lingering returns the previous participants absent from every source but still inside
// the grace window.
func (r *Reconciler) lingering(s Snapshot) (out []models.Participant) {
	left := LeftUsers(s.Backend)
	present := make(map[string]struct{})
	for _, rec := range s.Backend {
		present[rec.UserID.String()] = struct{}{}
	}
	for sid, rp := range s.Remote {
		id, _ := remoteUserID(sid, rp)
		present[id] = struct{}{}
	}
	now := r.now()

	for _, p := range r.previous {
		id := p.UserID
		_, gone := left[id]
		if _, ok := present[id]; (ok && !gone) || p.IsLocal {
			delete(r.absentSince, id)
			continue
		}
		if o, ok := s.Overrides[id]; gone || (ok && o.Removed) {
			delete(r.absentSince, id)
			continue
		}

		since, ok := r.absentSince[id]
		if !ok {
			since = now
			r.absentSince[id] = since
		}
		if now.Sub(since) < r.GraceWindow {
			out = append(out, p)
		} else {
			delete(r.absentSince, id)
		}
	}

	return
}

// HostID returns the latched host id, empty until a host has been observed.
func (r *Reconciler) HostID() string {
	return r.hostID
}

// Previous returns a copy of the last merged view.
func (r *Reconciler) Previous() []models.Participant {
	return append([]models.Participant(nil), r.previous...)
}

// Reset discards the host latch, the previous view and the grace bookkeeping.
func (r *Reconciler) Reset() {
	r.hostID = ""
	r.previous = nil
	r.absentSince = make(map[string]time.Time)
}
