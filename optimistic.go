package meetsync

import (
	"github.com/anumularoots-svg/pro-sub003/models"
)

// Rollback restores an override to the value it had before an optimistic change.
type Rollback struct {
	UserID   string
	previous models.Override
	existed  bool
}

// OptimisticState holds the local overrides applied on top of the merged view until the
// network confirms or rejects them.
//
// It is safe for concurrent use.
type OptimisticState struct {
	overrides SyncMap[string, models.Override]
}

// NewOptimisticState creates an empty OptimisticState.
func NewOptimisticState() *OptimisticState {
	return &OptimisticState{overrides: NewSyncMap[string, models.Override]()}
}

// Apply merges patch into the override of the user.
//
// Returns:
//   - Rollback: A token restoring the previous override.
func (o *OptimisticState) Apply(userID string, patch models.Override) Rollback {
	return o.Update(userID, func(cur models.Override) models.Override {
		return cur.Merge(patch)
	})
}

// Update replaces the override of the user with the result of fun.
// An override that ends up empty is removed.
//
// Returns:
//   - Rollback: A token restoring the previous override.
func (o *OptimisticState) Update(userID string, fun func(models.Override) models.Override) Rollback {
	old, existed := o.overrides.Update(userID, func(cur models.Override, _ bool) (models.Override, bool) {
		next := fun(cur)
		return next, !next.IsZero()
	})

	return Rollback{UserID: userID, previous: old, existed: existed}
}

// Rollback restores the overrides captured by the tokens, the last token first.
func (o *OptimisticState) Rollback(tokens ...Rollback) {
	for i := len(tokens) - 1; i >= 0; i-- {
		rb := tokens[i]
		if rb.existed {
			o.overrides.Set(rb.UserID, rb.previous)
		} else {
			o.overrides.Del(rb.UserID)
		}
	}
}

// Spotlight sets the spotlight of the user and clears it on everyone else in the view.
func (o *OptimisticState) Spotlight(userID string, on bool, view []models.Participant) []Rollback {
	return o.exclusive(userID, on, view,
		func(p models.Participant) bool { return p.Spotlighted },
		func(v bool) models.Override { return models.Override{Spotlighted: models.Bool(v)} },
	)
}

// Pin sets the pin of the user and clears it on everyone else in the view.
func (o *OptimisticState) Pin(userID string, on bool, view []models.Participant) []Rollback {
	return o.exclusive(userID, on, view,
		func(p models.Participant) bool { return p.Pinned },
		func(v bool) models.Override { return models.Override{Pinned: models.Bool(v)} },
	)
}

func (o *OptimisticState) exclusive(userID string, on bool, view []models.Participant, isSet func(models.Participant) bool, patch func(bool) models.Override) (tokens []Rollback) {
	if on {
		for _, p := range view {
			if p.UserID != userID && isSet(p) {
				tokens = append(tokens, o.Apply(p.UserID, patch(false)))
			}
		}
	}
	return append(tokens, o.Apply(userID, patch(on)))
}

// Get returns the override of the user.
func (o *OptimisticState) Get(userID string) (models.Override, bool) {
	return o.overrides.Get(userID)
}

// Snapshot returns a copy of every override.
func (o *OptimisticState) Snapshot() map[string]models.Override {
	return o.overrides.Snapshot()
}

// Len returns the number of users with an override.
func (o *OptimisticState) Len() int {
	return o.overrides.Len()
}

// Settle drops the overrides the network has made obsolete.
//
// Args:
//   - present: Users still reported by the backend or the live roster.
//   - left: Users the backend reports as left.
//   - cohosts: The co-host registry snapshot.
func (o *OptimisticState) Settle(present, left, cohosts map[string]struct{}) {
	for _, id := range o.overrides.Keys() {
		o.overrides.Update(id, func(cur models.Override, ok bool) (models.Override, bool) {
			if !ok {
				return cur, false
			}
			if _, gone := left[id]; gone {
				return cur, false
			}
			if _, here := present[id]; cur.Removed && !here {
				return cur, false
			}
			if cur.IsCoHost != nil {
				if _, listed := cohosts[id]; listed == *cur.IsCoHost {
					cur.IsCoHost = nil
				}
			}

			// Values equal to the defaults carry no information.
			cur.AudioLocked = trimFalse(cur.AudioLocked)
			cur.VideoLocked = trimFalse(cur.VideoLocked)
			cur.Spotlighted = trimFalse(cur.Spotlighted)
			cur.Pinned = trimFalse(cur.Pinned)
			if cur.Volume != nil && *cur.Volume == DEFAULT_VOLUME {
				cur.Volume = nil
			}

			return cur, !cur.IsZero()
		})
	}
}

// Clear drops every override.
func (o *OptimisticState) Clear() {
	o.overrides.Clear()
}

func trimFalse(b *bool) *bool {
	if b != nil && !*b {
		return nil
	}
	return b
}
