package meetsync

import (
	"github.com/anumularoots-svg/pro-sub003/models"
)

// DiffViews compares two merged views and returns the events describing the change.
//
// Joined and left participants each get an event, as do role changes. Name changes are
// reported once with OnRefreshParticipantNames and any change at all ends with
// OnParticipantListChanged.
//
// Args:
//   - old: The previous view.
//   - new: The current view.
//
// Returns:
//   - []*Event: The events in dispatch order, nil when the views are equal.
func DiffViews(old, new []models.Participant) (events []*Event) {
	if equalViews(old, new) {
		return nil
	}

	before := make(map[string]models.Participant, len(old))
	for _, p := range old {
		before[p.UserID] = p
	}
	after := make(map[string]struct{}, len(new))
	renamed := false

	for i := range new {
		p := new[i]
		after[p.UserID] = struct{}{}

		prev, ok := before[p.UserID]
		if !ok {
			events = append(events, &Event{Type: OnParticipantJoined, Participant: &p})
			continue
		}
		if prev.Role != p.Role {
			events = append(events, &Event{Type: OnRoleChanged, Participant: &p, Previous: &prev})
		}
		if prev.DisplayName != p.DisplayName {
			renamed = true
		}
	}

	for i := range old {
		p := old[i]
		if _, ok := after[p.UserID]; !ok {
			events = append(events, &Event{Type: OnParticipantLeft, Participant: &p})
		}
	}

	snapshot := append([]models.Participant(nil), new...)
	if renamed {
		events = append(events, &Event{Type: OnRefreshParticipantNames, Participants: snapshot})
	}
	events = append(events, &Event{Type: OnParticipantListChanged, Participants: snapshot})

	return
}

func equalViews(a, b []models.Participant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
