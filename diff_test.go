package meetsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anumularoots-svg/pro-sub003/models"
)

func eventTypes(events []*Event) (out []EventType) {
	for _, e := range events {
		out = append(out, e.Type)
	}
	return
}

func TestDiffViews(t *testing.T) {
	alice := models.Participant{UserID: "1", DisplayName: "Alice", Role: models.RoleHost}
	bob := models.Participant{UserID: "2", DisplayName: "Bob", Role: models.RoleParticipant}
	carol := models.Participant{UserID: "3", DisplayName: "Carol", Role: models.RoleParticipant}

	t.Run("equal", func(t *testing.T) {
		assert.Nil(t, DiffViews([]models.Participant{alice, bob}, []models.Participant{alice, bob}))
		assert.Nil(t, DiffViews(nil, nil))
	})

	t.Run("joined and left", func(t *testing.T) {
		events := DiffViews([]models.Participant{alice, bob}, []models.Participant{alice, carol})
		assert.Equal(t, []EventType{OnParticipantJoined, OnParticipantLeft, OnParticipantListChanged}, eventTypes(events))
		assert.Equal(t, "3", events[0].Participant.UserID)
		assert.Equal(t, "2", events[1].Participant.UserID)
		assert.Equal(t, []models.Participant{alice, carol}, events[2].Participants)
	})

	t.Run("role changed", func(t *testing.T) {
		promoted := bob
		promoted.Role = models.RoleCoHost
		promoted.IsCoHost = true

		events := DiffViews([]models.Participant{alice, bob}, []models.Participant{alice, promoted})
		assert.Equal(t, []EventType{OnRoleChanged, OnParticipantListChanged}, eventTypes(events))
		assert.Equal(t, models.RoleParticipant, events[0].Previous.Role)
		assert.Equal(t, models.RoleCoHost, events[0].Participant.Role)
	})

	t.Run("renamed", func(t *testing.T) {
		renamed := bob
		renamed.DisplayName = "Robert"

		events := DiffViews([]models.Participant{alice, bob}, []models.Participant{alice, renamed})
		assert.Equal(t, []EventType{OnRefreshParticipantNames, OnParticipantListChanged}, eventTypes(events))
	})

	t.Run("reordered", func(t *testing.T) {
		events := DiffViews([]models.Participant{alice, bob}, []models.Participant{bob, alice})
		assert.Equal(t, []EventType{OnParticipantListChanged}, eventTypes(events))
	})
}
