package meetsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anumularoots-svg/pro-sub003/models"
)

func TestLiveRoster(t *testing.T) {
	r := NewLiveRoster()
	changes := 0
	cancel := r.OnChange(func() { changes++ })

	alice := models.RemoteParticipant{SessionID: "PA_1", Identity: "user_1", Name: "Alice"}
	r.Upsert(alice)
	r.Upsert(alice)
	assert.Equal(t, 1, changes, "unchanged upserts are silent")

	alice.AudioPublished = true
	r.Upsert(alice)
	r.Upsert(models.RemoteParticipant{SessionID: "PA_0", Identity: "user_2"})
	assert.Equal(t, 3, changes)
	assert.Equal(t, []string{"PA_0", "PA_1"}, r.SessionIDs())
	assert.True(t, r.Snapshot()["PA_1"].AudioPublished)

	r.Remove("PA_0")
	r.Remove("PA_0")
	assert.Equal(t, 4, changes)

	cancel()
	r.Clear()
	assert.Equal(t, 4, changes)
	assert.Empty(t, r.Snapshot())
}
