package meetsync

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Bounded(t *testing.T) {
	n := NewNotifier(3)
	for i := 0; i < 5; i++ {
		n.Push(LevelInfo, fmt.Sprintf("note %d", i), "")
	}

	list := n.List()
	require.Len(t, list, 3)
	assert.Equal(t, "note 2", list[0].Text)
	assert.Equal(t, "note 4", list[2].Text)
	assert.NotEqual(t, list[0].ID, list[1].ID)

	n.Clear()
	assert.Empty(t, n.List())
}

func TestNotifier_DefaultLimit(t *testing.T) {
	n := NewNotifier(0)
	note := n.Push(LevelError, "failed", "7")
	assert.Equal(t, LevelError, note.Level)
	assert.Equal(t, "7", note.UserID)
	assert.False(t, note.At.IsZero())
	assert.Equal(t, MAX_NOTIFICATIONS, n.limit)
}
