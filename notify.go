package meetsync

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

// NotificationLevel is the severity of a notification.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a user-facing message produced by the session, e.g. "You were muted by the host".
type Notification struct {
	ID     string            `json:"id"`
	Level  NotificationLevel `json:"level"`
	Text   string            `json:"text"`
	UserID string            `json:"user_id,omitempty"` // Participant the notification is about, if any.
	At     time.Time         `json:"at"`
}

// Notifier keeps a bounded history of notifications, newest last.
type Notifier struct {
	mu    sync.Mutex
	queue deque.Deque[Notification]
	limit int
	now   func() time.Time
}

// NewNotifier creates a Notifier keeping at most limit notifications.
func NewNotifier(limit int) *Notifier {
	if limit <= 0 {
		limit = MAX_NOTIFICATIONS
	}
	return &Notifier{limit: limit, now: time.Now}
}

// Push records a notification and drops the oldest ones over the limit.
func (n *Notifier) Push(level NotificationLevel, text, userID string) Notification {
	note := Notification{
		ID:     uuid.NewString(),
		Level:  level,
		Text:   text,
		UserID: userID,
		At:     n.now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.queue.PushBack(note)
	for n.queue.Len() > n.limit {
		n.queue.PopFront()
	}

	return note
}

// List returns the history, oldest first.
func (n *Notifier) List() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, n.queue.Len())
	for i := range out {
		out[i] = n.queue.At(i)
	}
	return out
}

// Clear drops the history.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.queue.Clear()
}
