package meetsync

// Context represents the context for event callback.
type Context struct {
	Session    *Session   // Session is a pointer to the Session that dispatched the event.
	Privileges Privileges // Privileges of the local user when the event was dispatched.
}
