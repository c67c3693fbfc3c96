// meetsync package is a headless participant reconciliation core for meeting clients. It merges the backend roster, the live roster of the real-time SDK, the co-host registry and locally applied host actions into one ordered, deduplicated participant view, and derives what the local user is allowed to do.
//
// Key Features:
//   - Reconciliation: A pure merge of every roster source with leave-time precedence, a single latched host and a grace window for flapping participants.
//   - Role & Privileges: Host, co-host and participant capabilities derived from the current flags on every pass.
//   - Control Channel: Force-mute, spotlight, pin, volume, removal, recording and role messages with issuer re-verification on receipt.
//   - Optimistic Actions: Host actions show up at once and roll back when the backend rejects them.
//   - Screen Share Approval: A request, approve and deny flow with timeouts for participants who must ask first.
//   - Event Handling: Typed events and composable filters instead of global callbacks.
//
// Usage Example:
//
//	package main
//
//	import (
//	    "context"
//
//	    meetsync "github.com/anumularoots-svg/pro-sub003"
//	)
//
//	func main() {
//	    config := &meetsync.Config{
//	        MeetingID:   "meeting-id",
//	        UserID:      "42",
//	        DisplayName: "Ada",
//	        BackendURL:  "https://meet.example.com",
//	        ControlURL:  "wss://relay.example.com/meetings/meeting-id",
//	    }
//
//	    roster := meetsync.NewLiveRoster() // Fed by the real-time SDK glue.
//	    session := meetsync.New(config, meetsync.WithRemoteRoster(roster))
//
//	    // add handlers
//
//	    session.Initialize()
//
//	    ctx := context.Background()
//	    if err := session.Start(ctx); err != nil {
//	        panic(err)
//	    }
//
//	    // The `session.Park()` call is blocking, use CTRL + C to stop the session.
//	    session.Park()
//	}
package meetsync
