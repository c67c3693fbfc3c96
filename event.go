package meetsync

import (
	"github.com/anumularoots-svg/pro-sub003/models"
)

// EventType represents the type of an event.
type EventType int64

// Event types.
const (
	// Event triggered when the session starts.
	OnStart EventType = 1 << iota
	// Event triggered when the session stops.
	OnStop
	// Event triggered when an error occurs.
	OnError
	// Event triggered when a source failed or disagreed but the session went on.
	OnWarning

	// Event triggered after every recompute that changed the merged view.
	OnParticipantListChanged
	// Event triggered when a participant enters the merged view.
	OnParticipantJoined
	// Event triggered when a participant leaves the merged view.
	OnParticipantLeft
	// Event triggered when a participant was removed by the host or a co-host.
	OnParticipantRemoved
	// Event triggered when display names of the merged view changed.
	OnRefreshParticipantNames
	// Event triggered when the role of a participant changes.
	OnRoleChanged
	// Event triggered when the capabilities of the local user change.
	OnCapabilityChanged

	// Event triggered when a control message was applied.
	OnControlMessage
	// Event triggered when a notification was recorded.
	OnNotification
	// Event triggered when a user-initiated action failed.
	OnActionFailed
	// Event triggered when the recording status changes.
	OnRecordingStatus

	// Event triggered when another participant asks to share the screen.
	OnScreenShareRequested
	// Event triggered when the local screen share request was approved.
	OnScreenShareApproved
	// Event triggered when the local screen share request was denied.
	OnScreenShareDenied
	// Event triggered when the local screen share request got no answer in time.
	OnScreenShareTimedOut

	// Event triggered when the session tore itself down.
	OnSessionReset
)

// String returns a string of said EventType.
func (e EventType) String() string {
	switch e {
	case OnStart:
		return "OnStart"
	case OnStop:
		return "OnStop"
	case OnError:
		return "OnError"
	case OnWarning:
		return "OnWarning"
	case OnParticipantListChanged:
		return "OnParticipantListChanged"
	case OnParticipantJoined:
		return "OnParticipantJoined"
	case OnParticipantLeft:
		return "OnParticipantLeft"
	case OnParticipantRemoved:
		return "OnParticipantRemoved"
	case OnRefreshParticipantNames:
		return "OnRefreshParticipantNames"
	case OnRoleChanged:
		return "OnRoleChanged"
	case OnCapabilityChanged:
		return "OnCapabilityChanged"
	case OnControlMessage:
		return "OnControlMessage"
	case OnNotification:
		return "OnNotification"
	case OnActionFailed:
		return "OnActionFailed"
	case OnRecordingStatus:
		return "OnRecordingStatus"
	case OnScreenShareRequested:
		return "OnScreenShareRequested"
	case OnScreenShareApproved:
		return "OnScreenShareApproved"
	case OnScreenShareDenied:
		return "OnScreenShareDenied"
	case OnScreenShareTimedOut:
		return "OnScreenShareTimedOut"
	case OnSessionReset:
		return "OnSessionReset"
	default:
		return "UnknownEvent"
	}
}

// Event represents an event that can occur in the session.
type Event struct {
	Type              EventType            // The type of the event.
	Participant       *models.Participant  // The participant associated with the event.
	Previous          *models.Participant  // The participant before the change, for role and name changes.
	Participants      []models.Participant // The merged view after the change.
	Control           *ControlMessage      // The control message associated with the event.
	Notification      *Notification        // The notification associated with the event.
	Request           *ScreenShareRequest  // The screen share request associated with the event.
	Recording         bool                 // The recording status.
	CapabilityAdded   Capability           // The capabilities gained by the local user.
	CapabilityRemoved Capability           // The capabilities lost by the local user.
	Warning           string               // The warning text.
	Action            string               // The failed action.
	Error             any                  // The error associated with the event.
}
