package models

// Role represents the effective role of a participant in a meeting.
type Role string

const (
	RoleHost        Role = "host"
	RoleCoHost      Role = "co-host"
	RoleParticipant Role = "participant"
)

// Rank returns the sort rank of the role, lower ranks first.
func (r Role) Rank() int {
	switch r {
	case RoleHost:
		return 0
	case RoleCoHost:
		return 1
	default:
		return 2
	}
}

// ConnectionState represents the real-time connection state of a participant.
type ConnectionState string

const (
	ConnectionLive         ConnectionState = "live"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionDisconnected ConnectionState = "disconnected"
)

// MediaState represents the media publication state of a participant.
type MediaState struct {
	AudioEnabled    bool `json:"audio_enabled"`     // Whether the microphone track is published and unmuted.
	VideoEnabled    bool `json:"video_enabled"`     // Whether the camera track is published and unmuted.
	IsScreenSharing bool `json:"is_screen_sharing"` // Whether a screen share track is published.
}

// Participant represents one entry of the merged participant view.
//
// Participant is a comparable value, two views can be compared with `==` element by element.
type Participant struct {
	UserID          string          `json:"user_id"`          // Stable identifier, primary key of the merged view.
	Identity        string          `json:"identity"`         // Real-time SDK identity string, empty when not live.
	DisplayName     string          `json:"display_name"`     // Best-effort resolved name.
	Role            Role            `json:"role"`             // Derived effective role.
	IsHost          bool            `json:"is_host"`          // Meeting creator, from the backend roster only.
	IsCoHost        bool            `json:"is_cohost"`        // Co-host privilege, from the co-host registry.
	IsLocal         bool            `json:"is_local"`         // The user running this session.
	IsProvisional   bool            `json:"is_provisional"`   // Live in the SDK but unknown to the backend.
	ConnectionState ConnectionState `json:"connection_state"` // Derived connection state.
	Media           MediaState      `json:"media"`            // Effective media state.
	AudioLocked     bool            `json:"audio_locked"`     // Audio force-muted by a host.
	VideoLocked     bool            `json:"video_locked"`     // Video force-muted by a host.
	Spotlighted     bool            `json:"spotlighted"`
	Pinned          bool            `json:"pinned"`
	Volume          int             `json:"volume"` // Playback volume in percent.
}

// DeriveRole returns the role for the given host and co-host flags.
// The host outranks the co-host.
func DeriveRole(isHost, isCoHost bool) Role {
	switch {
	case isHost:
		return RoleHost
	case isCoHost:
		return RoleCoHost
	default:
		return RoleParticipant
	}
}
