package models

// RemoteParticipant is a participant as reported by the real-time SDK roster.
type RemoteParticipant struct {
	SessionID       string // SDK session identifier, key of the remote roster.
	Identity        string // SDK identity, "user_<id>" by convention.
	Name            string // SDK display name.
	AudioPublished  bool   // Microphone track published and unmuted.
	VideoPublished  bool   // Camera track published and unmuted.
	ScreenPublished bool   // Screen share track published.
}

// Media returns the live media state of the remote participant.
func (p RemoteParticipant) Media() MediaState {
	return MediaState{
		AudioEnabled:    p.AudioPublished,
		VideoEnabled:    p.VideoPublished,
		IsScreenSharing: p.ScreenPublished,
	}
}
