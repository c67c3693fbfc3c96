package models

// LocalUser represents the user running the session.
type LocalUser struct {
	UserID      string     // Backend user identifier.
	DisplayName string     // Name shown for the local user.
	Media       MediaState // Local media toggles.
	Volume      int        // Local playback volume in percent.
}
