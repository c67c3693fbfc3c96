package models

// Override is a partial, locally-held change applied on top of the merged view
// before the backend or the remote roster confirms it.
//
// A nil field leaves the merged value untouched.
type Override struct {
	AudioEnabled *bool // Forced audio state.
	VideoEnabled *bool // Forced video state.
	AudioLocked  *bool // Audio force-mute lock.
	VideoLocked  *bool // Video force-mute lock.
	IsCoHost     *bool // Pending co-host grant or revocation.
	Spotlighted  *bool
	Pinned       *bool
	Volume       *int
	Removed      bool // Pending removal, drops the entry from the view.
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o.AudioEnabled == nil && o.VideoEnabled == nil &&
		o.AudioLocked == nil && o.VideoLocked == nil &&
		o.IsCoHost == nil && o.Spotlighted == nil && o.Pinned == nil &&
		o.Volume == nil && !o.Removed
}

// Merge returns a copy of o with every field set in patch taking precedence.
func (o Override) Merge(patch Override) Override {
	if patch.AudioEnabled != nil {
		o.AudioEnabled = patch.AudioEnabled
	}
	if patch.VideoEnabled != nil {
		o.VideoEnabled = patch.VideoEnabled
	}
	if patch.AudioLocked != nil {
		o.AudioLocked = patch.AudioLocked
	}
	if patch.VideoLocked != nil {
		o.VideoLocked = patch.VideoLocked
	}
	if patch.IsCoHost != nil {
		o.IsCoHost = patch.IsCoHost
	}
	if patch.Spotlighted != nil {
		o.Spotlighted = patch.Spotlighted
	}
	if patch.Pinned != nil {
		o.Pinned = patch.Pinned
	}
	if patch.Volume != nil {
		o.Volume = patch.Volume
	}
	if patch.Removed {
		o.Removed = true
	}
	return o
}

// Apply applies the override to the participant and returns the result.
// The role is re-derived when the co-host flag changes.
func (o Override) Apply(p Participant) Participant {
	if o.AudioEnabled != nil {
		p.Media.AudioEnabled = *o.AudioEnabled
	}
	if o.VideoEnabled != nil {
		p.Media.VideoEnabled = *o.VideoEnabled
	}
	if o.AudioLocked != nil {
		p.AudioLocked = *o.AudioLocked
	}
	if o.VideoLocked != nil {
		p.VideoLocked = *o.VideoLocked
	}
	if o.IsCoHost != nil {
		p.IsCoHost = *o.IsCoHost
		p.Role = DeriveRole(p.IsHost, p.IsCoHost)
	}
	if o.Spotlighted != nil {
		p.Spotlighted = *o.Spotlighted
	}
	if o.Pinned != nil {
		p.Pinned = *o.Pinned
	}
	if o.Volume != nil {
		p.Volume = *o.Volume
	}
	return p
}

// Bool returns a pointer to b, for building overrides.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i, for building overrides.
func Int(i int) *int {
	return &i
}
