package meetsync

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/anumularoots-svg/pro-sub003/models"
)

// ControlMessageType is the "type" field of a control message.
type ControlMessageType string

const (
	ForceMuteAudio         ControlMessageType = "force_mute_audio"
	AllowUnmuteAudio       ControlMessageType = "allow_unmute_audio"
	ForceMuteVideo         ControlMessageType = "force_mute_video"
	AllowUnmuteVideo       ControlMessageType = "allow_unmute_video"
	SpotlightParticipant   ControlMessageType = "spotlight_participant"
	PinParticipant         ControlMessageType = "pin_participant"
	SetVolume              ControlMessageType = "set_volume"
	ParticipantRemoved     ControlMessageType = "participant_removed"
	RecordingStatus        ControlMessageType = "recording_status"
	RoleChanged            ControlMessageType = "role_changed"
	ScreenShareRequestType ControlMessageType = "screen_share_request"
	ScreenShareApproved    ControlMessageType = "screen_share_approved"
	ScreenShareDenied      ControlMessageType = "screen_share_denied"
)

var controlMessageTypes = map[ControlMessageType]struct {
	broadcast  bool // Acts on every receiver, not only the target.
	privileged bool // Issuer must be the host or a co-host.
	hostOnly   bool // Issuer must be the host.
}{
	ForceMuteAudio:         {privileged: true},
	AllowUnmuteAudio:       {privileged: true},
	ForceMuteVideo:         {privileged: true},
	AllowUnmuteVideo:       {privileged: true},
	SetVolume:              {privileged: true},
	ScreenShareApproved:    {privileged: true},
	ScreenShareDenied:      {privileged: true},
	SpotlightParticipant:   {broadcast: true, privileged: true},
	PinParticipant:         {broadcast: true, privileged: true},
	ParticipantRemoved:     {broadcast: true, privileged: true},
	RecordingStatus:        {broadcast: true, privileged: true},
	RoleChanged:            {broadcast: true, privileged: true, hostOnly: true},
	ScreenShareRequestType: {broadcast: true},
}

// Known reports whether the type is part of the control protocol.
func (t ControlMessageType) Known() bool {
	_, ok := controlMessageTypes[t]
	return ok
}

// IsBroadcast reports whether every receiver acts on the message.
// Other messages only act on the receiver named by the target.
func (t ControlMessageType) IsBroadcast() bool {
	return controlMessageTypes[t].broadcast
}

// IsPrivileged reports whether the issuer must hold host privileges.
func (t ControlMessageType) IsPrivileged() bool {
	return controlMessageTypes[t].privileged
}

// RequiresHost reports whether only the host may issue the message.
func (t ControlMessageType) RequiresHost() bool {
	return controlMessageTypes[t].hostOnly
}

// ControlMessage is a small JSON message exchanged over the data channel.
type ControlMessage struct {
	Type         ControlMessageType `json:"type"`
	TargetUserID string             `json:"target_user_id,omitempty"`
	IssuedBy     string             `json:"issued_by"`
	IssuedByName string             `json:"issued_by_name,omitempty"`
	Timestamp    int64              `json:"timestamp"` // Unix milliseconds.

	MutedByName string `json:"muted_by_name,omitempty"`
	Volume      *int   `json:"volume,omitempty"`
	Spotlight   *bool  `json:"spotlight,omitempty"`
	Pinned      *bool  `json:"pinned,omitempty"`
	Recording   *bool  `json:"recording,omitempty"`
	Role        string `json:"role,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Validate checks the envelope of the message.
func (m *ControlMessage) Validate() error {
	if !m.Type.Known() {
		return errors.Wrapf(ErrInvalidMessage, "unknown type %q", m.Type)
	}
	if m.IssuedBy == "" {
		return errors.Wrap(ErrInvalidMessage, "missing issuer")
	}
	if !m.Type.IsBroadcast() && m.TargetUserID == "" {
		return errors.Wrapf(ErrInvalidMessage, "%s without target", m.Type)
	}
	if m.Type == SetVolume && m.Volume == nil {
		return errors.Wrap(ErrInvalidMessage, "set_volume without volume")
	}
	if m.Type == RecordingStatus && m.Recording == nil {
		return errors.Wrap(ErrInvalidMessage, "recording_status without recording")
	}
	return nil
}

// Targets reports whether the message acts on the given user.
func (m *ControlMessage) Targets(userID string) bool {
	return m.Type.IsBroadcast() || m.TargetUserID == userID
}

// EncodeControlMessage serializes a control message.
func EncodeControlMessage(m *ControlMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal control message")
	}
	return data, nil
}

// DecodeControlMessage parses and validates a control message.
//
// The user ids are accepted as JSON numbers or strings.
func DecodeControlMessage(data []byte) (*ControlMessage, error) {
	var raw struct {
		ControlMessage
		TargetUserID models.FlexID `json:"target_user_id"`
		IssuedBy     models.FlexID `json:"issued_by"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(ErrInvalidMessage, err.Error())
	}

	m := raw.ControlMessage
	m.TargetUserID = raw.TargetUserID.String()
	m.IssuedBy = raw.IssuedBy.String()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
