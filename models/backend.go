package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/anumularoots-svg/pro-sub003/utils"
)

// FlexID is a user identifier that accepts both JSON numbers and JSON strings.
type FlexID string

// UnmarshalJSON decodes a number or a string into the FlexID.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = FlexID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexID(n.String())

	return nil
}

// String returns the identifier as a string.
func (id FlexID) String() string {
	return string(id)
}

// LiveKitData is the SDK diagnostic block attached to a backend participant record.
type LiveKitData struct {
	HasAudioTrack   bool `json:"has_audio_track"`
	HasVideoTrack   bool `json:"has_video_track"`
	IsScreenSharing bool `json:"is_screen_sharing"`
}

// BackendParticipant is one raw record of the backend roster endpoint.
type BackendParticipant struct {
	UserID           FlexID       `json:"User_ID"`
	FullName         string       `json:"Full_Name"`
	Name             string       `json:"Name"`
	Username         string       `json:"Username"`
	Status           string       `json:"Status"`
	Role             string       `json:"Role"`
	LeaveTime        *string      `json:"Leave_Time"`
	LiveKitConnected bool         `json:"LiveKit_Connected"`
	HasStream        bool         `json:"Has_Stream"`
	LiveKitData      *LiveKitData `json:"LiveKit_Data"`
}

// HasLeft reports whether the record carries a leave time.
func (p *BackendParticipant) HasLeft() bool {
	if p.LeaveTime == nil {
		return false
	}
	v := strings.TrimSpace(*p.LeaveTime)
	return v != "" && !strings.EqualFold(v, "null") && !strings.EqualFold(v, "none")
}

// LeftAt parses the leave time of the record.
//
// Returns:
//   - time.Time: The parsed leave time.
//   - bool: False if the record has no leave time or it cannot be parsed.
func (p *BackendParticipant) LeftAt() (time.Time, bool) {
	if !p.HasLeft() {
		return time.Time{}, false
	}
	t, err := utils.ParseTime(*p.LeaveTime)
	return t, err == nil
}

// IsHostRole reports whether the backend marks the record as the meeting host.
func (p *BackendParticipant) IsHostRole() bool {
	return strings.EqualFold(strings.TrimSpace(p.Role), string(RoleHost))
}

// Media returns the last-known media snapshot of the record.
func (p *BackendParticipant) Media() MediaState {
	if p.LiveKitData == nil {
		return MediaState{}
	}
	return MediaState{
		AudioEnabled:    p.LiveKitData.HasAudioTrack,
		VideoEnabled:    p.LiveKitData.HasVideoTrack,
		IsScreenSharing: p.LiveKitData.IsScreenSharing,
	}
}

// RosterSummary is the summary block of the backend roster endpoint.
type RosterSummary struct {
	TotalParticipants   int `json:"total_participants"`
	LiveKitParticipants int `json:"livekit_participants"`
}

// BackendRoster is the response of the backend roster endpoint.
type BackendRoster struct {
	Success      bool                 `json:"success"`
	Participants []BackendParticipant `json:"participants"`
	Summary      RosterSummary        `json:"summary"`
	Error        string               `json:"error,omitempty"`
}

// CoHost is one entry of the co-host registry endpoint.
type CoHost struct {
	UserID     FlexID `json:"user_id"`
	FullName   string `json:"full_name,omitempty"`
	AssignedBy FlexID `json:"assigned_by,omitempty"`
}

// CoHostList is the response of the co-host registry endpoint.
type CoHostList struct {
	CoHosts []CoHost `json:"cohosts"`
}

// Envelope is the success/error envelope returned by the backend write endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
