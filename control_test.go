package meetsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anumularoots-svg/pro-sub003/models"
)

func TestDecodeControlMessage(t *testing.T) {
	m, err := DecodeControlMessage([]byte(`{"type":"force_mute_audio","target_user_id":42,"issued_by":"1","issued_by_name":"Host","timestamp":1700000000000,"muted_by_name":"Host"}`))
	require.NoError(t, err)
	assert.Equal(t, ForceMuteAudio, m.Type)
	assert.Equal(t, "42", m.TargetUserID)
	assert.Equal(t, "1", m.IssuedBy)
	assert.Equal(t, int64(1700000000000), m.Timestamp)

	_, err = DecodeControlMessage([]byte(`{"type":"dance","issued_by":"1"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = DecodeControlMessage([]byte(`{"type":"force_mute_video","issued_by":"1"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage, "targeted messages need a target")

	_, err = DecodeControlMessage([]byte(`{"type":"set_volume","target_user_id":"2","issued_by":"1"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = DecodeControlMessage([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestEncodeControlMessage(t *testing.T) {
	data, err := EncodeControlMessage(&ControlMessage{
		Type:      SpotlightParticipant,
		IssuedBy:  "1",
		Timestamp: 5,
		Spotlight: models.Bool(true),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"spotlight_participant","issued_by":"1","timestamp":5,"spotlight":true}`, string(data))

	_, err = EncodeControlMessage(&ControlMessage{Type: RecordingStatus, IssuedBy: "1"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestControlMessageType_Classes(t *testing.T) {
	for _, typ := range []ControlMessageType{ForceMuteAudio, AllowUnmuteAudio, ForceMuteVideo, AllowUnmuteVideo, SetVolume, ScreenShareApproved, ScreenShareDenied} {
		assert.False(t, typ.IsBroadcast(), typ)
		assert.True(t, typ.IsPrivileged(), typ)
	}
	for _, typ := range []ControlMessageType{SpotlightParticipant, PinParticipant, ParticipantRemoved, RecordingStatus, RoleChanged, ScreenShareRequestType} {
		assert.True(t, typ.IsBroadcast(), typ)
	}
	assert.False(t, ScreenShareRequestType.IsPrivileged())
	assert.True(t, RoleChanged.RequiresHost())
	assert.False(t, ForceMuteAudio.RequiresHost())
}

func TestDispatcher_Publish(t *testing.T) {
	ch := newFakeChannel()
	d := NewDispatcher(ch, "1", nil)
	d.now = func() time.Time { return time.UnixMilli(1234) }

	require.NoError(t, d.Publish(context.Background(), &ControlMessage{Type: ForceMuteAudio, TargetUserID: "2"}))
	sent := ch.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "1", sent[0].IssuedBy)
	assert.Equal(t, int64(1234), sent[0].Timestamp)

	ch.setErr(ErrNotConnected)
	err := d.Publish(context.Background(), &ControlMessage{Type: ForceMuteAudio, TargetUserID: "2"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDispatcher_Receive(t *testing.T) {
	hosts := map[string]bool{"1": true}
	cohosts := map[string]bool{"3": true}
	verify := func(issuer string, requireHost bool) bool {
		if requireHost {
			return hosts[issuer]
		}
		return hosts[issuer] || cohosts[issuer]
	}
	d := NewDispatcher(newFakeChannel(), "2", verify)

	encode := func(m ControlMessage) []byte {
		data, err := EncodeControlMessage(&m)
		require.NoError(t, err)
		return data
	}

	m, err := d.Receive(encode(ControlMessage{Type: ForceMuteAudio, TargetUserID: "2", IssuedBy: "1", Timestamp: 1}))
	require.NoError(t, err)
	require.NotNil(t, m)

	m, err = d.Receive(encode(ControlMessage{Type: ForceMuteAudio, TargetUserID: "2", IssuedBy: "1", Timestamp: 1}))
	assert.NoError(t, err)
	assert.Nil(t, m, "duplicates are dropped")

	m, err = d.Receive(encode(ControlMessage{Type: ForceMuteAudio, TargetUserID: "5", IssuedBy: "1", Timestamp: 2}))
	assert.NoError(t, err)
	assert.Nil(t, m, "targeted at someone else")

	m, err = d.Receive(encode(ControlMessage{Type: PinParticipant, TargetUserID: "5", IssuedBy: "3", Timestamp: 3, Pinned: models.Bool(true)}))
	assert.NoError(t, err)
	assert.NotNil(t, m, "broadcasts reach everyone")

	m, err = d.Receive(encode(ControlMessage{Type: ForceMuteAudio, TargetUserID: "2", IssuedBy: "9", Timestamp: 4}))
	assert.ErrorIs(t, err, ErrUnverifiedIssuer)
	assert.NotNil(t, m)

	_, err = d.Receive(encode(ControlMessage{Type: RoleChanged, TargetUserID: "2", IssuedBy: "3", Timestamp: 5, Role: "co-host"}))
	assert.ErrorIs(t, err, ErrUnverifiedIssuer, "co-hosts cannot change roles")

	m, err = d.Receive(encode(ControlMessage{Type: ScreenShareRequestType, IssuedBy: "9", Timestamp: 6, RequestID: "r"}))
	assert.NoError(t, err)
	assert.NotNil(t, m, "requests are unprivileged")

	m, err = d.Receive(encode(ControlMessage{Type: RecordingStatus, IssuedBy: "2", Timestamp: 7, Recording: models.Bool(true)}))
	assert.NoError(t, err)
	assert.Nil(t, m, "echoes are ignored")
}

func TestDispatcher_Run(t *testing.T) {
	ch := newFakeChannel()
	d := NewDispatcher(ch, "2", func(string, bool) bool { return false })

	var handled []ControlMessageType
	var rejected []error
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), func(m *ControlMessage) {
			handled = append(handled, m.Type)
		}, func(_ *ControlMessage, err error) {
			rejected = append(rejected, err)
		})
		close(done)
	}()

	ch.deliver(ControlMessage{Type: ScreenShareRequestType, IssuedBy: "4", Timestamp: 1})
	ch.deliver(ControlMessage{Type: ForceMuteVideo, TargetUserID: "2", IssuedBy: "4", Timestamp: 2})
	ch.in <- []byte("garbage")
	ch.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []ControlMessageType{ScreenShareRequestType}, handled)
	require.Len(t, rejected, 2)
	assert.ErrorIs(t, rejected[0], ErrUnverifiedIssuer)
	assert.ErrorIs(t, rejected[1], ErrInvalidMessage)
}
