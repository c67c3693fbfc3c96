package meetsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendServer(t *testing.T) (*API, *http.ServeMux) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewAPI(srv.URL+"/", map[string]string{"Authorization": "Bearer token"}), mux
}

func TestAPI_FetchParticipants(t *testing.T) {
	api, mux := newBackendServer(t)
	mux.HandleFunc("/api/meetings/m-1/participants", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{
			"success": true,
			"participants": [
				{"User_ID": 1, "Full_Name": "Hannah", "Role": "host", "Leave_Time": null, "LiveKit_Connected": true,
				 "LiveKit_Data": {"has_audio_track": true, "has_video_track": false}},
				{"User_ID": "2", "Name": "Zed", "Leave_Time": "2024-01-01T00:00:00Z"}
			],
			"summary": {"total_participants": 2, "livekit_participants": 1}
		}`))
	})

	roster, err := api.FetchParticipants(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, roster.Participants, 2)

	host := roster.Participants[0]
	assert.Equal(t, "1", host.UserID.String())
	assert.True(t, host.IsHostRole())
	assert.False(t, host.HasLeft())
	assert.True(t, host.Media().AudioEnabled)

	left := roster.Participants[1]
	assert.Equal(t, "2", left.UserID.String())
	assert.True(t, left.HasLeft())
	_, ok := left.LeftAt()
	assert.True(t, ok)

	assert.Equal(t, 1, roster.Summary.LiveKitParticipants)
}

func TestAPI_FetchParticipantsFailure(t *testing.T) {
	api, mux := newBackendServer(t)
	mux.HandleFunc("/api/meetings/m-1/participants", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "meeting ended"}`))
	})
	mux.HandleFunc("/api/meetings/m-2/participants", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	mux.HandleFunc("/api/meetings/m-3/participants", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := api.FetchParticipants(context.Background(), "m-1")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "meeting ended")

	_, err = api.FetchParticipants(context.Background(), "m-2")
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = api.FetchParticipants(context.Background(), "m-3")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestAPI_FetchCoHosts(t *testing.T) {
	api, mux := newBackendServer(t)
	mux.HandleFunc("/api/cohost/list/m-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cohosts": [{"user_id": 2, "full_name": "Zed"}, {"user_id": "5"}, {"user_id": null}]}`))
	})

	ids, err := api.FetchCoHosts(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, ids)
}

func TestAPI_Writes(t *testing.T) {
	api, mux := newBackendServer(t)

	var assigned CoHostRequest
	mux.HandleFunc("/api/cohost/assign", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&assigned))
		w.Write([]byte(`{"success": true, "message": "assigned"}`))
	})
	mux.HandleFunc("/api/cohost/remove", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "not a co-host"}`))
	})
	var removal RemovalRequest
	mux.HandleFunc("/api/meetings/m-1/participants/remove", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&removal))
		w.WriteHeader(http.StatusForbidden)
	})

	err := api.AssignCoHost(context.Background(), CoHostRequest{MeetingID: "m-1", UserID: "2", ActingUserID: "1", UserName: "Zed"})
	require.NoError(t, err)
	assert.Equal(t, CoHostRequest{MeetingID: "m-1", UserID: "2", ActingUserID: "1", UserName: "Zed"}, assigned)

	err = api.RemoveCoHost(context.Background(), CoHostRequest{MeetingID: "m-1", UserID: "2", ActingUserID: "1"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "not a co-host")

	err = api.RemoveParticipant(context.Background(), RemovalRequest{MeetingID: "m-1", UserID: "3", RemovedBy: "1", Reason: "spam"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "spam", removal.Reason)
}

func TestAPI_ContextCancelled(t *testing.T) {
	api, _ := newBackendServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.FetchCoHosts(ctx, "m-1")
	assert.ErrorIs(t, err, context.Canceled)
}
