package meetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/anumularoots-svg/pro-sub003/models"
)

// Backend is the REST backend of the meeting.
type Backend interface {
	// FetchParticipants returns the backend roster of the meeting.
	FetchParticipants(ctx context.Context, meetingID string) (*models.BackendRoster, error)
	// FetchCoHosts returns the user ids of the co-host registry.
	FetchCoHosts(ctx context.Context, meetingID string) ([]string, error)
	// AssignCoHost grants the co-host role.
	AssignCoHost(ctx context.Context, req CoHostRequest) error
	// RemoveCoHost revokes the co-host role.
	RemoveCoHost(ctx context.Context, req CoHostRequest) error
	// RemoveParticipant removes a participant from the meeting.
	RemoveParticipant(ctx context.Context, req RemovalRequest) error
}

// CoHostRequest is the body of the co-host assignment and removal endpoints.
type CoHostRequest struct {
	MeetingID    string `json:"meeting_id"`
	UserID       string `json:"user_id"`
	ActingUserID string `json:"acting_user_id"`
	UserName     string `json:"user_name,omitempty"`
}

// RemovalRequest is the body of the participant removal endpoint.
type RemovalRequest struct {
	MeetingID string `json:"meeting_id"`
	UserID    string `json:"user_id"`
	RemovedBy string `json:"removed_by"`
	Reason    string `json:"reason,omitempty"`
}

// API is the HTTP implementation of [Backend].
type API struct {
	BaseURL string
	client  *http.Client
}

// Transport is a custom RoundTripper implementation.
type Transport struct {
	Transport http.RoundTripper // Transport is the underlying RoundTripper.
	Headers   map[string]string // Headers contains custom headers to be added to the requests.
}

// RoundTrip executes a single HTTP request and returns its response.
// It adds custom headers to the request before performing the request using the underlying Transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, value := range t.Headers {
		req.Header.Set(key, value)
	}

	return t.Transport.RoundTrip(req)
}

// NewAPI creates an API client.
//
// Args:
//   - baseURL: The base URL of the backend, without a trailing slash.
//   - headers: Headers added to every request, e.g. an authorization token.
func NewAPI(baseURL string, headers map[string]string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &Transport{
				Transport: http.DefaultTransport,
				Headers:   headers,
			},
			Timeout: API_TIMEOUT,
		},
	}
}

// do performs a JSON request and decodes the JSON response into out.
func (api *API) do(ctx context.Context, method, endpoint string, body, out any) (err error) {
	var reader io.Reader
	if body != nil {
		var data []byte
		if data, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := api.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer res.Body.Close()

	log.Debug().Str("Method", method).Str("URL", endpoint).Int("Status", res.StatusCode).Msg("Backend request")

	switch {
	case res.StatusCode == http.StatusForbidden:
		return errors.Wrapf(ErrForbidden, "%s %s", method, endpoint)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return errors.Wrapf(ErrRequestFailed, "%s %s: status %d", method, endpoint, res.StatusCode)
	}

	if out != nil {
		if err = json.NewDecoder(res.Body).Decode(out); err != nil {
			return errors.Wrap(ErrBadResponse, err.Error())
		}
	}

	return nil
}

// FetchParticipants returns the backend roster of the meeting.
func (api *API) FetchParticipants(ctx context.Context, meetingID string) (*models.BackendRoster, error) {
	var roster models.BackendRoster
	endpoint := fmt.Sprintf(API_PARTICIPANTS, api.BaseURL, url.PathEscape(meetingID))
	if err := api.do(ctx, http.MethodGet, endpoint, nil, &roster); err != nil {
		return nil, err
	}
	if !roster.Success {
		return nil, errors.Wrap(ErrRequestFailed, roster.Error)
	}
	return &roster, nil
}

// FetchCoHosts returns the user ids of the co-host registry.
func (api *API) FetchCoHosts(ctx context.Context, meetingID string) ([]string, error) {
	var list models.CoHostList
	endpoint := fmt.Sprintf(API_COHOST_LIST, api.BaseURL, url.PathEscape(meetingID))
	if err := api.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.CoHosts))
	for _, c := range list.CoHosts {
		if id := c.UserID.String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AssignCoHost grants the co-host role.
func (api *API) AssignCoHost(ctx context.Context, req CoHostRequest) error {
	return api.write(ctx, fmt.Sprintf(API_COHOST_ASSIGN, api.BaseURL), req)
}

// RemoveCoHost revokes the co-host role.
func (api *API) RemoveCoHost(ctx context.Context, req CoHostRequest) error {
	return api.write(ctx, fmt.Sprintf(API_COHOST_REMOVE, api.BaseURL), req)
}

// RemoveParticipant removes a participant from the meeting.
func (api *API) RemoveParticipant(ctx context.Context, req RemovalRequest) error {
	return api.write(ctx, fmt.Sprintf(API_REMOVE_PARTICIPANT, api.BaseURL, url.PathEscape(req.MeetingID)), req)
}

// write posts body and checks the success envelope.
func (api *API) write(ctx context.Context, endpoint string, body any) error {
	var env models.Envelope
	if err := api.do(ctx, http.MethodPost, endpoint, body, &env); err != nil {
		return err
	}
	if !env.Success {
		reason := env.Error
		if reason == "" {
			reason = env.Message
		}
		return errors.Wrap(ErrRequestFailed, reason)
	}
	return nil
}
