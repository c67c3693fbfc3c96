package meetsync

import (
	"time"

	"github.com/pkg/errors"
)

const (
	EVENT_BUFFER_SIZE          = 64
	PING_INTERVAL              = 30 * time.Second
	PARTICIPANT_POLL_INTERVAL  = 10 * time.Second
	COHOST_POLL_INTERVAL       = 15 * time.Second
	GRACE_WINDOW               = 30 * time.Second
	SCREEN_SHARE_WAIT          = 60 * time.Second
	RESET_DELAY                = 2 * time.Second
	RECOMPUTE_DEBOUNCE         = 150 * time.Millisecond
	MAX_NOTIFICATIONS          = 50
	BASE_BACKOFF_DUR           = 1 * time.Second
	MAX_BACKOFF_DUR            = 30 * time.Second
	MAX_RETRIES                = 10
	API_TIMEOUT                = 10 * time.Second
	DEFAULT_LOCALE             = "en"
	DEFAULT_VOLUME             = 100
	WEBSOCKET_ORIGIN           = "http://localhost/"
	SEARCH_DISTANCE_THRESHOLD  = 3
	PROVISIONAL_USER_ID_PREFIX = "provisional:"
)

const (
	API_PARTICIPANTS       = "%s/api/meetings/%s/participants"
	API_REMOVE_PARTICIPANT = "%s/api/meetings/%s/participants/remove"
	API_COHOST_LIST        = "%s/api/cohost/list/%s"
	API_COHOST_ASSIGN      = "%s/api/cohost/assign"
	API_COHOST_REMOVE      = "%s/api/cohost/remove"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrRetryEnds        = errors.New("retry ends")
	ErrNotInitialized   = errors.New("session is not initialized")
	ErrNotStarted       = errors.New("session is not started")

	ErrRequestFailed = errors.New("request failed")
	ErrForbidden     = errors.New("forbidden")
	ErrBadResponse   = errors.New("bad response")

	ErrNotPermitted      = errors.New("not permitted")
	ErrUnknownUser       = errors.New("unknown participant")
	ErrTargetIsHost      = errors.New("the host cannot be targeted")
	ErrTargetIsSelf      = errors.New("cannot target yourself")
	ErrUnverifiedIssuer  = errors.New("control message issuer is not privileged")
	ErrInvalidMessage    = errors.New("invalid control message")
	ErrApprovalRequired  = errors.New("screen share requires approval")
	ErrApprovalNotNeeded = errors.New("screen share does not require approval")
	ErrRequestPending    = errors.New("screen share request already pending")
	ErrAlreadyApproved   = errors.New("screen share already approved")
	ErrNoSuchRequest     = errors.New("no such screen share request")

	ErrMissingMeetingID  = errors.New("meeting id is required")
	ErrMissingUserID     = errors.New("user id is required")
	ErrMissingBackendURL = errors.New("backend url is required")
)
