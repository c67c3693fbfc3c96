package meetsync

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config represents a session configuration object.
type Config struct {
	MeetingID   string `json:"meeting_id" env:"MEETING_ID"`     // Meeting to reconcile.
	UserID      string `json:"user_id" env:"USER_ID"`           // Backend id of the local user.
	DisplayName string `json:"display_name" env:"DISPLAY_NAME"` // Name of the local user.
	BackendURL  string `json:"backend_url" env:"BACKEND_URL"`   // Base URL of the REST backend.
	ControlURL  string `json:"control_url" env:"CONTROL_URL"`   // Websocket URL of the control channel relay.
	Locale      string `json:"locale" env:"LOCALE"`             // Locale used to sort display names.

	ParticipantPollInterval time.Duration `json:"participant_poll_interval" env:"PARTICIPANT_POLL_INTERVAL"` // Backend roster poll interval.
	CoHostPollInterval      time.Duration `json:"cohost_poll_interval" env:"COHOST_POLL_INTERVAL"`           // Co-host registry poll interval.
	GraceWindow             time.Duration `json:"grace_window" env:"GRACE_WINDOW"`                           // How long an absent participant lingers.
	ScreenShareWait         time.Duration `json:"screen_share_wait" env:"SCREEN_SHARE_WAIT"`                 // How long a screen share request waits for a decision.
	ResetDelay              time.Duration `json:"reset_delay" env:"RESET_DELAY"`                             // Grace delay before a forced teardown.

	ScreenShareRequiresApproval bool `json:"screen_share_requires_approval" env:"SCREEN_SHARE_REQUIRES_APPROVAL"` // Participants must ask before sharing.
	Debug                       bool `json:"debug" env:"DEBUG"`                                                   // Debug logging.
}

// Validate checks the mandatory fields of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MeetingID) == "" {
		return ErrMissingMeetingID
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	return nil
}

// LoadConfig loads the configuration from the specified JSON file.
//
// Args:
//   - filename: The name of the configuration file.
//
// Returns:
//   - *Config: A pointer to the Config struct.
//   - error: An error if the loading fails.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config data")
	}

	return &config, nil
}

// LoadConfigEnv loads the configuration from MEETSYNC_* environment variables.
//
// Durations use the Go duration syntax, e.g. MEETSYNC_GRACE_WINDOW=45s.
//
// Returns:
//   - *Config: A pointer to the Config struct.
//   - error: An error if a variable cannot be parsed.
func LoadConfigEnv() (*Config, error) {
	var config Config
	if err := env.ParseWithOptions(&config, env.Options{Prefix: "MEETSYNC_"}); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified JSON file.
//
// Args:
//   - filename: The name of the configuration file.
//   - config: The Config struct to save.
//
// Returns:
//   - error: An error if the saving fails.
func SaveConfig(filename string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config data")
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}
