package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the clock server.
type Config struct {
	// ListenAddress is the HTTP listen address for the clock API.
	ListenAddress string `yaml:"listen_addr"`
	// DatabaseURL is the Postgres connection string for the event store.
	// When empty, the server falls back to the in-memory store.
	DatabaseURL string `yaml:"database_url"`
	// RedisURL is the Redis connection string for identity sessions.
	// When empty, the server uses the static identity from the user section.
	RedisURL string `yaml:"redis_url"`
	// NotifyWebhook is the URL that receives alarm/snooze notifications.
	NotifyWebhook string `yaml:"notify_webhook"`
	// PublishWebhook is the URL that receives wake-up social messages.
	PublishWebhook string `yaml:"publish_webhook"`
	// RingtoneFile is the path to a WAV file played while the alarm rings.
	// When empty, ringing is silent.
	RingtoneFile string `yaml:"ringtone_file"`
	// Timeout is the duration for outbound HTTP calls and store operations.
	Timeout time.Duration `yaml:"timeout"`
	// Alarm holds the wake-up schedule settings.
	Alarm AlarmSettings `yaml:"alarm"`
	// User holds the fallback identity recorded on alarm events.
	User UserSettings `yaml:"user"`
}

// AlarmSettings describes when the alarm fires and how snoozing behaves.
type AlarmSettings struct {
	// Hour of the wake-up time, 0-23.
	Hour int `yaml:"hour"`
	// Minute of the wake-up time, 0-59.
	Minute int `yaml:"minute"`
	// SnoozeMinutes is the delay applied by a snooze, in minutes.
	SnoozeMinutes int `yaml:"snooze_minutes"`
	// Weekdays lists enabled weekday names ("monday", ...).
	// An empty list enables every day.
	Weekdays []string `yaml:"weekdays"`
}

// UserSettings is the identity snapshot used when nobody is logged in.
type UserSettings struct {
	// ID is the social account identifier.
	ID string `yaml:"id"`
	// Name is the display name recorded on alarm events.
	Name string `yaml:"name"`
}

const (
	// DefaultConfigFilename is the default filename for clock settings.
	DefaultConfigFilename = "socialclock-settings.yaml"

	// DefaultListenAddress is used when no listen address is configured.
	DefaultListenAddress = ":8080"

	// DefaultTimeout is the default duration for outbound operations.
	DefaultTimeout = 5 * time.Second

	// DefaultSnoozeMinutes is the snooze delay applied when none is configured.
	DefaultSnoozeMinutes = 10

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// AnonymousUserID is the sentinel identity recorded when no user is configured.
	AnonymousUserID = "anonymous"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errHourOutOfRange is returned when the alarm hour is not within 0-23.
	errHourOutOfRange = errors.New("alarm hour must be within 0-23")
	// errMinuteOutOfRange is returned when the alarm minute is not within 0-59.
	errMinuteOutOfRange = errors.New("alarm minute must be within 0-59")
)

// weekdayNames maps lowercase weekday names to time.Weekday values.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load reads configuration from the provided path, applies environment
// overrides and validates essential fields. A missing file is not an error:
// defaults plus environment variables are enough to run with the in-memory
// store.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults where the zero value is not usable.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Alarm.Hour < 0 || cfg.Alarm.Hour > 23 {
		return errHourOutOfRange
	}

	if cfg.Alarm.Minute < 0 || cfg.Alarm.Minute > 59 {
		return errMinuteOutOfRange
	}

	if cfg.Alarm.SnoozeMinutes <= 0 {
		cfg.Alarm.SnoozeMinutes = DefaultSnoozeMinutes
	}

	for _, name := range cfg.Alarm.Weekdays {
		if _, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; !ok {
			return fmt.Errorf("unknown weekday %q", name)
		}
	}

	for _, webhook := range []string{cfg.NotifyWebhook, cfg.PublishWebhook} {
		if webhook == "" {
			continue
		}

		if _, err := url.ParseRequestURI(webhook); err != nil {
			return fmt.Errorf("invalid webhook URL %q: %w", webhook, err)
		}
	}

	if cfg.User.ID == "" {
		cfg.User.ID = AnonymousUserID
	}

	if cfg.User.Name == "" {
		cfg.User.Name = cfg.User.ID
	}

	return nil
}

// IsWeekdayEnabled reports whether the alarm fires on the provided weekday.
// An empty list enables every day.
func (a *AlarmSettings) IsWeekdayEnabled(day time.Weekday) bool {
	if len(a.Weekdays) == 0 {
		return true
	}

	for _, name := range a.Weekdays {
		if weekdayNames[strings.ToLower(strings.TrimSpace(name))] == day {
			return true
		}
	}

	return false
}

// AlarmTime returns the configured wake-up hour and minute.
func (a *AlarmSettings) AlarmTime() (hour, minute int) {
	return a.Hour, a.Minute
}

// SnoozeDuration returns the snooze delay as a time.Duration.
func (a *AlarmSettings) SnoozeDuration() time.Duration {
	return time.Duration(a.SnoozeMinutes) * time.Minute
}

// applyEnvOverrides replaces settings with environment values when present.
// Variables follow the CLOCK_* convention so deployments can avoid editing
// the YAML file.
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"CLOCK_LISTEN_ADDR":     &cfg.ListenAddress,
		"CLOCK_DATABASE_URL":    &cfg.DatabaseURL,
		"CLOCK_REDIS_URL":       &cfg.RedisURL,
		"CLOCK_NOTIFY_WEBHOOK":  &cfg.NotifyWebhook,
		"CLOCK_PUBLISH_WEBHOOK": &cfg.PublishWebhook,
		"CLOCK_RINGTONE_FILE":   &cfg.RingtoneFile,
	}

	for key, target := range overrides {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}
}
