package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the daemon and the client.
type Config struct {
	// ServerAddress is the gRPC address the daemon listens on and the client dials.
	ServerAddress string `yaml:"server_addr" env:"LEET_ALARM_SERVER_ADDR"`
	// Storage selects the blob backend: "file" or "sqlite".
	Storage string `yaml:"storage" env:"LEET_ALARM_STORAGE"`
	// StateDir is the directory holding file blobs.
	StateDir string `yaml:"state_dir" env:"LEET_ALARM_STATE_DIR"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `yaml:"sqlite_path" env:"LEET_ALARM_SQLITE_PATH"`
	// Timeout bounds every client RPC.
	Timeout time.Duration `yaml:"timeout" env:"LEET_ALARM_TIMEOUT"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr" env:"LEET_ALARM_METRICS_ADDR"`
	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level" env:"LEET_ALARM_LOG_LEVEL"`
	// Timezone is an IANA zone name used for alarm wall-clock times. Empty means local time.
	Timezone string `yaml:"timezone" env:"LEET_ALARM_TIMEZONE"`
	// Notifications selects the alert facility: "desktop" or "off".
	Notifications string `yaml:"notifications" env:"LEET_ALARM_NOTIFICATIONS"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "leet-alarm-settings.yaml"

	// DefaultServerAddress is the loopback address used when none is configured.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultStateDir is the directory used for file blobs.
	DefaultStateDir = "leet-alarm-state"

	// DefaultSQLiteFilename is the database file used by the sqlite backend.
	DefaultSQLiteFilename = "leet-alarm.db"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is the permission for the state directory.
	DefaultDirPermissions = 0o700
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Notification modes.
const (
	NotificationsDesktop = "desktop"
	NotificationsOff     = "off"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStorage is returned for an unsupported storage backend.
	errUnknownStorage = errors.New("unknown storage backend")
	// errUnknownNotifications is returned for an unsupported notification mode.
	errUnknownNotifications = errors.New("unknown notifications mode")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies LEET_ALARM_* environment
// overrides and validates the result. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err = cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err = Validate(&cfg); err != nil {
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

// Validate checks the provided settings and fills defaults for empty fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	switch settings.Storage {
	case "":
		settings.Storage = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownStorage, settings.Storage)
	}

	if settings.StateDir == "" {
		settings.StateDir = DefaultStateDir
	}

	if settings.SQLitePath == "" {
		settings.SQLitePath = filepath.Join(settings.StateDir, DefaultSQLiteFilename)
	}

	switch settings.Notifications {
	case "":
		settings.Notifications = NotificationsDesktop
	case NotificationsDesktop, NotificationsOff:
	default:
		return fmt.Errorf("%w: %q", errUnknownNotifications, settings.Notifications)
	}

	if _, err := settings.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return loc, nil
}
