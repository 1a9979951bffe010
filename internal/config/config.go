// Package config provides TOML configuration file loading and parsing for tagdeck.
// The configuration file lives at ~/.tagdeck/config.toml by default, but can be
// overridden with the --config flag. CLI flags always take precedence over file values.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// Config represents the tagdeck configuration file structure.
// Field names use Go camelCase internally but map to snake_case in TOML files
// via struct tags.
type Config struct {
	// Server is the base URL of the metadata server, e.g. "http://den.local:8338".
	// If empty, the default profile from the profiles store is used, falling
	// back to DefaultServer.
	Server string `toml:"server"`

	// StartFolder is the folder path opened when the browser starts.
	// If empty, the library root is shown.
	StartFolder string `toml:"start_folder"`

	// RequestTimeoutMs is the per-request deadline for server calls in milliseconds.
	// Default: 15000
	RequestTimeoutMs int `toml:"request_timeout_ms"`

	// RenameSettleMs is the pause between a post-rename folder reload and the
	// follow-up file reload, in milliseconds. The listing needs a moment to
	// reflect the new name before the file can be re-anchored. This is a
	// latency workaround, not a synchronization primitive.
	// Default: 100. Set to 0 to disable the pause. The pointer tells an
	// explicit 0 apart from the field being absent.
	RenameSettleMs *int `toml:"rename_settle_ms"`

	// RetryMax is the number of times idempotent GET requests are retried
	// on transport errors. POST requests are never retried.
	// Default: 2
	RetryMax int `toml:"retry_max"`

	// MdnsService is the mDNS service type browsed by 'tagdeck discover'.
	// Default: _metaremote._tcp
	MdnsService string `toml:"mdns_service"`

	// ProfilesDB is the path to the SQLite database holding known servers.
	// Default: ~/.tagdeck/tagdeck.db
	ProfilesDB string `toml:"profiles_db"`

	// LogFile is the path client logs are written to while the TUI owns the
	// terminal. If empty, logs go to ~/.tagdeck/tagdeck.log during browse and
	// to stderr for one-shot commands.
	LogFile string `toml:"log_file"`
}

// DefaultConfigPath returns the default config file location: ~/.tagdeck/config.toml.
// Returns an error only if the user's home directory cannot be determined.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tagdeck", "config.toml"), nil
}

// DefaultProfilesDBPath returns the default profiles database location:
// ~/.tagdeck/tagdeck.db.
func DefaultProfilesDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tagdeck", "tagdeck.db"), nil
}

// DefaultLogPath returns the default log file location: ~/.tagdeck/tagdeck.log.
func DefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tagdeck", "tagdeck.log"), nil
}

// WriteDefault creates a config file pointing at the given server URL.
// Called on first browse so the next start needs no flags.
//
// Behavior:
//   - If the file already exists, returns without error (does not overwrite).
//   - Creates the parent directory if it doesn't exist.
//   - Returns an error if the file cannot be written.
func WriteDefault(path string, serverURL string) error {
	// Check if file already exists - never overwrite
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, nothing to do
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Build minimal TOML config
	// Using raw string to control formatting exactly
	content := fmt.Sprintf(`# tagdeck configuration
# Created on first run; edit freely.

# Metadata server to connect to
server = %q

# Pause between post-rename folder reload and file reload (milliseconds)
rename_settle_ms = %d
`, serverURL, DefaultRenameSettleMs)

	// Write with restrictive permissions (owner read/write only)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads a TOML config file from the given path and returns a Config.
//
// Behavior:
//   - If path is empty, attempts to load from the default location (~/.tagdeck/config.toml).
//     Returns an empty Config without error if the default file doesn't exist.
//   - If path is specified, returns an error if the file doesn't exist.
//   - Returns an error if the file exists but cannot be parsed.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		// No explicit path: try default location, but don't error if missing.
		// This allows the client to start without any config file.
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			// Can't determine home dir, return empty config
			return cfg, nil
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			// Default config doesn't exist, that's fine
			return cfg, nil
		}
		path = defaultPath
	} else {
		// Explicit path provided: error if file doesn't exist.
		// This matches user expectation: if they specify a config file, it should exist.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	}

	// Parse the TOML file. Any parse error is fatal since the user expects
	// the config to be applied.
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks config values for internal consistency.
// Absent values mean "use default" and are always valid.
func (c *Config) Validate() error {
	if c.Server != "" {
		u, err := url.Parse(c.Server)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperr.ConfigInvalid("server", fmt.Sprintf("%q is not an absolute URL", c.Server))
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return apperr.ConfigInvalid("server", fmt.Sprintf("scheme %q not supported (use http or https)", u.Scheme))
		}
	}
	if c.RequestTimeoutMs < 0 {
		return apperr.ConfigInvalid("request_timeout_ms", fmt.Sprintf("%d (must be >= 0)", c.RequestTimeoutMs))
	}
	if c.RenameSettleMs != nil && *c.RenameSettleMs < 0 {
		return apperr.ConfigInvalid("rename_settle_ms", fmt.Sprintf("%d (must be >= 0)", *c.RenameSettleMs))
	}
	if c.RetryMax < 0 {
		return apperr.ConfigInvalid("retry_max", fmt.Sprintf("%d (must be >= 0)", c.RetryMax))
	}
	return nil
}

// RequestTimeout resolves the per-request deadline, applying the default
// when the field is unset.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMs <= 0 {
		return time.Duration(DefaultRequestTimeoutMs) * time.Millisecond
	}
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// RenameSettleDelay resolves the post-rename settle pause. An absent field
// gets the default; an explicit 0 disables the pause, reported as a negative
// duration so downstream zero-means-default handling cannot re-enable it.
func (c *Config) RenameSettleDelay() time.Duration {
	if c.RenameSettleMs == nil {
		return time.Duration(DefaultRenameSettleMs) * time.Millisecond
	}
	if *c.RenameSettleMs <= 0 {
		return -1
	}
	return time.Duration(*c.RenameSettleMs) * time.Millisecond
}

// Retries resolves the GET retry count, applying the default when unset.
func (c *Config) Retries() int {
	if c.RetryMax <= 0 {
		return DefaultRetryMax
	}
	return c.RetryMax
}

// ServiceName resolves the mDNS service type, applying the default when unset.
func (c *Config) ServiceName() string {
	if c.MdnsService == "" {
		return DefaultMdnsService
	}
	return c.MdnsService
}
