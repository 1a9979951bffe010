package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func intp(v int) *int { return &v }

// TestLoad_AllFields verifies that all config fields are parsed correctly from TOML.
func TestLoad_AllFields(t *testing.T) {
	// Create a temporary config file with all fields set
	content := `
server = "http://den.local:8338"
start_folder = "Albums/Unsorted"
request_timeout_ms = 30000
rename_settle_ms = 250
retry_max = 4
mdns_service = "_mymeta._tcp"
profiles_db = "/data/tagdeck.db"
log_file = "/var/log/tagdeck.log"
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Verify all fields
	if cfg.Server != "http://den.local:8338" {
		t.Errorf("Server = %q, want %q", cfg.Server, "http://den.local:8338")
	}
	if cfg.StartFolder != "Albums/Unsorted" {
		t.Errorf("StartFolder = %q, want %q", cfg.StartFolder, "Albums/Unsorted")
	}
	if cfg.RequestTimeoutMs != 30000 {
		t.Errorf("RequestTimeoutMs = %d, want %d", cfg.RequestTimeoutMs, 30000)
	}
	if cfg.RenameSettleMs == nil || *cfg.RenameSettleMs != 250 {
		t.Errorf("RenameSettleMs = %v, want 250", cfg.RenameSettleMs)
	}
	if cfg.RetryMax != 4 {
		t.Errorf("RetryMax = %d, want %d", cfg.RetryMax, 4)
	}
	if cfg.MdnsService != "_mymeta._tcp" {
		t.Errorf("MdnsService = %q, want %q", cfg.MdnsService, "_mymeta._tcp")
	}
	if cfg.ProfilesDB != "/data/tagdeck.db" {
		t.Errorf("ProfilesDB = %q, want %q", cfg.ProfilesDB, "/data/tagdeck.db")
	}
	if cfg.LogFile != "/var/log/tagdeck.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/var/log/tagdeck.log")
	}
}

// TestLoad_PartialConfig verifies that a config with only some fields set
// leaves other fields at their zero values.
func TestLoad_PartialConfig(t *testing.T) {
	content := `
server = "http://127.0.0.1:9090"
rename_settle_ms = 50
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Specified fields should be set
	if cfg.Server != "http://127.0.0.1:9090" {
		t.Errorf("Server = %q, want %q", cfg.Server, "http://127.0.0.1:9090")
	}
	if cfg.RenameSettleMs == nil || *cfg.RenameSettleMs != 50 {
		t.Errorf("RenameSettleMs = %v, want 50", cfg.RenameSettleMs)
	}

	// Unspecified fields should be zero values
	if cfg.StartFolder != "" {
		t.Errorf("StartFolder = %q, want empty", cfg.StartFolder)
	}
	if cfg.RequestTimeoutMs != 0 {
		t.Errorf("RequestTimeoutMs = %d, want 0", cfg.RequestTimeoutMs)
	}
	if cfg.RetryMax != 0 {
		t.Errorf("RetryMax = %d, want 0", cfg.RetryMax)
	}
	if cfg.MdnsService != "" {
		t.Errorf("MdnsService = %q, want empty", cfg.MdnsService)
	}
	if cfg.ProfilesDB != "" {
		t.Errorf("ProfilesDB = %q, want empty", cfg.ProfilesDB)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", cfg.LogFile)
	}
}

// TestLoad_ExplicitPath_NotFound verifies that an error is returned when
// an explicit config path is provided but the file doesn't exist.
func TestLoad_ExplicitPath_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

// TestLoad_EmptyPath_NoDefaultFile verifies that an empty path returns
// an empty Config without error when no default file exists.
func TestLoad_EmptyPath_NoDefaultFile(t *testing.T) {
	// Set HOME to a temp dir without config.toml
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	// Should return empty config
	if cfg.Server != "" {
		t.Errorf("Server = %q, want empty", cfg.Server)
	}
	if cfg.RenameSettleMs != nil {
		t.Errorf("RenameSettleMs = %v, want absent", cfg.RenameSettleMs)
	}
}

// TestLoad_EmptyPath_DefaultFileExists verifies that an empty path loads
// from the default location when the file exists.
func TestLoad_EmptyPath_DefaultFileExists(t *testing.T) {
	// Set HOME to a temp dir and create config.toml there
	tmpHome := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", tmpHome)

	// Create .tagdeck directory and config.toml
	configDir := filepath.Join(tmpHome, ".tagdeck")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	content := `server = "http://localhost:7777"`
	configPath := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Server != "http://localhost:7777" {
		t.Errorf("Server = %q, want %q", cfg.Server, "http://localhost:7777")
	}
}

// TestLoad_InvalidTOML verifies that a parse error is returned for invalid TOML.
func TestLoad_InvalidTOML(t *testing.T) {
	content := `
server = "missing quote
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	_, err := Load(tmpFile)
	if err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

// TestDefaultConfigPath verifies the default config path format.
func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error: %v", err)
	}

	// Should end with .tagdeck/config.toml
	if filepath.Base(path) != "config.toml" {
		t.Errorf("DefaultConfigPath() = %q, want filename config.toml", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".tagdeck" {
		t.Errorf("DefaultConfigPath() = %q, want parent dir .tagdeck", path)
	}
}

// TestDefaultProfilesDBPath verifies the default database path format.
func TestDefaultProfilesDBPath(t *testing.T) {
	path, err := DefaultProfilesDBPath()
	if err != nil {
		t.Fatalf("DefaultProfilesDBPath() error: %v", err)
	}

	if filepath.Base(path) != "tagdeck.db" {
		t.Errorf("DefaultProfilesDBPath() = %q, want filename tagdeck.db", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".tagdeck" {
		t.Errorf("DefaultProfilesDBPath() = %q, want parent dir .tagdeck", path)
	}
}

// TestWriteDefault_CreatesFile verifies that WriteDefault creates a config file
// pointing at the given server.
func TestWriteDefault_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".tagdeck", "config.toml")

	err := WriteDefault(configPath, "http://den.local:8338")
	if err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	// Verify file permissions (0600)
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("File permissions = %o, want 0600", info.Mode().Perm())
	}

	// Load the config and verify defaults
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server != "http://den.local:8338" {
		t.Errorf("Server = %q, want %q", cfg.Server, "http://den.local:8338")
	}
	if cfg.RenameSettleMs == nil || *cfg.RenameSettleMs != DefaultRenameSettleMs {
		t.Errorf("RenameSettleMs = %v, want %d", cfg.RenameSettleMs, DefaultRenameSettleMs)
	}
}

// TestWriteDefault_NoOverwrite verifies that WriteDefault does not overwrite
// an existing config file.
func TestWriteDefault_NoOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	// Create an existing config with different values
	existingContent := `server = "http://127.0.0.1:9999"
rename_settle_ms = 75
`
	if err := os.WriteFile(configPath, []byte(existingContent), 0600); err != nil {
		t.Fatalf("Failed to write existing config: %v", err)
	}

	// Call WriteDefault - should not overwrite
	err := WriteDefault(configPath, "http://new.local:8338")
	if err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	// Verify original content is preserved
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server != "http://127.0.0.1:9999" {
		t.Errorf("Server = %q, want %q (original should be preserved)", cfg.Server, "http://127.0.0.1:9999")
	}
	if cfg.RenameSettleMs == nil || *cfg.RenameSettleMs != 75 {
		t.Errorf("RenameSettleMs = %v, want 75 (original should be preserved)", cfg.RenameSettleMs)
	}
}

// TestWriteDefault_CreatesDirectory verifies that WriteDefault creates the
// parent directory if it doesn't exist.
func TestWriteDefault_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	// Use nested directory that doesn't exist
	configPath := filepath.Join(tmpDir, "nested", "deep", "config.toml")

	err := WriteDefault(configPath, "http://den.local:8338")
	if err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	// Verify directory permissions (0700)
	dirInfo, err := os.Stat(filepath.Dir(configPath))
	if err != nil {
		t.Fatalf("Stat(dir) error: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("Dir permissions = %o, want 0700", dirInfo.Mode().Perm())
	}
}

// TestValidate uses table-driven tests to verify config validation for
// boundary and adversarial cases.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		// Valid cases
		{"empty config", Config{}, false},
		{"http server", Config{Server: "http://den.local:8338"}, false},
		{"https server", Config{Server: "https://music.example.com"}, false},
		{"absent timings mean unset", Config{RequestTimeoutMs: 0, RenameSettleMs: nil}, false},
		{"zero settle disables the pause", Config{RenameSettleMs: intp(0)}, false},
		{"explicit timings", Config{RequestTimeoutMs: 30000, RenameSettleMs: intp(250), RetryMax: 3}, false},

		// Adversarial cases
		{"server missing scheme", Config{Server: "den.local:8338"}, true},
		{"server bad scheme", Config{Server: "ftp://den.local"}, true},
		{"server not a url", Config{Server: "::::"}, true},
		{"negative timeout", Config{RequestTimeoutMs: -1}, true},
		{"negative settle", Config{RenameSettleMs: intp(-100)}, true},
		{"negative retries", Config{RetryMax: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidate_ErrorMessage verifies that validation errors include helpful details.
func TestValidate_ErrorMessage(t *testing.T) {
	cfg := &Config{RenameSettleMs: intp(-5)}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}

	// Error should mention the field name and the invalid value
	errMsg := err.Error()
	if !strings.Contains(errMsg, "rename_settle_ms") {
		t.Errorf("Error message should mention field name, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "-5") {
		t.Errorf("Error message should mention invalid value, got: %s", errMsg)
	}
}

// TestResolvers verifies the default-applying accessor methods.
func TestResolvers(t *testing.T) {
	empty := &Config{}
	if got := empty.RequestTimeout(); got != time.Duration(DefaultRequestTimeoutMs)*time.Millisecond {
		t.Errorf("RequestTimeout() = %v, want default", got)
	}
	if got := empty.RenameSettleDelay(); got != time.Duration(DefaultRenameSettleMs)*time.Millisecond {
		t.Errorf("RenameSettleDelay() = %v, want default", got)
	}
	if got := empty.Retries(); got != DefaultRetryMax {
		t.Errorf("Retries() = %d, want %d", got, DefaultRetryMax)
	}
	if got := empty.ServiceName(); got != DefaultMdnsService {
		t.Errorf("ServiceName() = %q, want %q", got, DefaultMdnsService)
	}

	set := &Config{RequestTimeoutMs: 5000, RenameSettleMs: intp(10), RetryMax: 1, MdnsService: "_x._tcp"}
	if got := set.RequestTimeout(); got != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want 5s", got)
	}
	if got := set.RenameSettleDelay(); got != 10*time.Millisecond {
		t.Errorf("RenameSettleDelay() = %v, want 10ms", got)
	}
	if got := set.Retries(); got != 1 {
		t.Errorf("Retries() = %d, want 1", got)
	}
	if got := set.ServiceName(); got != "_x._tcp" {
		t.Errorf("ServiceName() = %q, want %q", got, "_x._tcp")
	}
}

// TestRenameSettleDelay_ZeroDisables verifies the documented contract of
// rename_settle_ms: absent applies the 100ms default, an explicit 0 disables
// the pause and validates cleanly, and negatives are rejected.
func TestRenameSettleDelay_ZeroDisables(t *testing.T) {
	content := `rename_settle_ms = 0`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() rejected an explicit 0: %v", err)
	}
	if got := cfg.RenameSettleDelay(); got >= 0 {
		t.Errorf("RenameSettleDelay() = %v, want negative (pause disabled)", got)
	}

	absent := &Config{}
	if got := absent.RenameSettleDelay(); got != time.Duration(DefaultRenameSettleMs)*time.Millisecond {
		t.Errorf("absent RenameSettleDelay() = %v, want the default", got)
	}

	negative := &Config{RenameSettleMs: intp(-1)}
	if err := negative.Validate(); err == nil {
		t.Error("Validate() accepted a negative rename_settle_ms")
	}
}
