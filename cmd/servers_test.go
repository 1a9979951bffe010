package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// serversTestConfig writes a config whose profiles database lives in a temp
// directory.
func serversTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "profiles_db = \"" + filepath.Join(dir, "tagdeck.db") + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestServersAddListRemove(t *testing.T) {
	cfgPath := serversTestConfig(t)

	var stdout, stderr bytes.Buffer
	if code := runServers([]string{"add", "--config", cfgPath, "den", "http://den.local:8338"}, &stdout, &stderr); code != 0 {
		t.Fatalf("add returned %d; stderr: %s", code, stderr.String())
	}

	stdout.Reset()
	if code := runServers([]string{"list", "--config", cfgPath}, &stdout, &stderr); code != 0 {
		t.Fatalf("list returned %d; stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "den") || !strings.Contains(out, "http://den.local:8338") {
		t.Errorf("list output missing the added server: %q", out)
	}
	// First added server becomes the default.
	if !strings.Contains(out, "*") {
		t.Errorf("list output does not mark a default: %q", out)
	}

	stdout.Reset()
	if code := runServers([]string{"rm", "--config", cfgPath, "den"}, &stdout, &stderr); code != 0 {
		t.Fatalf("rm returned %d; stderr: %s", code, stderr.String())
	}

	stdout.Reset()
	if code := runServers([]string{"list", "--config", cfgPath}, &stdout, &stderr); code != 0 {
		t.Fatalf("list returned %d; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "No saved servers") {
		t.Errorf("expected empty list after rm, got %q", stdout.String())
	}
}

func TestServersAddRejectsBadURL(t *testing.T) {
	cfgPath := serversTestConfig(t)

	var stdout, stderr bytes.Buffer
	code := runServers([]string{"add", "--config", cfgPath, "bad", "not-a-url"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("add with bad URL should exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "not a valid http(s) URL") {
		t.Errorf("stderr missing URL validation message: %q", stderr.String())
	}
}

func TestServersAddDuplicate(t *testing.T) {
	cfgPath := serversTestConfig(t)

	var stdout, stderr bytes.Buffer
	if code := runServers([]string{"add", "--config", cfgPath, "den", "http://a:1"}, &stdout, &stderr); code != 0 {
		t.Fatalf("first add returned %d; stderr: %s", code, stderr.String())
	}
	code := runServers([]string{"add", "--config", cfgPath, "den", "http://b:2"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("duplicate add should exit 1, got %d", code)
	}
}

func TestServersDefaultSwitches(t *testing.T) {
	cfgPath := serversTestConfig(t)

	var stdout, stderr bytes.Buffer
	runServers([]string{"add", "--config", cfgPath, "one", "http://one:1"}, &stdout, &stderr)
	runServers([]string{"add", "--config", cfgPath, "two", "http://two:2"}, &stdout, &stderr)

	stdout.Reset()
	if code := runServers([]string{"default", "--config", cfgPath, "two"}, &stdout, &stderr); code != 0 {
		t.Fatalf("default returned %d; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"two"`) {
		t.Errorf("default output missing the new default name: %q", stdout.String())
	}
}

func TestServersDefaultUnknown(t *testing.T) {
	cfgPath := serversTestConfig(t)

	var stdout, stderr bytes.Buffer
	code := runServers([]string{"default", "--config", cfgPath, "ghost"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("default on unknown name should exit 1, got %d", code)
	}
}
