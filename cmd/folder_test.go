package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFolderApply(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apply-field-to-folder" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "filesUpdated": 5}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "apply", "--config", cfgPath, "Albums/Unsorted", "genre", "Jazz"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d; stderr: %s", code, stderr.String())
	}

	if got["folderPath"] != "Albums/Unsorted" || got["field"] != "genre" || got["value"] != "Jazz" {
		t.Errorf("payload = %v", got)
	}
	if !strings.Contains(stdout.String(), "5 file(s) updated") {
		t.Errorf("stdout = %q, want the updated count", stdout.String())
	}
}

func TestFolderDeleteFieldPartialIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "partial", "filesUpdated": 3, "filesSkipped": 2}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "delete-field", "--config", cfgPath, "Albums", "comment"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("partial completion should exit 0, got %d; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "3 file(s) updated, 2 skipped") {
		t.Errorf("stdout = %q, want both counts", stdout.String())
	}
}

func TestFolderApplyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "error": "folder is read-only"}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "apply", "--config", cfgPath, "Albums", "genre", "Jazz"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("error status should exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "folder is read-only") {
		t.Errorf("stderr = %q, want the server's message", stderr.String())
	}
}

func TestFolderArtEncodesFile(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47}
	imgPath := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(imgPath, raw, 0600); err != nil {
		t.Fatal(err)
	}

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apply-art-to-folder" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "filesUpdated": 2}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "art", "--config", cfgPath, "Albums", imgPath}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d; stderr: %s", code, stderr.String())
	}
	if got["art"] != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("art payload = %q, want the base64 of the image bytes", got["art"])
	}
}

func TestFolderArtMissingFile(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://127.0.0.1:1")
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "art", "--config", cfgPath, "Albums", filepath.Join(t.TempDir(), "missing.png")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("missing image should exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "could not read") {
		t.Errorf("stderr = %q, want a read error", stderr.String())
	}
}

func TestFolderRename(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rename-folder" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "newPath": "Albums/Sorted"}`))
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "rename", "--config", cfgPath, "Albums/Unsorted", "Sorted"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d; stderr: %s", code, stderr.String())
	}
	if got["oldPath"] != "Albums/Unsorted" || got["newName"] != "Sorted" {
		t.Errorf("payload = %v", got)
	}
	if !strings.Contains(stdout.String(), "Albums/Sorted") {
		t.Errorf("stdout = %q, want the new path", stdout.String())
	}
}

func TestFolderMissingArgs(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://127.0.0.1:1")
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "apply", "--config", cfgPath, "Albums", "genre"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("missing value should exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "required") {
		t.Errorf("stderr = %q, want the missing-argument error", stderr.String())
	}
}

func TestFolderUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"tagdeck", "folder", "bogus"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("unknown subcommand should exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Unknown folder subcommand") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
