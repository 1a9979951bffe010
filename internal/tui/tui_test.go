package tui

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestLoadArtFile verifies the staged-art helper encodes file bytes the way
// the server expects, and surfaces read errors.
func TestLoadArtFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatal(err)
	}

	got, err := loadArtFile(path)
	if err != nil {
		t.Fatalf("loadArtFile: %v", err)
	}
	if got != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("loadArtFile = %q, want the base64 of the file bytes", got)
	}

	if _, err := loadArtFile(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("loadArtFile should fail for a missing file")
	}
}

// TestFieldOrder verifies standard tags keep their fixed order and extended
// tags follow alphabetically.
func TestFieldOrder(t *testing.T) {
	got := fieldOrder(map[string]string{
		"mood":   "calm",
		"artist": "A",
		"title":  "T",
		"bpm":    "120",
	})
	want := []string{"title", "artist", "bpm", "mood"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fieldOrder = %v, want %v", got, want)
	}
}

// TestVisibleWindow verifies the cursor stays inside the rendered window at
// the edges and in the middle.
func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		n, cursor, height int
		first, last       int
	}{
		{n: 3, cursor: 0, height: 10, first: 0, last: 2},  // fits entirely
		{n: 20, cursor: 0, height: 5, first: 0, last: 4},  // top edge
		{n: 20, cursor: 19, height: 5, first: 15, last: 19}, // bottom edge
		{n: 20, cursor: 10, height: 5, first: 8, last: 12}, // centered
	}
	for _, tt := range tests {
		win := visibleWindow(tt.n, tt.cursor, tt.height)
		if win[0] != tt.first || win[len(win)-1] != tt.last {
			t.Errorf("visibleWindow(%d,%d,%d) = [%d..%d], want [%d..%d]",
				tt.n, tt.cursor, tt.height, win[0], win[len(win)-1], tt.first, tt.last)
		}
		contains := false
		for _, i := range win {
			if i == tt.cursor {
				contains = true
			}
		}
		if !contains {
			t.Errorf("visibleWindow(%d,%d,%d) does not contain the cursor", tt.n, tt.cursor, tt.height)
		}
	}
}

// TestClamp verifies cursor clamping, including the empty list.
func TestClamp(t *testing.T) {
	tests := []struct{ v, n, want int }{
		{-1, 5, 0},
		{0, 0, 0},
		{5, 5, 4},
		{2, 5, 2},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.n); got != tt.want {
			t.Errorf("clamp(%d, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}
