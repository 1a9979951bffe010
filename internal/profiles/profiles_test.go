package profiles

import (
	"path/filepath"
	"testing"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tagdeck.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestAddAndGet verifies a profile round-trips and the first one added
// becomes the default.
func TestAddAndGet(t *testing.T) {
	s := newTestStore(t)

	if err := s.Add("den", "http://den.local:8338"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	p, err := s.Get("den")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.URL != "http://den.local:8338" {
		t.Errorf("URL = %q", p.URL)
	}
	if !p.IsDefault {
		t.Error("first profile should become the default")
	}
	if p.CreatedAt.IsZero() || p.LastUsed.IsZero() {
		t.Error("timestamps should be set")
	}
}

// TestAdd_DuplicateName verifies the duplicate guard.
func TestAdd_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("den", "http://den.local:8338"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := s.Add("den", "http://other:8338")
	if !apperr.IsCode(err, apperr.CodeProfilesDuplicate) {
		t.Errorf("code = %s, want profiles.duplicate", apperr.GetCode(err))
	}
}

// TestSetDefault_Moves verifies exactly one profile is default at a time.
func TestSetDefault_Moves(t *testing.T) {
	s := newTestStore(t)
	s.Add("den", "http://den.local:8338")
	s.Add("attic", "http://attic.local:8338")

	if err := s.SetDefault("attic"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	def, err := s.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if def == nil || def.Name != "attic" {
		t.Errorf("default = %+v, want attic", def)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	defaults := 0
	for _, p := range list {
		if p.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("%d profiles are default, want exactly 1", defaults)
	}
}

// TestSetDefault_Unknown verifies the not-found path.
func TestSetDefault_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.SetDefault("ghost")
	if !apperr.IsCode(err, apperr.CodeProfilesNotFound) {
		t.Errorf("code = %s, want profiles.not_found", apperr.GetCode(err))
	}
}

// TestRemove verifies deletion and the not-found path.
func TestRemove(t *testing.T) {
	s := newTestStore(t)
	s.Add("den", "http://den.local:8338")

	if err := s.Remove("den"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get("den"); !apperr.IsCode(err, apperr.CodeProfilesNotFound) {
		t.Errorf("Get after remove: code = %s", apperr.GetCode(err))
	}
	if err := s.Remove("den"); !apperr.IsCode(err, apperr.CodeProfilesNotFound) {
		t.Errorf("second Remove: code = %s", apperr.GetCode(err))
	}
}

// TestDefault_Empty verifies an empty store has no default, without error.
func TestDefault_Empty(t *testing.T) {
	s := newTestStore(t)
	def, err := s.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if def != nil {
		t.Errorf("default = %+v, want nil", def)
	}
}

// TestOpen_Reopen verifies the schema init is idempotent across opens.
func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagdeck.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s.Add("den", "http://den.local:8338"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	list, err := s2.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "den" {
		t.Errorf("list = %+v, want the persisted profile", list)
	}
}
