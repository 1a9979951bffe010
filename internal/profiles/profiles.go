package profiles

// profiles.go holds the CRUD operations on the servers table.

import (
	"database/sql"
	"errors"
	"log"
	"time"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// Profile is one known metadata server.
type Profile struct {
	Name      string
	URL       string
	IsDefault bool
	CreatedAt time.Time
	LastUsed  time.Time
}

// Add stores a new server profile. The first profile added becomes the
// default automatically.
func (s *Store) Add(name, serverURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM servers WHERE name = ?", name).Scan(&exists); err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "check profile name", err)
	}
	if exists > 0 {
		return apperr.ProfileDuplicate(name)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM servers").Scan(&total); err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "count profiles", err)
	}

	isDefault := 0
	if total == 0 {
		isDefault = 1
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		"INSERT INTO servers (name, url, is_default, created_at, last_used) VALUES (?, ?, ?, ?, ?)",
		name, serverURL, isDefault, now, now,
	)
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "insert profile", err)
	}

	log.Printf("profiles: added server %q -> %s (default=%v)", name, serverURL, isDefault == 1)
	return nil
}

// Get returns one profile by name.
func (s *Store) Get(name string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT name, url, is_default, created_at, last_used FROM servers WHERE name = ?", name)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ProfileNotFound(name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeProfilesQueryFailed, "get profile", err)
	}
	return p, nil
}

// List returns all profiles in creation order.
func (s *Store) List() ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT name, url, is_default, created_at, last_used FROM servers ORDER BY created_at ASC")
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeProfilesQueryFailed, "list profiles", err)
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeProfilesQueryFailed, "scan profile row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeProfilesQueryFailed, "iterate profile rows", err)
	}
	return out, nil
}

// Remove deletes a profile by name.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM servers WHERE name = ?", name)
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "delete profile", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "check delete result", err)
	}
	if affected == 0 {
		return apperr.ProfileNotFound(name)
	}

	log.Printf("profiles: removed server %q", name)
	return nil
}

// SetDefault marks one profile as the default, clearing the flag everywhere
// else in the same transaction.
func (s *Store) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE servers SET is_default = 1 WHERE name = ?", name)
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "set default", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "check update result", err)
	}
	if affected == 0 {
		return apperr.ProfileNotFound(name)
	}

	if _, err := tx.Exec("UPDATE servers SET is_default = 0 WHERE name != ?", name); err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "clear old default", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "commit default change", err)
	}

	log.Printf("profiles: default server is now %q", name)
	return nil
}

// Default returns the default profile, or nil when no profiles exist.
func (s *Store) Default() (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT name, url, is_default, created_at, last_used FROM servers WHERE is_default = 1 LIMIT 1")
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeProfilesQueryFailed, "get default profile", err)
	}
	return p, nil
}

// TouchLastUsed stamps a profile's last_used time. Missing profiles are
// ignored: the stamp is best-effort bookkeeping.
func (s *Store) TouchLastUsed(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE servers SET last_used = ? WHERE name = ?",
		time.Now().UTC().Format(time.RFC3339Nano), name,
	)
	if err != nil {
		return apperr.Wrap(apperr.CodeProfilesQueryFailed, "touch last_used", err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile reads one servers row.
func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p         Profile
		isDefault int
		createdAt string
		lastUsed  string
	)
	if err := row.Scan(&p.Name, &p.URL, &isDefault, &createdAt, &lastUsed); err != nil {
		return nil, err
	}
	p.IsDefault = isDefault == 1

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t

	t, err = time.Parse(time.RFC3339Nano, lastUsed)
	if err != nil {
		return nil, err
	}
	p.LastUsed = t

	return &p, nil
}
