// Package session owns the state of one editing session: the current folder
// and file, the server-confirmed field values, the staged album art, and the
// monotonic tickets that keep overlapping loads ordered.
//
// The store is the single writer of this state. Views read immutable
// snapshots and re-project; nothing else mutates. Every asynchronous load is
// bracketed by a ticket from one of the store's guards, and a payload is
// applied only while its ticket is still the newest. A superseded payload,
// error or success, is a silent no-op, so the last issued request always
// wins regardless of network completion order.
package session

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tagdeck/tagdeck/internal/api"
)

// Guard issues monotonically increasing tickets for one family of
// asynchronous loads. Begin stamps a new request; Current answers whether a
// completing request is still the newest one; Invalidate retires all
// outstanding tickets without issuing a new load.
type Guard struct {
	seq atomic.Int64
}

// Begin issues the next ticket, retiring all earlier ones.
func (g *Guard) Begin() int64 {
	return g.seq.Add(1)
}

// Current reports whether ticket is still the newest issued.
func (g *Guard) Current(ticket int64) bool {
	return g.seq.Load() == ticket
}

// Invalidate retires every outstanding ticket. Used when session identity
// changes by non-load means, such as adopting a renamed path.
func (g *Guard) Invalidate() {
	g.seq.Add(1)
}

// Store holds the session state behind a mutex. All mutation goes through
// its methods; reads go through Snapshot.
type Store struct {
	mu sync.Mutex

	fileLoads Guard // metadata loads for the current file
	listLoads Guard // listing loads for the current folder

	currentFile   string // server-relative path, "" when none
	currentFolder string // server-relative path, "" is the library root

	// originalFields holds the last server-confirmed value per field. There
	// is no dirty flag anywhere: a field is dirty exactly when an editor's
	// value differs from its entry here.
	originalFields map[string]string

	files []api.FileEntry // listing of the current folder

	art        api.ArtInfo // server-confirmed art of the current file
	pendingArt string      // staged art, base64, not yet saved
	artRemoved bool        // staged art removal, not yet saved

	fileLoading bool // a metadata load is in flight
	listLoading bool // a listing load is in flight

	// appliedVersion increments once per accepted metadata apply. Views
	// repopulate editors from OriginalFields only when it moves, which is
	// what keeps superseded loads from ever touching a control.
	appliedVersion int64
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	CurrentFile    string
	CurrentFolder  string
	OriginalFields map[string]string
	Files          []api.FileEntry
	Art            api.ArtInfo
	PendingArt     string
	ArtRemoved     bool
	FileLoading    bool
	ListLoading    bool
	AppliedVersion int64
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{originalFields: make(map[string]string)}
}

// SelectFolder flips the current folder synchronously and issues a listing
// ticket for it. The file selection and its state are cleared: the new
// folder starts blank until its listing arrives.
func (s *Store) SelectFolder(folder string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentFolder = folder
	s.currentFile = ""
	s.originalFields = make(map[string]string)
	s.files = nil
	s.art = api.ArtInfo{}
	s.pendingArt = ""
	s.artRemoved = false
	s.fileLoading = false
	s.listLoading = true

	s.fileLoads.Invalidate()
	return s.listLoads.Begin()
}

// ApplyFolderListing installs a listing if its ticket is still current.
// Returns false for superseded payloads, which must change nothing.
func (s *Store) ApplyFolderListing(ticket int64, files []api.FileEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listLoads.Current(ticket) {
		return false
	}
	s.files = append([]api.FileEntry(nil), files...)
	s.listLoading = false
	return true
}

// SelectFile flips the current file synchronously, before any fetch, and
// issues a metadata ticket for it. Staged art is dropped at once; the
// previous file's originals stay in place until an accepted load replaces
// them wholesale, so the editor never flashes empty and no field reads as
// dirty while the load is in flight.
func (s *Store) SelectFile(path string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentFile = path
	s.art = api.ArtInfo{}
	s.pendingArt = ""
	s.artRemoved = false
	s.fileLoading = true

	return s.fileLoads.Begin()
}

// BeginFileLoad issues a metadata ticket for re-loading the current file
// without an identity flip, returning the ticket and the path it is bound
// to in one step. Existing originals stay visible until the fresh payload
// lands.
func (s *Store) BeginFileLoad() (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentFile == "" {
		return 0, ""
	}
	s.fileLoading = true
	return s.fileLoads.Begin(), s.currentFile
}

// BeginListingLoad issues a listing ticket for re-loading the current
// folder, returning the ticket and the folder it is bound to in one step.
// Existing rows stay visible until the fresh payload lands.
func (s *Store) BeginListingLoad() (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listLoading = true
	return s.listLoads.Begin(), s.currentFolder
}

// ApplyLoadedMetadata replaces the originals wholesale if the ticket is
// still current. The replacement is atomic: fields and art land together or
// not at all. Returns false for superseded payloads.
func (s *Store) ApplyLoadedMetadata(ticket int64, fields map[string]string, art api.ArtInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fileLoads.Current(ticket) {
		return false
	}

	next := make(map[string]string, len(fields))
	for k, v := range fields {
		next[k] = v
	}
	s.originalFields = next
	s.art = art
	s.fileLoading = false
	s.appliedVersion++
	return true
}

// AbandonLoad marks a failed metadata load as finished if its ticket is
// still current. State is otherwise untouched; a superseded failure is
// ignored entirely so it cannot clear a newer load's spinner.
func (s *Store) AbandonLoad(ticket int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fileLoads.Current(ticket) {
		return false
	}
	s.fileLoading = false
	return true
}

// AbandonListing is AbandonLoad for listing tickets.
func (s *Store) AbandonListing(ticket int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listLoads.Current(ticket) {
		return false
	}
	s.listLoading = false
	return true
}

// RecordSaved advances the originals for exactly the saved fields. Fields
// not in the map keep their current confirmed value, so editors holding
// other unsaved edits stay dirty.
func (s *Store) RecordSaved(saved map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range saved {
		s.originalFields[k] = v
	}
}

// RecordArtSaved installs the new confirmed art and clears the staged change.
func (s *Store) RecordArtSaved(art api.ArtInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.art = art
	s.pendingArt = ""
	s.artRemoved = false
}

// StagePendingArt stages replacement art for the next save.
func (s *Store) StagePendingArt(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingArt = data
	s.artRemoved = false
}

// StageArtRemoval stages removal of the current art for the next save.
func (s *Store) StageArtRemoval() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingArt = ""
	s.artRemoved = true
}

// ClearStagedArt cancels any staged art change.
func (s *Store) ClearStagedArt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingArt = ""
	s.artRemoved = false
}

// AdoptRenamedFile moves the current file identity to its new path after a
// rename. Outstanding metadata tickets are retired: they were issued for
// the old path and must not land on the new one.
func (s *Store) AdoptRenamedFile(newPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentFile == "" {
		return
	}
	s.currentFile = newPath
	s.fileLoads.Invalidate()
}

// AdoptRenamedFolder moves the current folder identity to its new path after
// a folder rename, carrying the current file along under the new prefix.
// Both guards are invalidated: outstanding listing and metadata tickets were
// issued for paths that no longer exist.
func (s *Store) AdoptRenamedFolder(newPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldPath := s.currentFolder
	s.currentFolder = newPath
	if s.currentFile != "" && oldPath != "" && strings.HasPrefix(s.currentFile, oldPath+"/") {
		s.currentFile = newPath + s.currentFile[len(oldPath):]
	}
	s.listLoads.Invalidate()
	s.fileLoads.Invalidate()
}

// ChangedFields returns the subset of candidate values that differ from the
// confirmed originals. A field with no original compares against "".
func (s *Store) ChangedFields(candidate map[string]string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := make(map[string]string)
	for k, v := range candidate {
		if s.originalFields[k] != v {
			changed[k] = v
		}
	}
	return changed
}

// CurrentFile returns the current file path, "" when none.
func (s *Store) CurrentFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile
}

// CurrentFolder returns the current folder path, "" for the root.
func (s *Store) CurrentFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFolder
}

// IsCurrentLoad reports whether a metadata ticket is still the newest.
func (s *Store) IsCurrentLoad(ticket int64) bool {
	return s.fileLoads.Current(ticket)
}

// IsCurrentListing reports whether a listing ticket is still the newest.
func (s *Store) IsCurrentListing(ticket int64) bool {
	return s.listLoads.Current(ticket)
}

// Snapshot returns an immutable copy of the state for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make(map[string]string, len(s.originalFields))
	for k, v := range s.originalFields {
		fields[k] = v
	}

	return Snapshot{
		CurrentFile:    s.currentFile,
		CurrentFolder:  s.currentFolder,
		OriginalFields: fields,
		Files:          append([]api.FileEntry(nil), s.files...),
		Art:            s.art,
		PendingArt:     s.pendingArt,
		ArtRemoved:     s.artRemoved,
		FileLoading:    s.fileLoading,
		ListLoading:    s.listLoading,
		AppliedVersion: s.appliedVersion,
	}
}
