package api

import "time"

// Action types recorded by the server's edit log.
// Unknown types are carried verbatim and rendered, never dropped.
const (
	ActionFieldEdit        = "field_edit"
	ActionBatchFieldEdit   = "batch_field_edit"
	ActionFileRename       = "file_rename"
	ActionAlbumArtChange   = "album_art_change"
	ActionAlbumArtDelete   = "album_art_delete"
	ActionFieldCreate      = "field_create"
	ActionFieldDelete      = "field_delete"
	ActionBatchFieldDelete = "batch_field_delete"
)

// Statuses reported by mutating endpoints.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// ActionRecord is one entry of the server's edit log.
// History records use snake_case keys on the wire; operation results use
// camelCase. The mix is the server's, preserved here verbatim.
type ActionRecord struct {
	ID          string   `json:"id"`
	Timestamp   float64  `json:"timestamp"` // seconds since epoch, fractional
	Type        string   `json:"action_type"`
	Files       []string `json:"files"`
	Field       string   `json:"field"`
	Description string   `json:"description"`
	IsUndone    bool     `json:"is_undone"`
	FileCount   int      `json:"file_count"`
}

// IsRename reports whether reversing this action moves a file.
func (a *ActionRecord) IsRename() bool {
	return a.Type == ActionFileRename
}

// Time converts the wire timestamp to a time.Time.
func (a *ActionRecord) Time() time.Time {
	sec := int64(a.Timestamp)
	nsec := int64((a.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// FieldChange is one before/after pair inside an action detail.
type FieldChange struct {
	File     string `json:"file"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ActionDetail is the expanded view of a single action. Field-edit actions
// carry per-file changes (capped server-side, remainder in MoreFiles); art
// actions carry the art presence flags; renames carry the old and new names.
type ActionDetail struct {
	ActionRecord
	Changes   []FieldChange `json:"changes,omitempty"`
	MoreFiles int           `json:"more_files,omitempty"`
	HasOldArt bool          `json:"has_old_art,omitempty"`
	HasNewArt bool          `json:"has_new_art,omitempty"`
	OldName   string        `json:"old_name,omitempty"`
	NewName   string        `json:"new_name,omitempty"`
}

// UndoRedoResult is the body of POST /history/{id}/undo and /redo.
// The server returns it on success AND on failure: an "error" status still
// reports definitive post-state, including the refreshed action record.
type UndoRedoResult struct {
	Status       string        `json:"status"`
	FilesUpdated int           `json:"filesUpdated"`
	FilesSkipped int           `json:"filesSkipped,omitempty"`
	Errors       []string      `json:"errors,omitempty"`
	Err          string        `json:"error,omitempty"`
	Message      string        `json:"message,omitempty"`
	NewPath      string        `json:"newPath,omitempty"`
	Action       *ActionRecord `json:"action,omitempty"`
}

// Skipped returns the skipped-file count, deriving it from the error list
// when the server omits the explicit field.
func (r *UndoRedoResult) Skipped() int {
	if r.FilesSkipped > 0 {
		return r.FilesSkipped
	}
	return len(r.Errors)
}

// RenameResult is the body of POST /rename and /rename-folder.
type RenameResult struct {
	Status  string `json:"status"`
	NewPath string `json:"newPath"`
}

// BatchResult is the body of the whole-folder mutation endpoints
// (apply-field-to-folder, apply-art-to-folder, delete-field-from-folder,
// create-field with apply_to_folder).
type BatchResult struct {
	Status       string   `json:"status"`
	FilesUpdated int      `json:"filesUpdated"`
	FilesCreated int      `json:"filesCreated,omitempty"`
	FilesSkipped int      `json:"filesSkipped,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	Err          string   `json:"error,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// FileEntry is one row of GET /files/{folder}.
type FileEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Folder string `json:"folder"`
	Date   int64  `json:"date"` // mtime, Unix seconds
	Size   int64  `json:"size"` // bytes
}

// TreeItem is one row of GET /tree/{subpath}. Only folders appear; files
// come from the /files endpoint.
type TreeItem struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	HasAudio bool    `json:"hasAudio"`
	Created  float64 `json:"created"`
	Size     int64   `json:"size"`
}

// ExtendedField is one discovered non-standard tag on a file.
type ExtendedField struct {
	Value string `json:"value"`
}

// FileMetadata is the body of GET /metadata/{path}. The server flattens the
// standard fields into the top level; extended tags arrive under all_fields.
type FileMetadata struct {
	Filename    string `json:"filename"`
	FilePath    string `json:"file_path"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"albumartist"`
	Date        string `json:"date"`
	Genre       string `json:"genre"`
	Composer    string `json:"composer"`
	Track       string `json:"track"`
	Disc        string `json:"disc"`
	HasArt      bool   `json:"hasArt"`
	Art         string `json:"art"` // base64 image data, empty when absent

	AllFields map[string]ExtendedField `json:"all_fields,omitempty"`
}

// StandardFields is the fixed order the editor shows the built-in tags in.
var StandardFields = []string{
	"title", "artist", "album", "albumartist", "date", "genre", "composer", "track", "disc",
}

// Fields flattens the metadata into a single editable field map: the nine
// standard tags (always present, possibly empty) plus every discovered
// extended tag. The server treats a single space as an empty value on
// formats that cannot store true empties; that normalization is the
// server's concern and values pass through untouched here.
func (m *FileMetadata) Fields() map[string]string {
	fields := map[string]string{
		"title":       m.Title,
		"artist":      m.Artist,
		"album":       m.Album,
		"albumartist": m.AlbumArtist,
		"date":        m.Date,
		"genre":       m.Genre,
		"composer":    m.Composer,
		"track":       m.Track,
		"disc":        m.Disc,
	}
	for name, f := range m.AllFields {
		if _, ok := fields[name]; !ok {
			fields[name] = f.Value
		}
	}
	return fields
}

// ArtInfo is the album-art portion of a metadata load, carried separately
// from the text fields so stores need not retain the full payload.
type ArtInfo struct {
	Present bool
	Data    string // base64 image data
}

// ArtChange stages an album-art mutation for a save. Data and Remove are
// mutually exclusive.
type ArtChange struct {
	Data   string // base64 image data to set
	Remove bool   // drop the existing art
}

// Suggestion is one inferred value for a metadata field.
type Suggestion struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
