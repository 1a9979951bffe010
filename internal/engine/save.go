package engine

// save.go holds the single-file and whole-folder mutation operations. Each
// follows the same shape: call the server, advance the confirmed state on
// success, refresh the history mirror, end with one status line.

import (
	"context"
	"fmt"
	"log"

	"github.com/tagdeck/tagdeck/internal/api"
	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// SaveFile writes every edited field of the current file, plus any staged art
// change, in one request. edited is the full editor state; only the fields
// that differ from the confirmed originals are sent, so a save cannot stomp a
// field some other control saved moments ago.
func (e *Engine) SaveFile(ctx context.Context, edited map[string]string) {
	path := e.session.CurrentFile()
	if path == "" {
		e.hooks.ShowStatus(LevelError, "No file is selected")
		return
	}

	changed := e.session.ChangedFields(edited)
	art := e.stagedArtChange()
	if len(changed) == 0 && art == nil {
		e.hooks.ShowStatus(LevelInfo, "Nothing to save")
		return
	}

	if err := e.api.SaveMetadata(ctx, path, changed, art); err != nil {
		log.Printf("engine: save of %q failed: %v", path, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not save: %s", apperr.GetMessage(err)))
		return
	}

	e.session.RecordSaved(changed)
	if art != nil {
		if art.Remove {
			e.session.RecordArtSaved(api.ArtInfo{})
		} else {
			e.session.RecordArtSaved(api.ArtInfo{Present: true, Data: art.Data})
		}
	}
	e.RefreshHistory(ctx)

	log.Printf("engine: saved %d field(s) of %q", len(changed), path)
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Saved %d field(s)", len(changed)))
}

// SaveField writes exactly one field of the current file, leaving every other
// pending edit untouched. This is the per-field apply control.
func (e *Engine) SaveField(ctx context.Context, field, value string) {
	path := e.session.CurrentFile()
	if path == "" {
		e.hooks.ShowStatus(LevelError, "No file is selected")
		return
	}

	changed := e.session.ChangedFields(map[string]string{field: value})
	if len(changed) == 0 {
		e.hooks.ShowStatus(LevelInfo, fmt.Sprintf("%s is unchanged", field))
		return
	}

	if err := e.api.SaveMetadata(ctx, path, changed, nil); err != nil {
		log.Printf("engine: save of %q field %q failed: %v", path, field, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not save %s: %s", field, apperr.GetMessage(err)))
		return
	}

	e.session.RecordSaved(changed)
	e.RefreshHistory(ctx)
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Saved %s", field))
}

// stagedArtChange converts the session's staged art state into the save
// payload, nil when nothing is staged.
func (e *Engine) stagedArtChange() *api.ArtChange {
	snap := e.session.Snapshot()
	if snap.ArtRemoved {
		return &api.ArtChange{Remove: true}
	}
	if snap.PendingArt != "" {
		return &api.ArtChange{Data: snap.PendingArt}
	}
	return nil
}

// RenameFile gives the current file a new name. On success the session
// identity follows the server's new path immediately, the folder listing is
// reloaded, and after the settle pause the file is re-opened under its new
// name.
func (e *Engine) RenameFile(ctx context.Context, newName string) {
	oldPath := e.session.CurrentFile()
	if oldPath == "" {
		e.hooks.ShowStatus(LevelError, "No file is selected")
		return
	}
	folder := e.session.CurrentFolder()

	res, err := e.api.Rename(ctx, oldPath, newName)
	if err != nil {
		log.Printf("engine: rename of %q failed: %v", oldPath, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not rename: %s", apperr.GetMessage(err)))
		return
	}

	e.session.AdoptRenamedFile(res.NewPath)
	e.hooks.FileRenamed(oldPath, res.NewPath)
	e.hooks.ReloadFolder(folder)
	e.RefreshHistory(ctx)
	e.sleepSettle(ctx)
	e.hooks.ReloadFile(res.NewPath)

	log.Printf("engine: renamed %q -> %q", oldPath, res.NewPath)
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Renamed to %s", newName))
}

// RenameFolder gives the current folder a new name. Session identity follows
// the server's new path, the current file included, then the listing and the
// file are reloaded under the renamed prefix.
func (e *Engine) RenameFolder(ctx context.Context, newName string) {
	oldPath := e.session.CurrentFolder()
	if oldPath == "" {
		e.hooks.ShowStatus(LevelError, "The library root cannot be renamed")
		return
	}

	res, err := e.api.RenameFolder(ctx, oldPath, newName)
	if err != nil {
		log.Printf("engine: rename of folder %q failed: %v", oldPath, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not rename folder: %s", apperr.GetMessage(err)))
		return
	}

	e.session.AdoptRenamedFolder(res.NewPath)
	e.hooks.ReloadFolder(res.NewPath)
	e.RefreshHistory(ctx)
	if file := e.session.CurrentFile(); file != "" {
		e.sleepSettle(ctx)
		e.hooks.ReloadFile(file)
	}

	log.Printf("engine: renamed folder %q -> %q", oldPath, res.NewPath)
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Renamed folder to %s", newName))
}

// CreateField writes a new custom tag to the current file, or to every file
// in its folder when applyToFolder is set.
func (e *Engine) CreateField(ctx context.Context, name, value string, applyToFolder bool) {
	path := e.session.CurrentFile()
	if path == "" {
		e.hooks.ShowStatus(LevelError, "No file is selected")
		return
	}

	res, err := e.api.CreateField(ctx, path, name, value, applyToFolder)
	if err != nil {
		log.Printf("engine: create field %q on %q failed: %v", name, path, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not create %s: %s", name, apperr.GetMessage(err)))
		return
	}

	e.RefreshHistory(ctx)
	e.ReloadFile(ctx)
	if applyToFolder {
		e.hooks.ShowStatus(levelForBatch(res), batchStatusLine(fmt.Sprintf("Created %s", name), res))
		return
	}
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Created %s", name))
}

// DeleteField removes one tag from the current file.
func (e *Engine) DeleteField(ctx context.Context, field string) {
	path := e.session.CurrentFile()
	if path == "" {
		e.hooks.ShowStatus(LevelError, "No file is selected")
		return
	}

	if err := e.api.DeleteField(ctx, path, field); err != nil {
		log.Printf("engine: delete field %q on %q failed: %v", field, path, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not delete %s: %s", field, apperr.GetMessage(err)))
		return
	}

	e.RefreshHistory(ctx)
	e.ReloadFile(ctx)
	e.hooks.ShowStatus(LevelSuccess, fmt.Sprintf("Deleted %s", field))
}

// ApplyFieldToFolder writes one field value to every audio file directly in
// the current folder. The current file, if any, is reloaded afterwards since
// it may be one of the targets.
func (e *Engine) ApplyFieldToFolder(ctx context.Context, field, value string) {
	folder := e.session.CurrentFolder()

	res, err := e.api.ApplyFieldToFolder(ctx, folder, field, value)
	if err != nil {
		log.Printf("engine: apply %q to folder %q failed: %v", field, folder, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not apply %s to folder: %s", field, apperr.GetMessage(err)))
		return
	}

	e.RefreshHistory(ctx)
	e.ReloadFile(ctx)
	e.hooks.ShowStatus(levelForBatch(res), batchStatusLine(fmt.Sprintf("Applied %s to folder", field), res))
}

// ApplyArtToFolder writes the staged art to every audio file directly in the
// current folder.
func (e *Engine) ApplyArtToFolder(ctx context.Context) {
	snap := e.session.Snapshot()
	if snap.PendingArt == "" {
		e.hooks.ShowStatus(LevelError, "No art is staged")
		return
	}
	folder := snap.CurrentFolder

	res, err := e.api.ApplyArtToFolder(ctx, folder, snap.PendingArt)
	if err != nil {
		log.Printf("engine: apply art to folder %q failed: %v", folder, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not apply art to folder: %s", apperr.GetMessage(err)))
		return
	}

	e.session.ClearStagedArt()
	e.RefreshHistory(ctx)
	e.ReloadFile(ctx)
	e.hooks.ShowStatus(levelForBatch(res), batchStatusLine("Applied art to folder", res))
}

// DeleteFieldFromFolder removes one field from every audio file directly in
// the current folder. Files without the field count as skipped, which is the
// expected partial outcome, not a failure.
func (e *Engine) DeleteFieldFromFolder(ctx context.Context, field string) {
	folder := e.session.CurrentFolder()

	res, err := e.api.DeleteFieldFromFolder(ctx, folder, field)
	if err != nil {
		log.Printf("engine: delete %q from folder %q failed: %v", field, folder, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not delete %s from folder: %s", field, apperr.GetMessage(err)))
		return
	}

	e.RefreshHistory(ctx)
	e.ReloadFile(ctx)
	e.hooks.ShowStatus(levelForBatch(res), batchStatusLine(fmt.Sprintf("Deleted %s from folder", field), res))
}

// levelForBatch classifies a batch result: only the status "error" is an
// error, partial success stays success-styled.
func levelForBatch(res *api.BatchResult) Level {
	if res.Status == api.StatusError {
		return LevelError
	}
	return LevelSuccess
}

// batchStatusLine renders the status line for a whole-folder operation.
func batchStatusLine(prefix string, res *api.BatchResult) string {
	if res.Status == api.StatusError {
		msg := res.Err
		if msg == "" {
			msg = res.Message
		}
		if msg == "" {
			msg = "operation failed"
		}
		return fmt.Sprintf("%s: %s", prefix, msg)
	}

	updated := res.FilesUpdated
	if updated == 0 {
		updated = res.FilesCreated
	}
	if res.FilesSkipped > 0 {
		return fmt.Sprintf("%s: %d file(s) updated, %d skipped", prefix, updated, res.FilesSkipped)
	}
	return fmt.Sprintf("%s: %d file(s) updated", prefix, updated)
}
