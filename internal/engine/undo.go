package engine

// undo.go orchestrates the reversal of history actions. Undo and Redo are
// symmetric: they differ only in which endpoint is called and which verb the
// status line uses.

import (
	"context"
	"fmt"
	"log"

	"github.com/tagdeck/tagdeck/internal/api"
	apperr "github.com/tagdeck/tagdeck/internal/errors"
	"github.com/tagdeck/tagdeck/internal/history"
)

// Undo reverses the selected action. A call for any other action is a no-op:
// the reversal controls exist only on the selected entry, so a mismatched id
// means the gesture raced a selection change and must not fire.
func (e *Engine) Undo(ctx context.Context, actionID string) {
	e.reverse(ctx, actionID, history.Undo)
}

// Redo re-applies the selected, previously undone action.
func (e *Engine) Redo(ctx context.Context, actionID string) {
	e.reverse(ctx, actionID, history.Redo)
}

// reverse runs one reversal end to end:
//
//  1. refuse unless actionID is the selected action, mirrored, and idle
//  2. mark the action as processing before any network I/O
//  3. fetch the detail first, so the rename branch is known regardless of
//     what the reversal response carries
//  4. snapshot the session identity before the reversal, because the
//     reversal itself can change what "current" means
//  5. call the endpoint and branch on the reported status
//  6. clear the processing marker on every exit path
//
// No error escapes: every outcome becomes a status line.
func (e *Engine) reverse(ctx context.Context, actionID string, kind history.Reversal) {
	if e.history.SelectedID() != actionID {
		log.Printf("engine: %s of %s refused: not the selected action", kind, actionID)
		return
	}
	if e.history.IsProcessing(actionID, history.Undo) || e.history.IsProcessing(actionID, history.Redo) {
		log.Printf("engine: %s refused: %v", kind, apperr.ActionBusy(actionID))
		return
	}
	if _, ok := e.history.Get(actionID); !ok {
		err := apperr.ActionNotFound(actionID)
		log.Printf("engine: %s refused: %v", kind, err)
		e.hooks.ShowStatus(LevelError, apperr.GetMessage(err))
		return
	}

	e.history.MarkProcessing(actionID, kind)
	defer e.history.ClearProcessing(actionID, kind)

	detail, err := e.api.HistoryDetail(ctx, actionID)
	if err != nil {
		log.Printf("engine: %s of %s: detail fetch failed: %v", kind, actionID, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Error %sing action: %s", kind, apperr.GetMessage(err)))
		return
	}

	fileBefore := e.session.CurrentFile()
	folderBefore := e.session.CurrentFolder()

	var result *api.UndoRedoResult
	if kind == history.Undo {
		result, err = e.api.Undo(ctx, actionID)
	} else {
		result, err = e.api.Redo(ctx, actionID)
	}
	if err != nil {
		log.Printf("engine: %s of %s failed: %v", kind, actionID, err)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Error %sing action", kind))
		return
	}

	switch result.Status {
	case api.StatusSuccess, api.StatusPartial:
		// Partial is a success variant: some files were skipped because
		// they no longer exist or no longer carry the field. Report the
		// counts, never an error.
		e.hooks.ShowStatus(LevelSuccess, reversalStatusLine(kind, result))

		// The file set of the folder may have changed either way.
		e.hooks.ReloadFolder(folderBefore)

		if result.NewPath != "" && detail.IsRename() {
			// The session identity must follow the rename before the
			// metadata reload, so the reload targets the path that now
			// exists. The settle pause gives the listing reload time to
			// materialize a row to anchor on.
			e.session.AdoptRenamedFile(result.NewPath)
			e.hooks.FileRenamed(fileBefore, result.NewPath)
			e.sleepSettle(ctx)
			e.hooks.ReloadFile(result.NewPath)
		} else if fileBefore != "" {
			// Content changed, identity did not.
			e.hooks.ReloadFile(fileBefore)
		}

		if result.Action != nil {
			e.history.Apply(*result.Action)
		}
		log.Printf("engine: %s of %s applied: %d updated, %d skipped",
			kind, actionID, result.FilesUpdated, result.Skipped())

	default:
		// A logical failure can still carry a definitive post-state
		// record ("nothing to undo"); apply it so the mirror stays
		// truthful even though the operation is reported as an error.
		msg := result.Err
		if msg == "" {
			msg = result.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("Error %sing action", kind)
		}
		e.hooks.ShowStatus(LevelError, msg)
		if result.Action != nil {
			e.history.Apply(*result.Action)
		}
		log.Printf("engine: %s reported %s: %v", kind, result.Status, apperr.UndoFailed(actionID, msg))
	}
}

// reversalStatusLine renders the one status line for a completed reversal.
// The skipped count appears only when files were actually skipped.
func reversalStatusLine(kind history.Reversal, result *api.UndoRedoResult) string {
	verb := "Undid"
	if kind == history.Redo {
		verb = "Redid"
	}
	if skipped := result.Skipped(); skipped > 0 {
		return fmt.Sprintf("%s action: %d file(s) updated, %d skipped", verb, result.FilesUpdated, skipped)
	}
	return fmt.Sprintf("%s action: %d file(s) updated", verb, result.FilesUpdated)
}
