// Package engine is the reconciliation layer between the metadata server and
// the client's stores. Every mutation of session or history state flows
// through it: guarded loads, saves, renames, whole-folder operations, and
// the undo/redo orchestration.
//
// Engine operations that mutate state never return an error. Failures
// surface through the ShowStatus hook and otherwise leave state unchanged,
// so a caller cannot crash the session by reversing an action at a bad
// moment. Pure queries (tree listings, health probes) do return errors; the
// caller decides how to show them.
//
// All operations are blocking and safe to call from any goroutine. The
// expected shape is one goroutine per user gesture, with the hooks posting
// results back to the owning event loop.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tagdeck/tagdeck/internal/api"
	apperr "github.com/tagdeck/tagdeck/internal/errors"
	"github.com/tagdeck/tagdeck/internal/history"
	"github.com/tagdeck/tagdeck/internal/session"
)

// DefaultRenameSettleDelay is the pause between a post-rename folder reload
// and the follow-up file reload. The server's listing needs a moment to
// reflect the new name before the file can be re-anchored under it. This is
// a latency workaround, not a synchronization primitive; tests disable it
// with a negative Options.RenameSettleDelay.
const DefaultRenameSettleDelay = 100 * time.Millisecond

// Level classifies a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Hooks connect the engine to its host. They are injected at construction,
// must be safe to call from any goroutine, and must not block: a hook that
// needs the event loop posts a message and returns.
type Hooks struct {
	// ReloadFolder asks the host to refresh the listing of a folder. The
	// host reloads through the engine, which discards the request if the
	// folder is no longer current.
	ReloadFolder func(folder string)

	// ReloadFile asks the host to re-open a file, re-anchoring focus on it.
	ReloadFile func(path string)

	// FileRenamed announces that the current file's path changed, so views
	// can move cursors and labels before the reloads land.
	FileRenamed func(oldPath, newPath string)

	// ShowStatus publishes the one status line every operation ends with.
	ShowStatus func(level Level, message string)
}

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	// RenameSettleDelay overrides DefaultRenameSettleDelay. Negative
	// disables the pause entirely.
	RenameSettleDelay time.Duration
}

// Engine owns the stores and the server client.
type Engine struct {
	api     *api.Client
	session *session.Store
	history *history.Store
	hooks   Hooks
	settle  time.Duration

	suggestMu sync.Mutex
	suggests  map[string]*suggestHandle
}

// New wires an engine. Nil hook fields are replaced with no-ops so call
// sites never nil-check.
func New(client *api.Client, sess *session.Store, hist *history.Store, hooks Hooks, opts Options) *Engine {
	if hooks.ReloadFolder == nil {
		hooks.ReloadFolder = func(string) {}
	}
	if hooks.ReloadFile == nil {
		hooks.ReloadFile = func(string) {}
	}
	if hooks.FileRenamed == nil {
		hooks.FileRenamed = func(string, string) {}
	}
	if hooks.ShowStatus == nil {
		hooks.ShowStatus = func(Level, string) {}
	}

	settle := opts.RenameSettleDelay
	if settle == 0 {
		settle = DefaultRenameSettleDelay
	}
	if settle < 0 {
		settle = 0
	}

	return &Engine{
		api:      client,
		session:  sess,
		history:  hist,
		hooks:    hooks,
		settle:   settle,
		suggests: make(map[string]*suggestHandle),
	}
}

// Session exposes the session store for snapshot reads.
func (e *Engine) Session() *session.Store {
	return e.session
}

// History exposes the history store for snapshot reads.
func (e *Engine) History() *history.Store {
	return e.history
}

// OpenFolder flips the session to a folder and loads its listing. The flip
// is synchronous; the fetch is guarded, so of two overlapping opens only the
// later one's listing ever lands.
func (e *Engine) OpenFolder(ctx context.Context, folder string) {
	e.cancelAllSuggests()
	ticket := e.session.SelectFolder(folder)

	files, err := e.api.ListFiles(ctx, folder)
	if err != nil {
		if !e.session.IsCurrentListing(ticket) {
			log.Printf("engine: listing error for %q discarded: %v", folder, apperr.StaleLoad(ticket))
			return
		}
		e.session.AbandonListing(ticket)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not load folder: %s", apperr.GetMessage(err)))
		return
	}

	if !e.session.ApplyFolderListing(ticket, files) {
		log.Printf("engine: listing for %q discarded: %v", folder, apperr.StaleLoad(ticket))
	}
}

// ReloadListing refreshes the current folder's listing in place, keeping
// the existing rows visible until the fresh ones land.
func (e *Engine) ReloadListing(ctx context.Context) {
	ticket, folder := e.session.BeginListingLoad()

	files, err := e.api.ListFiles(ctx, folder)
	if err != nil {
		if !e.session.IsCurrentListing(ticket) {
			log.Printf("engine: listing error for %q discarded: %v", folder, apperr.StaleLoad(ticket))
			return
		}
		e.session.AbandonListing(ticket)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not refresh folder: %s", apperr.GetMessage(err)))
		return
	}

	if !e.session.ApplyFolderListing(ticket, files) {
		log.Printf("engine: listing for %q discarded: %v", folder, apperr.StaleLoad(ticket))
	}
}

// OpenFile makes a file current and loads its metadata. Opening the file
// that is already current turns into an in-place reload instead of an
// identity flip, so originals stay visible until the fresh payload lands.
func (e *Engine) OpenFile(ctx context.Context, path string) {
	e.cancelAllSuggests()

	var ticket int64
	if path == e.session.CurrentFile() {
		ticket, path = e.session.BeginFileLoad()
		if path == "" {
			return
		}
	} else {
		ticket = e.session.SelectFile(path)
	}

	e.loadMetadata(ctx, ticket, path)
}

// ReloadFile re-fetches the current file's metadata under a fresh ticket.
func (e *Engine) ReloadFile(ctx context.Context) {
	ticket, path := e.session.BeginFileLoad()
	if path == "" {
		return
	}
	e.loadMetadata(ctx, ticket, path)
}

// loadMetadata performs one guarded metadata fetch. Success and failure are
// both gated on the ticket: a superseded response, either way, must not
// touch state or the status line.
func (e *Engine) loadMetadata(ctx context.Context, ticket int64, path string) {
	meta, err := e.api.Metadata(ctx, path)
	if err != nil {
		if !e.session.IsCurrentLoad(ticket) {
			log.Printf("engine: metadata error for %q discarded: %v", path, apperr.StaleLoad(ticket))
			return
		}
		e.session.AbandonLoad(ticket)
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not load metadata: %s", apperr.GetMessage(err)))
		return
	}

	art := api.ArtInfo{Present: meta.HasArt, Data: meta.Art}
	if !e.session.ApplyLoadedMetadata(ticket, meta.Fields(), art) {
		log.Printf("engine: metadata for %q discarded: %v", path, apperr.StaleLoad(ticket))
	}
}

// RefreshHistory replaces the mirrored log with the server's current one.
func (e *Engine) RefreshHistory(ctx context.Context) {
	actions, err := e.api.History(ctx)
	if err != nil {
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not load history: %s", apperr.GetMessage(err)))
		return
	}
	e.history.Replace(actions)
}

// SelectAction selects a history entry and loads its expanded detail. The
// detail is cached only while the entry stays selected.
func (e *Engine) SelectAction(ctx context.Context, actionID string) {
	e.history.Select(actionID)

	detail, err := e.api.HistoryDetail(ctx, actionID)
	if err != nil {
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not load action detail: %s", apperr.GetMessage(err)))
		return
	}
	if !e.history.SetDetail(actionID, detail) {
		log.Printf("engine: stale detail for action %s discarded", actionID)
	}
}

// ClearSelection drops the history selection and its cached detail.
func (e *Engine) ClearSelection() {
	e.history.ClearSelection()
}

// ClearHistory empties the server log and the mirror.
func (e *Engine) ClearHistory(ctx context.Context) {
	if err := e.api.ClearHistory(ctx); err != nil {
		e.hooks.ShowStatus(LevelError, fmt.Sprintf("Could not clear history: %s", apperr.GetMessage(err)))
		return
	}
	e.history.Replace(nil)
	e.hooks.ShowStatus(LevelSuccess, "History cleared")
}

// FetchTree lists the folder children of subpath. Pure query; the caller
// renders the error.
func (e *Engine) FetchTree(ctx context.Context, subpath string) ([]api.TreeItem, error) {
	return e.api.Tree(ctx, subpath)
}

// sleepSettle pauses for the configured settle delay, returning early if
// the context dies.
func (e *Engine) sleepSettle(ctx context.Context) {
	if e.settle <= 0 {
		return
	}
	t := time.NewTimer(e.settle)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
