package engine

// suggest.go manages per-field metadata suggestion fetches. Suggestions are
// the one place the client cancels in-flight work explicitly: each field has
// at most one outstanding fetch, a newer fetch for the same field aborts the
// older one, and changing the current file aborts them all.

import (
	"context"

	"github.com/tagdeck/tagdeck/internal/api"
	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// suggestHandle is one in-flight suggestion fetch.
type suggestHandle struct {
	cancel context.CancelFunc
}

// Suggest fetches inferred values for one field of the current file. It
// blocks until the fetch completes or is superseded; a superseded or canceled
// fetch returns the context error, which callers discard silently.
func (e *Engine) Suggest(ctx context.Context, field string) ([]api.Suggestion, error) {
	path := e.session.CurrentFile()
	if path == "" {
		return nil, apperr.NoFileSelected()
	}

	sctx, cancel := context.WithCancel(ctx)
	handle := &suggestHandle{cancel: cancel}

	e.suggestMu.Lock()
	if prev := e.suggests[field]; prev != nil {
		prev.cancel()
	}
	e.suggests[field] = handle
	e.suggestMu.Unlock()

	defer func() {
		e.suggestMu.Lock()
		if e.suggests[field] == handle {
			delete(e.suggests, field)
		}
		e.suggestMu.Unlock()
		cancel()
	}()

	return e.api.Suggest(sctx, path, field)
}

// CancelSuggest aborts the in-flight suggestion fetch for one field, if any.
func (e *Engine) CancelSuggest(field string) {
	e.suggestMu.Lock()
	defer e.suggestMu.Unlock()

	if handle := e.suggests[field]; handle != nil {
		handle.cancel()
		delete(e.suggests, field)
	}
}

// cancelAllSuggests aborts every in-flight suggestion fetch. Called whenever
// the session identity changes: a suggestion for the previous file must not
// land on the next one.
func (e *Engine) cancelAllSuggests() {
	e.suggestMu.Lock()
	defer e.suggestMu.Unlock()

	for field, handle := range e.suggests {
		handle.cancel()
		delete(e.suggests, field)
	}
}
