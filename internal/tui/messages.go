package tui

import (
	"github.com/tagdeck/tagdeck/internal/api"
	"github.com/tagdeck/tagdeck/internal/engine"
)

// Messages posted by the engine hooks and by completed commands. Every async
// completion flows through one of these; nothing mutates the model from
// another goroutine.

// refreshMsg signals that an engine operation finished and the view should
// re-project from the store snapshots.
type refreshMsg struct{}

// statusMsg carries one status line from the engine.
type statusMsg struct {
	level   engine.Level
	message string
}

// reloadFolderMsg asks the model to refresh the current folder listing.
type reloadFolderMsg struct {
	folder string
}

// reloadFileMsg asks the model to re-open a file.
type reloadFileMsg struct {
	path string
}

// fileRenamedMsg announces the current file's identity changed.
type fileRenamedMsg struct {
	oldPath string
	newPath string
}

// treeLoadedMsg delivers the folder tree.
type treeLoadedMsg struct {
	items []api.TreeItem
	err   error
}

// suggestMsg delivers the suggestions for one field, or the fetch error. A
// canceled fetch arrives with err != nil and is dropped silently.
type suggestMsg struct {
	field       string
	suggestions []api.Suggestion
	err         error
}
