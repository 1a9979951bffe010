// Package tui is the terminal projection of the editing session: four panes
// (folders, files, editor, history) over the engine's stores, plus a one-line
// status bar.
//
// The model holds view state only: cursors, the editor's working values, and
// modal input. Every mutation of session or history state goes through the
// engine, running in a tea.Cmd goroutine; the engine's hooks post events back
// through a channel the program listens on. The view re-projects from store
// snapshots, so a payload the race guard discarded can never reach the
// screen.
package tui

import (
	"context"
	"log"
	"sort"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tagdeck/tagdeck/internal/api"
	"github.com/tagdeck/tagdeck/internal/engine"
)

// pane identifies the focused pane.
type pane int

const (
	paneFolders pane = iota
	paneFiles
	paneEditor
	paneHistory
)

// modal identifies which modal input, if any, owns the keyboard.
type modal int

const (
	modalNone modal = iota
	modalEditField
	modalRename
	modalRenameFolder
	modalCreateField
	modalStageArt
	modalConfirmClear
)

// eventBuffer is the capacity of the hook event channel. Hooks must never
// block, so a full buffer drops the event and logs it.
const eventBuffer = 64

// Model is the Bubble Tea model for the browse session.
type Model struct {
	eng    *engine.Engine
	ctx    context.Context
	events chan tea.Msg

	width  int
	height int
	focus  pane
	modal  modal

	// Folder tree of the library root.
	folders      []api.TreeItem
	folderCursor int

	fileCursor int

	// Editor state: the working values per field, the stable field order,
	// and the session version they were last rebuilt from. A field is
	// dirty exactly when edits[f] differs from the store's original.
	edits          map[string]string
	fieldOrder     []string
	fieldCursor    int
	appliedVersion int64

	histCursor int

	input   textinput.Model
	spin    spinner.Model
	loading bool

	statusLevel engine.Level
	statusMsg   string

	startFolder string
	quitting    bool
}

// New builds the model. Wire the returned model's Hooks() into the engine
// before starting the program.
func New(ctx context.Context, eng *engine.Engine) *Model {
	ti := textinput.New()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		eng:    eng,
		ctx:    ctx,
		events: make(chan tea.Msg, eventBuffer),
		edits:  map[string]string{},
		input:  ti,
		spin:   sp,
	}
}

// SetEngine attaches the engine after construction. The model and the engine
// reference each other (the engine's hooks post into the model's channel), so
// one side has to be wired late; hooks are engine-independent, making this
// side the safe one.
func (m *Model) SetEngine(eng *engine.Engine) {
	m.eng = eng
}

// Hooks returns the engine hooks that feed this model. They post into the
// event channel and never block: an overflowing event is dropped, because a
// stale reload request is recoverable while a blocked engine goroutine is
// not.
func (m *Model) Hooks() engine.Hooks {
	post := func(msg tea.Msg) {
		select {
		case m.events <- msg:
		default:
			log.Printf("tui: event buffer full, dropped %T", msg)
		}
	}
	return engine.Hooks{
		ReloadFolder: func(folder string) { post(reloadFolderMsg{folder: folder}) },
		ReloadFile:   func(path string) { post(reloadFileMsg{path: path}) },
		FileRenamed:  func(oldPath, newPath string) { post(fileRenamedMsg{oldPath: oldPath, newPath: newPath}) },
		ShowStatus: func(level engine.Level, message string) {
			post(statusMsg{level: level, message: message})
		},
	}
}

// SetStartFolder makes Init open a folder immediately instead of waiting for
// the first selection.
func (m *Model) SetStartFolder(folder string) {
	m.startFolder = folder
}

// Init loads the folder tree and history, and starts the event pump.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spin.Tick,
		m.listen(),
		m.run(func(ctx context.Context) {
			m.eng.RefreshHistory(ctx)
		}),
		m.loadTree(),
	}
	if m.startFolder != "" {
		folder := m.startFolder
		cmds = append(cmds, m.run(func(ctx context.Context) {
			m.eng.OpenFolder(ctx, folder)
		}))
	}
	return tea.Batch(cmds...)
}

// listen returns a command that delivers the next engine event.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// run executes one engine operation off the event loop and signals a
// re-projection when it finishes.
func (m *Model) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return refreshMsg{}
	}
}

// loadTree fetches the folder tree for the library root.
func (m *Model) loadTree() tea.Cmd {
	return func() tea.Msg {
		items, err := m.eng.FetchTree(m.ctx, "")
		return treeLoadedMsg{items: items, err: err}
	}
}

// projectSession rebuilds the editor's working values from the confirmed
// originals whenever an accepted load advanced the session version. Pending
// edits survive everything except an accepted load, which by definition
// changes what "original" means.
func (m *Model) projectSession() {
	snap := m.eng.Session().Snapshot()
	if snap.AppliedVersion == m.appliedVersion {
		return
	}
	m.appliedVersion = snap.AppliedVersion

	m.edits = make(map[string]string, len(snap.OriginalFields))
	for k, v := range snap.OriginalFields {
		m.edits[k] = v
	}
	m.fieldOrder = fieldOrder(snap.OriginalFields)
	if m.fieldCursor >= len(m.fieldOrder) {
		m.fieldCursor = 0
	}
}

// fieldOrder returns the standard tags in their fixed order followed by the
// extended tags alphabetically.
func fieldOrder(fields map[string]string) []string {
	order := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, std := range api.StandardFields {
		if _, ok := fields[std]; ok {
			order = append(order, std)
			seen[std] = true
		}
	}

	var extra []string
	for name := range fields {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// currentField returns the field under the editor cursor, "" when none.
func (m *Model) currentField() string {
	if m.fieldCursor < 0 || m.fieldCursor >= len(m.fieldOrder) {
		return ""
	}
	return m.fieldOrder[m.fieldCursor]
}

// selectedAction returns the history record under the cursor.
func (m *Model) selectedAction() (api.ActionRecord, bool) {
	actions := m.eng.History().Snapshot().Actions
	if m.histCursor < 0 || m.histCursor >= len(actions) {
		return api.ActionRecord{}, false
	}
	return actions[m.histCursor], true
}
