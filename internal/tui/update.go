package tui

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tagdeck/tagdeck/internal/engine"
	"github.com/tagdeck/tagdeck/internal/history"
)

// Update routes messages: engine events re-project the stores, key presses
// become engine commands, and modal input owns the keyboard while active.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		m.loading = false
		m.projectSession()
		m.clampCursors()
		return m, nil

	case statusMsg:
		m.statusLevel = msg.level
		m.statusMsg = msg.message
		return m, m.listen()

	case reloadFolderMsg:
		return m, tea.Batch(m.listen(), m.run(func(ctx context.Context) {
			m.eng.ReloadListing(ctx)
		}))

	case reloadFileMsg:
		return m, tea.Batch(m.listen(), m.run(func(ctx context.Context) {
			m.eng.ReloadFile(ctx)
		}))

	case fileRenamedMsg:
		// Identity already moved in the session store; just re-project so
		// the title bar shows the new name before the reloads land.
		m.projectSession()
		return m, m.listen()

	case treeLoadedMsg:
		if msg.err != nil {
			m.statusLevel = engine.LevelError
			m.statusMsg = fmt.Sprintf("Could not load folders: %v", msg.err)
			return m, nil
		}
		m.folders = msg.items
		if m.folderCursor >= len(m.folders) {
			m.folderCursor = 0
		}
		return m, nil

	case suggestMsg:
		if msg.err != nil {
			// Canceled or superseded fetches die silently.
			return m, nil
		}
		if len(msg.suggestions) == 0 {
			m.statusLevel = engine.LevelInfo
			m.statusMsg = fmt.Sprintf("No suggestions for %s", msg.field)
			return m, nil
		}
		values := make([]string, 0, len(msg.suggestions))
		for _, s := range msg.suggestions {
			values = append(values, s.Value)
		}
		m.statusLevel = engine.LevelInfo
		m.statusMsg = fmt.Sprintf("Suggestions for %s: %s", msg.field, strings.Join(values, " | "))
		return m, nil

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

// updateKeys handles normal-mode key presses.
func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 4
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + 3) % 4
		return m, nil

	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil

	case "enter":
		return m.activate()

	case "e":
		if m.focus == paneEditor {
			return m.startFieldEdit()
		}
	case "s":
		return m, m.run(func(ctx context.Context) {
			m.eng.SaveFile(ctx, m.editsCopy())
		})
	case "S":
		if field := m.currentField(); field != "" {
			value := m.edits[field]
			return m, m.run(func(ctx context.Context) {
				m.eng.SaveField(ctx, field, value)
			})
		}
	case "r":
		if m.focus == paneFolders {
			if m.eng.Session().CurrentFolder() != "" {
				m.modal = modalRenameFolder
				m.input.SetValue("")
				m.input.Placeholder = "new folder name"
				m.input.Focus()
			}
		} else if m.eng.Session().CurrentFile() != "" {
			m.modal = modalRename
			m.input.SetValue("")
			m.input.Placeholder = "new file name"
			m.input.Focus()
		}
		return m, nil
	case "n":
		if m.eng.Session().CurrentFile() != "" {
			m.modal = modalCreateField
			m.input.SetValue("")
			m.input.Placeholder = "field=value"
			m.input.Focus()
		}
		return m, nil
	case "x":
		if m.focus == paneEditor {
			if field := m.currentField(); field != "" {
				return m, m.run(func(ctx context.Context) {
					m.eng.DeleteField(ctx, field)
				})
			}
		}
	case "A":
		if m.focus == paneEditor {
			if field := m.currentField(); field != "" {
				value := m.edits[field]
				return m, m.run(func(ctx context.Context) {
					m.eng.ApplyFieldToFolder(ctx, field, value)
				})
			}
		}
	case "X":
		if m.focus == paneEditor {
			if field := m.currentField(); field != "" {
				return m, m.run(func(ctx context.Context) {
					m.eng.DeleteFieldFromFolder(ctx, field)
				})
			}
		}
	case "a":
		if m.eng.Session().CurrentFile() != "" {
			m.modal = modalStageArt
			m.input.SetValue("")
			m.input.Placeholder = "path to image file"
			m.input.Focus()
		}
		return m, nil
	case "d":
		if m.eng.Session().CurrentFile() != "" {
			m.eng.Session().StageArtRemoval()
			m.statusLevel = engine.LevelInfo
			m.statusMsg = "Art removal staged; save to apply"
		}
		return m, nil
	case "D":
		return m, m.run(func(ctx context.Context) {
			m.eng.ApplyArtToFolder(ctx)
		})
	case "g":
		if field := m.currentField(); field != "" {
			return m, func() tea.Msg {
				suggestions, err := m.eng.Suggest(m.ctx, field)
				return suggestMsg{field: field, suggestions: suggestions, err: err}
			}
		}
	case "u":
		return m.reverseSelected(history.Undo)
	case "y":
		return m.reverseSelected(history.Redo)
	case "c":
		if m.focus == paneHistory {
			m.modal = modalConfirmClear
		}
		return m, nil
	case "R":
		return m, tea.Batch(m.loadTree(), m.run(func(ctx context.Context) {
			m.eng.RefreshHistory(ctx)
		}))
	}

	return m, nil
}

// activate handles enter on the focused pane.
func (m *Model) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case paneFolders:
		if m.folderCursor < len(m.folders) {
			folder := m.folders[m.folderCursor].Path
			m.loading = true
			m.fileCursor = 0
			return m, m.run(func(ctx context.Context) {
				m.eng.OpenFolder(ctx, folder)
			})
		}

	case paneFiles:
		files := m.eng.Session().Snapshot().Files
		if m.fileCursor < len(files) {
			path := files[m.fileCursor].Path
			m.loading = true
			return m, m.run(func(ctx context.Context) {
				m.eng.OpenFile(ctx, path)
			})
		}

	case paneEditor:
		return m.startFieldEdit()

	case paneHistory:
		if action, ok := m.selectedAction(); ok {
			return m, m.run(func(ctx context.Context) {
				m.eng.SelectAction(ctx, action.ID)
			})
		}
	}
	return m, nil
}

// reverseSelected fires an undo or redo for the history entry the store has
// selected, respecting the processing marker and the is_undone state: the
// control for an impossible direction is simply not wired.
func (m *Model) reverseSelected(kind history.Reversal) (tea.Model, tea.Cmd) {
	snap := m.eng.History().Snapshot()
	if snap.SelectedID == "" {
		return m, nil
	}
	if snap.IsProcessing(snap.SelectedID) {
		return m, nil
	}

	record, found := m.eng.History().Get(snap.SelectedID)
	if !found {
		return m, nil
	}
	if kind == history.Undo && record.IsUndone {
		return m, nil
	}
	if kind == history.Redo && !record.IsUndone {
		return m, nil
	}

	id := snap.SelectedID
	return m, m.run(func(ctx context.Context) {
		if kind == history.Undo {
			m.eng.Undo(ctx, id)
		} else {
			m.eng.Redo(ctx, id)
		}
	})
}

// startFieldEdit opens the inline editor for the field under the cursor.
func (m *Model) startFieldEdit() (tea.Model, tea.Cmd) {
	field := m.currentField()
	if field == "" {
		return m, nil
	}
	m.focus = paneEditor
	m.modal = modalEditField
	m.input.SetValue(m.edits[field])
	m.input.Placeholder = field
	m.input.CursorEnd()
	m.input.Focus()
	return m, nil
}

// updateModal handles key presses while a modal input owns the keyboard.
func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil

	case "enter":
		switch m.modal {
		case modalEditField:
			if field := m.currentField(); field != "" {
				m.edits[field] = m.input.Value()
			}
			m.closeModal()
			return m, nil

		case modalRename:
			newName := strings.TrimSpace(m.input.Value())
			m.closeModal()
			if newName == "" {
				return m, nil
			}
			return m, m.run(func(ctx context.Context) {
				m.eng.RenameFile(ctx, newName)
			})

		case modalRenameFolder:
			newName := strings.TrimSpace(m.input.Value())
			m.closeModal()
			if newName == "" {
				return m, nil
			}
			return m, m.run(func(ctx context.Context) {
				m.eng.RenameFolder(ctx, newName)
			})

		case modalStageArt:
			path := strings.TrimSpace(m.input.Value())
			m.closeModal()
			if path == "" {
				return m, nil
			}
			data, err := loadArtFile(path)
			if err != nil {
				m.statusLevel = engine.LevelError
				m.statusMsg = fmt.Sprintf("Could not read art: %v", err)
				return m, nil
			}
			m.eng.Session().StagePendingArt(data)
			m.statusLevel = engine.LevelInfo
			m.statusMsg = "Art staged; s saves it to the file, D applies it to the folder"
			return m, nil

		case modalCreateField:
			name, value, _ := strings.Cut(m.input.Value(), "=")
			name = strings.TrimSpace(name)
			m.closeModal()
			if name == "" {
				return m, nil
			}
			return m, m.run(func(ctx context.Context) {
				m.eng.CreateField(ctx, name, value, false)
			})

		case modalConfirmClear:
			m.closeModal()
			return m, m.run(func(ctx context.Context) {
				m.eng.ClearHistory(ctx)
			})
		}
	}

	if m.modal == modalConfirmClear {
		// Any other key cancels the confirmation.
		if msg.String() == "y" {
			m.closeModal()
			return m, m.run(func(ctx context.Context) {
				m.eng.ClearHistory(ctx)
			})
		}
		m.closeModal()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// loadArtFile reads an image from disk and returns it base64-encoded, the
// form the save and batch endpoints expect.
func loadArtFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// closeModal drops the modal and its input state.
func (m *Model) closeModal() {
	m.modal = modalNone
	m.input.Blur()
	m.input.SetValue("")
}

// moveCursor moves the focused pane's cursor by delta, clamped.
func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case paneFolders:
		m.folderCursor = clamp(m.folderCursor+delta, len(m.folders))
	case paneFiles:
		m.fileCursor = clamp(m.fileCursor+delta, len(m.eng.Session().Snapshot().Files))
	case paneEditor:
		m.fieldCursor = clamp(m.fieldCursor+delta, len(m.fieldOrder))
	case paneHistory:
		m.histCursor = clamp(m.histCursor+delta, len(m.eng.History().Snapshot().Actions))
	}
}

// clampCursors keeps every cursor inside its list after a reload shrank it.
func (m *Model) clampCursors() {
	m.fileCursor = clamp(m.fileCursor, len(m.eng.Session().Snapshot().Files))
	m.fieldCursor = clamp(m.fieldCursor, len(m.fieldOrder))
	m.histCursor = clamp(m.histCursor, len(m.eng.History().Snapshot().Actions))
}

// editsCopy snapshots the working values for a save command.
func (m *Model) editsCopy() map[string]string {
	out := make(map[string]string, len(m.edits))
	for k, v := range m.edits {
		out[k] = v
	}
	return out
}

func clamp(v, n int) int {
	if n == 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
