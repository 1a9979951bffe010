package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tagdeck/tagdeck/internal/api"
	"github.com/tagdeck/tagdeck/internal/engine"
	"github.com/tagdeck/tagdeck/internal/history"
)

// View renders the four panes and the status bar from store snapshots.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "starting..."
	}

	sessionSnap := m.eng.Session().Snapshot()
	historySnap := m.eng.History().Snapshot()

	paneHeight := m.height - 3
	if paneHeight < 5 {
		paneHeight = 5
	}
	quarter := m.width/4 - 2

	folders := m.renderPane(paneFolders, "Folders", m.renderFolders(paneHeight), quarter, paneHeight)
	files := m.renderPane(paneFiles, "Files", m.renderFiles(sessionSnap.Files, paneHeight), quarter, paneHeight)
	editor := m.renderPane(paneEditor, m.editorTitle(sessionSnap.CurrentFile), m.renderEditor(sessionSnap.OriginalFields, paneHeight), quarter, paneHeight)
	hist := m.renderPane(paneHistory, "History", m.renderHistory(historySnap, paneHeight), quarter, paneHeight)

	row := lipgloss.JoinHorizontal(lipgloss.Top, folders, files, editor, hist)

	var parts []string
	parts = append(parts, row)
	if m.modal != modalNone && m.modal != modalConfirmClear {
		parts = append(parts, modalStyle.Render(m.input.View()))
	}
	if m.modal == modalConfirmClear {
		parts = append(parts, modalStyle.Render("Clear the entire edit history? (y/enter to confirm, any other key cancels)"))
	}
	parts = append(parts, m.renderStatus(sessionSnap.FileLoading || sessionSnap.ListLoading))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderPane(p pane, title, body string, width, height int) string {
	style := paneStyle
	if m.focus == p {
		style = focusedPaneStyle
	}
	content := titleStyle.Render(title) + "\n" + body
	return style.Width(width).Height(height).Render(content)
}

func (m *Model) editorTitle(currentFile string) string {
	if currentFile == "" {
		return "Editor"
	}
	parts := strings.Split(currentFile, "/")
	return "Editor: " + parts[len(parts)-1]
}

func (m *Model) renderFolders(height int) string {
	if len(m.folders) == 0 {
		return dimStyle.Render("(no folders)")
	}
	var b strings.Builder
	for i, f := range visibleWindow(len(m.folders), m.folderCursor, height-2) {
		line := m.folders[f].Name
		if m.folders[f].HasAudio {
			line += " ♪"
		}
		if f == m.folderCursor && m.focus == paneFolders {
			line = cursorLineStyle.Render(line)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m *Model) renderFiles(files []api.FileEntry, height int) string {
	if len(files) == 0 {
		return dimStyle.Render("(no files)")
	}
	var b strings.Builder
	for i, f := range visibleWindow(len(files), m.fileCursor, height-2) {
		line := files[f].Name
		if f == m.fileCursor && m.focus == paneFiles {
			line = cursorLineStyle.Render(line)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m *Model) renderEditor(originals map[string]string, height int) string {
	if len(m.fieldOrder) == 0 {
		return dimStyle.Render("(no file selected)")
	}
	var b strings.Builder
	for i, f := range visibleWindow(len(m.fieldOrder), m.fieldCursor, height-2) {
		field := m.fieldOrder[f]
		value := m.edits[field]

		line := fmt.Sprintf("%s: %s", field, value)
		// Dirty exactly when the working value differs from the original;
		// there is no separate flag to drift out of sync.
		if value != originals[field] {
			line = dirtyStyle.Render(line + " *")
		}
		if f == m.fieldCursor && m.focus == paneEditor {
			line = cursorLineStyle.Render(line)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m *Model) renderHistory(snap history.Snapshot, height int) string {
	if len(snap.Actions) == 0 {
		return dimStyle.Render("(no actions)")
	}
	var b strings.Builder
	wrote := 0
	for _, idx := range visibleWindow(len(snap.Actions), m.histCursor, height-2) {
		a := snap.Actions[idx]

		line := a.Description
		if line == "" {
			line = a.Type
		}
		if a.IsUndone {
			line = undoneStyle.Render(line)
		}
		if idx == m.histCursor && m.focus == paneHistory {
			line = cursorLineStyle.Render(line)
		}
		if wrote > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		wrote++

		// Only the selected action is expanded: its controls and, when
		// loaded, its detail lines.
		if a.ID != snap.SelectedID {
			continue
		}
		b.WriteByte('\n')
		if snap.IsProcessing(a.ID) {
			b.WriteString("  " + m.spin.View() + " working...")
		} else if a.IsUndone {
			b.WriteString(dimStyle.Render("  [y] redo"))
		} else {
			b.WriteString(dimStyle.Render("  [u] undo"))
		}
		wrote++

		if snap.Detail != nil && snap.Detail.ID == a.ID {
			for _, ch := range snap.Detail.Changes {
				b.WriteByte('\n')
				b.WriteString(dimStyle.Render(fmt.Sprintf("  %s: %q -> %q", ch.File, ch.OldValue, ch.NewValue)))
				wrote++
			}
			if snap.Detail.MoreFiles > 0 {
				b.WriteByte('\n')
				b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more file(s)", snap.Detail.MoreFiles)))
				wrote++
			}
		}
	}
	return b.String()
}

func (m *Model) renderStatus(loading bool) string {
	left := ""
	if loading || m.loading {
		left = m.spin.View() + " "
	}

	style := statusInfoStyle
	switch m.statusLevel {
	case engine.LevelSuccess:
		style = statusSuccessStyle
	case engine.LevelError:
		style = statusErrorStyle
	}

	help := dimStyle.Render("  tab: pane · enter: open · e: edit · s: save · u/y: undo/redo · q: quit")
	return left + style.Render(m.statusMsg) + help
}

// visibleWindow returns the indices of the slice rows that fit in a pane of
// the given height, keeping the cursor visible.
func visibleWindow(n, cursor, height int) []int {
	if height <= 0 {
		height = 1
	}
	if n <= height {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}

	out := make([]int, height)
	for i := range out {
		out[i] = start + i
	}
	return out
}
