package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sharpei/internal/reorder"
	"github.com/sandeepkv93/sharpei/internal/views"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModeQuickAdd, ModeSubtask, ModeSearch, ModePalette, ModeEdit, ModeDescription:
			return m.handleInputKey(typed)
		case ModeConfirmDelete:
			return m.handleConfirmKey(typed)
		default:
			return m.handleBrowseKey(typed)
		}
	case spinner.TickMsg:
		if m.Loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case tasksLoadedMsg:
		m.Loading = false
		if typed.Err != nil {
			return m, m.fail("load tasks", typed.Err)
		}
		selectedID := ""
		if row, ok := m.selectedRow(); ok {
			selectedID = row.Task.ID
		}
		m.Tree.Replace(typed.Tasks)
		m.clampCursor()
		if selectedID != "" {
			m.focusTask(selectedID)
		}
		m.scheduleDue()
		return m, nil
	case categoriesLoadedMsg:
		if typed.Err != nil {
			return m, m.fail("load categories", typed.Err)
		}
		m.Categories = typed.Categories
		if m.SelectedCategory != "" && m.categoryName(m.SelectedCategory) == "" {
			m.SelectedCategory = ""
			m.persistUIState()
			return m, m.startLoad()
		}
		return m, nil
	case taskSavedMsg:
		if typed.Err != nil {
			return m, m.fail("save task", typed.Err)
		}
		m.Tree.Patch(typed.Task)
		return m, m.startLoad()
	case mutationDoneMsg:
		if typed.Err != nil {
			return m, m.fail("store", typed.Err)
		}
		cmds := []tea.Cmd{m.setStatus(typed.Status, false)}
		if typed.ReloadCategories {
			cmds = append(cmds, loadCategoriesCmd(m.store))
		}
		if typed.Refetch {
			cmds = append(cmds, m.startLoad())
		}
		return m, tea.Batch(cmds...)
	case moveDoneMsg:
		return m.onMoveDone(typed)
	case dueMsg:
		return m, tea.Batch(m.setStatus(dueText(typed.Event), false), waitForDue(m.due))
	case SetStatusMsg:
		return m, m.setStatus(typed.Text, typed.IsError)
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			return m, m.fail("app", typed.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) onMoveDone(msg moveDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.Err != nil {
		text := msg.Err.Error()
		switch {
		case errors.Is(msg.Err, reorder.ErrOrderNotPersisted):
			text = "move not saved: " + causeOf(msg.Err, reorder.ErrOrderNotPersisted)
		case errors.Is(msg.Err, reorder.ErrPriorityNotPersisted):
			text = "order saved but priority not changed: " + causeOf(msg.Err, reorder.ErrPriorityNotPersisted)
		}
		m.LastError = msg.Err
		m.logger.Error("move", "err", msg.Err)
		cmds = append(cmds, m.setStatus(text, true))
	}
	if msg.Outcome.Refetch {
		cmds = append(cmds, m.startLoad())
	}
	return m, tea.Batch(cmds...)
}

// causeOf drops the sentinel's own text from a wrapped error message.
func causeOf(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	left := m.renderTaskPanel()
	if line := m.renderInputLine(); line != "" {
		left = line + "\n" + left
	}
	right := ""
	if m.ShowDetails {
		right = m.renderDetails()
	}
	if m.HelpVisible {
		right = strings.TrimSpace(right + "\n\n" + m.renderHelpView())
	}

	return views.RenderApp(views.AppData{
		Header:        m.header(),
		LeftPane:      left,
		RightPane:     right,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Footer:        "keys: a add | s subtask | e edit | E notes | / search | space done | enter expand | d delete | K/J move | A archive | v archived | i details | [ ] category | : cmd | ? help | q quit",
		Width:         m.width,
	})
}

func (m Model) header() string {
	category := "All Tasks"
	if name := m.categoryName(m.SelectedCategory); name != "" {
		category = name
	}
	parts := []string{"sharpei", "category: " + category}
	if m.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.Search))
	}
	if m.ShowArchived {
		parts = append(parts, "showing archived")
	}
	parts = append(parts, "mode: "+m.Mode.String())
	return strings.Join(parts, " | ")
}
