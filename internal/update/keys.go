package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	domainmodel "github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/quickadd"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
)

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Tree.Rows())-1 {
			m.Cursor++
		}
	case "a":
		m.enterInput(ModeQuickAdd, "add> ", "")
	case "s":
		parent, ok := m.selectedTopLevel()
		if !ok {
			return m, m.setStatus("select a task to add a subtask", true)
		}
		m.SubtaskParent = parent.ID
		m.enterInput(ModeSubtask, fmt.Sprintf("subtask of %q> ", parent.Title), "")
	case "e":
		row, ok := m.selectedRow()
		if !ok {
			return m, m.setStatus("select a task to edit", true)
		}
		m.EditTarget = row.Task.ID
		m.enterInput(ModeEdit, "edit> ", quickadd.Format(row.Task, m.categoryName(row.Task.CategoryID)))
	case "E":
		row, ok := m.selectedRow()
		if !ok {
			return m, m.setStatus("select a task to describe", true)
		}
		m.EditTarget = row.Task.ID
		m.enterInput(ModeDescription, fmt.Sprintf("notes for %q> ", row.Task.Title), row.Task.Description)
	case "/":
		m.enterInput(ModeSearch, "search> ", m.Search)
	case ":":
		m.enterInput(ModePalette, ":", "")
	case "esc":
		if m.Search != "" {
			m.Search = ""
			return m, m.startLoad()
		}
	case " ":
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, updateTaskCmd(m.store, tasktree.ToggleCompletion(row.Task))
	case "enter", "tab":
		task, ok := m.selectedTopLevel()
		if !ok || len(task.Subtasks) == 0 {
			return m, nil
		}
		m.Tree.ToggleExpanded(task.ID)
		m.focusTask(task.ID)
		m.persistUIState()
	case "d":
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.Mode = ModeConfirmDelete
		m.PendingDelete = row.Task.ID
		prompt := fmt.Sprintf("delete %q? (y/n)", row.Task.Title)
		if len(row.Task.Subtasks) > 0 {
			prompt = fmt.Sprintf("delete %q and %d subtasks? (y/n)", row.Task.Title, len(row.Task.Subtasks))
		}
		m.Status = StatusBar{Text: prompt}
	case "shift+up", "K":
		return m.moveSelected(-1)
	case "shift+down", "J":
		return m.moveSelected(1)
	case "A":
		return m, archiveCompletedCmd(m.store, m.SelectedCategory)
	case "v":
		m.ShowArchived = !m.ShowArchived
		m.persistUIState()
		return m, m.startLoad()
	case "i":
		m.ShowDetails = !m.ShowDetails
	case "?":
		m.HelpVisible = !m.HelpVisible
	case "[":
		return m.cycleCategory(-1)
	case "]":
		return m.cycleCategory(1)
	case "r":
		return m, tea.Batch(loadCategoriesCmd(m.store), m.startLoad())
	}
	return m, nil
}

func (m *Model) enterInput(mode Mode, prompt, value string) {
	m.Mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.Focus()
}

func (m *Model) leaveInput() {
	m.Mode = ModeBrowse
	m.SubtaskParent = ""
	m.EditTarget = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput()
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.Mode
		parentID := m.SubtaskParent
		target := m.EditTarget
		m.leaveInput()
		switch mode {
		case ModeQuickAdd:
			return m.submitQuickAdd(value)
		case ModeSubtask:
			return m.submitSubtask(parentID, value)
		case ModeEdit:
			return m.submitEdit(target, value)
		case ModeDescription:
			return m.submitDescription(target, value)
		case ModeSearch:
			m.Search = strings.TrimSpace(value)
			return m, m.startLoad()
		case ModePalette:
			return m.executePaletteCommand(value)
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.input.SetValue(m.input.Value() + string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.PendingDelete
	m.Mode = ModeBrowse
	m.PendingDelete = ""
	if msg.String() != "y" && msg.String() != "Y" {
		return m, m.setStatus("delete cancelled", false)
	}
	title := id
	if task, ok := m.Tree.FindByID(id); ok {
		title = task.Title
	} else if sub, ok := m.Tree.FindSubtask(id); ok {
		title = sub.Title
	}
	m.Status = StatusBar{}
	return m, deleteTaskCmd(m.store, id, title)
}

// submitQuickAdd parses one quick-add line and creates the task in the
// selected category unless the line names another one.
func (m Model) submitQuickAdd(line string) (tea.Model, tea.Cmd) {
	res := quickadd.ParseAt(line, m.now())
	if res.Title == "" {
		return m, m.setStatus("task title is empty", true)
	}
	categoryID := m.SelectedCategory
	var notice tea.Cmd
	if res.CategoryName != "" {
		if cat, ok := res.ResolveCategory(m.Categories); ok {
			categoryID = cat.ID
		} else {
			notice = m.setStatus(fmt.Sprintf("unknown category %q, using current", res.CategoryName), false)
		}
	}
	return m, tea.Batch(notice, createTaskCmd(m.store, res.Task(categoryID)))
}

// submitSubtask creates a subtask that inherits its parent's priority and
// category. The line is parsed for markers like a top-level quick add.
func (m Model) submitSubtask(parentID, line string) (tea.Model, tea.Cmd) {
	parent, ok := m.Tree.FindByID(parentID)
	if !ok {
		return m, m.setStatus("parent task is no longer listed", true)
	}
	res := quickadd.ParseAt(line, m.now())
	if res.Title == "" {
		return m, m.setStatus("subtask title is empty", true)
	}
	task := res.Task(parent.CategoryID)
	task.Priority = parent.Priority
	task.ParentID = parent.ID
	m.Tree.SetExpanded(parent.ID, true)
	m.persistUIState()
	return m, createTaskCmd(m.store, task)
}

// findListed looks id up among top-level tasks and their subtasks.
func (m Model) findListed(id string) (domainmodel.Task, bool) {
	if task, ok := m.Tree.FindByID(id); ok {
		return task, true
	}
	return m.Tree.FindSubtask(id)
}

// submitEdit re-parses the edited quick-add line over the existing task.
// A line without a category marker keeps the current category.
func (m Model) submitEdit(id, line string) (tea.Model, tea.Cmd) {
	task, ok := m.findListed(id)
	if !ok {
		return m, m.setStatus("task is no longer listed", true)
	}
	res := quickadd.ParseAt(line, m.now())
	if res.Title == "" {
		return m, m.setStatus("task title is empty", true)
	}
	categoryID := ""
	var notice tea.Cmd
	if res.CategoryName != "" {
		if cat, ok := res.ResolveCategory(m.Categories); ok {
			categoryID = cat.ID
		} else {
			notice = m.setStatus(fmt.Sprintf("unknown category %q, keeping current", res.CategoryName), false)
		}
	}
	return m, tea.Batch(notice, updateTaskCmd(m.store, res.Apply(task, categoryID)))
}

func (m Model) submitDescription(id, text string) (tea.Model, tea.Cmd) {
	task, ok := m.findListed(id)
	if !ok {
		return m, m.setStatus("task is no longer listed", true)
	}
	text = strings.TrimSpace(text)
	if text == task.Description {
		return m, nil
	}
	task.Description = text
	return m, updateTaskCmd(m.store, task)
}

func (m Model) cycleCategory(step int) (tea.Model, tea.Cmd) {
	// index 0 is "all tasks"
	ids := make([]string, 0, len(m.Categories)+1)
	ids = append(ids, "")
	for _, c := range m.Categories {
		ids = append(ids, c.ID)
	}
	current := 0
	for i, id := range ids {
		if id == m.SelectedCategory {
			current = i
			break
		}
	}
	next := (current + step + len(ids)) % len(ids)
	if ids[next] == m.SelectedCategory {
		return m, nil
	}
	m.SelectedCategory = ids[next]
	m.Cursor = 0
	m.persistUIState()
	return m, m.startLoad()
}
