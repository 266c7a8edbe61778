package update

import (
	"strings"
	"time"

	domainmodel "github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
	"github.com/sandeepkv93/sharpei/internal/views"
)

const previewWidth = 60

func (m Model) renderTaskPanel() string {
	rows := m.Tree.Rows()
	lanes := make([]views.LaneData, 0, len(domainmodel.Priorities))
	index := make(map[domainmodel.Priority]int, len(domainmodel.Priorities))
	for _, p := range domainmodel.Priorities {
		index[p] = len(lanes)
		lanes = append(lanes, views.LaneData{Name: p.String(), Rank: int(p)})
	}
	for i, row := range rows {
		at, ok := index[row.Lane]
		if !ok {
			continue
		}
		lanes[at].Lines = append(lanes[at].Lines, m.taskLine(row, i == m.Cursor))
	}

	title := "tasks"
	if m.ShowArchived {
		title = "tasks (including archived)"
	}
	loading := ""
	if m.Loading {
		loading = m.spinner.View() + " loading"
	}
	empty := "no tasks yet, press a to add one"
	if m.Search != "" {
		empty = "no tasks match the search"
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Title:   title,
		Loading: loading,
		Lanes:   lanes,
		Empty:   empty,
	})
}

func (m Model) taskLine(row tasktree.Row, selected bool) views.TaskLineData {
	t := row.Task
	line := views.TaskLineData{
		Title:        t.Title,
		Priority:     t.Priority.String(),
		PriorityRank: int(t.Priority),
		Completed:    t.Completed,
		Archived:     t.Archived,
		DueDate:      t.DueDateStr,
		Overdue:      m.isOverdue(t),
		Tags:         t.Tags,
		Depth:        row.Depth,
		Subtasks:     len(t.Subtasks),
		Expanded:     m.Tree.IsExpanded(t.ID),
		Selected:     selected,
	}
	if t.CategoryID != m.SelectedCategory {
		line.Category = m.categoryName(t.CategoryID)
	}
	if selected {
		line.Preview = views.DescriptionPreview(t.Description, previewWidth)
	}
	return line
}

func (m Model) isOverdue(t domainmodel.Task) bool {
	if t.DueDate == nil {
		return false
	}
	now := m.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.DueDate.Before(today)
}

func (m Model) renderDetails() string {
	row, ok := m.selectedRow()
	if !ok {
		return views.RenderDetails(views.DetailsData{})
	}
	t := row.Task
	subs := make([]views.TaskLineData, 0, len(t.Subtasks))
	for _, sub := range t.Subtasks {
		subs = append(subs, m.taskLine(tasktree.Row{Task: sub, Lane: row.Lane, Depth: 1}, false))
	}
	return views.RenderDetails(views.DetailsData{
		Title:       t.Title,
		Priority:    t.Priority.String(),
		Category:    m.categoryName(t.CategoryID),
		DueDate:     t.DueDateStr,
		Tags:        t.Tags,
		Description: t.Description,
		Subtasks:    subs,
	})
}

func (m Model) renderInputLine() string {
	switch m.Mode {
	case ModeQuickAdd, ModeSubtask, ModeSearch, ModePalette, ModeEdit, ModeDescription:
		return strings.TrimSpace(m.input.View())
	default:
		return ""
	}
}
