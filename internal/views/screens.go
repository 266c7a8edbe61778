package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskLineData struct {
	Title        string
	Priority     string
	PriorityRank int
	Completed    bool
	Archived     bool
	DueDate      string
	Overdue      bool
	Tags         []string
	Category     string
	Preview      string
	Depth        int
	Subtasks     int
	Expanded     bool
	Selected     bool
}

type LaneData struct {
	Name  string
	Rank  int
	Lines []TaskLineData
}

type TaskPanelData struct {
	Title   string
	Loading string
	Lanes   []LaneData
	Empty   string
}

type DetailsData struct {
	Title       string
	Priority    string
	Category    string
	DueDate     string
	Tags        []string
	Description string
	Subtasks    []TaskLineData
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

var (
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	previewStyle  = lipgloss.NewStyle().Faint(true)
	laneStyles    = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
	}
)

func laneStyle(rank int) lipgloss.Style {
	if rank < 0 || rank >= len(laneStyles) {
		return laneStyles[len(laneStyles)-1]
	}
	return laneStyles[rank]
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + "\n")
	if data.Loading != "" {
		b.WriteString(data.Loading + "\n")
	}
	total := 0
	for _, lane := range data.Lanes {
		total += len(lane.Lines)
		b.WriteString("\n" + laneStyle(lane.Rank).Render(fmt.Sprintf("%s (%d)", lane.Name, countTopLevel(lane.Lines))) + "\n")
		if len(lane.Lines) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		for _, line := range lane.Lines {
			b.WriteString(RenderTaskLine(line) + "\n")
		}
	}
	if total == 0 && data.Empty != "" {
		b.WriteString("\n" + previewStyle.Render(data.Empty) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func countTopLevel(lines []TaskLineData) int {
	n := 0
	for _, l := range lines {
		if l.Depth == 0 {
			n++
		}
	}
	return n
}

func RenderTaskLine(data TaskLineData) string {
	cursor := "  "
	if data.Selected {
		cursor = cursorStyle.Render("> ")
	}
	indent := strings.Repeat("    ", data.Depth)

	box := "[ ]"
	if data.Completed {
		box = "[x]"
	}

	marker := " "
	if data.Subtasks > 0 {
		marker = "+"
		if data.Expanded {
			marker = "-"
		}
	}

	title := data.Title
	if data.Completed {
		title = doneStyle.Render(title)
	}
	parts := []string{cursor + indent + marker + box, title}
	if data.Subtasks > 0 {
		parts = append(parts, fmt.Sprintf("(%d)", data.Subtasks))
	}
	if data.DueDate != "" {
		style := dueStyle
		if data.Overdue && !data.Completed {
			style = overdueStyle
		}
		parts = append(parts, style.Render("@"+data.DueDate))
	}
	for _, tag := range data.Tags {
		parts = append(parts, tagStyle.Render("#"+tag))
	}
	if data.Category != "" {
		parts = append(parts, categoryStyle.Render(">"+data.Category))
	}
	if data.Archived {
		parts = append(parts, previewStyle.Render("[archived]"))
	}
	line := strings.Join(parts, " ")
	if data.Preview != "" {
		line += "\n" + cursorPad(data) + previewStyle.Render(data.Preview)
	}
	return line
}

func cursorPad(data TaskLineData) string {
	return "      " + strings.Repeat("    ", data.Depth)
}

func RenderDetails(data DetailsData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("priority: %s\n", data.Priority))
	if data.Category != "" {
		b.WriteString(fmt.Sprintf("category: %s\n", data.Category))
	}
	if data.DueDate != "" {
		b.WriteString(fmt.Sprintf("due: %s\n", data.DueDate))
	}
	if len(data.Tags) > 0 {
		b.WriteString(fmt.Sprintf("tags: %s\n", strings.Join(data.Tags, ", ")))
	}
	if len(data.Subtasks) > 0 {
		b.WriteString("\nsubtasks:\n")
		for _, sub := range data.Subtasks {
			sub.Depth = 0
			sub.Selected = false
			sub.Preview = ""
			b.WriteString(RenderTaskLine(sub) + "\n")
		}
	}
	if md := RenderMarkdown(data.Description); md != "" {
		b.WriteString("\n" + md + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s",
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
