package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sharpei/internal/commands"
)

func (m Model) executePaletteCommand(raw string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(raw)
	if err != nil {
		return m, m.setStatus(err.Error(), true)
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			var model tea.Model
			model, next = m.submitQuickAdd(a.Line)
			m = model.(Model)
			return commands.Result{}, nil
		},
		Search: func(s commands.SearchArgs) (commands.Result, error) {
			m.Search = s.Query
			next = m.startLoad()
			if s.Query == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("searching for %q", s.Query)}, nil
		},
		Tag: func(t commands.TagArgs) (commands.Result, error) {
			m.Search = "#" + t.Tag
			next = m.startLoad()
			return commands.Result{Message: fmt.Sprintf("filtering by #%s", t.Tag)}, nil
		},
		Category: func(c commands.CategoryArgs) (commands.Result, error) {
			if c.All {
				m.SelectedCategory = ""
				m.Cursor = 0
				m.persistUIState()
				next = m.startLoad()
				return commands.Result{Message: "showing all tasks"}, nil
			}
			cat, err := commands.MatchCategory(c.Name, m.Categories)
			if err != nil {
				return commands.Result{}, err
			}
			m.SelectedCategory = cat.ID
			m.Cursor = 0
			m.persistUIState()
			next = m.startLoad()
			return commands.Result{Message: fmt.Sprintf("category: %s", cat.Name)}, nil
		},
		NewCat: func(n commands.NameArgs) (commands.Result, error) {
			next = createCategoryCmd(m.store, n.Name)
			return commands.Result{}, nil
		},
		DelCat: func(n commands.NameArgs) (commands.Result, error) {
			cat, err := commands.MatchCategory(n.Name, m.Categories)
			if err != nil {
				return commands.Result{}, err
			}
			if !strings.EqualFold(cat.Name, strings.TrimSpace(n.Name)) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("delcat needs the exact name (did you mean %q?)", cat.Name),
				}
			}
			if m.SelectedCategory == cat.ID {
				m.SelectedCategory = ""
				m.persistUIState()
			}
			next = deleteCategoryCmd(m.store, cat)
			return commands.Result{}, nil
		},
		Archive: func() (commands.Result, error) {
			next = archiveCompletedCmd(m.store, m.SelectedCategory)
			return commands.Result{}, nil
		},
		Archived: func() (commands.Result, error) {
			m.ShowArchived = !m.ShowArchived
			m.persistUIState()
			next = m.startLoad()
			if m.ShowArchived {
				return commands.Result{Message: "showing archived tasks"}, nil
			}
			return commands.Result{Message: "hiding archived tasks"}, nil
		},
	})
	if err != nil {
		return m, m.setStatus(err.Error(), true)
	}
	if res.Message != "" {
		return m, tea.Batch(next, m.setStatus(res.Message, false))
	}
	return m, next
}
