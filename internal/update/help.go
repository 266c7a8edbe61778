package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/sharpei/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.bindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) bindings() []KeyBinding {
	switch m.Mode {
	case ModeQuickAdd, ModeSubtask, ModeEdit:
		return []KeyBinding{
			{Key: "!high !low", Action: "priority"},
			{Key: "#tag", Action: "hashtag"},
			{Key: ">name", Action: "category"},
			{Key: "@today @tomorrow @+3d @+2w @monday @2026-03-01", Action: "due date"},
			{Key: "enter/esc", Action: "submit / cancel"},
		}
	case ModeDescription:
		return []KeyBinding{
			{Key: "enter/esc", Action: "save notes / cancel"},
		}
	case ModePalette:
		return []KeyBinding{
			{Key: "add <line>", Action: "quick add"},
			{Key: "search <text>", Action: "search"},
			{Key: "tag <#tag>", Action: "filter by tag"},
			{Key: "category <name|all>", Action: "select category"},
			{Key: "newcat/delcat <name>", Action: "manage categories"},
			{Key: "archive/archived", Action: "archive completed / toggle archived"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "a", Action: "quick add"},
			{Key: "s", Action: "add subtask"},
			{Key: "e", Action: "edit task"},
			{Key: "E", Action: "edit notes"},
			{Key: "/", Action: "search"},
			{Key: "esc", Action: "clear search"},
			{Key: "space", Action: "toggle done"},
			{Key: "enter", Action: "expand subtasks"},
			{Key: "d", Action: "delete"},
			{Key: "K/J", Action: "move task up/down"},
			{Key: "A", Action: "archive completed"},
			{Key: "v", Action: "toggle archived view"},
			{Key: "i", Action: "toggle details"},
			{Key: "[ ]", Action: "cycle category"},
			{Key: ":", Action: "command palette"},
			{Key: "r", Action: "refresh"},
			{Key: "q", Action: "quit"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	kbs := m.bindings()
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
