package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sharpei/internal/scheduler"
)

// waitForDue blocks on the next due event. It returns nil once the engine
// is stopped, which ends the listen loop.
func waitForDue(engine *scheduler.Engine) tea.Cmd {
	if engine == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-engine.C()
		if !ok {
			return nil
		}
		return dueMsg{Event: ev}
	}
}

// scheduleDue re-arms the due watcher for the freshly loaded forest.
func (m Model) scheduleDue() {
	if m.due == nil {
		return
	}
	if err := m.due.Replace(scheduler.EventsFor(m.Tree.Forest(), m.now())); err != nil {
		m.logger.Warn("schedule due dates", "err", err)
	}
}

func dueText(ev scheduler.DueEvent) string {
	if ev.Kind == scheduler.Overdue {
		return fmt.Sprintf("overdue: %s", ev.Title)
	}
	return fmt.Sprintf("due today: %s", ev.Title)
}
