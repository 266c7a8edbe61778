package update

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	domainmodel "github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/reorder"
)

// moveSelected is the keyboard form of a drag. It moves the selected
// top-level task one slot up (dir < 0) or down within its lane; past the
// lane edge it crosses into the neighbouring lane.
func (m Model) moveSelected(dir int) (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	if row.Depth > 0 {
		return m, m.setStatus("subtasks keep their parent's order", true)
	}
	ev, ok := m.moveEvent(row.Task, dir)
	if !ok {
		return m, nil
	}

	plan, err := m.coordinator.Plan(m.Tree, ev)
	if err != nil {
		return m, m.fail("move", err)
	}
	m.Tree.ApplyMove(ev.MovedID, ev.Dest, ev.DestOrder)
	if plan.Patched != nil {
		m.Tree.Patch(*plan.Patched)
	}
	m.focusTask(ev.MovedID)
	return m, persistMoveCmd(m.coordinator, plan)
}

// moveEvent computes the destination lane and its new order. It reports
// false when the task is already at the outer edge of the outermost lane.
func (m Model) moveEvent(task domainmodel.Task, dir int) (reorder.MoveEvent, bool) {
	source := task.Priority
	lane := m.Tree.Lane(source)
	idx := slices.Index(lane, task.ID)
	if idx < 0 {
		return reorder.MoveEvent{}, false
	}

	target := idx + dir
	if target >= 0 && target < len(lane) {
		order := slices.Clone(lane)
		order[idx], order[target] = order[target], order[idx]
		return reorder.MoveEvent{MovedID: task.ID, Source: source, Dest: source, DestOrder: order}, true
	}

	dest := domainmodel.Priority(int(source) + dir)
	if !dest.IsValid() {
		return reorder.MoveEvent{}, false
	}
	destLane := m.Tree.Lane(dest)
	var order []string
	if dir < 0 {
		// entering the lane above from below lands at its end
		order = append(slices.Clone(destLane), task.ID)
	} else {
		order = append([]string{task.ID}, destLane...)
	}
	return reorder.MoveEvent{MovedID: task.ID, Source: source, Dest: dest, DestOrder: order}, true
}
