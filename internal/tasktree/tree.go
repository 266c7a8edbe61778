// Package tasktree holds the client-side projection of the task store: a
// forest of top-level tasks, each owning at most one level of subtasks.
package tasktree

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/sandeepkv93/sharpei/internal/dates"
	"github.com/sandeepkv93/sharpei/internal/model"
)

// Rebuild normalizes raw store records into a forest. Records may arrive
// nested (top-level tasks carrying subtasks) or flat (search results, where
// subtasks are listed alongside their parents). A flat record whose parent is
// in the same batch is attached to it; one whose parent is absent stays at
// the top level. Rebuild(Rebuild(x)) equals Rebuild(x).
func Rebuild(records []model.Task) []model.Task {
	present := make(map[string]bool, len(records))
	parentOf := make(map[string]string, len(records))
	for _, r := range records {
		if !present[r.ID] {
			parentOf[r.ID] = r.ParentID
		}
		present[r.ID] = true
	}

	out := make([]model.Task, 0, len(records))
	index := make(map[string]int, len(records))
	var children []model.Task
	for _, r := range records {
		if r.ParentID != "" && present[r.ParentID] && !inCycle(r.ID, parentOf) {
			children = append(children, r)
			continue
		}
		if _, dup := index[r.ID]; dup {
			continue
		}
		node := normalize(r)
		node.Subtasks = rebuildSubtasks(r.Subtasks, nil)
		index[r.ID] = len(out)
		out = append(out, node)
	}

	// Children of children are beyond the supported depth and are dropped.
	for _, c := range children {
		i, ok := index[c.ParentID]
		if !ok {
			continue
		}
		out[i].Subtasks = rebuildSubtasks(out[i].Subtasks, []model.Task{c})
	}
	return out
}

// inCycle reports whether following parent links from id leads back to id.
// Tasks on a cycle have no reachable root and are kept at the top level.
func inCycle(id string, parentOf map[string]string) bool {
	cur := id
	for range len(parentOf) {
		p, ok := parentOf[cur]
		if !ok || p == "" {
			return false
		}
		if p == id {
			return true
		}
		cur = p
	}
	return false
}

func rebuildSubtasks(existing, extra []model.Task) []model.Task {
	if len(existing)+len(extra) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(existing)+len(extra))
	out := make([]model.Task, 0, len(existing)+len(extra))
	for _, group := range [][]model.Task{existing, extra} {
		for _, s := range group {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			node := normalize(s)
			node.Subtasks = nil
			out = append(out, node)
		}
	}
	return out
}

func normalize(t model.Task) model.Task {
	t.DueDateStr = ""
	if t.DueDate != nil {
		// the store may hand dates back in UTC; the calendar day is the local one
		local := t.DueDate.In(time.Local)
		t.DueDate = &local
		t.DueDateStr = dates.Format(local)
	}
	t.Tags = SplitTags(t.Hashtags)
	return t
}

// SplitTags splits a stored hashtag string on runs of whitespace and commas.
func SplitTags(raw string) []string {
	tags := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// ToggleCompletion flips completion. Un-completing also un-archives; completing
// never archives, that only happens through the bulk archive operation.
func ToggleCompletion(t model.Task) model.Task {
	t.Completed = !t.Completed
	if !t.Completed {
		t.Archived = false
	}
	return t
}

// Tree is the mutable view state: the current forest plus the set of tasks
// whose subtasks are shown.
type Tree struct {
	forest   []model.Task
	expanded map[string]bool
}

func New() *Tree {
	return &Tree{expanded: make(map[string]bool)}
}

// Replace swaps in a freshly fetched set of records.
func (t *Tree) Replace(records []model.Task) {
	t.forest = Rebuild(records)
}

func (t *Tree) Forest() []model.Task {
	return t.forest
}

func (t *Tree) Len() int {
	return len(t.forest)
}

// FindByID looks at top-level tasks only.
func (t *Tree) FindByID(id string) (model.Task, bool) {
	for _, task := range t.forest {
		if task.ID == id {
			return task, true
		}
	}
	return model.Task{}, false
}

// FindSubtask searches the subtasks of every top-level task.
func (t *Tree) FindSubtask(id string) (model.Task, bool) {
	for _, task := range t.forest {
		for _, sub := range task.Subtasks {
			if sub.ID == id {
				return sub, true
			}
		}
	}
	return model.Task{}, false
}

// Patch replaces a task in place, top-level or subtask. It reports false when
// the id is unknown.
func (t *Tree) Patch(task model.Task) bool {
	for i := range t.forest {
		if t.forest[i].ID == task.ID {
			node := normalize(task)
			node.Subtasks = rebuildSubtasks(task.Subtasks, nil)
			t.forest[i] = node
			return true
		}
		for j := range t.forest[i].Subtasks {
			if t.forest[i].Subtasks[j].ID == task.ID {
				node := normalize(task)
				node.Subtasks = nil
				t.forest[i].Subtasks[j] = node
				return true
			}
		}
	}
	return false
}

func (t *Tree) SetExpanded(id string, expanded bool) {
	if t.expanded == nil {
		t.expanded = make(map[string]bool)
	}
	if expanded {
		t.expanded[id] = true
		return
	}
	delete(t.expanded, id)
}

func (t *Tree) IsExpanded(id string) bool {
	return t.expanded[id]
}

// ToggleExpanded flips the expansion of id and returns the new state.
func (t *Tree) ToggleExpanded(id string) bool {
	next := !t.IsExpanded(id)
	t.SetExpanded(id, next)
	return next
}

func (t *Tree) ExpandedIDs() []string {
	ids := make([]string, 0, len(t.expanded))
	for id := range t.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lane returns the ids of the top-level tasks in a priority bucket, in
// display order.
func (t *Tree) Lane(p model.Priority) []string {
	ids := make([]string, 0)
	for _, task := range t.forest {
		if task.Priority == p {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// ApplyMove reorders the forest locally so the tasks of dest appear in
// destOrder. It only changes order; priorities are left to the caller.
func (t *Tree) ApplyMove(movedID string, dest model.Priority, destOrder []string) {
	byID := make(map[string]model.Task, len(t.forest))
	for _, task := range t.forest {
		byID[task.ID] = task
	}
	inDest := make(map[string]bool, len(destOrder))
	for _, id := range destOrder {
		inDest[id] = true
	}

	out := make([]model.Task, 0, len(t.forest))
	placed := make(map[string]bool, len(t.forest))
	for _, p := range model.Priorities {
		if p == dest {
			for _, id := range destOrder {
				if task, ok := byID[id]; ok && !placed[id] {
					out = append(out, task)
					placed[id] = true
				}
			}
			continue
		}
		for _, task := range t.forest {
			if task.Priority != p || task.ID == movedID || inDest[task.ID] || placed[task.ID] {
				continue
			}
			out = append(out, task)
			placed[task.ID] = true
		}
	}
	for _, task := range t.forest {
		if !placed[task.ID] {
			out = append(out, task)
		}
	}
	t.forest = out
}

// Row is one visible line of the forest.
type Row struct {
	Task  model.Task
	Lane  model.Priority
	Depth int
}

// Rows flattens the forest lane by lane, showing subtasks of expanded tasks.
func (t *Tree) Rows() []Row {
	rows := make([]Row, 0, len(t.forest))
	seen := make(map[string]bool, len(t.forest))
	for _, p := range model.Priorities {
		for _, task := range t.forest {
			if task.Priority != p {
				continue
			}
			seen[task.ID] = true
			rows = t.appendTask(rows, task, p)
		}
	}
	for _, task := range t.forest {
		if !seen[task.ID] {
			rows = t.appendTask(rows, task, task.Priority)
		}
	}
	return rows
}

func (t *Tree) appendTask(rows []Row, task model.Task, lane model.Priority) []Row {
	rows = append(rows, Row{Task: task, Lane: lane})
	if !t.IsExpanded(task.ID) {
		return rows
	}
	for _, sub := range task.Subtasks {
		rows = append(rows, Row{Task: sub, Lane: lane, Depth: 1})
	}
	return rows
}
