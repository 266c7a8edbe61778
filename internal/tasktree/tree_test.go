package tasktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/sharpei/internal/dates"
	"github.com/sandeepkv93/sharpei/internal/model"
)

func due(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &v
}

func nestedRecords() []model.Task {
	return []model.Task{
		{
			ID: "1", Title: "Plan trip", Priority: model.PriorityHigh, Hashtags: "#travel, #summer",
			DueDate: due(2026, 6, 1),
			Subtasks: []model.Task{
				{ID: "2", Title: "Book flights", ParentID: "1", Priority: model.PriorityHigh, Hashtags: "#travel"},
				{ID: "3", Title: "Book hotel", ParentID: "1", Priority: model.PriorityNormal},
			},
		},
		{ID: "4", Title: "Water plants", Priority: model.PriorityNormal},
	}
}

func TestRebuildNormalizesNestedRecords(t *testing.T) {
	forest := Rebuild(nestedRecords())

	require.Len(t, forest, 2)
	assert.Equal(t, "2026-06-01", forest[0].DueDateStr)
	assert.Equal(t, []string{"#travel", "#summer"}, forest[0].Tags)
	require.Len(t, forest[0].Subtasks, 2)
	assert.Equal(t, []string{"#travel"}, forest[0].Subtasks[0].Tags)
	assert.Nil(t, forest[0].Subtasks[1].Tags)
	assert.Equal(t, "", forest[1].DueDateStr)
	assert.Nil(t, forest[1].Subtasks)
}

func TestRebuildNestsFlatRecords(t *testing.T) {
	flat := []model.Task{
		{ID: "1", Title: "Parent", Priority: model.PriorityNormal},
		{ID: "2", Title: "Child", ParentID: "1", Priority: model.PriorityNormal},
		{ID: "5", Title: "Orphan", ParentID: "9", Priority: model.PriorityLow},
		{ID: "6", Title: "Grandchild", ParentID: "2", Priority: model.PriorityLow},
	}

	forest := Rebuild(flat)

	require.Len(t, forest, 2)
	assert.Equal(t, "1", forest[0].ID)
	require.Len(t, forest[0].Subtasks, 1)
	assert.Equal(t, "2", forest[0].Subtasks[0].ID)
	assert.Equal(t, "5", forest[1].ID)
}

func TestRebuildDeduplicatesSubtasksSeenTwice(t *testing.T) {
	records := nestedRecords()
	records = append(records, model.Task{ID: "2", Title: "Book flights", ParentID: "1", Priority: model.PriorityHigh})

	forest := Rebuild(records)

	require.Len(t, forest, 2)
	assert.Len(t, forest[0].Subtasks, 2)
}

func TestRebuildDropsThirdLevel(t *testing.T) {
	records := []model.Task{{
		ID: "1", Title: "Root", Priority: model.PriorityNormal,
		Subtasks: []model.Task{{
			ID: "2", Title: "Child", ParentID: "1", Priority: model.PriorityNormal,
			Subtasks: []model.Task{{ID: "3", Title: "Too deep", ParentID: "2"}},
		}},
	}}

	forest := Rebuild(records)

	require.Len(t, forest[0].Subtasks, 1)
	assert.Nil(t, forest[0].Subtasks[0].Subtasks)
}

func TestRebuildKeepsParentCycleAtTopLevel(t *testing.T) {
	records := []model.Task{
		{ID: "a", Title: "A", ParentID: "b"},
		{ID: "b", Title: "B", ParentID: "a"},
		{ID: "c", Title: "C", ParentID: "a"},
		{ID: "s", Title: "Self", ParentID: "s"},
	}

	forest := Rebuild(records)

	require.Len(t, forest, 3)
	assert.Equal(t, "a", forest[0].ID)
	assert.Equal(t, "b", forest[1].ID)
	assert.Equal(t, "s", forest[2].ID)
	require.Len(t, forest[0].Subtasks, 1)
	assert.Equal(t, "c", forest[0].Subtasks[0].ID)
	assert.Equal(t, forest, Rebuild(forest))
}

func useLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestRebuildShowsDueDateInLocalCalendarDay(t *testing.T) {
	cases := []struct {
		name   string
		offset int
	}{
		{"utc+13", 13},
		{"utc+14", 14},
		{"utc-12", -12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loc := time.FixedZone(tc.name, tc.offset*3600)
			useLocal(t, loc)

			now := time.Date(2026, 10, 17, 9, 0, 0, 0, loc)
			tomorrow, ok := dates.Resolve("tomorrow", now)
			require.True(t, ok)
			stored := tomorrow.UTC()

			forest := Rebuild([]model.Task{{ID: "1", Title: "Pay rent", DueDate: &stored}})

			require.Len(t, forest, 1)
			assert.Equal(t, "2026-10-18", forest[0].DueDateStr)
			assert.Equal(t, loc, forest[0].DueDate.Location())
			assert.True(t, forest[0].DueDate.Equal(tomorrow))
		})
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	shapes := [][]model.Task{
		nil,
		nestedRecords(),
		{
			{ID: "1", Title: "Parent", Hashtags: " #a,,#b "},
			{ID: "2", Title: "Child", ParentID: "1", DueDate: due(2026, 1, 2)},
			{ID: "3", Title: "Orphan", ParentID: "7"},
		},
	}
	for _, records := range shapes {
		once := Rebuild(records)
		assert.Equal(t, once, Rebuild(once))
	}
}

func TestToggleCompletion(t *testing.T) {
	task := model.Task{ID: "1", Title: "Done long ago", Completed: true, Archived: true, Priority: model.PriorityLow, Position: 4}

	undone := ToggleCompletion(task)
	assert.False(t, undone.Completed)
	assert.False(t, undone.Archived)
	assert.Equal(t, model.PriorityLow, undone.Priority)
	assert.Equal(t, 4, undone.Position)

	redone := ToggleCompletion(undone)
	assert.True(t, redone.Completed)
	assert.False(t, redone.Archived)
}

func TestTreeExpansion(t *testing.T) {
	tree := New()
	tree.Replace(nestedRecords())

	assert.False(t, tree.IsExpanded("1"))
	tree.SetExpanded("1", true)
	tree.SetExpanded("1", true)
	assert.True(t, tree.IsExpanded("1"))
	assert.False(t, tree.IsExpanded("4"))
	assert.Len(t, tree.Rows(), 4)

	assert.False(t, tree.ToggleExpanded("1"))
	assert.Empty(t, tree.ExpandedIDs())
	assert.Len(t, tree.Rows(), 2)
}

func TestTreeFindByIDTopLevelOnly(t *testing.T) {
	tree := New()
	tree.Replace(nestedRecords())

	task, ok := tree.FindByID("4")
	require.True(t, ok)
	assert.Equal(t, "Water plants", task.Title)

	_, ok = tree.FindByID("2")
	assert.False(t, ok)

	sub, ok := tree.FindSubtask("2")
	require.True(t, ok)
	assert.Equal(t, "Book flights", sub.Title)
}

func TestTreePatch(t *testing.T) {
	tree := New()
	tree.Replace(nestedRecords())

	task, _ := tree.FindByID("4")
	task.Priority = model.PriorityLow
	require.True(t, tree.Patch(task))
	got, _ := tree.FindByID("4")
	assert.Equal(t, model.PriorityLow, got.Priority)

	sub, _ := tree.FindSubtask("3")
	sub.Completed = true
	require.True(t, tree.Patch(sub))
	got, _ = tree.FindSubtask("3")
	assert.True(t, got.Completed)

	assert.False(t, tree.Patch(model.Task{ID: "missing"}))
}

func TestTreeLanesAndApplyMove(t *testing.T) {
	tree := New()
	tree.Replace([]model.Task{
		{ID: "a", Title: "A", Priority: model.PriorityHigh},
		{ID: "b", Title: "B", Priority: model.PriorityNormal},
		{ID: "c", Title: "C", Priority: model.PriorityNormal},
		{ID: "d", Title: "D", Priority: model.PriorityNormal},
		{ID: "e", Title: "E", Priority: model.PriorityLow},
	})

	assert.Equal(t, []string{"b", "c", "d"}, tree.Lane(model.PriorityNormal))

	tree.ApplyMove("d", model.PriorityNormal, []string{"d", "b", "c"})
	assert.Equal(t, []string{"d", "b", "c"}, tree.Lane(model.PriorityNormal))

	tree.ApplyMove("a", model.PriorityLow, []string{"e", "a"})
	moved, _ := tree.FindByID("a")
	moved.Priority = model.PriorityLow
	tree.Patch(moved)
	assert.Empty(t, tree.Lane(model.PriorityHigh))
	assert.Equal(t, []string{"e", "a"}, tree.Lane(model.PriorityLow))
	assert.Equal(t, 5, tree.Len())
}

func TestRowsGroupByLane(t *testing.T) {
	tree := New()
	tree.Replace([]model.Task{
		{ID: "low", Title: "Low", Priority: model.PriorityLow},
		{ID: "high", Title: "High", Priority: model.PriorityHigh},
	})

	rows := tree.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].Task.ID)
	assert.Equal(t, model.PriorityLow, rows[1].Lane)
}
