package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/storage"
)

func setupServer(t *testing.T) (*api.Client, *httptest.Server) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	seq := 0
	clock := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	srv := New(repo, log.New(io.Discard),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%02d", seq)
		}),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL, 5*time.Second, api.WithLogger(log.New(io.Discard))), ts
}

func TestCreateAndListTasksOrdered(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	first, err := c.CreateTask(ctx, model.Task{Title: "first", Priority: model.PriorityNormal})
	require.NoError(t, err)
	second, err := c.CreateTask(ctx, model.Task{Title: "second", Priority: model.PriorityNormal})
	require.NoError(t, err)
	urgent, err := c.CreateTask(ctx, model.Task{Title: "urgent", Priority: model.PriorityHigh})
	require.NoError(t, err)

	assert.Equal(t, first.Position+1, second.Position)

	tasks, err := c.ListTasks(ctx, api.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{urgent.ID, first.ID, second.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestListNestsSubtasks(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	parent, err := c.CreateTask(ctx, model.Task{Title: "parent"})
	require.NoError(t, err)
	child, err := c.CreateTask(ctx, model.Task{Title: "child", ParentID: parent.ID})
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx, api.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Len(t, tasks[0].Subtasks, 1)
	assert.Equal(t, child.ID, tasks[0].Subtasks[0].ID)

	got, err := c.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)
}

func TestCreateRejectsGrandchild(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	parent, err := c.CreateTask(ctx, model.Task{Title: "parent"})
	require.NoError(t, err)
	child, err := c.CreateTask(ctx, model.Task{Title: "child", ParentID: parent.ID})
	require.NoError(t, err)

	_, err = c.CreateTask(ctx, model.Task{Title: "grandchild", ParentID: child.ID})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, model.ErrNestedTooDeep.Error(), se.Detail)
}

func TestUpdateRejectsReparentingTaskWithSubtasks(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	other, err := c.CreateTask(ctx, model.Task{Title: "other"})
	require.NoError(t, err)
	parent, err := c.CreateTask(ctx, model.Task{Title: "parent"})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.Task{Title: "child", ParentID: parent.ID})
	require.NoError(t, err)

	parent.ParentID = other.ID
	parent.Subtasks = nil
	_, err = c.UpdateTask(ctx, parent)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, model.ErrNestedTooDeep.Error(), se.Detail)

	got, err := c.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ParentID)

	leaf, err := c.CreateTask(ctx, model.Task{Title: "leaf"})
	require.NoError(t, err)
	leaf.ParentID = other.ID
	moved, err := c.UpdateTask(ctx, leaf)
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.ParentID)
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, model.Task{Title: "   "})
	require.Error(t, err)

	_, err = c.CreateTask(ctx, model.Task{Title: "x", Priority: model.Priority(9)})
	require.Error(t, err)

	_, err = c.CreateTask(ctx, model.Task{Title: "x", CategoryID: "missing"})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "unknown category", se.Detail)
}

func TestSearchIncludesSubtasks(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	parent, err := c.CreateTask(ctx, model.Task{Title: "groceries"})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.Task{Title: "buy milk", ParentID: parent.ID})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.Task{Title: "call mom", Hashtags: "family"})
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx, api.TaskQuery{Query: "milk"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.Equal(t, parent.ID, tasks[0].ParentID)

	tasks, err = c.ListTasks(ctx, api.TaskQuery{Query: "FAMILY"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "call mom", tasks[0].Title)
}

func TestUpdatePreservesPositionAndUnarchives(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, model.Task{Title: "a"})
	require.NoError(t, err)
	b, err := c.CreateTask(ctx, model.Task{Title: "b"})
	require.NoError(t, err)

	b.Completed = true
	b.Archived = true
	b.Title = "b renamed"
	b.Position = 99
	saved, err := c.UpdateTask(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Position)
	assert.True(t, saved.Archived)

	saved.Completed = false
	saved, err = c.UpdateTask(ctx, saved)
	require.NoError(t, err)
	assert.False(t, saved.Archived)
	assert.Equal(t, "b renamed", saved.Title)
}

func TestUpdateMissingTask(t *testing.T) {
	c, _ := setupServer(t)
	_, err := c.UpdateTask(context.Background(), model.Task{ID: "nope", Title: "x"})
	assert.True(t, api.IsNotFound(err))
}

func TestReorderSetsPositions(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	a, err := c.CreateTask(ctx, model.Task{Title: "a"})
	require.NoError(t, err)
	b, err := c.CreateTask(ctx, model.Task{Title: "b"})
	require.NoError(t, err)
	d, err := c.CreateTask(ctx, model.Task{Title: "d"})
	require.NoError(t, err)

	require.NoError(t, c.Reorder(ctx, []string{d.ID, a.ID, b.ID}))

	tasks, err := c.ListTasks(ctx, api.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{d.ID, a.ID, b.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestArchiveCompletedHidesTasks(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	done, err := c.CreateTask(ctx, model.Task{Title: "done", Completed: true})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.Task{Title: "open"})
	require.NoError(t, err)

	n, err := c.ArchiveCompleted(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err := c.ListTasks(ctx, api.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "open", tasks[0].Title)

	tasks, err = c.ListTasks(ctx, api.TaskQuery{ShowArchived: true})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	got, err := c.GetTask(ctx, done.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestCategoriesLifecycle(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	work, err := c.CreateCategory(ctx, "Work")
	require.NoError(t, err)
	_, err = c.CreateCategory(ctx, "Work")
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)

	task, err := c.CreateTask(ctx, model.Task{Title: "report", CategoryID: work.ID})
	require.NoError(t, err)

	scoped, err := c.ListTasks(ctx, api.TaskQuery{CategoryID: work.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	require.NoError(t, c.DeleteCategory(ctx, work.ID))
	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	got, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)

	assert.True(t, api.IsNotFound(c.DeleteCategory(ctx, work.ID)))
}

func TestDeleteTaskRemovesSubtasks(t *testing.T) {
	c, _ := setupServer(t)
	ctx := context.Background()

	parent, err := c.CreateTask(ctx, model.Task{Title: "parent"})
	require.NoError(t, err)
	child, err := c.CreateTask(ctx, model.Task{Title: "child", ParentID: parent.ID})
	require.NoError(t, err)

	require.NoError(t, c.DeleteTask(ctx, parent.ID))
	_, err = c.GetTask(ctx, child.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestUnknownRouteReturnsDetail(t *testing.T) {
	_, ts := setupServer(t)
	resp, err := http.Get(ts.URL + "/api/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"detail"`))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(repo, log.New(io.Discard)).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
