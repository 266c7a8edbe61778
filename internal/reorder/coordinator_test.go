package reorder

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
)

type fakeStore struct {
	reorders   [][]string
	updates    []model.Task
	reorderErr error
	updateErr  error
}

func (f *fakeStore) Reorder(_ context.Context, ids []string) error {
	if f.reorderErr != nil {
		return f.reorderErr
	}
	f.reorders = append(f.reorders, append([]string(nil), ids...))
	return nil
}

func (f *fakeStore) UpdateTask(_ context.Context, task model.Task) (model.Task, error) {
	if f.updateErr != nil {
		return model.Task{}, f.updateErr
	}
	f.updates = append(f.updates, task)
	return task, nil
}

func setup(t *testing.T) (*fakeStore, *Coordinator, *tasktree.Tree) {
	t.Helper()
	store := &fakeStore{}
	tree := tasktree.New()
	tree.Replace([]model.Task{
		{ID: "a", Title: "A", Priority: model.PriorityHigh, Hashtags: "#x", Position: 1},
		{ID: "b", Title: "B", Priority: model.PriorityNormal, Position: 1},
		{ID: "c", Title: "C", Priority: model.PriorityNormal, Position: 2},
		{ID: "d", Title: "D", Priority: model.PriorityLow, Position: 1},
	})
	return store, NewCoordinator(store, log.New(io.Discard)), tree
}

func TestSameBucketMoveOnlyReorders(t *testing.T) {
	store, coord, tree := setup(t)

	out, err := coord.Move(context.Background(), tree, MoveEvent{
		MovedID: "c", Source: model.PriorityNormal, Dest: model.PriorityNormal, DestOrder: []string{"c", "b"},
	})

	require.NoError(t, err)
	assert.False(t, out.CrossBucket)
	assert.True(t, out.Refetch)
	assert.Equal(t, [][]string{{"c", "b"}}, store.reorders)
	assert.Empty(t, store.updates)
	for _, task := range tree.Forest() {
		assert.Equal(t, map[string]model.Priority{"a": 0, "b": 1, "c": 1, "d": 2}[task.ID], task.Priority, task.ID)
	}
	assert.Equal(t, []string{"c", "b"}, tree.Lane(model.PriorityNormal))
}

func TestCrossBucketMoveChangesOnlyMovedPriority(t *testing.T) {
	store, coord, tree := setup(t)

	out, err := coord.Move(context.Background(), tree, MoveEvent{
		MovedID: "a", Source: model.PriorityHigh, Dest: model.PriorityLow, DestOrder: []string{"a", "d"},
	})

	require.NoError(t, err)
	assert.True(t, out.CrossBucket)
	assert.True(t, out.Refetch)
	assert.Equal(t, [][]string{{"a", "d"}}, store.reorders)
	require.Len(t, store.updates, 1)
	saved := store.updates[0]
	assert.Equal(t, "a", saved.ID)
	assert.Equal(t, model.PriorityLow, saved.Priority)
	assert.Equal(t, "A", saved.Title)
	assert.Equal(t, "#x", saved.Hashtags)

	moved, _ := tree.FindByID("a")
	assert.Equal(t, model.PriorityLow, moved.Priority)
	other, _ := tree.FindByID("b")
	assert.Equal(t, model.PriorityNormal, other.Priority)
	assert.Equal(t, []string{"a", "d"}, tree.Lane(model.PriorityLow))
}

func TestOrderFailureSkipsPriorityUpdate(t *testing.T) {
	store, coord, tree := setup(t)
	store.reorderErr = errors.New("store down")

	plan, err := coord.Plan(tree, MoveEvent{
		MovedID: "b", Source: model.PriorityNormal, Dest: model.PriorityHigh, DestOrder: []string{"a", "b"},
	})
	require.NoError(t, err)
	out, err := coord.Persist(context.Background(), plan)

	require.ErrorIs(t, err, ErrOrderNotPersisted)
	assert.False(t, out.Refetch)
	assert.Empty(t, store.updates)
}

func TestPriorityFailureIsPartial(t *testing.T) {
	store, coord, tree := setup(t)
	store.updateErr = errors.New("conflict")

	out, err := coord.Move(context.Background(), tree, MoveEvent{
		MovedID: "d", Source: model.PriorityLow, Dest: model.PriorityNormal, DestOrder: []string{"b", "d", "c"},
	})

	require.ErrorIs(t, err, ErrPriorityNotPersisted)
	assert.True(t, out.Refetch)
	assert.Nil(t, out.Saved)
	assert.Equal(t, [][]string{{"b", "d", "c"}}, store.reorders)
}

func TestPlanRejectsInvalidMoves(t *testing.T) {
	_, coord, tree := setup(t)

	cases := []MoveEvent{
		{MovedID: "", Source: model.PriorityHigh, Dest: model.PriorityHigh, DestOrder: []string{"a"}},
		{MovedID: "a", Source: model.PriorityHigh, Dest: model.Priority(9), DestOrder: []string{"a"}},
		{MovedID: "a", Source: model.PriorityHigh, Dest: model.PriorityHigh, DestOrder: []string{"b"}},
		{MovedID: "zz", Source: model.PriorityHigh, Dest: model.PriorityHigh, DestOrder: []string{"zz"}},
	}
	for _, ev := range cases {
		_, err := coord.Plan(tree, ev)
		assert.ErrorIs(t, err, ErrInvalidMove, ev.MovedID)
	}
}

func TestPlanDoesNotMutateTree(t *testing.T) {
	_, coord, tree := setup(t)

	plan, err := coord.Plan(tree, MoveEvent{
		MovedID: "a", Source: model.PriorityHigh, Dest: model.PriorityNormal, DestOrder: []string{"b", "a", "c"},
	})

	require.NoError(t, err)
	require.NotNil(t, plan.Patched)
	assert.Equal(t, model.PriorityNormal, plan.Patched.Priority)
	original, _ := tree.FindByID("a")
	assert.Equal(t, model.PriorityHigh, original.Priority)
}
