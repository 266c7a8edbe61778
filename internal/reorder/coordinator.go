// Package reorder turns a finished move gesture into store writes.
//
// A move always persists the full order of the destination bucket. When the
// task changed buckets its priority is patched locally first and then saved
// through the regular task update. The two writes are not atomic: if the
// second one fails the order is stored but the priority is not.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
)

var (
	ErrInvalidMove          = errors.New("reorder: invalid move")
	ErrOrderNotPersisted    = errors.New("reorder: order not saved")
	ErrPriorityNotPersisted = errors.New("reorder: order saved but priority change failed")
)

// MoveEvent is what the gesture layer reports once a drag ends.
type MoveEvent struct {
	MovedID   string
	Source    model.Priority
	Dest      model.Priority
	DestOrder []string
}

func (e MoveEvent) CrossBucket() bool {
	return e.Source != e.Dest
}

// Store is the slice of the task store the coordinator writes to.
type Store interface {
	Reorder(ctx context.Context, ids []string) error
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
}

// Plan is a validated move plus the optimistic patch to apply before the
// store confirms it.
type Plan struct {
	Event   MoveEvent
	Patched *model.Task
}

type Outcome struct {
	CrossBucket bool
	// Refetch asks the caller to re-read the task list from the store.
	Refetch bool
	Saved   *model.Task
}

type Coordinator struct {
	store  Store
	logger *log.Logger
}

func NewCoordinator(store Store, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{store: store, logger: logger.WithPrefix("reorder")}
}

// Plan validates ev against the tree. For a cross-bucket move the returned
// plan carries the moved task with its priority set to the destination.
func (c *Coordinator) Plan(tree *tasktree.Tree, ev MoveEvent) (Plan, error) {
	if ev.MovedID == "" {
		return Plan{}, fmt.Errorf("%w: no task moved", ErrInvalidMove)
	}
	if !ev.Dest.IsValid() || !ev.Source.IsValid() {
		return Plan{}, fmt.Errorf("%w: unknown bucket %d -> %d", ErrInvalidMove, ev.Source, ev.Dest)
	}
	if !slices.Contains(ev.DestOrder, ev.MovedID) {
		return Plan{}, fmt.Errorf("%w: %s missing from destination order", ErrInvalidMove, ev.MovedID)
	}
	task, ok := tree.FindByID(ev.MovedID)
	if !ok {
		return Plan{}, fmt.Errorf("%w: unknown task %s", ErrInvalidMove, ev.MovedID)
	}
	plan := Plan{Event: ev}
	if ev.CrossBucket() {
		task.Priority = ev.Dest
		plan.Patched = &task
	}
	return plan, nil
}

// Persist writes the plan to the store. It never retries.
func (c *Coordinator) Persist(ctx context.Context, plan Plan) (Outcome, error) {
	ev := plan.Event
	out := Outcome{CrossBucket: ev.CrossBucket()}

	if err := c.store.Reorder(ctx, ev.DestOrder); err != nil {
		c.logger.Error("persist order", "task", ev.MovedID, "bucket", ev.Dest, "err", err)
		return out, fmt.Errorf("%w: %w", ErrOrderNotPersisted, err)
	}
	c.logger.Debug("order saved", "task", ev.MovedID, "bucket", ev.Dest, "size", len(ev.DestOrder))

	if !out.CrossBucket || plan.Patched == nil {
		out.Refetch = true
		return out, nil
	}

	saved, err := c.store.UpdateTask(ctx, *plan.Patched)
	out.Refetch = true
	if err != nil {
		c.logger.Error("persist priority", "task", ev.MovedID, "from", ev.Source, "to", ev.Dest, "err", err)
		return out, fmt.Errorf("%w: %w", ErrPriorityNotPersisted, err)
	}
	c.logger.Debug("priority saved", "task", ev.MovedID, "from", ev.Source, "to", ev.Dest)
	out.Saved = &saved
	return out, nil
}

// Move plans, patches the tree and persists in one call. Callers that must
// keep the tree on a single goroutine use Plan and Persist separately.
func (c *Coordinator) Move(ctx context.Context, tree *tasktree.Tree, ev MoveEvent) (Outcome, error) {
	plan, err := c.Plan(tree, ev)
	if err != nil {
		return Outcome{}, err
	}
	tree.ApplyMove(ev.MovedID, ev.Dest, ev.DestOrder)
	if plan.Patched != nil {
		tree.Patch(*plan.Patched)
	}
	return c.Persist(ctx, plan)
}
