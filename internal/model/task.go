package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPriority      = errors.New("model: invalid task priority")
	ErrArchivedNotCompleted = errors.New("model: archived task must be completed")
	ErrNestedTooDeep        = errors.New("model: subtasks cannot have subtasks")
)

// Priority doubles as the bucket key used for grouping and reordering.
type Priority int

const (
	PriorityHigh   Priority = 0
	PriorityNormal Priority = 1
	PriorityLow    Priority = 2
)

// Priorities lists every bucket in display order.
var Priorities = []Priority{PriorityHigh, PriorityNormal, PriorityLow}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityNormal:
		return "Normal"
	case PriorityLow:
		return "Low"
	default:
		return "Priority(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePriority accepts a label ("high") or its ordinal ("0").
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "h", "0":
		return PriorityHigh, nil
	case "normal", "n", "1", "":
		return PriorityNormal, nil
	case "low", "l", "2":
		return PriorityLow, nil
	default:
		return PriorityNormal, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Position    int        `json:"position"`
	DueDate     *time.Time `json:"due_date"`
	Hashtags    string     `json:"hashtags"`
	Completed   bool       `json:"completed"`
	Archived    bool       `json:"archived"`
	CategoryID  string     `json:"category_id,omitempty"`
	ParentID    string     `json:"parent_id,omitempty"`
	Subtasks    []Task     `json:"subtasks,omitempty"`

	// Derived on rebuild, never sent over the wire.
	DueDateStr string   `json:"-"`
	Tags       []string `json:"-"`
}

func (t Task) IsSubtask() bool {
	return t.ParentID != ""
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, t.Priority)
	}
	if t.Archived && !t.Completed {
		return ErrArchivedNotCompleted
	}
	if t.IsSubtask() && len(t.Subtasks) > 0 {
		return fmt.Errorf("%w: %s", ErrNestedTooDeep, t.ID)
	}
	for _, sub := range t.Subtasks {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("subtask %s: %w", sub.ID, err)
		}
	}
	return nil
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: category name is required")
	}
	return nil
}

// FindCategoryByName matches names case-insensitively and exactly.
func FindCategoryByName(categories []Category, name string) (Category, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, false
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}
