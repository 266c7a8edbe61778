package storage

import "time"

type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Task struct {
	ID          string
	Title       string
	Description string
	DueAt       *time.Time
	Priority    int
	Position    int
	Hashtags    string
	Completed   bool
	Archived    bool
	CategoryID  string
	ParentID    string
	CreatedAt   time.Time
}

type TaskListFilter struct {
	CategoryID      string
	Search          string
	IncludeArchived bool
	Priority        *int
	// TopLevelOnly hides subtasks; ignored when Search is set so matching
	// subtasks are found too.
	TopLevelOnly bool
	Limit        int
	Offset       int
}
