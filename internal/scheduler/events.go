package scheduler

import (
	"time"

	"github.com/sandeepkv93/sharpei/internal/model"
)

type DueKind string

const (
	// DueToday fires at the start of the due date.
	DueToday DueKind = "due"
	// Overdue fires at the start of the day after the due date.
	Overdue DueKind = "overdue"
)

type DueEvent struct {
	TaskID string
	Title  string
	Kind   DueKind
	At     time.Time
}

// EventsFor lists the future due-date transitions of every open task in the
// forest, subtasks included. Day boundaries are taken in now's location.
func EventsFor(forest []model.Task, now time.Time) []DueEvent {
	var out []DueEvent
	var walk func(tasks []model.Task)
	walk = func(tasks []model.Task) {
		for _, t := range tasks {
			walk(t.Subtasks)
			if t.DueDate == nil || t.Completed || t.Archived {
				continue
			}
			start := startOfDay(t.DueDate.In(now.Location()))
			if start.After(now) {
				out = append(out, DueEvent{TaskID: t.ID, Title: t.Title, Kind: DueToday, At: start})
			}
			if end := start.AddDate(0, 0, 1); end.After(now) {
				out = append(out, DueEvent{TaskID: t.ID, Title: t.Title, Kind: Overdue, At: end})
			}
		}
	}
	walk(forest)
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
