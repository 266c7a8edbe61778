package model

import (
	"errors"
	"testing"
)

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		ID:       "task-1",
		Title:    "Buy milk",
		Priority: PriorityHigh,
		Subtasks: []Task{{ID: "task-2", Title: "Find wallet", Priority: PriorityNormal, ParentID: "task-1"}},
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateArchivedRequiresCompleted(t *testing.T) {
	task := Task{ID: "task-1", Title: "Old task", Priority: PriorityLow, Archived: true}
	err := task.Validate()
	if !errors.Is(err, ErrArchivedNotCompleted) {
		t.Fatalf("expected ErrArchivedNotCompleted, got: %v", err)
	}
	task.Completed = true
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid archived task, got: %v", err)
	}
}

func TestTaskValidateInvalidPriorityAndDepth(t *testing.T) {
	task := Task{ID: "task-1", Title: "Bad priority", Priority: Priority(7)}
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	nested := Task{
		ID:       "task-1",
		Title:    "Parent",
		Priority: PriorityNormal,
		ParentID: "task-0",
		Subtasks: []Task{{ID: "task-2", Title: "Child", Priority: PriorityNormal}},
	}
	if err := nested.Validate(); !errors.Is(err, ErrNestedTooDeep) {
		t.Fatalf("expected ErrNestedTooDeep, got: %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want Priority
	}{
		{"High", PriorityHigh},
		{"0", PriorityHigh},
		{"", PriorityNormal},
		{"low", PriorityLow},
		{"l", PriorityLow},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q = %s, want %s", tc.in, got, tc.want)
		}
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestFindCategoryByName(t *testing.T) {
	cats := []Category{{ID: "c1", Name: "Home"}, {ID: "c2", Name: "Work"}}
	got, ok := FindCategoryByName(cats, "home")
	if !ok || got.ID != "c1" {
		t.Fatalf("expected Home match, got %+v ok=%v", got, ok)
	}
	if _, ok := FindCategoryByName(cats, "Hom"); ok {
		t.Fatal("expected no partial match")
	}
	if _, ok := FindCategoryByName(cats, ""); ok {
		t.Fatal("expected no match for empty name")
	}
}
