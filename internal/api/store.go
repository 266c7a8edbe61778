// Package api defines the task/category store the client talks to and an
// HTTP implementation of it.
package api

import (
	"context"

	"github.com/sandeepkv93/sharpei/internal/model"
)

// TaskQuery narrows a task listing. Zero values mean "no filter".
type TaskQuery struct {
	CategoryID   string
	Query        string
	ShowArchived bool
}

type Store interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	// DeleteCategory leaves the category's tasks uncategorized.
	DeleteCategory(ctx context.Context, id string) error

	ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// Reorder applies ids as the new relative order of the bucket they share.
	Reorder(ctx context.Context, ids []string) error
	// ArchiveCompleted archives completed tasks, in one category when
	// categoryID is set, and returns how many were archived.
	ArchiveCompleted(ctx context.Context, categoryID string) (int, error)
}

// Wire payloads shared by the client and the server.

type ReorderRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type ArchiveResponse struct {
	Archived int    `json:"archived"`
	Message  string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
