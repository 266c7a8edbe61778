package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate")
)

type Repository interface {
	CreateCategory(ctx context.Context, in Category) error
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateTask(ctx context.Context, in Task) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
	ListChildren(ctx context.Context, parentID string) ([]Task, error)
	ReorderTasks(ctx context.Context, ids []string) error
	ArchiveCompleted(ctx context.Context, categoryID string) (int64, error)
}
