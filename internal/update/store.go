package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sharpei/internal/api"
	domainmodel "github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/reorder"
)

// Store calls run inside tea.Cmd goroutines and report back as messages.
// They never touch Model state. Request deadlines come from the store's
// HTTP client.

func loadTasksCmd(store api.Store, q api.TaskQuery) tea.Cmd {
	return func() tea.Msg {
		tasks, err := store.ListTasks(context.Background(), q)
		if err != nil {
			return tasksLoadedMsg{Err: fmt.Errorf("load tasks: %w", err)}
		}
		return tasksLoadedMsg{Tasks: tasks}
	}
}

func loadCategoriesCmd(store api.Store) tea.Cmd {
	return func() tea.Msg {
		cats, err := store.ListCategories(context.Background())
		if err != nil {
			return categoriesLoadedMsg{Err: fmt.Errorf("load categories: %w", err)}
		}
		return categoriesLoadedMsg{Categories: cats}
	}
}

func createTaskCmd(store api.Store, task domainmodel.Task) tea.Cmd {
	return func() tea.Msg {
		created, err := store.CreateTask(context.Background(), task)
		if err != nil {
			return mutationDoneMsg{Err: fmt.Errorf("add task: %w", err)}
		}
		return mutationDoneMsg{Status: fmt.Sprintf("added: %s", created.Title), Refetch: true}
	}
}

func updateTaskCmd(store api.Store, task domainmodel.Task) tea.Cmd {
	return func() tea.Msg {
		saved, err := store.UpdateTask(context.Background(), task)
		if err != nil {
			return taskSavedMsg{Err: fmt.Errorf("save task: %w", err)}
		}
		return taskSavedMsg{Task: saved}
	}
}

func deleteTaskCmd(store api.Store, id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteTask(context.Background(), id); err != nil {
			return mutationDoneMsg{Err: fmt.Errorf("delete task: %w", err)}
		}
		return mutationDoneMsg{Status: fmt.Sprintf("deleted: %s", title), Refetch: true}
	}
}

func archiveCompletedCmd(store api.Store, categoryID string) tea.Cmd {
	return func() tea.Msg {
		n, err := store.ArchiveCompleted(context.Background(), categoryID)
		if err != nil {
			return mutationDoneMsg{Err: fmt.Errorf("archive completed: %w", err)}
		}
		return mutationDoneMsg{Status: fmt.Sprintf("archived %d completed tasks", n), Refetch: true}
	}
}

func createCategoryCmd(store api.Store, name string) tea.Cmd {
	return func() tea.Msg {
		cat, err := store.CreateCategory(context.Background(), name)
		if err != nil {
			return mutationDoneMsg{Err: fmt.Errorf("add category: %w", err)}
		}
		return mutationDoneMsg{Status: fmt.Sprintf("category added: %s", cat.Name), ReloadCategories: true}
	}
}

func deleteCategoryCmd(store api.Store, cat domainmodel.Category) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteCategory(context.Background(), cat.ID); err != nil {
			return mutationDoneMsg{Err: fmt.Errorf("delete category: %w", err)}
		}
		return mutationDoneMsg{Status: fmt.Sprintf("category deleted: %s", cat.Name), Refetch: true, ReloadCategories: true}
	}
}

func persistMoveCmd(coord *reorder.Coordinator, plan reorder.Plan) tea.Cmd {
	return func() tea.Msg {
		out, err := coord.Persist(context.Background(), plan)
		return moveDoneMsg{Outcome: out, Err: err}
	}
}
