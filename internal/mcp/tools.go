package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/dates"
	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/quickadd"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
)

const maxLineSize = 4 << 10

// ToolHandler runs tool calls against the store.
type ToolHandler struct {
	store api.Store
	now   func() time.Time
}

func NewToolHandler(store api.Store, now func() time.Time) *ToolHandler {
	if now == nil {
		now = time.Now
	}
	return &ToolHandler{store: store, now: now}
}

// Handle dispatches a tool call by name.
func (h *ToolHandler) Handle(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "list_tasks":
		return h.listTasks(ctx, args)
	case "list_categories":
		return h.store.ListCategories(ctx)
	case "create_task":
		return h.createTask(ctx, args)
	case "add_subtask":
		return h.addSubtask(ctx, args)
	case "update_task":
		return h.updateTask(ctx, args)
	case "complete_task":
		return h.completeTask(ctx, args)
	case "delete_task":
		return h.deleteTask(ctx, args)
	case "archive_completed":
		return h.archiveCompleted(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

type taskList struct {
	Tasks []model.Task `json:"tasks"`
	Count int          `json:"count"`
}

func (h *ToolHandler) listTasks(ctx context.Context, args map[string]any) (any, error) {
	q := api.TaskQuery{Query: stringArg(args, "query")}
	q.ShowArchived, _ = args["show_archived"].(bool)
	if name := stringArg(args, "category"); name != "" {
		cat, err := h.category(ctx, name)
		if err != nil {
			return nil, err
		}
		q.CategoryID = cat.ID
	}
	tasks, err := h.store.ListTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	forest := tasktree.Rebuild(tasks)
	return taskList{Tasks: forest, Count: len(forest)}, nil
}

func (h *ToolHandler) createTask(ctx context.Context, args map[string]any) (any, error) {
	res, err := h.parseLine(args)
	if err != nil {
		return nil, err
	}
	categoryID := ""
	if res.CategoryName != "" {
		cat, err := h.category(ctx, res.CategoryName)
		if err != nil {
			return nil, err
		}
		categoryID = cat.ID
	}
	task := res.Task(categoryID)
	task.Description = stringArg(args, "description")
	return h.store.CreateTask(ctx, task)
}

// addSubtask creates a subtask with its parent's priority and category.
// Markers in the line other than those two still apply.
func (h *ToolHandler) addSubtask(ctx context.Context, args map[string]any) (any, error) {
	parentID := stringArg(args, "parent_id")
	if parentID == "" {
		return nil, fmt.Errorf("parent_id is required")
	}
	res, err := h.parseLine(args)
	if err != nil {
		return nil, err
	}
	parent, err := h.store.GetTask(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("load parent: %w", err)
	}
	if parent.IsSubtask() {
		return nil, model.ErrNestedTooDeep
	}
	task := res.Task(parent.CategoryID)
	task.Priority = parent.Priority
	task.ParentID = parent.ID
	task.Description = stringArg(args, "description")
	return h.store.CreateTask(ctx, task)
}

// updateTask changes only the fields present in args. An empty due_date
// clears the due date.
func (h *ToolHandler) updateTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	task, err := h.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if title, ok := args["title"].(string); ok {
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		task.Title = strings.TrimSpace(title)
	}
	if desc, ok := args["description"].(string); ok {
		task.Description = strings.TrimSpace(desc)
	}
	if raw, ok := args["priority"].(string); ok {
		p, err := model.ParsePriority(raw)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	if raw, ok := args["hashtags"].(string); ok {
		tags, _ := quickadd.ExtractHashtags(raw)
		task.Hashtags = strings.Join(tags, " ")
	}
	if raw, ok := args["due_date"].(string); ok {
		if strings.TrimSpace(raw) == "" {
			task.DueDate = nil
		} else {
			due, ok := dates.Resolve(strings.TrimPrefix(strings.TrimSpace(raw), "@"), h.now())
			if !ok {
				return nil, fmt.Errorf("unrecognised due date %q", raw)
			}
			task.DueDate = &due
		}
	}
	if name, ok := args["category"].(string); ok {
		if strings.TrimSpace(name) == "" {
			task.CategoryID = ""
		} else {
			cat, err := h.category(ctx, name)
			if err != nil {
				return nil, err
			}
			task.CategoryID = cat.ID
		}
	}
	task.Subtasks = nil
	return h.store.UpdateTask(ctx, task)
}

func (h *ToolHandler) completeTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	completed := true
	if v, ok := args["completed"].(bool); ok {
		completed = v
	}
	task, err := h.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed != completed {
		task = tasktree.ToggleCompletion(task)
	}
	task.Subtasks = nil
	return h.store.UpdateTask(ctx, task)
}

func (h *ToolHandler) deleteTask(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := h.store.DeleteTask(ctx, id); err != nil {
		return nil, err
	}
	return map[string]string{"status": "deleted", "id": id}, nil
}

func (h *ToolHandler) archiveCompleted(ctx context.Context, args map[string]any) (any, error) {
	categoryID := ""
	if name := stringArg(args, "category"); name != "" {
		cat, err := h.category(ctx, name)
		if err != nil {
			return nil, err
		}
		categoryID = cat.ID
	}
	n, err := h.store.ArchiveCompleted(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return map[string]int{"archived": n}, nil
}

func (h *ToolHandler) parseLine(args map[string]any) (quickadd.Result, error) {
	line := stringArg(args, "line")
	if line == "" {
		return quickadd.Result{}, fmt.Errorf("line is required")
	}
	if len(line) > maxLineSize {
		return quickadd.Result{}, fmt.Errorf("line exceeds maximum size of 4KB")
	}
	res := quickadd.ParseAt(line, h.now())
	if res.Title == "" {
		return quickadd.Result{}, fmt.Errorf("task title is empty")
	}
	return res, nil
}

func (h *ToolHandler) category(ctx context.Context, name string) (model.Category, error) {
	cats, err := h.store.ListCategories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	cat, ok := model.FindCategoryByName(cats, name)
	if !ok {
		return model.Category{}, fmt.Errorf("unknown category %q", name)
	}
	return cat, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

const lineHelp = "Quick-add line: title plus optional !high/!low, #tags, >Category and @today/@tomorrow/@+3d/@monday/@2026-03-01"

func toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "list_tasks",
			Description: "List tasks grouped with their subtasks",
			InputSchema: object(nil, map[string]any{
				"category":      prop("string", "Only tasks in this category (exact name)"),
				"query":         prop("string", "Substring search over title, description and hashtags"),
				"show_archived": prop("boolean", "List archived tasks instead of active ones"),
			}),
		},
		{
			Name:        "list_categories",
			Description: "List task categories",
			InputSchema: object(nil, map[string]any{}),
		},
		{
			Name:        "create_task",
			Description: "Create a task from a quick-add line",
			InputSchema: object([]string{"line"}, map[string]any{
				"line":        prop("string", lineHelp),
				"description": prop("string", "Markdown description"),
			}),
		},
		{
			Name:        "add_subtask",
			Description: "Add a subtask under a top-level task; it takes the parent's priority and category",
			InputSchema: object([]string{"parent_id", "line"}, map[string]any{
				"parent_id":   prop("string", "ID of the parent task"),
				"line":        prop("string", lineHelp),
				"description": prop("string", "Markdown description"),
			}),
		},
		{
			Name:        "update_task",
			Description: "Change fields of a task; omitted fields are left alone",
			InputSchema: object([]string{"id"}, map[string]any{
				"id":          prop("string", "Task ID"),
				"title":       prop("string", "New title"),
				"description": prop("string", "New markdown description"),
				"priority":    prop("string", "high, normal or low"),
				"hashtags":    prop("string", "Space separated #tags, replaces the current ones"),
				"due_date":    prop("string", "Date expression such as 2026-03-01, tomorrow or +3d; empty clears it"),
				"category":    prop("string", "Category name; empty removes the category"),
			}),
		},
		{
			Name:        "complete_task",
			Description: "Mark a task done or not done",
			InputSchema: object([]string{"id"}, map[string]any{
				"id":        prop("string", "Task ID"),
				"completed": prop("boolean", "false reopens the task (default true)"),
			}),
		},
		{
			Name:        "delete_task",
			Description: "Delete a task and its subtasks",
			InputSchema: object([]string{"id"}, map[string]any{
				"id": prop("string", "Task ID"),
			}),
		},
		{
			Name:        "archive_completed",
			Description: "Archive every completed task, optionally in one category",
			InputSchema: object(nil, map[string]any{
				"category": prop("string", "Category name; omit for all categories"),
			}),
		},
	}
}
