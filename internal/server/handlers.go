package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/storage"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.repo.ListCategories(r.Context())
	if err != nil {
		s.internalError(w, "list categories", err)
		return
	}
	out := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategory(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req api.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	cat := storage.Category{ID: s.newID(), Name: strings.TrimSpace(req.Name), CreatedAt: s.now()}
	if err := toCategory(cat).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.CreateCategory(r.Context(), cat); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, fmt.Sprintf("category %q already exists", cat.Name))
			return
		}
		s.internalError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategory(cat))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.repo.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		s.internalError(w, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "category deleted"})
}

// listTasks returns top-level tasks with nested subtasks. A search query
// matches subtasks too, which are then listed on their own.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	showArchived, _ := strconv.ParseBool(q.Get("show_archived"))
	filter := storage.TaskListFilter{
		CategoryID:      q.Get("category_id"),
		Search:          q.Get("q"),
		IncludeArchived: showArchived,
		TopLevelOnly:    true,
	}
	if raw := q.Get("priority"); raw != "" {
		p, err := model.ParsePriority(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		v := int(p)
		filter.Priority = &v
	}

	tasks, err := s.repo.ListTasks(r.Context(), filter)
	if err != nil {
		s.internalError(w, "list tasks", err)
		return
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		task, err := s.withSubtasks(r, t)
		if err != nil {
			s.internalError(w, "list subtasks", err)
			return
		}
		out = append(out, task)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTask(w, r, mux.Vars(r)["id"])
	if !ok {
		return
	}
	task, err := s.withSubtasks(r, t)
	if err != nil {
		s.internalError(w, "list subtasks", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	in.ID = s.newID()
	entity := toEntity(in)
	entity.CreatedAt = s.now()

	created, err := s.repo.CreateTask(r.Context(), entity)
	if err != nil {
		s.internalError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusOK, toTask(created))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, ok := s.loadTask(w, r, id)
	if !ok {
		return
	}
	in, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	if in.ParentID == id {
		writeError(w, http.StatusBadRequest, "a task cannot be its own parent")
		return
	}
	if in.ParentID != "" && existing.ParentID == "" {
		children, err := s.repo.ListChildren(r.Context(), id)
		if err != nil {
			s.internalError(w, "list subtasks", err)
			return
		}
		if len(children) > 0 {
			writeError(w, http.StatusBadRequest, model.ErrNestedTooDeep.Error())
			return
		}
	}
	in.ID = id
	entity := toEntity(in)
	entity.Position = existing.Position
	entity.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateTask(r.Context(), entity); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		s.internalError(w, "update task", err)
		return
	}
	task, err := s.withSubtasks(r, entity)
	if err != nil {
		s.internalError(w, "list subtasks", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteTask(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		s.internalError(w, "delete task", err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "task deleted"})
}

func (s *Server) reorderTasks(w http.ResponseWriter, r *http.Request) {
	var req api.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := s.repo.ReorderTasks(r.Context(), req.TaskIDs); err != nil {
		s.internalError(w, "reorder tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "reordered successfully"})
}

func (s *Server) archiveCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.ArchiveCompleted(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		s.internalError(w, "archive completed", err)
		return
	}
	writeJSON(w, http.StatusOK, api.ArchiveResponse{
		Archived: int(n),
		Message:  fmt.Sprintf("archived %d completed tasks", n),
	})
}

func (s *Server) loadTask(w http.ResponseWriter, r *http.Request, id string) (storage.Task, bool) {
	t, err := s.repo.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return storage.Task{}, false
		}
		s.internalError(w, "get task", err)
		return storage.Task{}, false
	}
	return t, true
}

// decodeTask reads a task payload and checks the references it makes.
func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	var in model.Task
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return model.Task{}, false
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Subtasks = nil
	if !in.Completed {
		in.Archived = false
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Task{}, false
	}
	if in.CategoryID != "" {
		if _, err := s.repo.GetCategory(r.Context(), in.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown category")
				return model.Task{}, false
			}
			s.internalError(w, "get category", err)
			return model.Task{}, false
		}
	}
	if in.ParentID != "" {
		parent, err := s.repo.GetTask(r.Context(), in.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown parent task")
				return model.Task{}, false
			}
			s.internalError(w, "get parent", err)
			return model.Task{}, false
		}
		if parent.ParentID != "" {
			writeError(w, http.StatusBadRequest, model.ErrNestedTooDeep.Error())
			return model.Task{}, false
		}
	}
	return in, true
}

func (s *Server) withSubtasks(r *http.Request, t storage.Task) (model.Task, error) {
	task := toTask(t)
	if t.ParentID != "" {
		return task, nil
	}
	children, err := s.repo.ListChildren(r.Context(), t.ID)
	if err != nil {
		return model.Task{}, err
	}
	for _, c := range children {
		task.Subtasks = append(task.Subtasks, toTask(c))
	}
	return task, nil
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "err", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}

func toCategory(c storage.Category) model.Category {
	return model.Category{ID: c.ID, Name: c.Name}
}

func toTask(t storage.Task) model.Task {
	return model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    model.Priority(t.Priority),
		Position:    t.Position,
		DueDate:     t.DueAt,
		Hashtags:    t.Hashtags,
		Completed:   t.Completed,
		Archived:    t.Archived,
		CategoryID:  t.CategoryID,
		ParentID:    t.ParentID,
	}
}

func toEntity(t model.Task) storage.Task {
	return storage.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueAt:       t.DueDate,
		Priority:    int(t.Priority),
		Position:    t.Position,
		Hashtags:    t.Hashtags,
		Completed:   t.Completed,
		Archived:    t.Archived,
		CategoryID:  t.CategoryID,
		ParentID:    t.ParentID,
	}
}
