package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

const taskColumns = `id, title, description, due_at, priority, position, hashtags, completed, archived, category_id, parent_id, created_at`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// DSN builds a go-sqlite3 data source name with foreign keys enforced on
// every pooled connection.
func DSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES (?, ?, ?)`,
		in.ID, in.Name, mustTime(in.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	item, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		item, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteCategory removes the category and leaves its tasks uncategorized.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

// CreateTask appends the task to the end of its (priority, parent) bucket.
func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) (Task, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var maxPos int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position), 0) FROM tasks
			WHERE priority = ? AND parent_id IS ?`,
			in.Priority, nullString(in.ParentID),
		).Scan(&maxPos); err != nil {
			return err
		}
		in.Position = maxPos + 1
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.Title, in.Description, nullTime(in.DueAt), in.Priority, in.Position, in.Hashtags,
			boolInt(in.Completed), boolInt(in.Archived), nullString(in.CategoryID), nullString(in.ParentID), mustTime(in.CreatedAt),
		)
		return err
	})
	if err != nil {
		return Task{}, mapConstraint(err)
	}
	return in, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

// UpdateTask writes every mutable field. Position is owned by ReorderTasks
// and left untouched.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_at = ?, priority = ?, hashtags = ?, completed = ?, archived = ?, category_id = ?, parent_id = ?
		WHERE id = ?`,
		in.Title, in.Description, nullTime(in.DueAt), in.Priority, in.Hashtags,
		boolInt(in.Completed), boolInt(in.Archived), nullString(in.CategoryID), nullString(in.ParentID), in.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return checkRowsAffected(res)
}

// DeleteTask removes the task together with its subtasks.
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE parent_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		clauses = append(clauses, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR hashtags LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	} else if filter.TopLevelOnly {
		clauses = append(clauses, "parent_id IS NULL")
	}
	if !filter.IncludeArchived {
		clauses = append(clauses, "archived = 0")
	}
	if filter.CategoryID != "" {
		clauses = append(clauses, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Priority != nil {
		clauses = append(clauses, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY priority ASC, position ASC, created_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	return r.queryTasks(ctx, query, args...)
}

func (r *SQLiteRepository) ListChildren(ctx context.Context, parentID string) ([]Task, error) {
	return r.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY position ASC, created_at ASC`, parentID)
}

// ReorderTasks sets each task's position to its index in ids.
func (r *SQLiteRepository) ReorderTasks(ctx context.Context, ids []string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE tasks SET position = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, i, id); err != nil {
				return fmt.Errorf("reorder %s: %w", id, err)
			}
		}
		return nil
	})
}

// ArchiveCompleted archives completed, unarchived tasks, optionally limited to
// one category, and returns how many changed.
func (r *SQLiteRepository) ArchiveCompleted(ctx context.Context, categoryID string) (int64, error) {
	query := `UPDATE tasks SET archived = 1 WHERE completed = 1 AND archived = 0`
	args := make([]any, 0, 1)
	if categoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var due sql.NullString
	var completed, archived int
	var categoryID, parentID sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &due, &out.Priority, &out.Position, &out.Hashtags,
		&completed, &archived, &categoryID, &parentID, &created); err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	dueAt, err := parseNullableTime(due)
	if err != nil {
		return Task{}, err
	}
	out.DueAt = dueAt
	out.Completed = completed == 1
	out.Archived = archived == 1
	out.CategoryID = categoryID.String
	out.ParentID = parentID.String
	out.CreatedAt = createdAt
	return out, nil
}

func scanCategory(s scanner) (Category, error) {
	var out Category
	var created string
	if err := s.Scan(&out.ID, &out.Name, &created); err != nil {
		return Category{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Category{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
