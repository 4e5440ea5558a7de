package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmateus/taskman-be/internal/common"
	"github.com/rmateus/taskman-be/internal/models"
)

const (
	// DefaultPageSize applies when the client does not ask for one.
	DefaultPageSize = 10
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 100
)

// orderings is the allow-list of list sort keys. Anything else falls back
// to the default order.
var orderings = map[string]string{
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"due_date":    "due_date ASC",
	"-due_date":   "due_date DESC",
	"title":       "title ASC",
	"-title":      "title DESC",
}

const defaultOrdering = "created_at DESC"

// TaskInput carries the client-writable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// ListFilter holds the optional list query transforms.
type ListFilter struct {
	Completed *bool
	Search    string
	Ordering  string
	Page      int
	PageSize  int
}

// TaskPage is one page of list results.
type TaskPage struct {
	Count    int           `json:"count"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Results  []models.Task `json:"results"`
}

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	Create(userID string, in TaskInput) (models.Task, error)
	List(userID string, f ListFilter) (TaskPage, error)
	Get(id, userID string) (models.Task, error)
	Update(id, userID string, in TaskInput) (models.Task, error)
	Delete(id, userID string) error
	SetCompleted(id, userID string, completed bool) (models.Task, error)
}

// TaskService provides business logic for task management. Every operation
// is scoped to the owning account: lookups use the compound (id, user_id)
// key, so a foreign task is indistinguishable from a missing one.
type TaskService struct {
	db *sql.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// Create inserts a task owned by the account. ID, timestamps and the
// completed flag are server-assigned.
func (s *TaskService) Create(userID string, in TaskInput) (models.Task, error) {
	id := uuid.New().String()

	stmt, err := s.db.Prepare("INSERT INTO tasks(id, user_id, title, description, due_date) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(id, userID, in.Title, in.Description, dueDateArg(in.DueDate)); err != nil {
		return models.Task{}, err
	}

	return s.Get(id, userID)
}

// List returns the account's tasks, filtered, sorted and paginated.
func (s *TaskService) List(userID string, f ListFilter) (TaskPage, error) {
	where := "WHERE user_id = ?"
	args := []any{userID}

	if f.Completed != nil {
		where += " AND completed = ?"
		args = append(args, *f.Completed)
	}
	if f.Search != "" {
		where += " AND (instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0)"
		needle := strings.ToLower(f.Search)
		args = append(args, needle, needle)
	}

	page := TaskPage{Page: f.Page, PageSize: f.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = DefaultPageSize
	}
	if page.PageSize > MaxPageSize {
		page.PageSize = MaxPageSize
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM tasks "+where, args...).Scan(&page.Count); err != nil {
		return TaskPage{}, err
	}

	orderBy, ok := orderings[f.Ordering]
	if !ok {
		orderBy = defaultOrdering
	}

	query := "SELECT id, user_id, title, description, due_date, completed, created_at, updated_at FROM tasks " +
		where + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, page.PageSize, (page.Page-1)*page.PageSize)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return TaskPage{}, err
	}
	defer rows.Close()

	page.Results = []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return TaskPage{}, err
		}
		page.Results = append(page.Results, task)
	}
	return page, rows.Err()
}

// Get retrieves a task by the compound (id, owner) key.
func (s *TaskService) Get(id, userID string) (models.Task, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, title, description, due_date, completed, created_at, updated_at FROM tasks WHERE id = ? AND user_id = ?",
		id, userID)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, common.ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// Update replaces the client-writable fields of an owned task.
func (s *TaskService) Update(id, userID string, in TaskInput) (models.Task, error) {
	res, err := s.db.Exec(
		"UPDATE tasks SET title = ?, description = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?",
		in.Title, in.Description, dueDateArg(in.DueDate), id, userID)
	if err != nil {
		return models.Task{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Task{}, common.ErrNotFound
	}
	return s.Get(id, userID)
}

// Delete removes an owned task.
func (s *TaskService) Delete(id, userID string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetCompleted flips the completed flag on an owned task. Idempotent, and
// always returns the resulting representation.
func (s *TaskService) SetCompleted(id, userID string, completed bool) (models.Task, error) {
	res, err := s.db.Exec(
		"UPDATE tasks SET completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?",
		completed, id, userID)
	if err != nil {
		return models.Task{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Task{}, common.ErrNotFound
	}
	return s.Get(id, userID)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (models.Task, error) {
	var task models.Task
	var due sql.NullTime
	err := sc.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &due, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		t := due.Time
		task.DueDate = &t
	}
	return task, nil
}

// dueDateArg keeps NULL in the database when no due date is set.
func dueDateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
