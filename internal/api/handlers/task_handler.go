package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rmateus/taskman-be/internal/auth"
	"github.com/rmateus/taskman-be/internal/services"
)

// TaskHandler handles HTTP requests for task management.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// TaskPayload defines the client-writable task fields. due_date accepts
// RFC 3339 or a bare YYYY-MM-DD date.
type TaskPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (p *TaskPayload) toInput() (services.TaskInput, map[string][]string) {
	errs := map[string][]string{}
	if p.Title == "" {
		errs["title"] = append(errs["title"], "this field is required")
	}

	in := services.TaskInput{Title: p.Title, Description: p.Description}
	if p.DueDate != nil && *p.DueDate != "" {
		due, err := parseDueDate(*p.DueDate)
		if err != nil {
			errs["due_date"] = append(errs["due_date"], "expected an RFC 3339 timestamp or YYYY-MM-DD date")
		} else {
			in.DueDate = &due
		}
	}

	if len(errs) > 0 {
		return services.TaskInput{}, errs
	}
	return in, nil
}

// List returns the authenticated account's tasks with the query transforms
// applied: completed filter, case-insensitive search, allow-listed ordering
// and pagination.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	filter := services.ListFilter{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	// Malformed boolean and numeric params are ignored, like unknown
	// ordering values.
	if v, err := strconv.ParseBool(q.Get("completed")); err == nil {
		filter.Completed = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filter.PageSize = v
	}

	page, err := h.service.List(account.ID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Create adds a task owned by the authenticated account.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, errs := payload.toInput()
	if errs != nil {
		respondFieldErrors(w, errs)
		return
	}

	task, err := h.service.Create(account.ID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// Get returns a single owned task.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, err := h.service.Get(chi.URLParam(r, "id"), account.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Update replaces the writable fields of an owned task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, errs := payload.toInput()
	if errs != nil {
		respondFieldErrors(w, errs)
		return
	}

	task, err := h.service.Update(chi.URLParam(r, "id"), account.ID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Delete removes an owned task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Delete(chi.URLParam(r, "id"), account.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete marks an owned task as done. No request body; idempotent.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true)
}

// Incomplete marks an owned task as not done. No request body; idempotent.
func (h *TaskHandler) Incomplete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false)
}

func (h *TaskHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, err := h.service.SetCompleted(chi.URLParam(r, "id"), account.ID, completed)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
