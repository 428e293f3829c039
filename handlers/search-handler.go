package handlers

import (
	"net/http"
	"strconv"

	"task-manager/backend/middleware"
	"task-manager/backend/services"
)

// SearchHandler exposes advanced task search, filter options and the
// quick-filter counters.
type SearchHandler struct {
	service *services.SearchService
}

func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	input := services.SearchTasksInput{
		Query:       q.Get("query"),
		Status:      q.Get("status"),
		Priority:    q.Get("priority"),
		AssignedTo:  q.Get("assignedTo"),
		DueDateFrom: q.Get("dueDateFrom"),
		DueDateTo:   q.Get("dueDateTo"),
		Overdue:     q.Get("overdue") == "true",
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
		Page:        page,
		Limit:       limit,
	}

	tasks, pagination, err := h.service.SearchTasks(actor, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":      tasks,
		"pagination": pagination,
	})
}

func (h *SearchHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.GetFilterOptions()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *SearchHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	users, pagination, err := h.service.SearchUsers(q.Get("query"), q.Get("role"), page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": pagination,
	})
}

func (h *SearchHandler) GetQuickFilters(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	quickFilters, err := h.service.GetQuickFilters(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quickFilters": quickFilters,
	})
}
