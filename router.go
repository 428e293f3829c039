package main

import (
	"net/http"

	"task-manager/backend/handlers"
	"task-manager/backend/middleware"

	"github.com/gorilla/mux"
)

type routerHandlers struct {
	auth      *handlers.AuthHandler
	user      *handlers.UserHandler
	task      *handlers.TaskHandler
	bulk      *handlers.BulkOperationsHandler
	comment   *handlers.CommentHandler
	message   *handlers.MessageHandler
	activity  *handlers.ActivityHandler
	analytics *handlers.AnalyticsHandler
	report    *handlers.ReportHandler
	search    *handlers.SearchHandler
}

func newRouter(h routerHandlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/register", h.auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	admin := func(next http.HandlerFunc) http.Handler {
		return middleware.AdminOnly(next)
	}

	api.HandleFunc("/auth/profile", h.auth.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", h.auth.UpdateProfile).Methods(http.MethodPut)

	api.Handle("/users", admin(h.user.GetUsers)).Methods(http.MethodGet)
	api.Handle("/users", admin(h.user.CreateUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/search", h.user.SearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.user.GetUserByID).Methods(http.MethodGet)
	api.Handle("/users/{id}", admin(h.user.UpdateUser)).Methods(http.MethodPut)
	api.Handle("/users/{id}", admin(h.user.DeleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/bulk-operations/status", h.bulk.BulkUpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/bulk-operations/priority", h.bulk.BulkUpdatePriority).Methods(http.MethodPut)
	api.Handle("/bulk-operations/assign", admin(h.bulk.BulkAssign)).Methods(http.MethodPut)
	api.Handle("/bulk-operations/delete", admin(h.bulk.BulkDelete)).Methods(http.MethodDelete)
	api.Handle("/bulk-operations/due-date", admin(h.bulk.BulkUpdateDueDate)).Methods(http.MethodPut)

	// The dashboards are registered before /tasks/{id} so their fixed
	// paths never bind as a task identifier.
	api.Handle("/tasks/dashboard-data", admin(h.analytics.GetDashboardData)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/user-dashboard-data", h.analytics.GetUserDashboardData).Methods(http.MethodGet)

	api.HandleFunc("/tasks", h.task.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.task.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", h.task.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", h.task.UpdateTask).Methods(http.MethodPut)
	api.Handle("/tasks/{id}", admin(h.task.DeleteTask)).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/status", h.task.UpdateTaskStatus).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}/todo", h.task.UpdateTaskChecklist).Methods(http.MethodPut)

	api.HandleFunc("/tasks/{taskId}/comments", h.comment.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}/comments", h.comment.GetTaskComments).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id}", h.comment.GetThread).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id}", h.comment.UpdateComment).Methods(http.MethodPut)
	api.HandleFunc("/comments/{id}", h.comment.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/comments/{id}/reactions", h.comment.ToggleReaction).Methods(http.MethodPost)

	api.HandleFunc("/messages", h.message.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/conversations", h.message.GetConversations).Methods(http.MethodGet)
	api.HandleFunc("/messages/{userId}", h.message.GetMessages).Methods(http.MethodGet)

	api.HandleFunc("/activities", h.activity.GetFeed).Methods(http.MethodGet)
	api.Handle("/activities/team", admin(h.activity.GetTeamFeed)).Methods(http.MethodGet)
	api.HandleFunc("/activities/unread-count", h.activity.GetUnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/activities/mark-read", h.activity.MarkRead).Methods(http.MethodPut)
	api.HandleFunc("/activities/mark-all-read", h.activity.MarkAllRead).Methods(http.MethodPut)

	api.HandleFunc("/analytics/insights", h.analytics.GetTaskInsights).Methods(http.MethodGet)
	api.HandleFunc("/analytics/suggested-priorities", h.analytics.GetSuggestedPriorities).Methods(http.MethodGet)
	api.Handle("/analytics/team", admin(h.analytics.GetTeamAnalytics)).Methods(http.MethodGet)

	api.HandleFunc("/search/tasks", h.search.SearchTasks).Methods(http.MethodGet)
	api.HandleFunc("/search/filter-options", h.search.GetFilterOptions).Methods(http.MethodGet)
	api.Handle("/search/users", admin(h.search.SearchUsers)).Methods(http.MethodGet)
	api.HandleFunc("/search/quick-filters", h.search.GetQuickFilters).Methods(http.MethodGet)

	api.Handle("/reports/export/tasks", admin(h.report.ExportTasksReport)).Methods(http.MethodGet)
	api.Handle("/reports/export/users", admin(h.report.ExportUsersReport)).Methods(http.MethodGet)

	return r
}
