package handlers

import (
	"net/http"

	"task-manager/backend/middleware"
	"task-manager/backend/services"
)

// AnalyticsHandler serves dashboards, insights and priority suggestions.
type AnalyticsHandler struct {
	service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetDashboardData is the admin dashboard over all tasks.
func (h *AnalyticsHandler) GetDashboardData(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.GetDashboardData(nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetUserDashboardData scopes the dashboard to the actor's assignments.
func (h *AnalyticsHandler) GetUserDashboardData(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	data, err := h.service.GetDashboardData(&actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *AnalyticsHandler) GetTaskInsights(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	insights, err := h.service.GetTaskInsights(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *AnalyticsHandler) GetSuggestedPriorities(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	suggestions, err := h.service.GetSuggestedPriorities(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	adjustments := 0
	for _, s := range suggestions {
		if s.ShouldAdjust {
			adjustments++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"summary": map[string]int{
			"totalTasks":      len(suggestions),
			"needsAdjustment": adjustments,
		},
	})
}

func (h *AnalyticsHandler) GetTeamAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.GetTeamAnalytics()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
