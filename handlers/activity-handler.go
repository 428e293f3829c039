package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"task-manager/backend/middleware"
	"task-manager/backend/services"
)

// ActivityHandler serves the activity feed and read tracking.
type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, unread, err := h.service.Feed(actor.ID.Hex(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities":  activities,
		"unreadCount": unread,
	})
}

func (h *ActivityHandler) GetTeamFeed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.service.TeamFeed(limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
	})
}

func (h *ActivityHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	unread, err := h.service.UnreadCount(actor.ID.Hex())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": unread})
}

func (h *ActivityHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		Entries []services.ActivityRef `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.MarkRead(actor.ID.Hex(), body.Entries); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Activities marked as read")
}

func (h *ActivityHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	if err := h.service.MarkAllRead(actor.ID.Hex()); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "All activities marked as read")
}
