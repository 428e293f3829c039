package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/models"
	"task-manager/backend/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BulkOperationsHandler exposes multi-task mutations. Status and priority
// are open to any actor who may modify every task in the set; assign,
// delete and due-date are admin-only at the route boundary.
type BulkOperationsHandler struct {
	service *services.BulkService
}

func NewBulkOperationsHandler(service *services.BulkService) *BulkOperationsHandler {
	return &BulkOperationsHandler{service: service}
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func (h *BulkOperationsHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		TaskIDs []string          `json:"taskIds"`
		Status  models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskIDs, ok := parseObjectIDs(body.TaskIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid task IDs")
		return
	}

	modified, err := h.service.BulkUpdateStatus(actor, taskIDs, body.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: BULK_STATUS_UPDATED, Description: User %s updated status of %d task(s)", actor.ID.Hex(), modified)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Tasks status updated successfully",
		"modifiedCount": modified,
	})
}

func (h *BulkOperationsHandler) BulkUpdatePriority(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		TaskIDs  []string            `json:"taskIds"`
		Priority models.TaskPriority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskIDs, ok := parseObjectIDs(body.TaskIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid task IDs")
		return
	}

	modified, err := h.service.BulkUpdatePriority(actor, taskIDs, body.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Tasks priority updated successfully",
		"modifiedCount": modified,
	})
}

func (h *BulkOperationsHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		TaskIDs []string `json:"taskIds"`
		UserIDs []string `json:"userIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskIDs, ok := parseObjectIDs(body.TaskIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid task IDs")
		return
	}
	userIDs, ok := parseObjectIDs(body.UserIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user IDs")
		return
	}

	updated, err := h.service.BulkAssign(actor, taskIDs, userIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Tasks assigned successfully",
		"updatedTasks": updated,
	})
}

func (h *BulkOperationsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		TaskIDs []string `json:"taskIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskIDs, ok := parseObjectIDs(body.TaskIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid task IDs")
		return
	}

	deleted, err := h.service.BulkDelete(actor, taskIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: BULK_DELETE, Description: User %s deleted %d task(s)", actor.ID.Hex(), deleted)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Tasks deleted successfully",
		"deletedCount": deleted,
	})
}

func (h *BulkOperationsHandler) BulkUpdateDueDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskIDs []string  `json:"taskIds"`
		DueDate time.Time `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskIDs, ok := parseObjectIDs(body.TaskIDs)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid task IDs")
		return
	}

	modified, err := h.service.BulkUpdateDueDate(taskIDs, body.DueDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Tasks due date updated successfully",
		"modifiedCount": modified,
	})
}
