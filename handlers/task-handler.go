package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/models"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskHandler exposes the task lifecycle over HTTP.
type TaskHandler struct {
	service  *services.TaskService
	users    *services.UserService
	notifier *services.EmailNotifier
}

func NewTaskHandler(service *services.TaskService, users *services.UserService, notifier *services.EmailNotifier) *TaskHandler {
	return &TaskHandler{service: service, users: users, notifier: notifier}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var input services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.CreateTask(actor, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	for _, assigneeID := range task.AssignedTo {
		if user, err := h.users.GetUserByID(assigneeID); err == nil {
			h.notifier.SendTaskAssigned(user.Email, user.Name, task.Title)
		}
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task '%s' created by user %s", task.Title, actor.ID.Hex())
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	status := r.URL.Query().Get("status")

	tasks, summary, err := h.service.ListTasks(actor, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":         tasks,
		"statusSummary": summary,
	})
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.service.GetTaskByID(taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var input services.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.UpdateTask(taskID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Task updated successfully",
		"updatedTask": task,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.service.DeleteTask(taskID); err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted", taskID.Hex())
	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var body struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangeTaskStatus(actor, taskID, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task status updated")
}

func (h *TaskHandler) UpdateTaskChecklist(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var body struct {
		TodoChecklist []models.ChecklistItem `json:"todoChecklist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.UpdateChecklist(actor, taskID, body.TodoChecklist)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The checklist endpoint returns the updated task bare, not wrapped
	// in an envelope.
	writeJSON(w, http.StatusOK, task)
}
