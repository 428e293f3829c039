package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"task-manager/backend/middleware"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler exposes task comments, threads and reactions.
type CommentHandler struct {
	service *services.CommentService
}

func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var body struct {
		Content       string   `json:"content"`
		Mentions      []string `json:"mentions"`
		ParentComment *string  `json:"parentComment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mentions, ok := parseObjectIDs(body.Mentions)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid mention IDs")
		return
	}

	var parentID *primitive.ObjectID
	if body.ParentComment != nil {
		id, err := primitive.ObjectIDFromHex(*body.ParentComment)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid parent comment ID")
			return
		}
		parentID = &id
	}

	comment, err := h.service.AddComment(actor, taskID, body.Content, mentions, parentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) GetTaskComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	skip, _ := strconv.ParseInt(r.URL.Query().Get("skip"), 10, 64)

	comments, total, err := h.service.GetTaskComments(taskID, limit, skip)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
		"total":    total,
	})
}

func (h *CommentHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	parent, replies, err := h.service.GetThread(commentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comment": parent,
		"replies": replies,
	})
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.service.UpdateComment(actor, commentID, body.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.service.DeleteComment(actor, commentID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Comment deleted successfully")
}

func (h *CommentHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	commentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.service.ToggleReaction(actor, commentID, body.Emoji)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Reaction updated",
		"comment": comment,
	})
}
