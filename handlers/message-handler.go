package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/backend/middleware"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageHandler exposes poll-based direct messaging.
type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var body struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(body.ReceiverID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid receiver ID")
		return
	}

	message, err := h.service.SendMessage(actor.ID, receiverID, body.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	otherUserID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	messages, err := h.service.GetMessages(actor.ID, otherUserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	conversations, err := h.service.GetConversations(actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}
