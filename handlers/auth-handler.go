package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/services"
	"task-manager/backend/utils"
)

// AuthHandler owns registration, login and the current user's profile.
type AuthHandler struct {
	service  *services.UserService
	notifier *services.EmailNotifier
}

func NewAuthHandler(service *services.UserService, notifier *services.EmailNotifier) *AuthHandler {
	return &AuthHandler{service: service, notifier: notifier}
}

type authResponse struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileImageUrl string `json:"profileImageUrl"`
	Token           string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.notifier.SendWelcome(user.Email, user.Name)

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User '%s' registered with role '%s'", user.Email, user.Role)
	writeJSON(w, http.StatusCreated, authResponse{
		ID:              user.ID.Hex(),
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		ProfileImageUrl: user.ProfileImageUrl,
		Token:           token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(body.Email, body.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User '%s' logged in", user.Email)
	writeJSON(w, http.StatusOK, authResponse{
		ID:              user.ID.Hex(),
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		ProfileImageUrl: user.ProfileImageUrl,
		Token:           token,
	})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	user, err := h.service.GetUserByID(actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)

	var input services.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// A member cannot promote themselves through the profile endpoint.
	if !actor.IsAdmin() {
		input.Role = nil
	}

	user, err := h.service.UpdateUser(actor.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		ID:              user.ID.Hex(),
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		ProfileImageUrl: user.ProfileImageUrl,
		Token:           token,
	})
}
