package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/social-api/internal/http/respond"
	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/models/dto"
	"github.com/hongminglow/social-api/internal/service"
)

// UserHandler owns the /users routes.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs the handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register attaches user routes to the router.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/users", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/users", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", h.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/friends/{friendId}", h.handleAddFriend).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/friends/{friendId}", h.handleRemoveFriend).Methods(http.MethodDelete)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Create(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Update(r.Context(), mux.Vars(r)["id"], models.UserPatch{Username: req.Username})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user, err := h.users.AddFriend(r.Context(), vars["id"], vars["friendId"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user, err := h.users.RemoveFriend(r.Context(), vars["id"], vars["friendId"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
