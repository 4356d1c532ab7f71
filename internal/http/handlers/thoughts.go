package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/social-api/internal/http/respond"
	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/models/dto"
	"github.com/hongminglow/social-api/internal/service"
)

// ThoughtHandler owns the /thoughts routes, reactions included.
type ThoughtHandler struct {
	thoughts *service.ThoughtService
}

// NewThoughtHandler constructs the handler.
func NewThoughtHandler(thoughts *service.ThoughtService) *ThoughtHandler {
	return &ThoughtHandler{thoughts: thoughts}
}

// Register attaches thought routes to the router.
func (h *ThoughtHandler) Register(r *mux.Router) {
	r.HandleFunc("/thoughts", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/thoughts", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/thoughts/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/thoughts/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/thoughts/{id}", h.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/thoughts/{thoughtId}/reactions", h.handleAddReaction).Methods(http.MethodPost)
	r.HandleFunc("/thoughts/{thoughtId}/reactions/{reactionId}", h.handleRemoveReaction).Methods(http.MethodDelete)
}

func (h *ThoughtHandler) handleList(w http.ResponseWriter, r *http.Request) {
	thoughts, err := h.thoughts.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, thoughts)
}

// handleCreate responds with the owning user rather than the new thought.
func (h *ThoughtHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateThoughtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	owner, err := h.thoughts.Create(r.Context(), req.Text, req.Author)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, owner)
}

func (h *ThoughtHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	thought, err := h.thoughts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, thought)
}

func (h *ThoughtHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateThoughtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := models.ThoughtPatch{Text: req.Text, Author: req.Author}
	thought, err := h.thoughts.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, thought)
}

func (h *ThoughtHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.thoughts.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.DeleteThoughtResponse{
		Message:        service.DeletedMessage,
		ThoughtDeleted: deleted,
	})
}

func (h *ThoughtHandler) handleAddReaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	thought, err := h.thoughts.AddReaction(r.Context(), mux.Vars(r)["thoughtId"], req.ReactionText, req.Author)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, thought)
}

func (h *ThoughtHandler) handleRemoveReaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	thought, err := h.thoughts.RemoveReaction(r.Context(), vars["thoughtId"], vars["reactionId"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, thought)
}
