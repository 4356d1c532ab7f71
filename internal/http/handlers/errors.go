package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/social-api/internal/http/respond"
	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/service"
	"github.com/hongminglow/social-api/internal/storage"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// respondServiceError maps service and storage errors onto the error envelope.
// Anything unrecognised is logged and reported as a bare 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *service.NotFoundError
	var invalid *models.ValidationError
	switch {
	case errors.As(err, &notFound):
		respond.Error(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		respond.Error(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, storage.ErrInvalidID):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "username already exists")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
