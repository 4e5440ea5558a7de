package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rmateus/taskman-be/internal/common"
	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondFieldErrors returns a 400 with per-field messages, mirroring the
// shape validation failures use.
func respondFieldErrors(w http.ResponseWriter, errs map[string][]string) {
	respondJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// respondServiceError maps a service error onto the HTTP taxonomy. Field
// knowledge stays here: duplicate/weak-password sentinels become field-level
// validation messages, everything unexpected is logged and turned into a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		respondFieldErrors(w, map[string][]string{"username": {err.Error()}})
	case errors.Is(err, common.ErrDuplicateEmail):
		respondFieldErrors(w, map[string][]string{"email": {err.Error()}})
	case errors.Is(err, common.ErrWeakPassword):
		respondFieldErrors(w, map[string][]string{"password": {err.Error()}})
	case errors.Is(err, common.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "invalid credentials")
	case errors.Is(err, common.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid or expired session")
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
