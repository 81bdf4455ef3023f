package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrLotU/user-profile-be/internal/policy"
	"github.com/MrLotU/user-profile-be/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondMessage carries what the original UI showed as a flash notice.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto responses.
// Validation and policy failures re-render as 4xx with the violation
// message attached, mirroring the failed-form flow.
func respondServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, policy.ErrWrongCurrentPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, policy.ErrPolicyViolation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "A user with that username already exists.")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Username or password is incorrect.")
	case errors.Is(err, services.ErrAccountDisabled):
		respondError(w, http.StatusForbidden, "That user account has been disabled.")
	case errors.Is(err, services.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	default:
		respondError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
