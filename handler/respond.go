package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"barangaylink/service"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, errLabel, message string) {
	respondWithJSON(w, status, map[string]string{
		"error":   errLabel,
		"message": message,
	})
}

// respondWithServiceError maps the service error taxonomy onto HTTP status
// codes: validation 400, permission 403, not found 404, illegal transitions
// and approval-gate misuse 409, anything else 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *service.ValidationError
		permissionErr *service.PermissionError
		transitionErr *service.IllegalTransitionError
		approvalErr   *service.ApprovalStateError
	)
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, "Validation error", validationErr.Error())
	case errors.As(err, &permissionErr):
		respondWithError(w, http.StatusForbidden, "Forbidden", permissionErr.Error())
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "Complaint not found")
	case errors.As(err, &transitionErr):
		respondWithError(w, http.StatusConflict, "Conflict", transitionErr.Error())
	case errors.As(err, &approvalErr):
		respondWithError(w, http.StatusConflict, "Conflict", approvalErr.Error())
	default:
		log.Printf("[http] internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Something went wrong")
	}
}
