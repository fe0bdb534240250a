package handler

import (
	"encoding/json"
	"net/http"

	"barangaylink/models"
	"barangaylink/utils"
)

// AccountSource looks up login credentials.
type AccountSource interface {
	GetByUsername(username string) (*models.Account, error)
}

// AuthHandler handles login for residents and officials.
type AuthHandler struct {
	accounts     AccountSource
	jwtSecret    string
	expiresHours int
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts AccountSource, jwtSecret string, expiresHours int) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		jwtSecret:    jwtSecret,
		expiresHours: expiresHours,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Username and password are required")
		return
	}

	account, err := h.accounts.GetByUsername(req.Username)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	// Same response for unknown username and wrong password.
	if account == nil || utils.CheckPassword(req.Password, account.PasswordHash) != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid username or password")
		return
	}
	if !account.IsActive {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Account is deactivated")
		return
	}

	token, err := utils.GenerateJWT(account.AccountID, string(account.Role), []byte(h.jwtSecret), h.expiresHours)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		AccountID: account.AccountID,
		Role:      account.Role,
	})
}
