package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"barangaylink/models"
	"barangaylink/service"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const accountContextKey contextKey = "account"

// AccountFromContext returns the authenticated account set by RequireAuth,
// or nil for an unauthenticated request that passed OptionalAuth.
func AccountFromContext(ctx context.Context) *models.Account {
	acc, _ := ctx.Value(accountContextKey).(*models.Account)
	return acc
}

// AuthMiddleware validates JWT tokens and loads the acting account.
type AuthMiddleware struct {
	directory service.RoleDirectory
	jwtSecret []byte
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(directory service.RoleDirectory, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		directory: directory,
		jwtSecret: []byte(jwtSecret),
	}
}

// RequireAuth validates the bearer token and sets the account in the request
// context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, errMsg := m.authenticate(r)
		if account == nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", errMsg)
			return
		}
		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth sets the account in the context when a valid bearer token is
// present and passes the request through anonymously otherwise. Used by the
// intake endpoint, which accepts anonymous submissions.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		account, errMsg := m.authenticate(r)
		if account == nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", errMsg)
			return
		}
		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts an already-authenticated route to the given roles.
// Apply after RequireAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
				return
			}
			if !allowed[account.Role] {
				respondWithError(w, http.StatusForbidden, "Forbidden", "Your role cannot perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*models.Account, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Authorization header required."
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "Invalid authorization format. Expected: Bearer <token>"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, "Invalid or expired token."
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "Invalid token claims."
	}
	accountIDFloat, ok := claims["account_id"].(float64)
	if !ok {
		return nil, "Invalid token: account_id not found."
	}

	account, err := m.directory.GetAccount(int64(accountIDFloat))
	if err != nil || account == nil {
		return nil, "Account not found."
	}
	if !account.IsActive {
		return nil, "Account is deactivated."
	}
	return account, ""
}

func respondWithError(w http.ResponseWriter, status int, errLabel, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errLabel,
		"message": message,
	})
}
