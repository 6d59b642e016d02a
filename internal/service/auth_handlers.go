package service

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/auth"
	"github.com/fintrackr/backend/internal/model"
	"github.com/fintrackr/backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is returned for unknown email and wrong password
// alike, so login cannot be used to enumerate accounts.
const invalidCredentials = "invalid credentials"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// requireClaims resolves the identity the middleware attached, writing a
// 401 when it is missing. Shared by every guarded handler.
func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.UserClaims, bool) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return nil, false
	}
	return claims, true
}

// Register creates a user and returns a session token.
func (s *FinanceService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	now := time.Now()
	user := &model.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateUser(r.Context(), user, req.Password); err != nil {
		writeStoreError(w, "register user", err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("[Auth] failed to issue token for %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token})
}

// Login validates credentials and returns a session token.
func (s *FinanceService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeValidationError(w, map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		writeStoreError(w, "look up user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("[Auth] failed to issue token for %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token})
}

// GetMe returns the authenticated user's record.
func (s *FinanceService) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name       *string `json:"name"`
	Bio        *string `json:"bio"`
	Profession *string `json:"profession"`
	Phone      *string `json:"phone"`
	Currency   *string `json:"currency"`
}

// UpdateProfile applies partial profile updates. Email is immutable here.
func (s *FinanceService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeValidationError(w, map[string]string{"name": "name must not be empty"})
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "get user", err)
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Profession != nil {
		user.Profession = *req.Profession
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Currency != nil {
		user.Currency = *req.Currency
	}
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword verifies the current password before storing a new hash.
func (s *FinanceService) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < 6 {
		writeValidationError(w, map[string]string{"newPassword": "password must be at least 6 characters"})
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "get user", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if err := s.store.UpdateUserPassword(r.Context(), claims.UserID, req.NewPassword); err != nil {
		writeStoreError(w, "update password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// DeleteAccount removes the user and purges every document they own, so no
// ledger row remains resolvable under any token afterwards.
func (s *FinanceService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteUserData(r.Context(), claims.UserID); err != nil {
		writeStoreError(w, "purge user data", err)
		return
	}
	if err := s.store.DeleteUser(r.Context(), claims.UserID); err != nil {
		writeStoreError(w, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
