// internal/api/handler/auth.go
package handler

import (
	"net/http"

	"coinquest/internal/service"
	"coinquest/internal/util"

	"github.com/sirupsen/logrus"
)

// AuthHandler handles account and session requests.
type AuthHandler struct {
	responder
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// XPRequest represents the request body for granting experience.
type XPRequest struct {
	Amount int64 `json:"amount"`
}

// Signup registers a new account.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusCreated, "Account created", result)
}

// Login exchanges credentials for a token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Login successful", result)
}

// Me returns the authenticated user's profile.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", user)
}

// UpdateMe applies a partial profile update.
// PATCH /api/auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req service.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Profile updated", user)
}

// AddXP grants experience to the authenticated user.
// POST /api/auth/xp
func (h *AuthHandler) AddXP(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req XPRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.AddXP(r.Context(), userID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Experience added", user)
}
