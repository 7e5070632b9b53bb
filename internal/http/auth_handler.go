package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"civic-registry/internal/service"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	authService service.AuthService
	maxBody     int64
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, maxBody int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, maxBody: maxBody, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Result{
		Success: true,
		Message: "User registered successfully",
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{
		Success: true,
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Verify(r.Context(), caller)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, User: user})
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListActiveUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n := len(users)
	writeJSON(w, http.StatusOK, Result{Success: true, Count: &n, Users: users})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.ChangePasswordRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.authService.ChangePassword(r.Context(), caller, req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok("Password updated successfully"))
}
