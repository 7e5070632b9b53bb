package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"civic-registry/internal/service"
)

// UserHandler serves the admin-panel /api/users routes.
type UserHandler struct {
	userService service.UserService
	maxBody     int64
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, maxBody int64, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, maxBody: maxBody, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n := len(users)
	writeJSON(w, http.StatusOK, Result{Success: true, Count: &n, Users: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "Invalid user ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, User: user})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid user ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req service.UpdateUserRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.UpdateUser(r.Context(), caller, id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "User updated successfully", User: user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid user ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.userService.DeleteUser(r.Context(), caller, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok("User deleted successfully"))
}
