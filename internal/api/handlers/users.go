package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/domain/users"
)

type UsersHandler struct {
	Users  *users.Service
	Logger zerolog.Logger
}

func NewUsersHandler(service *users.Service, logger zerolog.Logger) *UsersHandler {
	return &UsersHandler{Users: service, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Register handles POST /users. The first call creates the record; repeats
// acknowledge the duplicate in-band.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	err := h.Users.Register(r.Context(), users.RegisterParams{Email: req.Email, FullName: req.FullName})
	switch {
	case errors.Is(err, users.ErrAlreadyExists):
		nack(w, "user already exists")
	case errors.Is(err, users.ErrInvalidInput):
		nack(w, "Email and full name are required")
	case err != nil:
		storeFail(w, h.Logger, "register user", err)
	default:
		ack(w, "user created")
	}
}

// Get handles POST /user and returns the full user record.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	user, err := h.Users.Get(r.Context(), req.Email)
	if errors.Is(err, users.ErrNotFound) {
		nack(w, "user not found")
		return
	}
	if err != nil {
		storeFail(w, h.Logger, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "user": user})
}

// GetType handles POST /user-type.
func (h *UsersHandler) GetType(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	role, err := h.Users.Role(r.Context(), req.Email)
	if errors.Is(err, users.ErrNotFound) {
		nack(w, "user not found")
		return
	}
	if err != nil {
		storeFail(w, h.Logger, "get user type", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "userType": role})
}
