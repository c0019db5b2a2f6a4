package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/domain/events"
	"github.com/digital-event-scheduler/server/internal/domain/users"
)

// AdminHandler covers the moderation endpoints. Every route is behind the
// token, identity and role gates, so handlers only run for admins.
type AdminHandler struct {
	Events *events.Service
	Users  *users.Service
	Logger zerolog.Logger
}

func NewAdminHandler(eventsService *events.Service, usersService *users.Service, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{Events: eventsService, Users: usersService, Logger: logger}
}

// ListAllEvents handles POST /get-all-events-for-admin: the moderation
// queue, pending and approved alike.
func (h *AdminHandler) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Events.ListAll(r.Context())
	if err != nil {
		storeFail(w, h.Logger, "list all events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "events": listed})
}

// GetEvent handles POST /event.
func (h *AdminHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	var req eventIDRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	event, err := h.Events.Get(r.Context(), req.EventID)
	if errors.Is(err, events.ErrNotFound) {
		nack(w, "event not found")
		return
	}
	if err != nil {
		storeFail(w, h.Logger, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "event": event})
}

// Approve handles POST /event-approve: pending -> approved plus the
// author's approved counter.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req eventIDRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	err := h.Events.Approve(r.Context(), req.EventID)
	switch {
	case errors.Is(err, events.ErrNotFound):
		nack(w, "event not found")
	case err != nil:
		storeFail(w, h.Logger, "approve event", err)
	default:
		ack(w, "event approved")
	}
}

// ListUsers handles POST /get-all-users with the public projection.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Users.List(r.Context())
	if err != nil {
		storeFail(w, h.Logger, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "users": listed})
}

type makeAdminRequest struct {
	ReqAdminEmail string `json:"reqAdminEmail"`
}

// MakeAdmin handles POST /make-admin: promotes the named user.
func (h *AdminHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	var req makeAdminRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	err := h.Users.MakeAdmin(r.Context(), req.ReqAdminEmail)
	switch {
	case errors.Is(err, users.ErrNotFound):
		nack(w, "user not found")
	case err != nil:
		storeFail(w, h.Logger, "make admin", err)
	default:
		ack(w, "user promoted")
	}
}
