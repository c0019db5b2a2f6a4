package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/api/guard"
	"github.com/digital-event-scheduler/server/internal/domain/events"
)

// EventsHandler covers the authenticated owner endpoints. The guard chain
// has already verified the session and matched the payload email against
// the trusted identity; the author of every mutation is the identity bound
// to the request context, never the raw payload.
type EventsHandler struct {
	Events *events.Service
	Logger zerolog.Logger
}

func NewEventsHandler(service *events.Service, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{Events: service, Logger: logger}
}

type addEventRequest struct {
	Email     string       `json:"email"`
	EventInfo events.Input `json:"eventInfo"`
}

type eventIDRequest struct {
	EventID string `json:"eventID"`
}

type editEventRequest struct {
	Email        string       `json:"email"`
	EventID      string       `json:"eventID"`
	UpdatedEvent events.Input `json:"updatedEvent"`
}

// Add handles POST /add-event.
func (h *EventsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	event, err := h.Events.Create(r.Context(), guard.Identity(r), req.EventInfo)
	var verr events.ValidationError
	if errors.As(err, &verr) {
		nack(w, verr.Message)
		return
	}
	if err != nil {
		storeFail(w, h.Logger, "add event", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged": true,
		"message":      "event created",
		"eventID":      event.ULID,
	})
}

// MyEvents handles POST /my-events, most recently updated first.
func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Events.MyEvents(r.Context(), guard.Identity(r))
	if err != nil {
		storeFail(w, h.Logger, "list my events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "events": listed})
}

// MyEvent handles POST /my-event.
func (h *EventsHandler) MyEvent(w http.ResponseWriter, r *http.Request) {
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
		storeFail(w, h.Logger, "get my event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "event": event})
}

// Edit handles POST /edit-event.
func (h *EventsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req editEventRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	err := h.Events.Edit(r.Context(), req.EventID, req.UpdatedEvent)
	var verr events.ValidationError
	switch {
	case errors.As(err, &verr):
		nack(w, verr.Message)
	case errors.Is(err, events.ErrNotFound):
		nack(w, "event not found")
	case err != nil:
		storeFail(w, h.Logger, "edit event", err)
	default:
		ack(w, "event updated")
	}
}

// Delete handles POST /delete-event. The ownership gate has already allowed
// only the author or an admin through.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req eventIDRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}

	err := h.Events.Delete(r.Context(), req.EventID)
	switch {
	case errors.Is(err, events.ErrNotFound):
		nack(w, "event not found")
	case err != nil:
		storeFail(w, h.Logger, "delete event", err)
	default:
		ack(w, "event deleted")
	}
}

// MyEventCount handles POST /my-event-count with live counts.
func (h *EventsHandler) MyEventCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Events.CountsForAuthor(r.Context(), guard.Identity(r))
	if err != nil {
		storeFail(w, h.Logger, "count my events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged": true,
		"total":        counts.Total,
		"approved":     counts.Approved,
	})
}
