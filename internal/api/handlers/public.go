package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/domain/events"
)

// PublicHandler covers the unauthenticated browse endpoints. Only approved
// events ever leave these handlers.
type PublicHandler struct {
	Events *events.Service
	Logger zerolog.Logger
}

func NewPublicHandler(service *events.Service, logger zerolog.Logger) *PublicHandler {
	return &PublicHandler{Events: service, Logger: logger}
}

// Root handles GET /.
func (h *PublicHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Server is running..."))
}

// Search handles GET /get-all-events with searchKey and category query
// params.
func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters := events.SearchFilters{
		SearchKey: strings.TrimSpace(r.URL.Query().Get("searchKey")),
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
	}

	listed, err := h.Events.Search(r.Context(), filters)
	if err != nil {
		storeFail(w, h.Logger, "search events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "events": listed})
}

// GetByID handles GET /get-event-by-id?id=...
func (h *PublicHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		nack(w, "id is required")
		return
	}

	event, err := h.Events.Get(r.Context(), id)
	if errors.Is(err, events.ErrNotFound) {
		nack(w, "event not found")
		return
	}
	if err != nil {
		storeFail(w, h.Logger, "get event by id", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "event": event})
}

// Upcoming handles GET /up-coming-events.
func (h *PublicHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Events.Upcoming(r.Context())
	if err != nil {
		storeFail(w, h.Logger, "list upcoming events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "events": listed})
}

// Count handles GET /count-events.
func (h *PublicHandler) Count(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Events.Stats(r.Context())
	if err != nil {
		storeFail(w, h.Logger, "count events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged":    true,
		"totalEvents":     stats.TotalEvents,
		"completedEvents": stats.CompletedEvents,
	})
}

// Healthz is a liveness probe.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}
