package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/cms-be/internal/services"
)

// EventHandler handles HTTP requests related to content events.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity/events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	writeJSON(w, http.StatusOK, h.service.GetRecentEvents(limit))
}
