package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
)

// EventSubscriber provides a per-group event stream. The cancel func
// must be called when the listener disconnects.
type EventSubscriber interface {
	Subscribe(groupID string) (<-chan domain.GroupEvent, func())
}

// EventsHandler streams group change events over server-sent events.
type EventsHandler struct {
	groupUC   GroupService
	hub       EventSubscriber
	heartbeat time.Duration
	metrics   *metrics.Metrics
}

// NewEventsHandler creates a new EventsHandler. heartbeat is the
// interval between keep-alive comments on otherwise idle streams.
func NewEventsHandler(groupUC GroupService, hub EventSubscriber, heartbeat time.Duration, m *metrics.Metrics) *EventsHandler {
	return &EventsHandler{
		groupUC:   groupUC,
		hub:       hub,
		heartbeat: heartbeat,
		metrics:   m,
	}
}

// Stream subscribes the caller to a group's change events. Membership is
// checked before the stream opens.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	groupID := chi.URLParam(r, "id")
	if _, err := h.groupUC.GetGroup(r.Context(), groupID, actor.ID); err != nil {
		writeDomainError(w, err, "failed to open event stream")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	// The server-wide write timeout would cut long-lived streams off.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.hub.Subscribe(groupID)
	defer cancel()

	h.metrics.SSEConnections.Inc()
	defer h.metrics.SSEConnections.Dec()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
