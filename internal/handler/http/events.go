package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/handler/http/response"
)

const keepaliveInterval = 30 * time.Second

type EventHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	sessions  auth.SessionService
	employees employee.EmployeeService
}

func NewEventHandler(sessions auth.SessionService, employees employee.EmployeeService) EventHandler {
	return &eventHandlerImpl{
		sessions:  sessions,
		employees: employees,
	}
}

// Stream pushes a snapshot every time either store changes. The current
// snapshots are sent first so a view can render without a separate fetch.
// The stream closes once the session is no longer authenticated.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	sessionEvents, cleanupSession := h.sessions.Subscribe()
	defer cleanupSession()
	employeeEvents, cleanupEmployees := h.employees.Subscribe()
	defer cleanupEmployees()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "session", h.sessions.Snapshot())
	writeEvent(w, "employees", h.employees.Snapshot())
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case snap, ok := <-sessionEvents:
			if !ok {
				return
			}
			writeEvent(w, "session", snap)
			flusher.Flush()
			// Logout or expiry ends the stream; the guard decides on reconnect.
			if !snap.IsAuthenticated {
				return
			}

		case snap, ok := <-employeeEvents:
			if !ok {
				return
			}
			writeEvent(w, "employees", snap)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
