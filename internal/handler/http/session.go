package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/handler/http/response"
)

type SessionHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ClearError(w http.ResponseWriter, r *http.Request)
}

type SessionHandlerImpl struct {
	sessions auth.SessionService
}

func NewSessionHandler(sessions auth.SessionService) SessionHandler {
	return &SessionHandlerImpl{sessions: sessions}
}

// Login implements SessionHandler.
func (h *SessionHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.sessions.Login(r.Context(), creds); err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleErrorWithData(w, err, h.sessions.Snapshot())
		return
	}

	response.SuccessWithMessage(w, "Logged in successfully", h.sessions.Snapshot())
}

// Logout implements SessionHandler. The backend is not involved.
func (h *SessionHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		response.HandleErrorWithData(w, err, h.sessions.Snapshot())
		return
	}
	response.SuccessWithMessage(w, "Logged out successfully", h.sessions.Snapshot())
}

// Get implements SessionHandler.
func (h *SessionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.sessions.Snapshot())
}

// ClearError implements SessionHandler.
func (h *SessionHandlerImpl) ClearError(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearError()
	response.Success(w, h.sessions.Snapshot())
}
