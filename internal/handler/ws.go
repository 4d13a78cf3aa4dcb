package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/collab"
	"inkwell/internal/httputil"
)

// WSHandler attaches websocket connections to collaboration rooms
type WSHandler struct {
	hub    *collab.Hub
	logger *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *collab.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Document joins the per-document editing room
func (h *WSHandler) Document(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	collab.ServeWS(h.hub, w, r, collab.DocumentRoom(documentID), httputil.GetUserName(r), h.logger)
}

// Global joins one of the site-wide rooms (ideaboard, chat, presence,
// typing and the rest)
func (h *WSHandler) Global(w http.ResponseWriter, r *http.Request) {
	room, err := collab.GlobalRoom(r.PathValue("room"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Unknown room")
		return
	}

	collab.ServeWS(h.hub, w, r, room, httputil.GetUserName(r), h.logger)
}
