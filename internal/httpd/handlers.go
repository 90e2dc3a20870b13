package httpd

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/apperr"
	"github.com/matheus3301/wppbridge/internal/bridge"
	"github.com/matheus3301/wppbridge/internal/hub"
)

// Handler carries the REST control surface and the realtime endpoint
// over the bridge.
type Handler struct {
	bridge        *bridge.Bridge
	hub           *hub.Hub
	logger        *zap.Logger
	allowedOrigin string
}

// NewHandler creates the control surface handler.
func NewHandler(br *bridge.Bridge, h *hub.Hub, allowedOrigin string, logger *zap.Logger) *Handler {
	return &Handler{bridge: br, hub: h, allowedOrigin: allowedOrigin, logger: logger}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send handles POST /api/send.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid JSON body"))
		return
	}

	// In-flight backend calls run to completion even if the caller goes
	// away; the response is simply discarded.
	id, err := h.bridge.Send(context.WithoutCancel(r.Context()), req.To, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// Profile handles GET /api/profile. Reads cached state only; info is null
// until the session has been ready.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "info": h.bridge.Profile()})
}

// Contacts handles GET /api/contacts.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.bridge.Contacts(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "contacts": contacts})
}

// Chats handles GET /api/chats.
func (h *Handler) Chats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.bridge.Chats(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "chats": chats})
}

// Logout handles POST /api/logout. The disconnected broadcast happens
// inside the bridge regardless of whether this response reaches the
// caller.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Logout(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
