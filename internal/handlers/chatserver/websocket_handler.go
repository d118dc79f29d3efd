package chatserver

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/middleware"
	ws "social-go/internal/websocket"
)

// WebSocketHandler 负责处理 WebSocket 连接请求。
type WebSocketHandler struct {
	hub  *ws.Hub
	gate auth.SessionGate
	cfg  config.Config
	log  *logrus.Logger
}

// NewWebSocketHandler creates the handler. gate must accept chat tokens
// (see auth.NewChatSessionGate).
func NewWebSocketHandler(hub *ws.Hub, gate auth.SessionGate, cfg config.Config, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, gate: gate, cfg: cfg, log: log}
}

// ServeWS authenticates the ?token= query parameter and upgrades the
// connection. Browsers cannot set headers on a websocket handshake, so the
// token travels in the URL.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	caller, err := h.gate.ResolveCaller(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			h.log.WithError(err).WithField("remote", r.RemoteAddr).Debug("websocket connection rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.WithError(err).Error("websocket session check failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	middleware.LogWebSocketConnect(h.log, r.RemoteAddr, r.URL.Path, caller.UserID)
	ws.ServeWsPerConnection(h.hub, caller.UserID, w, r, h.cfg.WebSocket, h.cfg.APIServer.CORS.AllowedOrigins)
}
