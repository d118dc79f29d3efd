package apiserver

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"social-go/internal/services"
)

// ChatHandler hands out chat server tokens.
type ChatHandler struct {
	chat services.ChatService
	log  *logrus.Logger
}

func NewChatHandler(chat services.ChatService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

// TokenHandler handles GET /api/chat/token.
func (h *ChatHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	token, err := h.chat.Token(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"token": token})
}
