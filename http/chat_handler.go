package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"loan-advisor/domain"
	"loan-advisor/service"
)

type ChatHandler struct {
	sessions *service.SessionStore
}

func NewChatHandler(sessions *service.SessionStore) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string               `json:"session_id"`
	Reply     string               `json:"reply"`
	History   []domain.ChatMessage `json:"history"`
}

// Chat posts a message to the session, opening a new one when session_id is
// missing or has expired. The response always carries the session ID to use next.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ChatHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := readValidatedBody(r, chatSchema)
	if err != nil {
		writeError(w, err)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument))
		return
	}

	id, conv := h.sessions.Open(req.SessionID)
	reply := conv.Post(r.Context(), req.Message)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: id,
		Reply:     reply,
		History:   conv.History(),
	})
}

func (h *ChatHandler) clear(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", domain.ErrInvalidArgument))
		return
	}

	conv, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	conv.Clear()
	w.WriteHeader(http.StatusNoContent)
}
