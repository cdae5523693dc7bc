package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rensmac/tasktalk/internal/api/middleware"
	"github.com/rensmac/tasktalk/internal/api/response"
	"github.com/rensmac/tasktalk/internal/domain"
	"github.com/rensmac/tasktalk/internal/service"
)

// ChatHandler handles the conversational endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat accepts a free-text message and replies in kind. The endpoint does
// not require authentication: an anonymous caller still gets a reply, the
// task backend just refuses the tool calls made on their behalf.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	token, _ := middleware.ExtractBearer(r)

	reply, err := h.chatService.Handle(r.Context(), input.Message, token)
	if err != nil {
		if errors.Is(err, service.ErrChatTimeout) {
			response.Error(w, http.StatusRequestTimeout, "chat request timed out")
			return
		}
		response.InternalError(w, "failed to process chat message")
		return
	}

	response.OK(w, domain.ChatResponse{Response: reply})
}
