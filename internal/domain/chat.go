package domain

// ChatRequest is a single free-text message sent to the chat surface.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is the rendered natural-language reply.
type ChatResponse struct {
	Response string `json:"response"`
}
