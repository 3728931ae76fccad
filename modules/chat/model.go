package chat

// ChatRequest - POST /chat body and inbound WebSocket frame
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse - POST /chat body and outbound WebSocket frame
type ChatResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse - {"detail": "..."} error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}
