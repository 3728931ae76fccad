package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"glamo-server/modules/common/utils"
)

const emptyQuestion = "Please enter a question."

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleChat - POST /chat {question} -> {answer}
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		log.Printf("❌ [Chat] Invalid request: %v", err)
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid request format."})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: emptyQuestion})
		return
	}

	utils.WriteJSON(w, http.StatusOK, ChatResponse{Answer: h.service.Ask(r.Context(), req.Question)})
}
