package suggest

import (
	"errors"
	"log"
	"net/http"

	"glamo-server/modules/common/utils"
)

// SuggestResponse - POST /suggest_style_app body
type SuggestResponse struct {
	Result string `json:"result"`
}

// ErrorResponse - {"detail": "..."} error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type Handler struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// HandleSuggest - POST /suggest_style_app (multipart: photo)
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	photo, err := utils.ReadUpload(w, r, "photo", h.maxUploadBytes)
	if err != nil {
		log.Printf("❌ [Suggest] Bad upload: %v", err)
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "No image uploaded."})
		return
	}

	result, err := h.service.Suggest(r.Context(), photo)
	if errors.Is(err, ErrInvalidImage) {
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid image file."})
		return
	}
	if err != nil {
		log.Printf("❌ [Suggest] %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Could not suggest a style. Please try another image."})
		return
	}

	utils.WriteJSON(w, http.StatusOK, SuggestResponse{Result: result})
}
