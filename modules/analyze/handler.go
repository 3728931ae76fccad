package analyze

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"glamo-server/modules/common/utils"
)

const defaultMaxUploadBytes = 10 << 20

type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler - maxUploadBytes <= 0 uses 10 MiB
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// HandleAnalyze - POST /analyze (multipart: photo, selected_app|app, style)
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	photo, err := utils.ReadUpload(w, r, "photo", h.maxUploadBytes)
	if err != nil {
		log.Printf("❌ [Analyze] Bad upload: %v", err)
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "No image uploaded."})
		return
	}

	in := AnalyzeInput{
		Image: photo,
		App:   firstFormValue(r, "selected_app", "app"),
		Style: strings.TrimSpace(r.FormValue("style")),
	}

	resp, err := h.service.Analyze(r.Context(), in)
	switch {
	case errors.Is(err, ErrInvalidImage):
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid image file."})
		return
	case errors.Is(err, ErrSceneAnalysis):
		log.Printf("❌ [Analyze] %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Could not understand the image. Please try another."})
		return
	case err != nil:
		log.Printf("❌ [Analyze] Unexpected error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "An unexpected server error occurred."})
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func firstFormValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			return v
		}
	}
	return ""
}
