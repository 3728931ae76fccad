package music

import (
	"net/http"
	"strings"

	"glamo-server/modules/common/utils"
)

// Handler - HTTP surface for direct song lookup
type Handler struct {
	resolver *Resolver
}

// NewHandler creates a new music handler
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// HandleSearch - GET /music/search?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		utils.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Query parameter q is required."})
		return
	}

	song := h.resolver.Resolve(r.Context(), q)
	if song == nil {
		utils.WriteJSON(w, http.StatusNotFound, ErrorResponse{Detail: "No song found."})
		return
	}

	utils.WriteJSON(w, http.StatusOK, SearchResponse{Query: q, Song: song})
}
