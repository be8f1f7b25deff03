package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/wallyhq/wally/service"
	"github.com/wallyhq/wally/store"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type listWallsResponse struct {
	Walls []string `json:"walls"`
}

func (h *Handler) HandleListWalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	walls, err := h.Service.ListWalls(r.Context())
	if err != nil {
		log.Printf("Failed to list walls: %v", err)
		http.Error(w, "failed to list walls", http.StatusInternalServerError)
		return
	}
	if walls == nil {
		walls = []string{}
	}
	h.sendResponse(w, listWallsResponse{Walls: walls})
}

func (h *Handler) HandleGetWall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.Service.GetWallState(r.Context(), r.PathValue("name"))
	if errors.Is(err, store.ErrItemNotFound) {
		http.Error(w, "wall not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to load wall: %v", err)
		http.Error(w, "failed to load wall", http.StatusInternalServerError)
		return
	}
	h.sendResponse(w, state)
}

// HandleGetData serves an image's pixel payload. Clients hit this after
// a NewImage broadcast, which carries metadata only.
func (h *Handler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType, payload, err := h.Service.GetImageData(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrItemNotFound) {
		http.Error(w, "data not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to load image data: %v", err)
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(payload)
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
