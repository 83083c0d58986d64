package http

import (
	"encoding/json"
	"log"
	"net/http"

	"pancasila-learning-service/internal/app"
	"pancasila-learning-service/internal/domain"
)

// Handler exposes the read-side use cases (dashboard, search, theme,
// reading progress) as plain JSON endpoints.
type Handler struct {
	learning *app.LearningService
}

func NewHandler(learning *app.LearningService) *Handler {
	return &Handler{learning: learning}
}

// Register attaches all non-websocket routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/dashboard", h.Dashboard)
	mux.HandleFunc("/api/search", h.Search)
	mux.HandleFunc("/api/theme", h.Theme)
	mux.HandleFunc("/api/progress/reading", h.ReadingProgress)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cards, err := h.learning.Dashboard(r.Context())
	if err != nil {
		log.Printf("dashboard: %v", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"chapters": cards})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results := h.learning.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []domain.LegalReference{}
	}
	writeJSON(w, map[string]any{"results": results})
}

func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		theme, err := h.learning.Theme(r.Context())
		if err != nil {
			log.Printf("load theme: %v", err)
			http.Error(w, "failed to load theme", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"theme": theme})
	case http.MethodPut:
		var payload struct {
			Theme domain.Theme `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := h.learning.SetTheme(r.Context(), payload.Theme); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) ReadingProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		ChapterID  string `json:"chapterId"`
		PageIndex  int    `json:"pageIndex"`
		TotalPages int    `json:"totalPages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	// Out-of-range page input is a silent no-op by contract, so a 204 here
	// does not imply the record changed.
	if err := h.learning.RecordReading(r.Context(), payload.ChapterID, payload.PageIndex, payload.TotalPages); err != nil {
		log.Printf("record reading: %v", err)
		http.Error(w, "failed to record progress", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}
