// Package httpadapter exposes the paper upload and status endpoints.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

type Router struct {
	ingestor ports.PaperIngestor
	papers   ports.PaperReader
	logger   *slog.Logger
}

func NewRouter(ingestor ports.PaperIngestor, papers ports.PaperReader, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		ingestor: ingestor,
		papers:   papers,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/papers", rt.uploadPaper)
	mux.HandleFunc("/v1/papers/", rt.getPaper)
	return requestIDMiddleware(rt.accessLog(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadPaper(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	year, err := optionalInt(r.FormValue("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year must be an integer"})
		return
	}
	tier, err := optionalInt(r.FormValue("tier"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier must be an integer"})
		return
	}

	paper, err := rt.ingestor.Upload(r.Context(), ports.UploadRequest{
		Filename:    fileHeader.Filename,
		Source:      strings.TrimSpace(r.FormValue("source")),
		Year:        year,
		DefaultTier: tier,
		Body:        file,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, paper)
}

// getPaper serves both /v1/papers/{id} and /v1/papers/{id}/status.
func (rt *Router) getPaper(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/papers/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || (sub != "" && sub != "status") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	paper, err := rt.papers.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if sub == "status" {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        paper.Status,
			"questionCount": paper.QuestionCount,
			"error":         paper.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
