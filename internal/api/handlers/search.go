package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/index"
)

type SearchService interface {
	Search(ctx context.Context, query string) ([]index.Match, bool, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchMatch struct {
	FileID       string   `json:"file_id"`
	Title        string   `json:"title"`
	Jurisdiction string   `json:"jurisdiction"`
	Version      string   `json:"version"`
	AsOf         string   `json:"as_of"`
	Tags         []string `json:"tags"`
	SummaryEN    string   `json:"summary_en"`
	SummaryAR    string   `json:"summary_ar,omitempty"`
	Score        float32  `json:"score"`
}

type SearchResponse struct {
	Matches []SearchMatch `json:"matches"`
	Source  string        `json:"source"`
}

func matchToResponse(m index.Match) SearchMatch {
	return SearchMatch{
		FileID:       m.FileID,
		Title:        m.Title,
		Jurisdiction: m.Jurisdiction,
		Version:      m.Version,
		AsOf:         m.AsOf,
		Tags:         m.Tags,
		SummaryEN:    m.Summary.EN,
		SummaryAR:    m.Summary.AR,
		Score:        m.Score,
	}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches, cached, err := h.svc.Search(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	source := "engine"
	if cached {
		source = "cache"
	}

	resp := SearchResponse{Matches: make([]SearchMatch, 0, len(matches)), Source: source}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, matchToResponse(m))
	}

	api.Success(w, http.StatusOK, resp)
}
