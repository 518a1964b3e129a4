package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/domain"
)

type AdminService interface {
	Reindex(ctx context.Context) (domain.GenerationInfo, error)
	Info() (domain.GenerationInfo, bool)
	CacheStats() (hits, misses uint64)
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type GenerationResponse struct {
	Source     string `json:"source"`
	FileCount  int    `json:"file_count"`
	ChunkCount int    `json:"chunk_count"`
	BuiltAt    string `json:"built_at"`
}

type StatsResponse struct {
	Ready       bool                `json:"ready"`
	Generation  *GenerationResponse `json:"generation,omitempty"`
	CacheHits   uint64              `json:"cache_hits"`
	CacheMisses uint64              `json:"cache_misses"`
}

func generationToResponse(info domain.GenerationInfo) *GenerationResponse {
	return &GenerationResponse{
		Source:     string(info.Source),
		FileCount:  info.FileCount,
		ChunkCount: info.ChunkCount,
		BuiltAt:    info.BuiltAt.UTC().Format(time.RFC3339),
	}
}

func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Reindex(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, generationToResponse(info))
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	hits, misses := h.svc.CacheStats()
	resp := StatsResponse{CacheHits: hits, CacheMisses: misses}

	if info, ok := h.svc.Info(); ok {
		resp.Ready = true
		resp.Generation = generationToResponse(info)
	}

	api.Success(w, http.StatusOK, resp)
}
