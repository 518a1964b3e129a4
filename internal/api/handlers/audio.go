package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/api"
)

type AudioService interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Speak(ctx context.Context, text string) (io.ReadCloser, error)
}

type AudioHandler struct {
	svc AudioService
}

func NewAudioHandler(svc AudioService) *AudioHandler {
	return &AudioHandler{svc: svc}
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SpeakRequest struct {
	Text string `json:"text"`
}

func (h *AudioHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	text, err := h.svc.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TranscribeResponse{Text: text})
}

func (h *AudioHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.svc.Speak(r.Context(), req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, audio)
}
