package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/openai"
)

type TranslateService interface {
	Complete(ctx context.Context, messages []openai.ChatMessage) (string, error)
}

type TranslateHandler struct {
	llm TranslateService
}

func NewTranslateHandler(llm TranslateService) *TranslateHandler {
	return &TranslateHandler{llm: llm}
}

type TranslateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type TranslateResponse struct {
	Translation string `json:"translation"`
	Target      string `json:"target"`
}

var translateTargets = map[string]string{
	"en": "English",
	"ar": "Arabic",
}

func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	target := strings.ToLower(req.Target)
	language, ok := translateTargets[target]
	if !ok {
		api.Error(w, http.StatusBadRequest, "target must be \"en\" or \"ar\"")
		return
	}

	messages := []openai.ChatMessage{
		{
			Role: openai.RoleSystem,
			Content: fmt.Sprintf("Translate the user's text into %s. "+
				"Preserve legal terminology and respond with the translation only.", language),
		},
		{Role: openai.RoleUser, Content: req.Text},
	}

	translation, err := h.llm.Complete(r.Context(), messages)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TranslateResponse{Translation: translation, Target: target})
}
