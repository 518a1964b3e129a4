package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/index"
	"github.com/qanooni-ai/qanooni/internal/openai"
)

type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, messages []openai.ChatMessage) (<-chan string, <-chan error, error)
}

type ChatHandler struct {
	search SearchService
	llm    Completer
}

func NewChatHandler(search SearchService, llm Completer) *ChatHandler {
	return &ChatHandler{search: search, llm: llm}
}

type ChatRequest struct {
	Message string `json:"message"`
	Stream  bool   `json:"stream"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

const chatSystemPrompt = "You are a bilingual legal research assistant. " +
	"Answer using the knowledge base excerpts below when they are relevant, " +
	"and say so when they are not."

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	matches, _, err := h.search.Search(r.Context(), req.Message)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	messages := []openai.ChatMessage{
		{Role: openai.RoleSystem, Content: buildChatContext(matches)},
		{Role: openai.RoleUser, Content: req.Message},
	}

	if req.Stream {
		h.stream(w, r, messages)
		return
	}

	reply, err := h.llm.Complete(r.Context(), messages)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{Reply: reply})
}

// stream writes the completion as server-sent events, one data frame per
// text increment, terminated by a [DONE] frame. Client disconnect cancels
// the upstream generation through the request context.
func (h *ChatHandler) stream(w http.ResponseWriter, r *http.Request, messages []openai.ChatMessage) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	deltas, errs, err := h.llm.StreamComplete(r.Context(), messages)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case delta, open := <-deltas:
			if !open {
				// The producer buffers a failure before closing, so check
				// for one rather than reporting a clean finish.
				select {
				case err := <-errs:
					payload, _ := json.Marshal(map[string]string{"error": err.Error()})
					fmt.Fprintf(w, "data: %s\n\n", payload)
				default:
					fmt.Fprint(w, "data: [DONE]\n\n")
				}
				flusher.Flush()
				return
			}
			payload, _ := json.Marshal(map[string]string{"delta": delta})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		case err := <-errs:
			payload, _ := json.Marshal(map[string]string{"error": err.Error()})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			return
		case <-r.Context().Done():
			return
		}
	}
}

func buildChatContext(matches []index.Match) string {
	if len(matches) == 0 {
		return chatSystemPrompt + "\n\nNo knowledge base excerpts matched this question."
	}

	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	b.WriteString("\n\nKnowledge base excerpts:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s (%s, version %s, as of %s): %s\n",
			m.Title, m.Jurisdiction, m.Version, m.AsOf, m.Summary.EN)
	}
	return b.String()
}
