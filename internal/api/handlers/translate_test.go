package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qanooni-ai/qanooni/internal/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postTranslate(t *testing.T, handler *TranslateHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/translate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Translate(rec, req)
	return rec
}

func TestTranslateHandler_TranslatesToArabic(t *testing.T) {
	llm := &stubCompleter{reply: "مرحبا"}
	handler := NewTranslateHandler(llm)

	rec := postTranslate(t, handler, TranslateRequest{Text: "hello", Target: "ar"})

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data TranslateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "مرحبا", envelope.Data.Translation)
	assert.Equal(t, "ar", envelope.Data.Target)

	require.Len(t, llm.got, 2)
	assert.Equal(t, openai.RoleSystem, llm.got[0].Role)
	assert.Contains(t, llm.got[0].Content, "Arabic")
	assert.Equal(t, "hello", llm.got[1].Content)
}

func TestTranslateHandler_TargetIsCaseInsensitive(t *testing.T) {
	llm := &stubCompleter{reply: "hello"}
	handler := NewTranslateHandler(llm)

	rec := postTranslate(t, handler, TranslateRequest{Text: "مرحبا", Target: "EN"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, llm.got[0].Content, "English")
}

func TestTranslateHandler_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  TranslateRequest
	}{
		{name: "blank text", req: TranslateRequest{Text: "  ", Target: "ar"}},
		{name: "unknown target", req: TranslateRequest{Text: "hello", Target: "fr"}},
		{name: "missing target", req: TranslateRequest{Text: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTranslateHandler(&stubCompleter{})

			rec := postTranslate(t, handler, tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
