package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAudioService struct {
	mock.Mock
}

func (m *MockAudioService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	args := m.Called(ctx, filename, audio)
	return args.String(0), args.Error(1)
}

func (m *MockAudioService) Speak(ctx context.Context, text string) (io.ReadCloser, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func multipartAudio(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestAudioHandler_Transcribe(t *testing.T) {
	svc := new(MockAudioService)
	svc.On("Transcribe", mock.Anything, "question.mp3", mock.Anything).
		Return("what is the companies law", nil)
	handler := NewAudioHandler(svc)

	body, contentType := multipartAudio(t, "audio", "question.mp3", "fake-audio-bytes")
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Transcribe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data TranscribeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "what is the companies law", envelope.Data.Text)
	svc.AssertExpectations(t)
}

func TestAudioHandler_TranscribeMissingFile(t *testing.T) {
	handler := NewAudioHandler(new(MockAudioService))

	body, contentType := multipartAudio(t, "wrong_field", "question.mp3", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Transcribe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAudioHandler_SpeakStreamsAudio(t *testing.T) {
	svc := new(MockAudioService)
	svc.On("Speak", mock.Anything, "hello").
		Return(io.NopCloser(strings.NewReader("mp3-bytes")), nil)
	handler := NewAudioHandler(svc)

	payload, _ := json.Marshal(SpeakRequest{Text: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/speak", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Speak(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", rec.Body.String())
}

func TestAudioHandler_SpeakBlankText(t *testing.T) {
	handler := NewAudioHandler(new(MockAudioService))

	payload, _ := json.Marshal(SpeakRequest{Text: "  "})
	req := httptest.NewRequest(http.MethodPost, "/speak", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Speak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
