package openai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingAPI struct {
	resp openai.EmbeddingResponse
	err  error
	got  []string
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	if req, ok := conv.(openai.EmbeddingRequest); ok {
		if texts, ok := req.Input.([]string); ok {
			f.got = texts
		}
	}
	return f.resp, f.err
}

func newTestClient(api embeddingAPI, dimensions int) *Client {
	return &Client{
		embeddings:     api,
		embeddingModel: DefaultEmbeddingModel,
		chatModel:      DefaultChatModel,
		dimensions:     dimensions,
	}
}

func vector(dim int, fill float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestEmbedBatch_PreservesInputOrder(t *testing.T) {
	// Responses can arrive index-tagged out of order.
	api := &fakeEmbeddingAPI{
		resp: openai.EmbeddingResponse{
			Data: []openai.Embedding{
				{Index: 1, Embedding: vector(3, 0.2)},
				{Index: 0, Embedding: vector(3, 0.1)},
			},
		},
	}
	client := newTestClient(api, 3)

	vectors, err := client.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, vector(3, 0.1), vectors[0])
	assert.Equal(t, vector(3, 0.2), vectors[1])
	assert.Equal(t, []string{"first", "second"}, api.got)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	client := newTestClient(&fakeEmbeddingAPI{}, 3)

	_, err := client.EmbedBatch(context.Background(), nil)

	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	api := &fakeEmbeddingAPI{
		resp: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Index: 0, Embedding: vector(3, 0.1)}},
		},
	}
	client := newTestClient(api, 3)

	_, err := client.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.Error(t, err)
}

func TestEmbedBatch_WrongDimensions(t *testing.T) {
	api := &fakeEmbeddingAPI{
		resp: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Index: 0, Embedding: vector(2, 0.1)}},
		},
	}
	client := newTestClient(api, 3)

	_, err := client.EmbedBatch(context.Background(), []string{"a"})

	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestEmbedBatch_APIErrorPropagates(t *testing.T) {
	api := &fakeEmbeddingAPI{err: errors.New("rate limited")}
	client := newTestClient(api, 3)

	_, err := client.EmbedBatch(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "key"})

	assert.Equal(t, DefaultEmbeddingModel, client.embeddingModel)
	assert.Equal(t, string(DefaultChatModel), client.chatModel)
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}
