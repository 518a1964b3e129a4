package cli

import (
	"github.com/qanooni-ai/qanooni/internal/config"
	"github.com/qanooni-ai/qanooni/internal/domain"
	"github.com/qanooni-ai/qanooni/internal/index"
	"github.com/qanooni-ai/qanooni/internal/loader"
	"github.com/qanooni-ai/qanooni/internal/openai"
)

// newIndexService assembles the index service and its OpenAI client from
// configuration. The embedding provider is mandatory: without it neither
// index builds nor query embeddings are possible.
func newIndexService(cfg *config.Config) (*index.Service, *openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, nil, domain.NewDomainError(domain.ErrCodeValidation,
			"QANOONI_OPENAI_API_KEY is required")
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
	})

	source := loader.New(cfg.DocsRoot)
	builder := index.NewBuilder(source, client, cfg.ChunkSize, cfg.ChunkOverlap, cfg.IndexVersion)
	store := index.NewStore(cfg.CachePath, cfg.IndexVersion)

	svc := index.NewService(index.ServiceConfig{
		Builder:      builder,
		Store:        store,
		Embedder:     client,
		Results:      index.NewResultCache(cfg.SearchCacheTTL, cfg.SearchCacheSize),
		TopK:         cfg.TopK,
		BuildTimeout: cfg.BuildTimeout,
	})
	return svc, client, nil
}
