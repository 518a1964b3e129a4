package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qanooni-ai/qanooni/internal/domain"
)

// DocumentSource provides the file records to index.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.FileRecord, error)
}

// Embedder maps batches of text to fixed-length vectors, one vector per
// input in the same order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Builder orchestrates loader, chunker, and embedder into a new
// generation. Building is the expensive, rebuildable step; any embedding
// failure aborts the whole build so a partial index is never produced.
type Builder struct {
	source       DocumentSource
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
	version      int
}

func NewBuilder(source DocumentSource, embedder Embedder, chunkSize, chunkOverlap, version int) *Builder {
	return &Builder{
		source:       source,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		version:      version,
	}
}

// Build loads all documents, chunks each file's embeddable text, and
// requests one batched embedding call per file.
func (b *Builder) Build(ctx context.Context) (*domain.Generation, error) {
	files, err := b.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	gen := &domain.Generation{
		Version: b.version,
		BuiltAt: time.Now().UTC(),
		Files:   files,
	}

	for _, file := range files {
		chunks := Chunk(buildEmbeddingText(&file), b.chunkSize, b.chunkOverlap)
		if len(chunks) == 0 {
			continue
		}

		vectors, err := b.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding,
				fmt.Sprintf("failed to embed %s", file.SourcePath), err)
		}
		if len(vectors) != len(chunks) {
			return nil, domain.NewDomainError(domain.ErrCodeEmbedding,
				fmt.Sprintf("embedder returned %d vectors for %d chunks of %s", len(vectors), len(chunks), file.SourcePath))
		}

		for i, text := range chunks {
			gen.Chunks = append(gen.Chunks, domain.ChunkRecord{
				ID:        domain.ChunkID(file.ID, i),
				FileID:    file.ID,
				Text:      text,
				Embedding: vectors[i],
			})
		}
	}

	return gen, nil
}

// buildEmbeddingText combines the serialized metadata with both language
// bodies into one embeddable blob.
func buildEmbeddingText(file *domain.FileRecord) string {
	meta := fmt.Sprintf("Title: %s\nJurisdiction: %s\nVersion: %s\nAs of: %s\nTags: %s",
		file.Metadata.Title,
		file.Metadata.Jurisdiction,
		file.Metadata.Version,
		file.Metadata.AsOf,
		strings.Join(file.Metadata.Tags, ", "),
	)

	parts := []string{meta}
	if file.Body.EN != "" {
		parts = append(parts, file.Body.EN)
	}
	if file.Body.AR != "" {
		parts = append(parts, file.Body.AR)
	}
	return strings.Join(parts, "\n\n")
}
