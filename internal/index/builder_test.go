package index

import (
	"context"
	"errors"
	"testing"

	"github.com/qanooni-ai/qanooni/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbedder mocks the embedding provider
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type stubSource struct {
	records []domain.FileRecord
	err     error
}

func (s *stubSource) Load(ctx context.Context) ([]domain.FileRecord, error) {
	return s.records, s.err
}

func sampleRecords() []domain.FileRecord {
	return []domain.FileRecord{
		{
			ID:         "file-a",
			SourcePath: "a.md",
			Metadata: domain.DocumentMetadata{
				Title: "A", Jurisdiction: "UAE", Version: "1", AsOf: "2024-01-01", Tags: []string{"x"},
			},
			Body: domain.Bilingual{EN: "English body A", AR: "نص عربي"},
		},
		{
			ID:         "file-b",
			SourcePath: "b.md",
			Metadata: domain.DocumentMetadata{
				Title: "B", Jurisdiction: "KSA", Version: "1", AsOf: "2024-01-01", Tags: []string{"y"},
			},
			Body: domain.Bilingual{EN: "English body B"},
		},
	}
}

func TestBuilder_Build_OneBatchedCallPerFile(t *testing.T) {
	embedder := new(MockEmbedder)
	source := &stubSource{records: sampleRecords()}
	builder := NewBuilder(source, embedder, 1000, 100, 3)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{0.1, 0.2}}, nil).Twice()

	gen, err := builder.Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, gen.Version)
	assert.False(t, gen.BuiltAt.IsZero())
	assert.Len(t, gen.Files, 2)
	assert.Len(t, gen.Chunks, 2)
	embedder.AssertNumberOfCalls(t, "EmbedBatch", 2)
}

// echoEmbedder returns one unit vector per input and counts calls.
type echoEmbedder struct {
	calls int
}

func (e *echoEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func TestBuilder_Build_DeterministicChunkIDs(t *testing.T) {
	source := &stubSource{records: sampleRecords()[:1]}
	builder := NewBuilder(source, &echoEmbedder{}, 20, 5, 3)

	gen, err := builder.Build(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, gen.Chunks)
	for i, chunk := range gen.Chunks {
		assert.Equal(t, domain.ChunkID("file-a", i), chunk.ID)
		assert.Equal(t, "file-a", chunk.FileID)
	}
}

func TestBuilder_Build_NoDanglingFileReferences(t *testing.T) {
	embedder := new(MockEmbedder)
	source := &stubSource{records: sampleRecords()}
	builder := NewBuilder(source, embedder, 1000, 100, 3)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)

	gen, err := builder.Build(context.Background())

	require.NoError(t, err)
	ids := make(map[string]bool, len(gen.Files))
	for _, f := range gen.Files {
		ids[f.ID] = true
	}
	for _, c := range gen.Chunks {
		assert.True(t, ids[c.FileID], "chunk %s references unknown file %s", c.ID, c.FileID)
	}
}

func TestBuilder_Build_EmbedFailureAbortsWholeBuild(t *testing.T) {
	embedder := new(MockEmbedder)
	source := &stubSource{records: sampleRecords()}
	builder := NewBuilder(source, embedder, 1000, 100, 3)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil).Once()
	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()

	_, err := builder.Build(context.Background())

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeEmbedding, domainErr.Code)
}

func TestBuilder_Build_VectorCountMismatchFails(t *testing.T) {
	embedder := new(MockEmbedder)
	source := &stubSource{records: sampleRecords()[:1]}
	builder := NewBuilder(source, embedder, 1000, 100, 3)

	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{0.1}, {0.2}}, nil)

	_, err := builder.Build(context.Background())

	assert.Error(t, err)
}

func TestBuilder_Build_MetadataOnlyFileStillIndexed(t *testing.T) {
	records := sampleRecords()[:1]
	records[0].Body = domain.Bilingual{}
	source := &stubSource{records: records}
	builder := NewBuilder(source, &echoEmbedder{}, 1000, 100, 3)

	gen, err := builder.Build(context.Background())

	require.NoError(t, err)
	assert.Len(t, gen.Files, 1)
	require.Len(t, gen.Chunks, 1)
	assert.Contains(t, gen.Chunks[0].Text, "Jurisdiction: UAE")
}

func TestBuilder_Build_LoaderErrorPropagates(t *testing.T) {
	embedder := new(MockEmbedder)
	source := &stubSource{err: errors.New("walk failed")}
	builder := NewBuilder(source, embedder, 1000, 100, 3)

	_, err := builder.Build(context.Background())

	require.Error(t, err)
	embedder.AssertNotCalled(t, "EmbedBatch")
}
