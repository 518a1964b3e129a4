package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Bilingual holds the English and Arabic renditions of a text field.
type Bilingual struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// DocumentMetadata is the parsed front-matter of a source document.
// Title, Jurisdiction, Version, AsOf and Tags are required; Extra keeps
// any additional keys the document carries.
type DocumentMetadata struct {
	Title        string         `json:"title"`
	Jurisdiction string         `json:"jurisdiction"`
	Version      string         `json:"version"`
	AsOf         string         `json:"as_of"`
	Tags         []string       `json:"tags"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// FileRecord is one indexed source document. Records are owned by the
// index service and replaced wholesale on rebuild, never mutated.
type FileRecord struct {
	ID         string           `json:"id"`
	SourcePath string           `json:"source_path"`
	Metadata   DocumentMetadata `json:"metadata"`
	Summary    Bilingual        `json:"summary"`
	Body       Bilingual        `json:"body"`
}

// ChunkRecord is one embeddable window of a file. FileID is a non-owning
// back-reference; every chunk's FileID exists among the generation's files.
// Chunks carry no metadata of their own: the document metadata is baked
// into the embedded text by the builder and resolved through the owning
// FileRecord at search time, so the cache file stores it once per file
// instead of once per chunk.
type ChunkRecord struct {
	ID        string    `json:"id"`
	FileID    string    `json:"file_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Generation is one immutable, complete build of the index. The index
// service holds exactly one current generation and swaps it atomically.
type Generation struct {
	Version int           `json:"version"`
	BuiltAt time.Time     `json:"built_at"`
	Files   []FileRecord  `json:"files"`
	Chunks  []ChunkRecord `json:"chunks"`
}

// GenerationSource records how the current generation came to exist.
type GenerationSource string

const (
	GenerationSourceCache   GenerationSource = "cache"
	GenerationSourceReindex GenerationSource = "reindex"
)

// GenerationInfo describes a generation to callers that trigger or
// observe a (re)build.
type GenerationInfo struct {
	Source     GenerationSource `json:"source"`
	FileCount  int              `json:"file_count"`
	ChunkCount int              `json:"chunk_count"`
	BuiltAt    time.Time        `json:"built_at"`
}

// Info summarizes the generation under the given source label.
func (g *Generation) Info(source GenerationSource) GenerationInfo {
	return GenerationInfo{
		Source:     source,
		FileCount:  len(g.Files),
		ChunkCount: len(g.Chunks),
		BuiltAt:    g.BuiltAt,
	}
}

// FileIDFromPath derives a stable file ID from the document's path
// relative to the docs root. The same path always maps to the same ID
// across rebuilds.
func FileIDFromPath(relPath string) string {
	sum := sha256.Sum256([]byte(relPath))
	return hex.EncodeToString(sum[:8])
}

// ChunkID builds the deterministic chunk ID for a file and ordinal.
func ChunkID(fileID string, ordinal int) string {
	return fmt.Sprintf("%s#%d", fileID, ordinal)
}

// ValidateMetadata reports whether the required front-matter keys are present.
func ValidateMetadata(m DocumentMetadata) error {
	if m.Title == "" {
		return fmt.Errorf("%w: title", ErrMissingRequiredField)
	}
	if m.Jurisdiction == "" {
		return fmt.Errorf("%w: jurisdiction", ErrMissingRequiredField)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: version", ErrMissingRequiredField)
	}
	if m.AsOf == "" {
		return fmt.Errorf("%w: as_of", ErrMissingRequiredField)
	}
	if len(m.Tags) == 0 {
		return fmt.Errorf("%w: tags", ErrMissingRequiredField)
	}
	return nil
}
