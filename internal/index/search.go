package index

import (
	"math"
	"sort"

	"github.com/qanooni-ai/qanooni/internal/domain"
)

// Match is one ranked search hit, deduplicated to its source file.
type Match struct {
	FileID       string           `json:"file_id"`
	Title        string           `json:"title"`
	Jurisdiction string           `json:"jurisdiction"`
	Version      string           `json:"version"`
	AsOf         string           `json:"as_of"`
	Tags         []string         `json:"tags"`
	Summary      domain.Bilingual `json:"summary"`
	Score        float32          `json:"score"`
}

// SearchGeneration ranks every chunk in the generation by cosine
// similarity to the query vector, deduplicates by source file keeping the
// best-scoring chunk, and returns up to topK distinct files. The sort is
// stable: equal scores keep chunk encounter order.
func SearchGeneration(gen *domain.Generation, query []float32, topK int) []Match {
	if gen == nil || len(gen.Chunks) == 0 || topK <= 0 {
		return []Match{}
	}

	type scored struct {
		fileID string
		score  float32
	}

	ranked := make([]scored, len(gen.Chunks))
	for i, chunk := range gen.Chunks {
		ranked[i] = scored{
			fileID: chunk.FileID,
			score:  float32(CosineSimilarity(query, chunk.Embedding)),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	files := make(map[string]*domain.FileRecord, len(gen.Files))
	for i := range gen.Files {
		files[gen.Files[i].ID] = &gen.Files[i]
	}

	seen := make(map[string]struct{}, topK)
	matches := make([]Match, 0, topK)
	for _, r := range ranked {
		if _, dup := seen[r.fileID]; dup {
			continue
		}
		file, ok := files[r.fileID]
		if !ok {
			continue
		}
		seen[r.fileID] = struct{}{}
		matches = append(matches, Match{
			FileID:       file.ID,
			Title:        file.Metadata.Title,
			Jurisdiction: file.Metadata.Jurisdiction,
			Version:      file.Metadata.Version,
			AsOf:         file.Metadata.AsOf,
			Tags:         file.Metadata.Tags,
			Summary:      file.Summary,
			Score:        r.score,
		})
		if len(matches) == topK {
			break
		}
	}

	return matches
}

// CosineSimilarity returns the normalized dot product of two vectors.
// A zero-magnitude vector yields 0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	for i := n; i < len(a); i++ {
		magA += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
