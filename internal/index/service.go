// Package index holds the knowledge-base embedding index: building,
// durable caching, hydration, and nearest-neighbor search over bilingual
// document chunks.
package index

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/qanooni-ai/qanooni/internal/domain"
)

// snapshot pairs a generation with how it was obtained. The service
// swaps whole snapshots; readers never observe a half-built generation.
type snapshot struct {
	gen    *domain.Generation
	source domain.GenerationSource
}

// Service is the stateful facade over the index. It owns the single
// current generation, coordinates hydrate-vs-rebuild on first access,
// and serializes rebuilds so at most one runs at a time.
type Service struct {
	builder      *Builder
	store        *Store
	embedder     Embedder
	results      *ResultCache
	topK         int
	buildTimeout time.Duration

	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

type ServiceConfig struct {
	Builder      *Builder
	Store        *Store
	Embedder     Embedder
	Results      *ResultCache
	TopK         int
	BuildTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		builder:      cfg.Builder,
		store:        cfg.Store,
		embedder:     cfg.Embedder,
		results:      cfg.Results,
		topK:         cfg.TopK,
		buildTimeout: cfg.BuildTimeout,
	}
}

// Ready reports whether a generation is loaded.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Info returns the current generation descriptor, if one exists.
func (s *Service) Info() (domain.GenerationInfo, bool) {
	snap := s.current.Load()
	if snap == nil {
		return domain.GenerationInfo{}, false
	}
	return snap.gen.Info(snap.source), true
}

// CacheStats returns the search result cache hit and miss counters.
func (s *Service) CacheStats() (hits, misses uint64) {
	return s.results.Stats()
}

// Warm ensures the index is ready, hydrating from cache or building as
// needed. Safe to call concurrently; all callers share one attempt.
func (s *Service) Warm(ctx context.Context) (domain.GenerationInfo, error) {
	snap, err := s.ensureReady(ctx)
	if err != nil {
		return domain.GenerationInfo{}, err
	}
	return snap.gen.Info(snap.source), nil
}

// Reindex rebuilds the index and atomically swaps the new generation in.
// Concurrent requests coalesce into the one in-flight build and all
// receive its result. Readers keep being served the old generation until
// the swap.
func (s *Service) Reindex(ctx context.Context) (domain.GenerationInfo, error) {
	ch := s.group.DoChan("rebuild", func() (any, error) {
		return s.rebuild()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.GenerationInfo{}, res.Err
		}
		snap := res.Val.(*snapshot)
		return snap.gen.Info(snap.source), nil
	case <-ctx.Done():
		// The build keeps running detached; a later caller gets its result.
		return domain.GenerationInfo{}, ctx.Err()
	}
}

// Search embeds the query and returns the top-K distinct file matches.
// The boolean reports whether the result came from the result cache.
// A whitespace-only query short-circuits to an empty result without an
// embedding call.
func (s *Service) Search(ctx context.Context, query string) ([]Match, bool, error) {
	if strings.TrimSpace(query) == "" {
		return []Match{}, false, nil
	}

	if matches, ok := s.results.Get(query); ok {
		return matches, true, nil
	}

	snap, err := s.ensureReady(ctx)
	if err != nil {
		return nil, false, err
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, false, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "failed to embed query", err)
	}
	if len(vectors) == 0 {
		return nil, false, domain.ErrEmbeddingFail
	}

	matches := SearchGeneration(snap.gen, vectors[0], s.topK)
	s.results.Put(query, matches)
	return matches, false, nil
}

// ensureReady returns the current snapshot, running exactly one
// hydrate-or-build sequence when the service is uninitialized. A caller
// that disconnects abandons the wait, not the work: the attempt finishes
// for whoever asks next. A failed attempt is not cached; the next access
// retries.
func (s *Service) ensureReady(ctx context.Context) (*snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	ch := s.group.DoChan("init", func() (any, error) {
		if snap := s.current.Load(); snap != nil {
			return snap, nil
		}

		gen, err := s.store.Hydrate()
		if err == nil {
			snap := &snapshot{gen: gen, source: domain.GenerationSourceCache}
			s.current.Store(snap)
			log.Printf("index: hydrated from cache (%d files, %d chunks)", len(gen.Files), len(gen.Chunks))
			return snap, nil
		}

		return s.sharedRebuild()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// sharedRebuild funnels the cold-start miss path through the same
// single-flight key as explicit reindex requests, so a racing reindex
// and first access still produce only one build.
func (s *Service) sharedRebuild() (*snapshot, error) {
	res := <-s.group.DoChan("rebuild", func() (any, error) {
		return s.rebuild()
	})
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Val.(*snapshot), nil
}

// rebuild runs one build detached from any caller, bounded by the
// configured timeout, swaps the generation, flushes stale search
// results, and rewrites the durable cache. A build failure leaves the
// previous generation and cache file untouched.
func (s *Service) rebuild() (*snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.buildTimeout)
	defer cancel()

	gen, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{gen: gen, source: domain.GenerationSourceReindex}
	s.current.Store(snap)
	s.results.Flush()
	log.Printf("index: rebuilt (%d files, %d chunks)", len(gen.Files), len(gen.Chunks))

	if err := s.store.Persist(gen); err != nil {
		log.Printf("index: failed to persist cache: %v", err)
	}

	return snap, nil
}
