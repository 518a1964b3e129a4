// Package jobs runs background maintenance for the embedding index.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/qanooni-ai/qanooni/internal/domain"
	"github.com/qanooni-ai/qanooni/internal/telemetry"
)

// Reindexer rebuilds the embedding index.
type Reindexer interface {
	Reindex(ctx context.Context) (domain.GenerationInfo, error)
}

// ReindexWorker periodically rebuilds the index so that document edits
// on disk become searchable without an operator call.
type ReindexWorker struct {
	indexer  Reindexer
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewReindexWorker creates a new ReindexWorker instance
func NewReindexWorker(indexer Reindexer, interval time.Duration) *ReindexWorker {
	return &ReindexWorker{
		indexer:  indexer,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the worker's rebuild loop
func (w *ReindexWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Reindex worker started with interval: %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Reindex worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Reindex worker stopped: stop signal received")
			return
		case <-ticker.C:
			w.rebuild(ctx)
		}
	}
}

func (w *ReindexWorker) rebuild(ctx context.Context) {
	spanCtx, span := telemetry.StartSpan(ctx, "jobs.reindex")
	defer span.End()

	info, err := w.indexer.Reindex(spanCtx)
	if err != nil {
		span.SetError(err)
		log.Printf("Error rebuilding index: %v", err)
		return
	}

	log.Printf("Index rebuilt: %d files, %d chunks", info.FileCount, info.ChunkCount)
}

// Stop gracefully stops the worker
func (w *ReindexWorker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Reindex worker shutdown complete")
}
