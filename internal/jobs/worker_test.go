package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/qanooni-ai/qanooni/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReindexer is a mock implementation of Reindexer
type MockReindexer struct {
	mock.Mock
}

func (m *MockReindexer) Reindex(ctx context.Context) (domain.GenerationInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.GenerationInfo), args.Error(1)
}

// TestReindexWorker_StartStop tests the worker start and stop functionality
func TestReindexWorker_StartStop(t *testing.T) {
	mockIndexer := new(MockReindexer)
	mockIndexer.On("Reindex", mock.Anything).Return(domain.GenerationInfo{}, nil)

	worker := NewReindexWorker(mockIndexer, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it tick a couple of times
	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockIndexer.AssertCalled(t, "Reindex", mock.Anything)
}

// TestReindexWorker_ContextCancellation tests worker stops on context cancellation
func TestReindexWorker_ContextCancellation(t *testing.T) {
	mockIndexer := new(MockReindexer)
	mockIndexer.On("Reindex", mock.Anything).Return(domain.GenerationInfo{}, nil)

	worker := NewReindexWorker(mockIndexer, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockIndexer.AssertCalled(t, "Reindex", mock.Anything)
}

// TestReindexWorker_RebuildErrorKeepsTicking tests that a failed rebuild
// does not stop the loop
func TestReindexWorker_RebuildErrorKeepsTicking(t *testing.T) {
	mockIndexer := new(MockReindexer)
	mockIndexer.On("Reindex", mock.Anything).Return(domain.GenerationInfo{}, errors.New("embedding unavailable"))

	worker := NewReindexWorker(mockIndexer, 50*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(context.Background())
	}()

	time.Sleep(180 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(mockIndexer.Calls), 2, "loop must survive failed rebuilds")
}
