package service

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"cfdibox/internal/archive"
	"cfdibox/internal/batch"
	"cfdibox/internal/domain"
)

// BatchService runs the extraction pipeline over uploaded batches and keeps
// the results of the current session in memory. Nothing is persisted.
type BatchService interface {
	ProcessBatch(ctx context.Context, docs []domain.RawDocument) (*domain.BatchResult, error)
	GetBatch(id uuid.UUID) (*domain.BatchResult, error)
}

type batchService struct {
	processor *batch.Processor
	archiver  *archive.Archiver

	mu      sync.RWMutex
	batches map[uuid.UUID]*domain.BatchResult
}

// NewBatchService creates a BatchService. archiver may be nil when source
// archival is disabled.
func NewBatchService(processor *batch.Processor, archiver *archive.Archiver) BatchService {
	return &batchService{
		processor: processor,
		archiver:  archiver,
		batches:   make(map[uuid.UUID]*domain.BatchResult),
	}
}

// ProcessBatch runs every document through the pipeline and folds the
// outcomes. An empty input and a non-empty input yielding zero records are
// reported as distinct errors so the caller can tell "nothing supplied"
// from "nothing extractable".
func (s *batchService) ProcessBatch(ctx context.Context, docs []domain.RawDocument) (*domain.BatchResult, error) {
	if len(docs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	outcomes := s.processor.Process(ctx, docs)
	result := batch.Fold(outcomes)

	if result.Count() == 0 {
		return nil, domain.ErrNoValidRecords
	}

	if s.archiver != nil {
		sources := make(map[string][]byte, len(docs))
		for i := range docs {
			sources[docs[i].Name] = docs[i].Content
		}
		stored := s.archiver.Store(ctx, result, sources)
		log.Printf("batchService: archived %d of %d documents", stored, result.Count())
	}

	s.mu.Lock()
	s.batches[result.ID] = result
	s.mu.Unlock()

	log.Printf("batchService: batch %s processed: %d records, %d duplicates, %d unstamped, %d malformed",
		result.ID, result.Count(), result.DuplicateCount, result.MissingStampCount, result.MalformedCount)

	return result, nil
}

// GetBatch returns a previously processed batch by id.
func (s *batchService) GetBatch(id uuid.UUID) (*domain.BatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return result, nil
}
