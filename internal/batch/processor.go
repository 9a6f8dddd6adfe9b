package batch

import (
	"context"
	"log"
	"sync"
	"time"

	"cfdibox/internal/cfdi"
	"cfdibox/internal/domain"
)

// Processor runs the per-document pipeline (parse, extract, classify) over
// a batch. Documents are independent, so they are processed concurrently up
// to the configured limit; results keep input order so the fold's
// first-seen-wins dedup stays deterministic across runs.
type Processor struct {
	extractor   *cfdi.Extractor
	concurrency int
	docTimeout  time.Duration
}

// NewProcessor creates a Processor. Concurrency below 1 is clamped to 1; a
// zero timeout disables the per-document deadline.
func NewProcessor(extractor *cfdi.Extractor, concurrency int, docTimeout time.Duration) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		extractor:   extractor,
		concurrency: concurrency,
		docTimeout:  docTimeout,
	}
}

// Process runs the pipeline for every document and returns one Outcome per
// input, index-aligned with docs. A malformed document fails fast and never
// stalls the batch.
func (p *Processor) Process(ctx context.Context, docs []domain.RawDocument) []Outcome {
	outcomes := make([]Outcome, len(docs))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int, doc domain.RawDocument) {
			defer wg.Done()
			defer func() { <-sem }() // release
			outcomes[i] = p.processOne(ctx, doc)
		}(i, docs[i])
	}

	wg.Wait()
	return outcomes
}

// processOne parses and extracts a single document. A deadline overrun is
// reported as a ParseError outcome for that document only.
func (p *Processor) processOne(ctx context.Context, doc domain.RawDocument) Outcome {
	docCtx := ctx
	if p.docTimeout > 0 {
		var cancel context.CancelFunc
		docCtx, cancel = context.WithTimeout(ctx, p.docTimeout)
		defer cancel()
	}

	done := make(chan Outcome, 1)
	go func() {
		root, err := cfdi.Parse(doc.Content)
		if err != nil {
			done <- Outcome{Name: doc.Name, Err: &domain.ParseError{Name: doc.Name, Err: err}}
			return
		}
		rec, err := p.extractor.Extract(root, doc.Name)
		if err != nil {
			done <- Outcome{Name: doc.Name, Err: err}
			return
		}
		done <- Outcome{Name: doc.Name, Record: rec}
	}()

	select {
	case o := <-done:
		return o
	case <-docCtx.Done():
		log.Printf("processor: document %q timed out: %v", doc.Name, docCtx.Err())
		return Outcome{Name: doc.Name, Err: &domain.ParseError{Name: doc.Name, Err: docCtx.Err()}}
	}
}
