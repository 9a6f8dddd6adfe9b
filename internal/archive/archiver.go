package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"

	"cfdibox/internal/domain"
	"cfdibox/internal/port"
)

// Archiver files away the source XML of each valid record under a
// year/month/type hierarchy. It is a side collaborator: keys are derived
// from record fields and the record itself is never modified. Failures are
// logged, counted, and never fail the batch.
type Archiver struct {
	storage port.ObjectStorage
	bucket  string
}

// NewArchiver creates an Archiver writing through the given storage.
func NewArchiver(storage port.ObjectStorage, bucket string) *Archiver {
	return &Archiver{storage: storage, bucket: bucket}
}

// Key returns the archive key for a record's source document, e.g.
// "2026/01/Ingreso/factura.xml".
func Key(rec *domain.InvoiceRecord) string {
	return path.Join(rec.Year(), rec.Month(), rec.Type.Label(), rec.SourceName)
}

// Store archives the source bytes of every deduplicated record and returns
// the number of documents stored.
func (a *Archiver) Store(ctx context.Context, result *domain.BatchResult, sources map[string][]byte) int {
	stored := 0
	for i := range result.Records {
		rec := &result.Records[i]
		content, ok := sources[rec.SourceName]
		if !ok {
			continue
		}
		if err := a.storeOne(ctx, rec, content); err != nil {
			log.Printf("archiver: storing %q: %v", rec.SourceName, err)
			continue
		}
		stored++
	}
	return stored
}

func (a *Archiver) storeOne(ctx context.Context, rec *domain.InvoiceRecord, content []byte) error {
	_, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         Key(rec),
		Body:        bytes.NewReader(content),
		ContentType: "text/xml",
		Size:        int64(len(content)),
	})
	if err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}
	return nil
}
