package batch

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cfdibox/internal/domain"
)

// Outcome is the per-document result of the extraction pipeline: either a
// record or the error that excluded the document.
type Outcome struct {
	Name   string
	Record *domain.InvoiceRecord
	Err    error
}

// Fold reduces a sequence of per-document outcomes into a deduplicated
// BatchResult. Single pass, input order preserved, first-seen-wins on the
// fiscal UUID: the order of the input sequence decides which copy of a
// duplicated document survives. Failed extractions are dropped and counted
// by cause; they never count as duplicates. An empty result is valid.
func Fold(outcomes []Outcome) *domain.BatchResult {
	result := &domain.BatchResult{
		ID:              uuid.New(),
		InputCount:      len(outcomes),
		TotalSum:        decimal.Zero,
		ByType:          make(map[domain.InvoiceType]domain.TypeSummary),
		ByDeductibility: make(map[domain.Deductibility]decimal.Decimal),
		ProcessedAt:     time.Now().UTC(),
	}

	seen := make(map[string]struct{}, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			if errors.Is(o.Err, domain.ErrMissingFiscalID) {
				result.MissingStampCount++
			} else {
				result.MalformedCount++
			}
			continue
		}
		if _, dup := seen[o.Record.UUID]; dup {
			result.DuplicateCount++
			continue
		}
		seen[o.Record.UUID] = struct{}{}
		result.Records = append(result.Records, *o.Record)
	}

	for i := range result.Records {
		rec := &result.Records[i]
		result.TotalSum = result.TotalSum.Add(rec.Total)

		ts := result.ByType[rec.Type]
		ts.Count++
		ts.Total = ts.Total.Add(rec.Total)
		result.ByType[rec.Type] = ts

		result.ByDeductibility[rec.Deductibility] = result.ByDeductibility[rec.Deductibility].Add(rec.Total)
	}

	return result
}
