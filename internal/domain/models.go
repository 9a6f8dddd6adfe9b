package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownDate is the sentinel for a CFDI with no Fecha attribute. It keeps
// the archive key (year/month) well-formed.
const UnknownDate = "0000-00-00"

// RawDocument is an uploaded document as received from the caller: a
// display name plus its byte content. It is consumed once by the pipeline.
type RawDocument struct {
	Name    string
	Content []byte
}

// InvoiceRecord is the normalized output for one valid CFDI. The fiscal
// UUID is the document's authoritative identity; Series and Folio are
// merchant-assigned and not guaranteed unique. Records are immutable once
// built.
type InvoiceRecord struct {
	UUID          string          `json:"uuid"`
	IssueDate     string          `json:"issue_date"`
	Type          InvoiceType     `json:"type"`
	Series        string          `json:"series"`
	Folio         string          `json:"folio"`
	IssuerRFC     string          `json:"issuer_rfc"`
	IssuerName    string          `json:"issuer_name"`
	ReceiverRFC   string          `json:"receiver_rfc"`
	ReceiverName  string          `json:"receiver_name"`
	UsageCode     string          `json:"usage_code"`
	PaymentMethod string          `json:"payment_method"`
	PaymentForm   string          `json:"payment_form"`
	CertNumber    string          `json:"cert_number"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	Transferred   decimal.Decimal `json:"transferred_tax"`
	Withheld      decimal.Decimal `json:"withheld_tax"`
	Deductibility Deductibility   `json:"deductibility"`
	SourceName    string          `json:"source_name"`
}

// Year returns the year portion of IssueDate.
func (r *InvoiceRecord) Year() string {
	if len(r.IssueDate) < 4 {
		return "0000"
	}
	return r.IssueDate[0:4]
}

// Month returns the month portion of IssueDate.
func (r *InvoiceRecord) Month() string {
	if len(r.IssueDate) < 7 {
		return "00"
	}
	return r.IssueDate[5:7]
}

// TypeSummary aggregates count and total for one invoice type.
type TypeSummary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// BatchResult is the outcome of folding one batch of documents: the
// deduplicated records in input order plus derived summary statistics.
// It is never persisted.
type BatchResult struct {
	ID                uuid.UUID                       `json:"id"`
	Records           []InvoiceRecord                 `json:"records"`
	InputCount        int                             `json:"input_count"`
	DuplicateCount    int                             `json:"duplicate_count"`
	MissingStampCount int                             `json:"missing_stamp_count"`
	MalformedCount    int                             `json:"malformed_count"`
	TotalSum          decimal.Decimal                 `json:"total_sum"`
	ByType            map[InvoiceType]TypeSummary     `json:"by_type"`
	ByDeductibility   map[Deductibility]decimal.Decimal `json:"by_deductibility"`
	ProcessedAt       time.Time                       `json:"processed_at"`
}

// Count returns the number of deduplicated records.
func (b *BatchResult) Count() int { return len(b.Records) }
