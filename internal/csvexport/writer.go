package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"cfdibox/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the CSV header row. The order is stable: consumers key
// on position.
var Columns = []string{
	"Archivo",
	"Fecha",
	"Tipo",
	"Serie",
	"Folio",
	"RFC Emisor",
	"Emisor",
	"RFC Receptor",
	"Receptor",
	"Uso CFDI",
	"Método de Pago",
	"Forma de Pago",
	"No. Certificado",
	"Subtotal",
	"Impuestos Trasladados",
	"Impuestos Retenidos",
	"Total",
	"Alerta Fiscal",
	"UUID",
}

// Writer wraps csv.Writer for exporting invoice records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteRecords converts a batch of records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.InvoiceRecord) error {
	for i := range records {
		if err := w.csv.Write(RecordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// RecordToRow converts a single record to a row in Columns order.
func RecordToRow(rec *domain.InvoiceRecord) []string {
	return []string{
		rec.SourceName,
		rec.IssueDate,
		rec.Type.Label(),
		rec.Series,
		rec.Folio,
		rec.IssuerRFC,
		rec.IssuerName,
		rec.ReceiverRFC,
		rec.ReceiverName,
		rec.UsageCode,
		rec.PaymentMethod,
		rec.PaymentForm,
		rec.CertNumber,
		rec.Subtotal.StringFixed(2),
		rec.Transferred.StringFixed(2),
		rec.Withheld.StringFixed(2),
		rec.Total.StringFixed(2),
		rec.Deductibility.Label(),
		rec.UUID,
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a batch name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
